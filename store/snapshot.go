package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Law2x/yeloSpot/config"
)

// Snapshotter persists the whole order map as one opaque blob.
type Snapshotter interface {
	// Load returns nil data when no snapshot exists yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Name() string
	Close() error
}

// Open returns the snapshot backend selected by cfg.Driver.
func Open(cfg *config.SnapshotConfig) (Snapshotter, error) {
	switch cfg.Driver {
	case "file", "":
		return NewFileSnapshot(cfg.File.Path), nil
	case "sqlite":
		return openSQLite(cfg.SQLite.Path)
	case "postgres":
		return openPostgres(&cfg.Postgres)
	case "redis":
		return openRedis(&cfg.Redis)
	default:
		return nil, fmt.Errorf("unsupported snapshot driver: %s", cfg.Driver)
	}
}

// FileSnapshot keeps the snapshot in a single JSON file, replaced atomically.
type FileSnapshot struct {
	path string
}

func NewFileSnapshot(path string) *FileSnapshot {
	return &FileSnapshot{path: path}
}

func (f *FileSnapshot) Name() string { return "file:" + f.path }

func (f *FileSnapshot) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FileSnapshot) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (f *FileSnapshot) Close() error { return nil }
