package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Law2x/yeloSpot/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const snapshotName = "orders"

const snapshotSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	name TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// SQLSnapshot stores the snapshot as a single row in a SQLite or
// PostgreSQL table.
type SQLSnapshot struct {
	db     *sql.DB
	driver string
}

func openSQLite(path string) (*SQLSnapshot, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQLSnapshot(db, "sqlite")
}

func openPostgres(cfg *config.PostgresConfig) (*SQLSnapshot, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newSQLSnapshot(db, "postgres")
}

func newSQLSnapshot(db *sql.DB, driver string) (*SQLSnapshot, error) {
	s := &SQLSnapshot{db: db, driver: driver}
	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return s, nil
}

func (s *SQLSnapshot) Name() string { return s.driver }

func (s *SQLSnapshot) Load(ctx context.Context) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT data FROM snapshots WHERE name=?`), snapshotName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *SQLSnapshot) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO snapshots (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data=excluded.data, updated_at=CURRENT_TIMESTAMP`),
		snapshotName, string(data))
	return err
}

func (s *SQLSnapshot) Close() error { return s.db.Close() }

// q rewrites ? placeholders for PostgreSQL and passes through for SQLite.
func (s *SQLSnapshot) q(query string) string {
	if s.driver == "postgres" {
		return Rebind(query)
	}
	return query
}

// Rebind rewrites ? placeholders to $1, $2, ...
func Rebind(query string) string {
	n := 0
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteByte(query[i])
		}
	}
	return b.String()
}
