package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

type LogFunc func(format string, args ...any)

// Store is the process-wide order map. Every mutation rewrites the whole
// snapshot through the backend before returning.
type Store struct {
	mu      sync.Mutex
	orders  map[string]Record
	backend Snapshotter
	logFn   LogFunc
	now     func() time.Time
}

type Option func(*Store)

func WithLogFunc(fn LogFunc) Option {
	return func(s *Store) { s.logFn = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New loads the snapshot from backend. A missing or unreadable snapshot
// yields an empty store; it is never fatal.
func New(ctx context.Context, backend Snapshotter, opts ...Option) *Store {
	s := &Store{
		orders:  make(map[string]Record),
		backend: backend,
		logFn:   log.Printf,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	data, err := backend.Load(ctx)
	switch {
	case err != nil:
		s.logFn("store: load snapshot (%s): %v, starting empty", backend.Name(), err)
	case len(data) == 0:
	default:
		var orders map[string]Record
		if err := json.Unmarshal(data, &orders); err != nil {
			s.logFn("store: corrupt snapshot (%s): %v, starting empty", backend.Name(), err)
		} else if orders != nil {
			s.orders = orders
		}
	}
	s.logFn("store: %d orders loaded (%s)", len(s.orders), backend.Name())
	return s
}

// Get returns a copy of the record for orderID.
func (s *Store) Get(orderID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.orders[orderID]
	if !ok {
		return Record{}, false
	}
	return r.clone(), true
}

// Merge creates the record if absent and applies p. If the snapshot write
// fails the in-memory change is rolled back and the error returned.
func (s *Store) Merge(ctx context.Context, orderID string, p Patch) (Record, error) {
	if orderID == "" {
		return Record{}, fmt.Errorf("merge: empty order id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.orders[orderID]
	next := prev.clone()
	next.apply(p, s.now())
	s.orders[orderID] = next

	if err := s.persistLocked(ctx); err != nil {
		if existed {
			s.orders[orderID] = prev
		} else {
			delete(s.orders, orderID)
		}
		return Record{}, err
	}
	return next.clone(), nil
}

// List returns every order id with its record, sorted by id.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.orders))
	for id, r := range s.orders {
		out = append(out, Entry{OrderID: id, Record: r.clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

type Entry struct {
	OrderID string `json:"orderId"`
	Record
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.MarshalIndent(s.orders, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("save snapshot (%s): %w", s.backend.Name(), err)
	}
	return nil
}
