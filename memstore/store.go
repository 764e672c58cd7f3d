// ABOUTME: In-memory mock entity store seeded from embedded fixtures
// ABOUTME: Simulates backend latency and keeps rows in backend-native shape
package memstore

import (
	"context"
	"embed"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
	"github.com/harperreed/dealdesk/service"
)

//go:embed fixtures/*.yaml
var fixtures embed.FS

// ErrNotFound is returned for get, update, and delete of a missing id.
var ErrNotFound = service.ErrNotFound

// Default latency bounds for simulated round trips.
const (
	DefaultMinLatency = 200 * time.Millisecond
	DefaultMaxLatency = 400 * time.Millisecond
)

// Store is a mock Store[T, In]. Rows are kept in insertion order.
type Store[T, In any] struct {
	mu      sync.Mutex
	rows    []backend.Record
	seed    []backend.Record
	mapping *records.Mapping[T, In]
	noun    string

	minLatency time.Duration
	maxLatency time.Duration
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*config)

type config struct {
	minLatency time.Duration
	maxLatency time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// WithLatency sets the simulated latency bounds. Zero disables the delay.
func WithLatency(minLatency, maxLatency time.Duration) Option {
	return func(c *config) {
		c.minLatency = minLatency
		c.maxLatency = maxLatency
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// New builds a store over seed rows. The seed is copied and kept for Reset.
func New[T, In any](mapping *records.Mapping[T, In], noun string, seed []backend.Record, opts ...Option) *Store[T, In] {
	c := config{minLatency: DefaultMinLatency, maxLatency: DefaultMaxLatency}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now != nil {
		mapping = mapping.WithClock(c.now)
	}
	if c.maxLatency < c.minLatency {
		c.maxLatency = c.minLatency
	}

	s := &Store[T, In]{
		seed:       cloneRows(seed),
		mapping:    mapping,
		noun:       noun,
		minLatency: c.minLatency,
		maxLatency: c.maxLatency,
		logger:     c.logger.With(zap.String("store", "mock"), zap.String("table", mapping.Table)),
	}
	s.rows = cloneRows(s.seed)
	return s
}

// NewContacts returns a contact store seeded from the embedded fixtures.
func NewContacts(opts ...Option) (*Store[models.Contact, models.ContactInput], error) {
	seed, err := loadFixture("fixtures/contacts.yaml")
	if err != nil {
		return nil, err
	}
	return New(records.ContactMapping(), "contact", seed, opts...), nil
}

// NewDeals returns a deal store seeded from the embedded fixtures.
func NewDeals(opts ...Option) (*Store[models.Deal, models.DealInput], error) {
	seed, err := loadFixture("fixtures/deals.yaml")
	if err != nil {
		return nil, err
	}
	return New(records.DealMapping(), "deal", seed, opts...), nil
}

func loadFixture(name string) ([]backend.Record, error) {
	raw, err := fixtures.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
	}
	var rows []backend.Record
	if err := yaml.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", name, err)
	}
	return rows, nil
}

// wait sleeps for a random duration within the latency bounds, returning
// early if ctx is done.
func (s *Store[T, In]) wait(ctx context.Context) error {
	d := s.minLatency
	if spread := s.maxLatency - s.minLatency; spread > 0 {
		d += rand.N(spread + 1)
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Store[T, In]) indexOf(id int) int {
	for i, row := range s.rows {
		if rowID, ok := records.Int(row[s.mapping.IDKey]); ok && rowID == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, In]) nextID() int {
	next := 0
	for _, row := range s.rows {
		if id, ok := records.Int(row[s.mapping.IDKey]); ok && id > next {
			next = id
		}
	}
	return next + 1
}

func (s *Store[T, In]) notFound(id int) error {
	return fmt.Errorf("%s %w: %d", s.noun, ErrNotFound, id)
}

// GetAll returns every row in insertion order.
func (s *Store[T, In]) GetAll(ctx context.Context) ([]T, error) {
	out := []T{}
	if err := s.wait(ctx); err != nil {
		return out, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		out = append(out, s.mapping.ToDomain(row))
	}
	return out, nil
}

func (s *Store[T, In]) GetByID(ctx context.Context, id int) (*T, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return nil, s.notFound(id)
	}
	entity := s.mapping.ToDomain(s.rows[i])
	return &entity, nil
}

func (s *Store[T, In]) Create(ctx context.Context, in In) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row := s.mapping.ToExternal(in, records.ForCreate)
	row[s.mapping.IDKey] = s.nextID()
	s.rows = append(s.rows, row)

	s.logger.Debug("created "+s.noun, zap.Any("id", row[s.mapping.IDKey]))
	return s.mapping.ToDomain(row), nil
}

// Update merges the writable fields of in over the stored row.
func (s *Store[T, In]) Update(ctx context.Context, id int, in In) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return zero, s.notFound(id)
	}
	merged := cloneRow(s.rows[i])
	for k, v := range s.mapping.ToExternal(in, records.ForUpdate) {
		merged[k] = v
	}
	s.rows[i] = merged
	return s.mapping.ToDomain(merged), nil
}

func (s *Store[T, In]) Delete(ctx context.Context, id int) (bool, error) {
	if err := s.wait(ctx); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, s.notFound(id)
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	return true, nil
}

// Reset restores the seed rows.
func (s *Store[T, In]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = cloneRows(s.seed)
}

// Len returns the number of stored rows without simulated latency.
func (s *Store[T, In]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func cloneRows(rows []backend.Record) []backend.Record {
	out := make([]backend.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, cloneRow(row))
	}
	return out
}

func cloneRow(row backend.Record) backend.Record {
	out := make(backend.Record, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
