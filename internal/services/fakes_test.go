package services

import (
	"context"
	"errors"
	"sync"

	"github.com/najmulislamnajim/odms-cache/internal/domain"
	"github.com/najmulislamnajim/odms-cache/internal/ports"
)

var errTransient = errors.New("lock wait timeout exceeded")

// fakeSourceConnector serves canned results keyed by agent code.
type fakeSourceConnector struct {
	mu         sync.Mutex
	units      []domain.WorkUnit
	results    map[string]*domain.ResultSet
	failures   map[string]error
	panics     map[string]bool
	connectErr error
	connects   int
	closes     int
	fetched    []string
}

func (c *fakeSourceConnector) Connect(ctx context.Context) (ports.DeliverySource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return &fakeSource{c: c}, nil
}

type fakeSource struct{ c *fakeSourceConnector }

func (s *fakeSource) ListWorkUnits(ctx context.Context) ([]domain.WorkUnit, error) {
	return s.c.units, nil
}

func (s *fakeSource) FetchDeliveryInfo(ctx context.Context, unit domain.WorkUnit) (*domain.ResultSet, error) {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.fetched = append(s.c.fetched, unit.AgentCode)

	if s.c.panics[unit.AgentCode] {
		panic("driver: bad connection state for " + unit.AgentCode)
	}

	if err := s.c.failures[unit.AgentCode]; err != nil {
		return nil, err
	}
	if rs, ok := s.c.results[unit.AgentCode]; ok {
		return rs, nil
	}
	return &domain.ResultSet{Columns: sampleColumns()}, nil
}

func (s *fakeSource) Close() error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.closes++
	return nil
}

// memCacheConnector hands out stores backed by one shared map.
type memCacheConnector struct {
	mu         sync.Mutex
	data       map[string][]byte
	connectErr error
	setErr     error
	connects   int
	closes     int
}

func newMemCache() *memCacheConnector {
	return &memCacheConnector{data: map[string][]byte{}}
}

func (c *memCacheConnector) Connect(ctx context.Context) (ports.CacheStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connects++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return &memStore{c: c}, nil
}

func (c *memCacheConnector) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

type memStore struct{ c *memCacheConnector }

func (s *memStore) Set(ctx context.Context, key string, value []byte) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	if s.c.setErr != nil {
		return s.c.setErr
	}
	s.c.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *memStore) Flush(ctx context.Context) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.data = map[string][]byte{}
	return nil
}

func (s *memStore) Close() error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()
	s.c.closes++
	return nil
}

func sampleColumns() []domain.Column {
	return []domain.Column{
		{Name: "billing_date", DatabaseType: "DATE"},
		{Name: "da_code", DatabaseType: "VARCHAR"},
		{Name: "net_val", DatabaseType: "DECIMAL"},
	}
}

func sampleResult(unit domain.WorkUnit) *domain.ResultSet {
	return &domain.ResultSet{
		Columns: sampleColumns(),
		Rows: [][]any{
			{unit.BillingDate, []byte(unit.AgentCode), []byte("123.40")},
		},
	}
}
