package catalog

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/titorm/shop-wise-sub000/internal/domain"
)

type mockStore struct {
	FindByBarcodeFunc func(ctx context.Context, key string) (*domain.ProductCatalogEntry, error)
	CreateFunc        func(ctx context.Context, entry *domain.ProductCatalogEntry) error

	findCalls   int
	createCalls int
}

func (m *mockStore) FindByBarcode(ctx context.Context, key string) (*domain.ProductCatalogEntry, error) {
	m.findCalls++
	if m.FindByBarcodeFunc != nil {
		return m.FindByBarcodeFunc(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Create(ctx context.Context, entry *domain.ProductCatalogEntry) error {
	m.createCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	return nil
}

type mockRedis struct {
	data   map[string]string
	getErr error
	setErr error
}

func newMockRedis() *mockRedis {
	return &mockRedis{data: make(map[string]string)}
}

func (m *mockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.setErr != nil {
		return redis.NewStatusResult("", m.setErr)
	}
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}
