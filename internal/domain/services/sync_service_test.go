package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	apperrors "github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAggregator struct {
	syncAdvertisersFunc        func(ctx context.Context) (*models.AdvertiserSyncResult, error)
	syncOffersFunc             func(ctx context.Context) (*models.OfferSyncResult, error)
	syncAdvertiserProductsFunc func(ctx context.Context, advertiserID string) (*models.ProductSyncResult, error)
	cleanupDummyDataFunc       func(ctx context.Context) (*models.CleanupResult, error)
	listAdvertisersFunc        func(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error)
}

func (m *mockAggregator) SyncAdvertisers(ctx context.Context) (*models.AdvertiserSyncResult, error) {
	return m.syncAdvertisersFunc(ctx)
}

func (m *mockAggregator) SyncOffers(ctx context.Context) (*models.OfferSyncResult, error) {
	return m.syncOffersFunc(ctx)
}

func (m *mockAggregator) SyncAdvertiserProducts(ctx context.Context, advertiserID string) (*models.ProductSyncResult, error) {
	return m.syncAdvertiserProductsFunc(ctx, advertiserID)
}

func (m *mockAggregator) CleanupDummyData(ctx context.Context) (*models.CleanupResult, error) {
	return m.cleanupDummyDataFunc(ctx)
}

func (m *mockAggregator) ListAdvertisers(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error) {
	return m.listAdvertisersFunc(ctx, query, page, size)
}

// mockCache - кэш в памяти с поддержкой удаления по префиксному шаблону
type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, ok := c.data[key]
	if !ok {
		return nil, apperrors.ErrCacheMiss
	}
	return value, nil
}

func (c *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = value
	return nil
}

func (c *mockCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

func (c *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	c.deletes++
	return nil
}

func (c *mockCache) Close() error { return nil }

type mockHistory struct {
	mu      sync.Mutex
	records []*models.JobRecord
}

func (h *mockHistory) SaveJobRecord(ctx context.Context, record *models.JobRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, record)
	return nil
}

func (h *mockHistory) last() *models.JobRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) == 0 {
		return nil
	}
	return h.records[len(h.records)-1]
}

func waitSettled(t *testing.T, s *SyncService, key string) models.JobStatus {
	t.Helper()

	var settled models.JobStatus
	require.Eventually(t, func() bool {
		status, ok := s.Status(key)
		if ok && !status.Loading {
			settled = status
			return true
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	return settled
}

func TestStartAdvertiserSyncLifecycle(t *testing.T) {
	release := make(chan struct{})
	api := &mockAggregator{
		syncAdvertisersFunc: func(ctx context.Context) (*models.AdvertiserSyncResult, error) {
			<-release
			return &models.AdvertiserSyncResult{TotalAdvertisers: 5, Created: 2, Updated: 3}, nil
		},
	}
	history := &mockHistory{}
	s := NewSyncService(api, newMockCache(), history, logger.NewNopLogger(), 0)

	// До первого запуска состояние idle
	_, ok := s.Status(KeyAdvertiserSync)
	assert.False(t, ok)

	provisional := s.StartAdvertiserSync(context.Background())
	assert.True(t, provisional.Loading)
	assert.Equal(t, "Enqueued advertiser sync...", provisional.Message)

	// Пока вызов не завершен, трекер показывает running
	status, ok := s.Status(KeyAdvertiserSync)
	require.True(t, ok)
	assert.True(t, status.Loading)

	close(release)

	settled := waitSettled(t, s, KeyAdvertiserSync)
	assert.Equal(t, "Synced 5 advertisers (created 2, updated 3)", settled.Message)

	record := history.last()
	require.NotNil(t, record)
	assert.Equal(t, models.JobAdvertiserSync, record.Kind)
	assert.True(t, record.Success)
	assert.Equal(t, settled.Message, record.Message)
}

func TestStartOfferSyncMessage(t *testing.T) {
	api := &mockAggregator{
		syncOffersFunc: func(ctx context.Context) (*models.OfferSyncResult, error) {
			return &models.OfferSyncResult{TotalOffers: 120, MerchantsUpdated: 8}, nil
		},
	}
	s := NewSyncService(api, nil, nil, logger.NewNopLogger(), 0)

	provisional := s.StartOfferSync(context.Background())
	assert.Equal(t, "Enqueued offer metadata sync...", provisional.Message)

	settled := waitSettled(t, s, KeyOfferSync)
	assert.Equal(t, "Synced 120 offers (merchants updated: 8)", settled.Message)
}

func TestStartProductSyncMessage(t *testing.T) {
	api := &mockAggregator{
		syncAdvertiserProductsFunc: func(ctx context.Context, advertiserID string) (*models.ProductSyncResult, error) {
			assert.Equal(t, "adv-1", advertiserID)
			return &models.ProductSyncResult{CreatedProducts: 10, UpdatedProducts: 4, DeactivatedOffers: 2}, nil
		},
	}
	s := NewSyncService(api, nil, nil, logger.NewNopLogger(), 0)

	provisional := s.StartProductSync(context.Background(), "adv-1")
	assert.Equal(t, "Syncing products...", provisional.Message)

	// Запись живет под ключом конкретного рекламодателя
	settled := waitSettled(t, s, ProductSyncKey("adv-1"))
	assert.Equal(t, "Products: 10 new, 4 updated, 2 deactivated", settled.Message)
}

func TestStartDummyCleanupMessage(t *testing.T) {
	api := &mockAggregator{
		cleanupDummyDataFunc: func(ctx context.Context) (*models.CleanupResult, error) {
			return &models.CleanupResult{DeletedMerchants: 3, DeletedProducts: 50, DeletedOffers: 70}, nil
		},
	}
	s := NewSyncService(api, nil, nil, logger.NewNopLogger(), 0)

	provisional := s.StartDummyCleanup(context.Background())
	assert.Equal(t, "Deleting dummy JSON data...", provisional.Message)

	settled := waitSettled(t, s, KeyDummyCleanup)
	assert.Equal(t, "Deleted 3 merchants, 50 products, 70 offers.", settled.Message)
}

func TestRunFailureUsesExtractedMessage(t *testing.T) {
	api := &mockAggregator{
		syncAdvertisersFunc: func(ctx context.Context) (*models.AdvertiserSyncResult, error) {
			return nil, &apiclient.APIError{Status: 502, Message: "aggregator unavailable"}
		},
	}
	history := &mockHistory{}
	s := NewSyncService(api, nil, history, logger.NewNopLogger(), 0)

	s.StartAdvertiserSync(context.Background())

	settled := waitSettled(t, s, KeyAdvertiserSync)
	assert.Equal(t, "aggregator unavailable", settled.Message)

	record := history.last()
	require.NotNil(t, record)
	assert.False(t, record.Success)
}

func TestRepeatedStartLastWriteWins(t *testing.T) {
	var calls int
	var mu sync.Mutex
	api := &mockAggregator{
		syncAdvertisersFunc: func(ctx context.Context) (*models.AdvertiserSyncResult, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			return &models.AdvertiserSyncResult{TotalAdvertisers: n}, nil
		},
	}
	s := NewSyncService(api, nil, nil, logger.NewNopLogger(), 0)

	s.StartAdvertiserSync(context.Background())
	waitSettled(t, s, KeyAdvertiserSync)

	// Повторный запуск перезаписывает запись под тем же ключом
	s.StartAdvertiserSync(context.Background())
	settled := waitSettled(t, s, KeyAdvertiserSync)

	assert.Equal(t, "Synced 2 advertisers (created 0, updated 0)", settled.Message)

	// В трекере ровно одна запись для этой операции
	statuses := s.Statuses()
	assert.Len(t, statuses, 1)
}

func TestStatusesReturnsCopy(t *testing.T) {
	api := &mockAggregator{
		syncAdvertisersFunc: func(ctx context.Context) (*models.AdvertiserSyncResult, error) {
			return &models.AdvertiserSyncResult{}, nil
		},
	}
	s := NewSyncService(api, nil, nil, logger.NewNopLogger(), 0)

	s.StartAdvertiserSync(context.Background())
	waitSettled(t, s, KeyAdvertiserSync)

	statuses := s.Statuses()
	statuses[KeyAdvertiserSync] = models.JobStatus{Loading: true, Message: "tampered"}

	status, ok := s.Status(KeyAdvertiserSync)
	require.True(t, ok)
	assert.False(t, status.Loading)
	assert.NotEqual(t, "tampered", status.Message)
}

func TestAdvertisersCachedAndInvalidated(t *testing.T) {
	var listCalls int
	var mu sync.Mutex
	api := &mockAggregator{
		listAdvertisersFunc: func(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error) {
			mu.Lock()
			listCalls++
			mu.Unlock()
			return &models.AdvertiserPage{
				Content:       []models.AdvertiserSummary{{ID: "1", Name: "Acme"}},
				TotalElements: 1,
			}, nil
		},
		syncAdvertisersFunc: func(ctx context.Context) (*models.AdvertiserSyncResult, error) {
			return &models.AdvertiserSyncResult{TotalAdvertisers: 1}, nil
		},
	}
	cache := newMockCache()
	s := NewSyncService(api, cache, nil, logger.NewNopLogger(), time.Minute)
	ctx := context.Background()

	first, err := s.Advertisers(ctx, "", 0, 20)
	require.NoError(t, err)
	require.Len(t, first.Content, 1)

	// Повторный запрос той же страницы обслуживается из кэша
	second, err := s.Advertisers(ctx, "", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, first.Content[0].Name, second.Content[0].Name)

	mu.Lock()
	assert.Equal(t, 1, listCalls)
	mu.Unlock()

	// Успешная синхронизация сбрасывает кэш страниц
	s.StartAdvertiserSync(ctx)
	waitSettled(t, s, KeyAdvertiserSync)

	_, err = s.Advertisers(ctx, "", 0, 20)
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, 2, listCalls)
	mu.Unlock()
}
