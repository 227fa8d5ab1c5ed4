package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/athebyme/gomarket-platform/admin-console/internal/apiclient"
	"github.com/athebyme/gomarket-platform/admin-console/internal/domain/models"
	apperrors "github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
	"github.com/google/uuid"
)

// Ключи записей трекера. Синглтонные операции используют фиксированный ключ,
// синхронизация товаров - ключ по рекламодателю.
const (
	KeyAdvertiserSync = "advertisers"
	KeyOfferSync      = "offers"
	KeyDummyCleanup   = "cleanup"

	productSyncKeyPrefix  = "products:"
	advertiserCachePrefix = "advertisers:"
)

// AggregatorAPI - подмножество клиента внутреннего API, используемое трекером
type AggregatorAPI interface {
	SyncAdvertisers(ctx context.Context) (*models.AdvertiserSyncResult, error)
	SyncOffers(ctx context.Context) (*models.OfferSyncResult, error)
	SyncAdvertiserProducts(ctx context.Context, advertiserID string) (*models.ProductSyncResult, error)
	CleanupDummyData(ctx context.Context) (*models.CleanupResult, error)
	ListAdvertisers(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error)
}

// JobHistoryStore сохраняет завершенные запуски операций
type JobHistoryStore interface {
	SaveJobRecord(ctx context.Context, record *models.JobRecord) error
}

// SyncService координирует фоновые операции консоли агрегатора.
//
// Жизненный цикл каждой операции: idle -> running -> settled. Запись
// создается с Loading=true и промежуточным сообщением при запуске и
// переводится в Loading=false с итоговым сообщением при завершении.
// Повторный запуск под тем же ключом перезаписывает запись
// (последняя запись побеждает); взаимное исключение трекер не навязывает.
type SyncService struct {
	api     AggregatorAPI
	cache   interfaces.CachePort // кэш страниц рекламодателей, может быть nil
	history JobHistoryStore      // журнал запусков, может быть nil
	logger  interfaces.LoggerPort

	cacheTTL time.Duration

	mu       sync.RWMutex
	statuses map[string]models.JobStatus
}

// NewSyncService создает новый координатор операций агрегатора
func NewSyncService(api AggregatorAPI, cache interfaces.CachePort, history JobHistoryStore, logger interfaces.LoggerPort, cacheTTL time.Duration) *SyncService {
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}
	return &SyncService{
		api:      api,
		cache:    cache,
		history:  history,
		logger:   logger,
		cacheTTL: cacheTTL,
		statuses: make(map[string]models.JobStatus),
	}
}

// ProductSyncKey возвращает ключ записи для синхронизации товаров рекламодателя
func ProductSyncKey(advertiserID string) string {
	return productSyncKeyPrefix + advertiserID
}

// Status возвращает запись трекера по ключу; ok=false означает состояние idle
func (s *SyncService) Status(key string) (models.JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status, ok := s.statuses[key]
	return status, ok
}

// Statuses возвращает копию всех записей трекера
func (s *SyncService) Statuses() map[string]models.JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.JobStatus, len(s.statuses))
	for key, status := range s.statuses {
		out[key] = status
	}
	return out
}

// setStatus перезаписывает запись трекера (последняя запись побеждает)
func (s *SyncService) setStatus(key string, status models.JobStatus) {
	s.mu.Lock()
	s.statuses[key] = status
	s.mu.Unlock()
}

// run выполняет один запуск операции: помечает запись running,
// вызывает бэкенд и помечает запись settled итоговым сообщением.
// Вызов синхронный; запуск в фоне - забота вызывающего.
func (s *SyncService) run(ctx context.Context, kind models.JobKind, key, provisional string, call func(ctx context.Context) (string, error)) models.JobStatus {
	ctx = context.WithValue(ctx, "job_key", key)
	startedAt := time.Now().UTC()

	s.setStatus(key, models.JobStatus{Loading: true, Message: provisional})
	s.logger.InfoWithContext(ctx, "Операция агрегатора запущена",
		interfaces.LogField{Key: "kind", Value: string(kind)},
	)

	message, err := call(ctx)

	settled := models.JobStatus{Loading: false}
	success := err == nil
	if success {
		settled.Message = message
		// Итог любой успешной синхронизации делает кэшированные
		// страницы рекламодателей устаревшими
		s.invalidateAdvertisers(ctx)
	} else {
		settled.Message = errorMessage(err)
		s.logger.ErrorWithContext(ctx, "Операция агрегатора завершилась ошибкой",
			interfaces.LogField{Key: "kind", Value: string(kind)},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}

	s.setStatus(key, settled)
	s.saveHistory(ctx, kind, key, success, settled.Message, startedAt)

	return settled
}

// StartAdvertiserSync запускает синхронизацию каталога рекламодателей в фоне
// и возвращает промежуточную запись
func (s *SyncService) StartAdvertiserSync(ctx context.Context) models.JobStatus {
	return s.start(ctx, models.JobAdvertiserSync, KeyAdvertiserSync, "Enqueued advertiser sync...",
		func(ctx context.Context) (string, error) {
			result, err := s.api.SyncAdvertisers(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Synced %d advertisers (created %d, updated %d)",
				result.TotalAdvertisers, result.Created, result.Updated), nil
		})
}

// StartOfferSync запускает синхронизацию метаданных офферов в фоне
func (s *SyncService) StartOfferSync(ctx context.Context) models.JobStatus {
	return s.start(ctx, models.JobOfferSync, KeyOfferSync, "Enqueued offer metadata sync...",
		func(ctx context.Context) (string, error) {
			result, err := s.api.SyncOffers(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Synced %d offers (merchants updated: %d)",
				result.TotalOffers, result.MerchantsUpdated), nil
		})
}

// StartProductSync запускает синхронизацию товаров рекламодателя в фоне
func (s *SyncService) StartProductSync(ctx context.Context, advertiserID string) models.JobStatus {
	return s.start(ctx, models.JobProductSync, ProductSyncKey(advertiserID), "Syncing products...",
		func(ctx context.Context) (string, error) {
			result, err := s.api.SyncAdvertiserProducts(ctx, advertiserID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Products: %d new, %d updated, %d deactivated",
				result.CreatedProducts, result.UpdatedProducts, result.DeactivatedOffers), nil
		})
}

// StartDummyCleanup запускает удаление тестовых данных dummyjson в фоне
func (s *SyncService) StartDummyCleanup(ctx context.Context) models.JobStatus {
	return s.start(ctx, models.JobDummyCleanup, KeyDummyCleanup, "Deleting dummy JSON data...",
		func(ctx context.Context) (string, error) {
			result, err := s.api.CleanupDummyData(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Deleted %d merchants, %d products, %d offers.",
				result.DeletedMerchants, result.DeletedProducts, result.DeletedOffers), nil
		})
}

// start помечает запись running и выполняет запуск в отдельной горутине.
// Возвращаемая запись - промежуточная; итоговая появится в трекере после
// завершения вызова. Жизнь запуска не привязана к входящему запросу,
// поэтому используется отсоединенный контекст.
func (s *SyncService) start(ctx context.Context, kind models.JobKind, key, provisional string, call func(ctx context.Context) (string, error)) models.JobStatus {
	status := models.JobStatus{Loading: true, Message: provisional}
	s.setStatus(key, status)

	go s.run(context.WithoutCancel(ctx), kind, key, provisional, call)

	return status
}

// Advertisers возвращает страницу рекламодателей, при наличии кэша - из кэша
func (s *SyncService) Advertisers(ctx context.Context, query string, page, size int) (*models.AdvertiserPage, error) {
	if size <= 0 {
		size = 20
	}

	cacheKey := fmt.Sprintf("%s%s:%d:%d", advertiserCachePrefix, query, page, size)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var result models.AdvertiserPage
			if err := json.Unmarshal(cached, &result); err == nil {
				return &result, nil
			}
		} else if err != apperrors.ErrCacheMiss {
			s.logger.WarnWithContext(ctx, "Ошибка чтения кэша рекламодателей",
				interfaces.LogField{Key: "error", Value: err.Error()},
			)
		}
	}

	result, err := s.api.ListAdvertisers(ctx, query, page, size)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL); err != nil {
				s.logger.WarnWithContext(ctx, "Ошибка записи кэша рекламодателей",
					interfaces.LogField{Key: "error", Value: err.Error()},
				)
			}
		}
	}

	return result, nil
}

// invalidateAdvertisers сбрасывает кэшированные страницы рекламодателей
func (s *SyncService) invalidateAdvertisers(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, advertiserCachePrefix+"*"); err != nil {
		s.logger.WarnWithContext(ctx, "Ошибка сброса кэша рекламодателей",
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

// saveHistory записывает завершенный запуск в журнал истории
func (s *SyncService) saveHistory(ctx context.Context, kind models.JobKind, key string, success bool, message string, startedAt time.Time) {
	if s.history == nil {
		return
	}

	record := &models.JobRecord{
		ID:        uuid.New().String(),
		Kind:      kind,
		Key:       key,
		Success:   success,
		Message:   message,
		StartedAt: startedAt,
		SettledAt: time.Now().UTC(),
	}

	if err := s.history.SaveJobRecord(ctx, record); err != nil {
		s.logger.ErrorWithContext(ctx, "Ошибка записи журнала операций",
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
	}
}

// errorMessage возвращает человекочитаемое сообщение ошибки:
// для ошибок API - извлеченное из ответа сообщение, иначе текст ошибки
func errorMessage(err error) string {
	if apiErr, ok := err.(*apiclient.APIError); ok {
		return apiErr.Message
	}
	return err.Error()
}
