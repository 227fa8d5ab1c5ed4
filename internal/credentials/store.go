package credentials

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/athebyme/gomarket-platform/admin-console/pkg/errors"
	"github.com/athebyme/gomarket-platform/admin-console/pkg/interfaces"
)

// Ключи хранения пары токенов. Сроки жизни повторяют cookie оригинальной
// консоли: access - 7 дней, refresh - 30 дней.
const (
	accessTokenKey  = "auth:access_token"
	refreshTokenKey = "auth:refresh_token"
)

// CacheStore хранит пару токенов в общем кэше (Redis), поэтому все экземпляры
// консоли видят одну и ту же сессию. Запись пары выполняется как единая
// операция: сначала refresh, затем access, чтобы наблюдатель не увидел
// новый access со старым refresh.
type CacheStore struct {
	cache           interfaces.CachePort
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewCacheStore создает хранилище учетных данных поверх CachePort
func NewCacheStore(cache interfaces.CachePort, accessTTL, refreshTTL time.Duration) *CacheStore {
	if accessTTL == 0 {
		accessTTL = 7 * 24 * time.Hour
	}
	if refreshTTL == 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &CacheStore{
		cache:           cache,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}
}

// Get возвращает текущую пару токенов
// Отсутствие одного из токенов не является ошибкой: access мог истечь
// раньше refresh. ErrNoCredentials возвращается, когда нет обоих.
func (s *CacheStore) Get(ctx context.Context) (*interfaces.TokenPair, error) {
	pair := &interfaces.TokenPair{}

	access, err := s.cache.Get(ctx, accessTokenKey)
	if err != nil && err != apperrors.ErrCacheMiss {
		return nil, err
	}
	pair.AccessToken = string(access)

	refresh, err := s.cache.Get(ctx, refreshTokenKey)
	if err != nil && err != apperrors.ErrCacheMiss {
		return nil, err
	}
	pair.RefreshToken = string(refresh)

	if pair.AccessToken == "" && pair.RefreshToken == "" {
		return nil, apperrors.ErrNoCredentials
	}

	return pair, nil
}

// Set атомарно заменяет сохраненную пару токенов
func (s *CacheStore) Set(ctx context.Context, pair *interfaces.TokenPair) error {
	if err := s.cache.Set(ctx, refreshTokenKey, []byte(pair.RefreshToken), s.refreshTokenTTL); err != nil {
		return err
	}
	return s.cache.Set(ctx, accessTokenKey, []byte(pair.AccessToken), s.accessTokenTTL)
}

// Clear удаляет сохраненную пару токенов
func (s *CacheStore) Clear(ctx context.Context) error {
	if err := s.cache.Delete(ctx, accessTokenKey); err != nil {
		return err
	}
	return s.cache.Delete(ctx, refreshTokenKey)
}

// MemoryStore хранит пару токенов в памяти процесса.
// Используется в тестах и при запуске консоли без Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	pair *interfaces.TokenPair
}

// NewMemoryStore создает хранилище учетных данных в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (*interfaces.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.pair == nil {
		return nil, apperrors.ErrNoCredentials
	}

	// Копия, чтобы вызывающий не мог изменить хранимую пару
	pair := *s.pair
	return &pair, nil
}

func (s *MemoryStore) Set(ctx context.Context, pair *interfaces.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *pair
	s.pair = &p
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair = nil
	return nil
}
