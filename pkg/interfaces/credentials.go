package interfaces

import "context"

// TokenPair представляет пару токенов доступа
// Оба токена - непрозрачные bearer-строки, срок действия определяет сервер
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CredentialPort определяет интерфейс хранилища учетных данных
// Пара токенов - глобальное разделяемое состояние: читать может любой компонент,
// запись выполняют только login/logout и путь обновления токена
type CredentialPort interface {
	// Get возвращает текущую пару токенов
	// Возвращает errors.ErrNoCredentials, если пара не сохранена
	Get(ctx context.Context) (*TokenPair, error)

	// Set атомарно заменяет сохраненную пару токенов
	Set(ctx context.Context, pair *TokenPair) error

	// Clear удаляет сохраненную пару токенов
	Clear(ctx context.Context) error
}
