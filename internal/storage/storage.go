package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrKeyNotFound = errors.New("значение не найдено")
)

// ключи, которые хранятся для профиля
const (
	KeyLastInput     = "lastDriveUrl"
	KeyTheme         = "theme"
	KeyPageViews     = "pageViews"
	KeyLastGenerated = "lastGeneratedTime"
	KeySeenWelcome   = "hasSeenWelcome"
)

// Storager хранилище ключ-значение с разделением по профилям.
// Профиль создается при первой записи, чтение отсутствующего профиля не является ошибкой хранилища
type Storager interface {
	// Get значение ключа key профиля profileID. Если значения нет, возвращается ErrKeyNotFound
	Get(ctx context.Context, profileID uuid.UUID, key string) (string, error)

	// Set сохраняет значение value ключа key профиля profileID
	Set(ctx context.Context, profileID uuid.UUID, key, value string) error

	// Incr увеличивает счетчик key на единицу и возвращает новое значение. Отсутствующий счетчик считается нулем
	Incr(ctx context.Context, profileID uuid.UUID, key string) (int64, error)

	// Values все значения профиля profileID
	Values(ctx context.Context, profileID uuid.UUID) (map[string]string, error)

	// Clear удаляет все значения профиля profileID
	Clear(ctx context.Context, profileID uuid.UUID) error

	// Ping проверка доступности хранилища
	Ping(ctx context.Context) error

	// Close закрытие хранилища
	Close() error
}
