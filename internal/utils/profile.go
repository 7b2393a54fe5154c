package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/storage"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"

	// hintDark значение заголовка Sec-CH-Prefers-Color-Scheme для темной темы
	hintDark = "dark"
)

// TrackPageView увеличивает счетчик посещений профиля
func TrackPageView(ctx context.Context, store storage.Storager, profileID uuid.UUID) (int64, error) {
	views, err := store.Incr(ctx, profileID, storage.KeyPageViews)
	if err != nil {
		return 0, fmt.Errorf("учет посещения. %w", err)
	}
	return views, nil
}

// RememberInput сохраняет последнюю введенную ссылку и время создания ссылок
func RememberInput(ctx context.Context, store storage.Storager, profileID uuid.UUID, input string, generated time.Time) error {
	if input != "" {
		if err := store.Set(ctx, profileID, storage.KeyLastInput, input); err != nil {
			return fmt.Errorf("сохранение последней ссылки. %w", err)
		}
	}
	if err := store.Set(ctx, profileID, storage.KeyLastGenerated, generated.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("сохранение времени создания ссылок. %w", err)
	}
	return nil
}

// LastInput последняя введенная ссылка или пустая строка
func LastInput(ctx context.Context, store storage.Storager, profileID uuid.UUID) (string, error) {
	value, err := store.Get(ctx, profileID, storage.KeyLastInput)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("получение последней ссылки. %w", err)
	}
	return value, nil
}

// Theme сохраненная тема профиля. Если ничего не сохранено, тема выбирается по подсказке клиента hint
func Theme(ctx context.Context, store storage.Storager, profileID uuid.UUID, hint string) (string, error) {
	value, err := store.Get(ctx, profileID, storage.KeyTheme)
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return "", fmt.Errorf("получение темы. %w", err)
	}
	if value == ThemeDark || value == ThemeLight {
		return value, nil
	}
	if hint == hintDark {
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

// ToggleTheme переключает тему профиля и возвращает новую
func ToggleTheme(ctx context.Context, store storage.Storager, profileID uuid.UUID, hint string) (string, error) {
	current, err := Theme(ctx, store, profileID, hint)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err = store.Set(ctx, profileID, storage.KeyTheme, next); err != nil {
		return "", fmt.Errorf("сохранение темы. %w", err)
	}
	return next, nil
}

// ThemeNotification уведомление о смене темы
func ThemeNotification(theme string) model.Notification {
	name := "светлую"
	if theme == ThemeDark {
		name = "темную"
	}
	return model.Notification{
		Message:  fmt.Sprintf("Тема изменена на %s", name),
		Severity: model.SeverityInfo,
	}
}

// Welcome возвращает true только для первого посещения профиля и отмечает, что приветствие показано
func Welcome(ctx context.Context, store storage.Storager, profileID uuid.UUID) (bool, error) {
	_, err := store.Get(ctx, profileID, storage.KeySeenWelcome)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrKeyNotFound) {
		return false, fmt.Errorf("проверка приветствия. %w", err)
	}
	if err = store.Set(ctx, profileID, storage.KeySeenWelcome, strconv.FormatBool(true)); err != nil {
		return false, fmt.Errorf("сохранение приветствия. %w", err)
	}
	return true, nil
}
