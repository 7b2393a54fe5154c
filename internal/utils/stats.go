package utils

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/storage"
)

const (
	AppName    = "Google Drive Image Proxy"
	AppVersion = "1.0.0"
)

// supportedFormats форматы изображений, которые ожидаем увидеть по ссылке
var supportedFormats = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}

// Stats статистика профиля. Некорректные значения в хранилище считаются отсутствующими
func Stats(ctx context.Context, store storage.Storager, profileID uuid.UUID) (model.Stats, error) {
	values, err := store.Values(ctx, profileID)
	if err != nil {
		return model.Stats{}, fmt.Errorf("получение статистики. %w", err)
	}
	return statsFromValues(values), nil
}

func statsFromValues(values map[string]string) model.Stats {
	stats := model.Stats{AppVersion: AppVersion}
	if views, err := strconv.ParseInt(values[storage.KeyPageViews], 10, 64); err == nil {
		stats.PageViews = views
	}
	if last, err := time.Parse(time.RFC3339Nano, values[storage.KeyLastGenerated]); err == nil {
		stats.LastGenerated = &last
	}
	return stats
}

// Export состояние профиля для выгрузки. current последний результат, если он есть
func Export(ctx context.Context, store storage.Storager, profileID uuid.UUID, current *model.Result, now time.Time) (model.ExportState, error) {
	values, err := store.Values(ctx, profileID)
	if err != nil {
		return model.ExportState{}, fmt.Errorf("выгрузка состояния. %w", err)
	}
	return model.ExportState{
		App: model.AppInfo{
			Name:            AppName,
			Version:         AppVersion,
			SupportedFormat: supportedFormats,
		},
		State:     values,
		Current:   current,
		Stats:     statsFromValues(values),
		Timestamp: now.UTC(),
	}, nil
}
