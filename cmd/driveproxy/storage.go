package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kTowkA/driveproxy/internal/config"
	"github.com/kTowkA/driveproxy/internal/storage"
	"github.com/kTowkA/driveproxy/internal/storage/memory"
	"github.com/kTowkA/driveproxy/internal/storage/postgres"
	"github.com/kTowkA/driveproxy/internal/storage/postgres/migrations"
	"github.com/kTowkA/driveproxy/internal/storage/sqlite"
)

// newStorage выбор хранилища: postgres, если задан DSN, затем sqlite, иначе память с файлом
func newStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (storage.Storager, error) {
	switch {
	case cfg.DatabaseDSN() != "":
		if err := migrations.MigrationsUP(cfg.DatabaseDSN()); err != nil {
			return nil, fmt.Errorf("применение миграций. %w", err)
		}
		db, err := postgres.NewStorage(ctx, cfg.DatabaseDSN())
		if err != nil {
			return nil, err
		}
		log.Info("хранилище postgres")
		return db, nil
	case cfg.SQLitePath() != "":
		db, err := sqlite.NewStorage(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		log.Info("хранилище sqlite", slog.String("файл", cfg.SQLitePath()))
		return db, nil
	default:
		db, err := memory.NewStorage(cfg.FileStoragePath())
		if err != nil {
			return nil, err
		}
		log.Info("хранилище в памяти", slog.String("файл", cfg.FileStoragePath()))
		return db, nil
	}
}
