// Package sqlite хранилище профилей в файле базы данных sqlite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/storage"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS profile_values (
	profile_id TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (profile_id, key)
)`

type Storage struct {
	db *sql.DB
}

// NewStorage открывает (или создает) базу path и создает таблицу
func NewStorage(ctx context.Context, path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("открытие базы sqlite. %w", err)
	}
	// sqlite не любит конкурентную запись
	db.SetMaxOpenConns(1)
	if _, err = db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("создание таблицы sqlite. %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Get(ctx context.Context, profileID uuid.UUID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM profile_values WHERE profile_id=? AND key=?", profileID.String(), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("получение значения \"%s\". %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, profileID uuid.UUID, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO profile_values(profile_id, key, value) VALUES(?, ?, ?)
		ON CONFLICT (profile_id, key) DO UPDATE SET value=excluded.value, updated_at=CURRENT_TIMESTAMP`,
		profileID.String(),
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("сохранение значения \"%s\". %w", key, err)
	}
	return nil
}

func (s *Storage) Incr(ctx context.Context, profileID uuid.UUID, key string) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(
		ctx,
		`INSERT INTO profile_values(profile_id, key, value) VALUES(?, ?, '1')
		ON CONFLICT (profile_id, key) DO UPDATE SET value=CAST(CAST(value AS INTEGER) + 1 AS TEXT), updated_at=CURRENT_TIMESTAMP
		RETURNING CAST(value AS INTEGER)`,
		profileID.String(),
		key,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("увеличение счетчика \"%s\". %w", key, err)
	}
	return value, nil
}

func (s *Storage) Values(ctx context.Context, profileID uuid.UUID) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM profile_values WHERE profile_id=?", profileID.String())
	if err != nil {
		return nil, fmt.Errorf("получение значений профиля. %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err = rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("получение значений профиля. %w", err)
		}
		values[key] = value
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("получение значений профиля. %w", err)
	}
	return values, nil
}

func (s *Storage) Clear(ctx context.Context, profileID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM profile_values WHERE profile_id=?", profileID.String())
	if err != nil {
		return fmt.Errorf("удаление значений профиля. %w", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}
