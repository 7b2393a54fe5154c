package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kTowkA/driveproxy/internal/storage"
)

type PStorage struct {
	*pgxpool.Pool
}

func NewStorage(ctx context.Context, dsn string) (*PStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("создание клиента postgres. %w", err)
	}
	return &PStorage{pool}, nil
}

// реализация интерфейса Storager
func (p *PStorage) Get(ctx context.Context, profileID uuid.UUID, key string) (string, error) {
	var value string
	err := p.QueryRow(ctx, "SELECT value FROM profile_values WHERE profile_id=$1 AND key=$2", profileID, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", storage.ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("получение значения \"%s\". %w", key, err)
	}
	return value, nil
}

func (p *PStorage) Set(ctx context.Context, profileID uuid.UUID, key, value string) error {
	_, err := p.Exec(
		ctx,
		`INSERT INTO profile_values(profile_id, key, value) VALUES($1, $2, $3)
		ON CONFLICT (profile_id, key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()`,
		profileID,
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("сохранение значения \"%s\". %w", key, err)
	}
	return nil
}

func (p *PStorage) Incr(ctx context.Context, profileID uuid.UUID, key string) (int64, error) {
	var value int64
	err := p.QueryRow(
		ctx,
		`INSERT INTO profile_values(profile_id, key, value) VALUES($1, $2, '1')
		ON CONFLICT (profile_id, key) DO UPDATE SET value=(profile_values.value::bigint + 1)::text, updated_at=now()
		RETURNING value::bigint`,
		profileID,
		key,
	).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("увеличение счетчика \"%s\". %w", key, err)
	}
	return value, nil
}

func (p *PStorage) Values(ctx context.Context, profileID uuid.UUID) (map[string]string, error) {
	rows, err := p.Query(ctx, "SELECT key, value FROM profile_values WHERE profile_id=$1", profileID)
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

func (p *PStorage) Clear(ctx context.Context, profileID uuid.UUID) error {
	_, err := p.Exec(ctx, "DELETE FROM profile_values WHERE profile_id=$1", profileID)
	if err != nil {
		return fmt.Errorf("удаление значений профиля. %w", err)
	}
	return nil
}

func (p *PStorage) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *PStorage) Close() error {
	p.Pool.Close()
	return nil
}
