// Package migrations схема хранилища postgres. Файлы миграций встроены в бинарник
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var sqlFiles embed.FS

// MigrationsUP создание или обновление схемы. connString строка подключения postgres
func MigrationsUP(connString string) error {
	return apply(connString, "применение миграций", (*migrate.Migrate).Up)
}

// MigrationsDown удаление схемы вместе со всеми данными профилей
func MigrationsDown(connString string) error {
	return apply(connString, "откат миграций", (*migrate.Migrate).Down)
}

func apply(connString, op string, step func(*migrate.Migrate) error) error {
	src, err := iofs.New(sqlFiles, "migrations")
	if err != nil {
		return fmt.Errorf("%s. источник миграций. %w", op, err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, pgxConnString(connString))
	if err != nil {
		return fmt.Errorf("%s. экземпляр миграций. %w", op, err)
	}
	defer m.Close()

	if err = step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s. %w", op, err)
	}
	return nil
}

// pgxConnString драйвер migrate для pgx/v5 зарегистрирован под схемой pgx5
func pgxConnString(connString string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, scheme) {
			return "pgx5://" + strings.TrimPrefix(connString, scheme)
		}
	}
	return connString
}
