package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kTowkA/driveproxy/internal/app"
	"github.com/kTowkA/driveproxy/internal/config"
	"github.com/kTowkA/driveproxy/internal/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg, err := config.ParseConfig(slog.Default(), args)
	if err != nil {
		return err
	}

	l, err := logger.NewLogger(logger.ParseLevel(cfg.LogLevel()))
	if err != nil {
		return err
	}
	defer l.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	db, err := newStorage(ctx, cfg, l.Logger)
	if err != nil {
		l.Error("создание хранилища", slog.String("ошибка", err.Error()))
		return err
	}
	defer db.Close()

	srv, err := app.NewServer(cfg, l.Logger)
	if err != nil {
		l.Error("создание сервера", slog.String("ошибка", err.Error()))
		return err
	}
	if err = srv.Run(ctx, db); err != nil {
		l.Error("работа сервера", slog.String("ошибка", err.Error()))
		return err
	}
	return nil
}
