// Package app http сервер: страницы приложения, api для построения ссылок и состояние профиля
package app

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kTowkA/driveproxy/internal/config"
	"github.com/kTowkA/driveproxy/internal/controller"
	"github.com/kTowkA/driveproxy/internal/probe"
	"github.com/kTowkA/driveproxy/internal/storage"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
)

type Server struct {
	db     storage.Storager
	prober probe.Prober
	ctrl   *controller.Controller
	Config config.Config
	logger *slog.Logger
	server *http.Server
	pages  *template.Template
	static fs.FS
}

// NewServer создает сервер. Хранилище передается при запуске в Run
func NewServer(cfg config.Config, log *slog.Logger) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("создание сервера. %w", err)
	}
	static, err := staticFiles()
	if err != nil {
		return nil, fmt.Errorf("создание сервера. %w", err)
	}
	return &Server{
		Config: cfg,
		logger: log,
		prober: probe.NewChecker(
			probe.CheckerTimeout(cfg.ProbeTimeout()),
			probe.CheckerRate(cfg.ProbeRate()),
			probe.CheckerLogger(log),
		),
		server: &http.Server{
			Addr:              cfg.Address(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		pages:  pages,
		static: static,
	}, nil
}

// Run запуск сервера с хранилищем db. Сервер останавливается при отмене ctx
func (s *Server) Run(ctx context.Context, db storage.Storager) error {
	if db == nil {
		return errors.New("запуск сервера. не передано хранилище")
	}
	s.db = db
	s.setRoute()
	defer s.ctrl.Close()

	gr, grCtx := errgroup.WithContext(ctx)
	gr.Go(func() error {
		<-grCtx.Done()
		defer s.logger.Info("остановили сервер")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	gr.Go(func() error {
		s.logger.Info("запуск сервера", slog.String("адрес", s.Config.Address()))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("запуск сервера. %w", err)
		}
		return nil
	})
	return gr.Wait()
}

// setRoute создает контроллер поверх текущего хранилища и устанавливает роутер
func (s *Server) setRoute() {
	s.ctrl = controller.New(s.db, s.prober, s.logger, controller.WithProbeTimeout(s.Config.ProbeTimeout()))

	mux := chi.NewRouter()
	mux.Use(s.withLog, withSecurityHeaders, withGZIP, s.withToken)

	mux.Get("/", s.index)
	mux.Get("/index.html", s.index)
	mux.Post("/", s.encodeLink)
	mux.Get("/viewer.html", s.viewer)
	mux.Get("/i/{id}", s.redirectImage)
	mux.Get("/ping", s.ping)

	mux.Route("/api", func(r chi.Router) {
		r.Route("/links", func(r chi.Router) {
			r.Post("/", s.apiLinks)
			r.Get("/", s.apiCurrent)
		})
		r.Post("/theme", s.apiTheme)
		r.Get("/stats", s.apiStats)
		r.Get("/export", s.apiExport)
		r.Delete("/state", s.apiReset)
	})

	mux.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.static))))

	s.server.Handler = mux
}
