// Package controller хранит последний результат обработки ссылки для каждого профиля и запускает проверку доступности изображения.
//
// Результат заменяется целиком при каждой новой обработке. Проверка предыдущего результата отменяется,
// а ее запоздавший ответ отбрасывается по номеру поколения.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kTowkA/driveproxy/internal/drive"
	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/kTowkA/driveproxy/internal/probe"
	"github.com/kTowkA/driveproxy/internal/storage"
	"github.com/kTowkA/driveproxy/internal/utils"
)

const (
	defaultProbeTimeout = 15 * time.Second
	defaultSessionTTL   = 30 * time.Minute
)

type session struct {
	result model.Result
	cancel context.CancelFunc
	// seen время последнего обращения к результату
	seen time.Time
}

type Controller struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID]*session
	generation uint64

	db     storage.Storager
	prober probe.Prober
	logger *slog.Logger
	now    func() time.Time

	probeTimeout time.Duration
	sessionTTL   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(c *Controller)

// WithProbeTimeout ограничение всей проверки, включая ожидание в очереди запросов
func WithProbeTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		if timeout > 0 {
			c.probeTimeout = timeout
		}
	}
}

// WithSessionTTL через сколько после последнего обращения результат профиля удаляется
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.sessionTTL = ttl
		}
	}
}

// New создает контроллер. Проверки и очистка устаревших результатов живут, пока не вызван Close
func New(db storage.Storager, prober probe.Prober, logger *slog.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sessions:     make(map[uuid.UUID]*session),
		db:           db,
		prober:       prober,
		logger:       logger,
		now:          time.Now,
		probeTimeout: defaultProbeTimeout,
		sessionTTL:   defaultSessionTTL,
		ctx:          ctx,
		cancel:       cancel,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.janitor()
	return c
}

// Submit обрабатывает введенную пользователем ссылку raw. pageURL адрес страницы, с которой пришел запрос
func (c *Controller) Submit(ctx context.Context, profileID uuid.UUID, raw, pageURL string) (model.Result, error) {
	links, err := drive.Resolve(raw, pageURL)
	if err != nil {
		return model.Result{}, err
	}
	return c.replace(ctx, profileID, raw, links)
}

// Open обрабатывает идентификатор id, пришедший напрямую (например, параметром запроса)
func (c *Controller) Open(ctx context.Context, profileID uuid.UUID, id, pageURL string) (model.Result, error) {
	links, err := drive.Generate(id, pageURL)
	if err != nil {
		return model.Result{}, err
	}
	return c.replace(ctx, profileID, drive.ViewURL(id), links)
}

// Current последний результат профиля
func (c *Controller) Current(profileID uuid.UUID) (model.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[profileID]
	if !ok {
		return model.Result{}, false
	}
	s.seen = c.now()
	return s.result, true
}

// Forget удаляет результат профиля и отменяет его проверку
func (c *Controller) Forget(profileID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[profileID]; ok {
		s.cancel()
		delete(c.sessions, profileID)
	}
}

// Close отменяет все проверки и дожидается их завершения
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Controller) replace(ctx context.Context, profileID uuid.UUID, input string, links model.Links) (model.Result, error) {
	now := c.now()
	if err := utils.RememberInput(ctx, c.db, profileID, input, now); err != nil {
		// потеря сохраненного ввода не мешает показать ссылки
		c.logger.Error("сохранение ввода", slog.String("профиль", profileID.String()), slog.String("ошибка", err.Error()))
	}

	probeCtx, cancel := context.WithTimeout(c.ctx, c.probeTimeout)

	c.mu.Lock()
	c.generation++
	result := model.Result{
		Generation: c.generation,
		Input:      input,
		Links:      links,
		Probe:      model.ProbePending,
		CreatedAt:  now,
	}
	if old, ok := c.sessions[profileID]; ok {
		old.cancel()
	}
	c.sessions[profileID] = &session{result: result, cancel: cancel, seen: now}
	c.wg.Add(1)
	c.mu.Unlock()

	go c.probe(probeCtx, cancel, profileID, result.Generation, links.Direct)
	return result, nil
}

func (c *Controller) probe(ctx context.Context, cancel context.CancelFunc, profileID uuid.UUID, generation uint64, url string) {
	defer c.wg.Done()
	defer cancel()

	status := model.ProbeAvailable
	err := c.prober.Check(ctx, url)
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.Canceled):
		c.logger.Debug("проверка отменена", slog.Uint64("поколение", generation))
		return
	default:
		// сюда же попадает истекшее время проверки
		status = model.ProbeUnavailable
		c.logger.Info("изображение недоступно", slog.String("url", url), slog.String("ошибка", err.Error()))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[profileID]
	if !ok || s.result.Generation != generation {
		c.logger.Debug("устаревший результат проверки", slog.Uint64("поколение", generation))
		return
	}
	s.result.Probe = status
}

// janitor периодически удаляет результаты, к которым давно не обращались
func (c *Controller) janitor() {
	defer c.wg.Done()

	ticker := time.NewTicker(sweepInterval(c.sessionTTL))
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.evict(c.now())
		}
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

// evict удаляет результаты, не запрошенные дольше sessionTTL к моменту now, и отменяет их проверки
func (c *Controller) evict(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for profileID, s := range c.sessions {
		if now.Sub(s.seen) <= c.sessionTTL {
			continue
		}
		s.cancel()
		delete(c.sessions, profileID)
		removed++
	}
	if removed > 0 {
		c.logger.Debug("удалены устаревшие результаты", slog.Int("количество", removed))
	}
	return removed
}

// Notification уведомление для пользователя по ошибке обработки ссылки
func Notification(err error) model.Notification {
	switch {
	case errors.Is(err, drive.ErrNotFound), errors.Is(err, drive.ErrInvalidIdentifier):
		return model.Notification{Message: "Неверный формат ссылки Google Drive", Severity: model.SeverityWarning}
	case errors.Is(err, probe.ErrUnreachable):
		return model.Notification{Message: "Ошибка загрузки изображения", Severity: model.SeverityError}
	default:
		return model.Notification{Message: fmt.Sprintf("Произошла ошибка в приложении: %v", err), Severity: model.SeverityError}
	}
}
