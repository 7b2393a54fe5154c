// Package probe проверяет, что по ссылке отдается изображение.
// Тело ответа не читается, смотрятся только статус и тип содержимого
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRate      = 5
	maxRedirects     = 5
	imageContentType = "image/"
)

var (
	ErrUnreachable = errors.New("изображение недоступно")
)

// Prober проверка доступности изображения по ссылке
type Prober interface {
	Check(ctx context.Context, url string) error
}

// Checker проверка через http запрос
type Checker struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

type CheckerParam func(c *Checker)

// CheckerTimeout время ожидания одного запроса
func CheckerTimeout(timeout time.Duration) CheckerParam {
	return func(c *Checker) {
		if timeout > 0 {
			c.client.SetTimeout(timeout)
		}
	}
}

// CheckerRate количество запросов в секунду ко всем адресам
func CheckerRate(perSecond float64) CheckerParam {
	return func(c *Checker) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// CheckerLogger логгер для отладки
func CheckerLogger(logger *slog.Logger) CheckerParam {
	return func(c *Checker) {
		c.logger = logger
	}
}

func NewChecker(params ...CheckerParam) *Checker {
	c := &Checker{
		client: resty.New().
			SetTimeout(defaultTimeout).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
			SetHeader("Accept", "image/*"),
		limiter: rate.NewLimiter(defaultRate, 1),
		logger:  slog.Default(),
	}
	for _, p := range params {
		p(c)
	}
	return c
}

// Check возвращает nil, если по ссылке url отдается изображение, иначе ошибку, обернутую в ErrUnreachable.
// Ошибка отмены контекста возвращается как есть, истечение срока ctx считается недоступностью
func (c *Checker) Check(ctx context.Context, url string) error {
	// ожидание очереди ограничено контекстом вызывающего
	if err := c.limiter.Wait(ctx); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return fmt.Errorf("%w. очередь проверок. %v", ErrUnreachable, err)
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return ctx.Err()
		}
		return fmt.Errorf("%w. запрос \"%s\". %v", ErrUnreachable, url, err)
	}
	if body := resp.RawBody(); body != nil {
		defer body.Close()
	}

	contentType := resp.Header().Get("Content-Type")
	c.logger.Debug(
		"проверка доступности",
		slog.String("url", url),
		slog.Int("статус", resp.StatusCode()),
		slog.String("тип", contentType),
	)
	if !resp.IsSuccess() {
		return fmt.Errorf("%w. статус ответа %d", ErrUnreachable, resp.StatusCode())
	}
	if !strings.HasPrefix(strings.ToLower(contentType), imageContentType) {
		return fmt.Errorf("%w. тип содержимого \"%s\"", ErrUnreachable, contentType)
	}
	return nil
}
