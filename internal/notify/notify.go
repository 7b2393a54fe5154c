// Package notify вывод уведомлений пользователю
package notify

import (
	"io"

	"github.com/kTowkA/driveproxy/internal/model"
	"github.com/sirupsen/logrus"
)

// Presenter показывает уведомление пользователю
type Presenter interface {
	Show(n model.Notification)
}

// LogPresenter выводит уведомления через logrus
type LogPresenter struct {
	log *logrus.Logger
}

// NewLogPresenter создает презентер, пишущий в out текстом без времени
func NewLogPresenter(out io.Writer) *LogPresenter {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableQuote:     true,
	})
	return &LogPresenter{log: l}
}

// WithLogger презентер поверх готового логера
func WithLogger(l *logrus.Logger) *LogPresenter {
	return &LogPresenter{log: l}
}

// Show выводит уведомление с уровнем по его важности
func (p *LogPresenter) Show(n model.Notification) {
	entry := p.log.WithField("severity", string(n.Severity))
	switch n.Severity {
	case model.SeverityError:
		entry.Error(n.Message)
	case model.SeverityWarning:
		entry.Warn(n.Message)
	default:
		entry.Info(n.Message)
	}
}
