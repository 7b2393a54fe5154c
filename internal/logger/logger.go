// Package logger логер приложения: api log/slog поверх zap
package logger

import (
	"fmt"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Log логер типа slog с бэкендом zap. Close сбрасывает буферы zap
type Log struct {
	*slog.Logger
	zl *zap.Logger
}

// ParseLevel уровень логирования по строке из конфигурации. Неизвестное значение - info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zap.ErrorLevel
	case level >= slog.LevelWarn:
		return zap.WarnLevel
	case level >= slog.LevelInfo:
		return zap.InfoLevel
	default:
		return zap.DebugLevel
	}
}

// NewLogger создает json логер с уровнем level. outputs пути для записи (по умолчанию stdout)
func NewLogger(level slog.Level, outputs ...string) (*Log, error) {
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zapLevel(level))
	zc.OutputPaths = outputs
	zc.Encoding = "json"
	zc.EncoderConfig.TimeKey = "time"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("создание логера. %w", err)
	}
	return &Log{
		Logger: slog.New(zapslog.NewHandler(zl.Core(), zapslog.WithName("driveproxy"))),
		zl:     zl,
	}, nil
}

// Close сброс буферов. Ошибку Sync для stdout на unix не проверяем
func (l *Log) Close() {
	_ = l.zl.Sync()
}
