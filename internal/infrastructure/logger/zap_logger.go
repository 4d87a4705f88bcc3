package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"meshrepeater/internal/domain/ports"
)

// ZapLogger реализует интерфейс ports.Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// NewZapLogger создает логгер с заданным уровнем (debug, info, warn, error).
// Дополнительные поля (например, run_id) добавляются к каждой записи.
func NewZapLogger(level string, fields ...zap.Field) (*ZapLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", level, err)
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.DisableStacktrace = true

	l, err := config.Build(zap.Fields(fields...))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}
	return &ZapLogger{logger: l.Sugar()}, nil
}

// NewFromZap оборачивает готовый zap.Logger (используется в тестах с zaptest/observer).
func NewFromZap(l *zap.Logger) ports.Logger {
	return &ZapLogger{logger: l.Sugar()}
}

// NewNop возвращает логгер, который ничего не пишет.
func NewNop() ports.Logger {
	return &ZapLogger{logger: zap.NewNop().Sugar()}
}

// Debug выводит отладочную информацию.
func (l *ZapLogger) Debug(msg string, args ...interface{}) {
	l.logger.Debugf(msg, args...)
}

// Info выводит информационные сообщения.
func (l *ZapLogger) Info(msg string, args ...interface{}) {
	l.logger.Infof(msg, args...)
}

// Warn выводит предупреждения.
func (l *ZapLogger) Warn(msg string, args ...interface{}) {
	l.logger.Warnf(msg, args...)
}

// Error выводит ошибки.
func (l *ZapLogger) Error(msg string, args ...interface{}) {
	l.logger.Errorf(msg, args...)
}

// Fatal выводит критические ошибки и завершает программу.
func (l *ZapLogger) Fatal(msg string, args ...interface{}) {
	l.logger.Fatalf(msg, args...)
}

// Printf форматированный вывод (для совместимости).
func (l *ZapLogger) Printf(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// Sync сбрасывает буферы логгера.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
