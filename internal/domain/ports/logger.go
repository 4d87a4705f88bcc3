package ports

// Logger - printf-логгер, через который сервисы пишут ход настройки ретранслятора.
// В cmd/repeatercfg реализуется поверх zap (infrastructure/logger) с полем run_id,
// в тестах подставляется logger.NewNop().
type Logger interface {
	// Debug - команды, эхо и ответы устройства (секреты скрыты)
	Debug(msg string, args ...interface{})

	Info(msg string, args ...interface{})

	// Warn - неудачный прогон, после которого устройство могло остаться частично настроенным
	Warn(msg string, args ...interface{})

	Error(msg string, args ...interface{})

	// Fatal пишет сообщение и завершает процесс
	Fatal(msg string, args ...interface{})

	// Printf пишет на уровне Info
	Printf(format string, args ...interface{})
}
