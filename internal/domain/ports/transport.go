package ports

import "context"

// LineSender отправляет одну текстовую команду устройству.
type LineSender interface {
	SendLine(ctx context.Context, cmd string) error
}

// Connection - транспорт с явным жизненным циклом: открыть, использовать, закрыть.
type Connection interface {
	LineSender

	// Connect устанавливает соединение с устройством
	Connect() error

	// Close разрывает соединение. Повторный вызов безопасен.
	Close() error
}
