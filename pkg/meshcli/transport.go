package meshcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ConnectionType - способ подключения к консоли ретранслятора.
type ConnectionType string

const (
	ConnectionSerial ConnectionType = "serial"
	ConnectionTCP    ConnectionType = "tcp"
)

const replyBufSize = 256

// Config определяет параметры для подключения к ретранслятору.
type Config struct {
	ConnectionType ConnectionType   `json:"connectionType"`
	PortName       string           `json:"portName,omitempty"`    // Serial port name
	BaudRate       int              `json:"baudRate,omitempty"`    // Serial speed
	Address        string           `json:"address,omitempty"`     // TCP host:port
	Timeout        int              `json:"timeout,omitempty"`     // Dial timeout, ms
	ReplyWindow    int              `json:"replyWindow,omitempty"` // Reply drain window, ms
	Logger         func(msg string) `json:"-"`
}

// readDeadliner - сетевое соединение, у которого можно ограничить время чтения.
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type openFunc func(cfg Config) (io.ReadWriteCloser, error)

// Transport инкапсулирует логику работы с соединением (Serial или TCP)
type Transport struct {
	config Config
	open   openFunc
	mu     sync.Mutex
	port   io.ReadWriteCloser
}

// NewTransport создаёт новый транспортный слой с заданными конфигурациями
func NewTransport(config Config) *Transport {
	return newTransport(config, openPort)
}

func newTransport(config Config, open openFunc) *Transport {
	if config.ConnectionType == "" {
		config.ConnectionType = ConnectionSerial
	}
	if config.Timeout == 0 {
		config.Timeout = 3000
	}
	if config.BaudRate == 0 {
		config.BaudRate = 115200
	}
	if config.ReplyWindow == 0 {
		config.ReplyWindow = 250
	}
	return &Transport{config: config, open: open}
}

// Target возвращает имя порта или адрес моста.
func (t *Transport) Target() string {
	if t.config.ConnectionType == ConnectionTCP {
		return t.config.Address
	}
	return t.config.PortName
}

// Connect устанавливает соединение с устройством
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}
	port, err := t.open(t.config)
	if err != nil {
		return &OpenError{Target: t.Target(), Err: err}
	}
	t.port = port
	t.logf("Подключено к %s", t.Target())
	return nil
}

// Close разрывает соединение с устройством. Повторный вызов ничего не делает.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	if err != nil {
		return fmt.Errorf("meshcli: ошибка закрытия %s: %w", t.Target(), err)
	}
	return nil
}

// SendLine отправляет одну команду и вычитывает эхо/ответ устройства для лога.
// Ошибкой считается только сбой записи: ответ не разбирается.
func (t *Transport) SendLine(ctx context.Context, cmd string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	line, err := EncodeLine(cmd)
	if err != nil {
		return &WriteError{Command: cmd, Err: err}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return &WriteError{Command: cmd, Err: ErrNotConnected}
	}

	t.logf(">> TX: %s", Redact(cmd))
	if _, err := t.port.Write(line); err != nil {
		return &WriteError{Command: cmd, Err: err}
	}

	if reply := t.drainReply(); reply != "" {
		t.logf("<< RX: %s", Redact(reply))
	}
	return nil
}

// drainReply читает то, что устройство успело ответить за окно ReplyWindow
// (должен вызываться только под мьютексом).
func (t *Transport) drainReply() string {
	window := time.Duration(t.config.ReplyWindow) * time.Millisecond
	if nc, ok := t.port.(readDeadliner); ok {
		_ = nc.SetReadDeadline(time.Now().Add(window))
	}

	var sb strings.Builder
	buf := make([]byte, replyBufSize)
	deadline := time.Now().Add(window)
	for time.Now().Before(deadline) {
		n, err := t.port.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
		}
		if err != nil {
			var ne net.Error
			if !errors.As(err, &ne) || !ne.Timeout() {
				t.logf("Ошибка чтения ответа: %v", err)
			}
			break
		}
		// go.bug.st/serial возвращает 0, nil по таймауту чтения
		if n == 0 {
			break
		}
	}
	return strings.TrimSpace(sb.String())
}

func (t *Transport) logf(format string, args ...interface{}) {
	if t.config.Logger != nil {
		t.config.Logger(fmt.Sprintf(format, args...))
	}
}

// openPort открывает реальное соединение согласно типу подключения.
func openPort(cfg Config) (io.ReadWriteCloser, error) {
	switch cfg.ConnectionType {
	case ConnectionSerial:
		mode := &serial.Mode{
			BaudRate: cfg.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		}
		port, err := serial.Open(cfg.PortName, mode)
		if err != nil {
			return nil, err
		}
		if err := port.SetReadTimeout(time.Duration(cfg.ReplyWindow) * time.Millisecond); err != nil {
			port.Close()
			return nil, err
		}
		return port, nil

	case ConnectionTCP:
		conn, err := net.DialTimeout("tcp", cfg.Address, time.Duration(cfg.Timeout)*time.Millisecond)
		if err != nil {
			return nil, err
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnectionType, cfg.ConnectionType)
	}
}
