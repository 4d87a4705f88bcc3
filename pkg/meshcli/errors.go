package meshcli

import (
	"errors"
	"fmt"
)

var (
	ErrNotConnected          = errors.New("meshcli: transport is not connected")
	ErrEmptyCommand          = errors.New("meshcli: empty command")
	ErrUnknownConnectionType = errors.New("meshcli: unknown connection type")
)

// OpenError - не удалось открыть порт или подключиться к мосту.
type OpenError struct {
	Target string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("meshcli: ошибка открытия %s: %v", e.Target, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// WriteError - не удалось передать строку команды.
type WriteError struct {
	Command string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("meshcli: ошибка отправки %q: %v", Redact(e.Command), e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
