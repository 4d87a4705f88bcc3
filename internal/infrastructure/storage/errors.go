package storage

import (
	"errors"
	"fmt"
)

// ErrInvalidSettings - общий признак ошибки валидации настроек.
// Все *FieldError разворачиваются в него через errors.Is.
var ErrInvalidSettings = errors.New("storage: invalid repeater settings")

// ParseError - содержимое файла не является корректным документом выбранного формата.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: ошибка разбора %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("storage: ошибка разбора %s (%s): %v", e.Path, e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError - документ разобран, но ключ отсутствует, лишний или имеет неверное значение.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("storage: некорректные настройки: %s", e.Reason)
	}
	return fmt.Sprintf("storage: поле %q: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidSettings }
