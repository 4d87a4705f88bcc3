package meshcli

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lineTerminator завершает команду в консоли ретранслятора.
const lineTerminator = '\r'

// EncodeLine готовит команду к передаче: NFC-нормализация, удаление управляющих
// символов (перевод строки внутри значения разбил бы команду на две) и терминатор строки.
func EncodeLine(cmd string) ([]byte, error) {
	// transform.Chain хранит состояние, поэтому создается на каждый вызов
	sanitizer := transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))

	clean, _, err := transform.String(sanitizer, cmd)
	if err != nil {
		return nil, fmt.Errorf("meshcli: ошибка кодирования команды: %w", err)
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, ErrEmptyCommand
	}

	line := make([]byte, 0, len(clean)+1)
	line = append(line, clean...)
	return append(line, lineTerminator), nil
}
