package meshcli

import (
	"fmt"
	"regexp"
	"strconv"
)

// Erase стирает файловую систему ретранслятора (ключи, имя, регионы).
// Всегда первая команда последовательности: дальнейшие настройки пишутся с чистого листа.
const Erase = "erase"

// RegionSave сохраняет таблицу регионов во флеш.
const RegionSave = "region save"

const (
	prefixPrivateKey    = "set prv.key "
	prefixGuestPassword = "set guest.pwd "
)

// SetPrivateKey задает приватный ключ узла (hex).
func SetPrivateKey(key string) string {
	return prefixPrivateKey + key
}

// SetName задает имя узла, видимое в сети.
func SetName(name string) string {
	return "set name " + name
}

// SetOwner задает информацию о владельце.
func SetOwner(info string) string {
	return "set owner " + info
}

// RegionPut добавляет регион в таблицу регионов.
func RegionPut(region string) string {
	return "region put " + region
}

// RegionHome задает домашний регион.
func RegionHome(region string) string {
	return "region home " + region
}

// SetTxDelay задает множитель задержки ретрансляции flood-пакетов.
func SetTxDelay(v float64) string {
	return "set txdelay " + formatFloat(v)
}

// SetDirectTxDelay задает множитель задержки ретрансляции direct-пакетов.
func SetDirectTxDelay(v float64) string {
	return "set direct.txdelay " + formatFloat(v)
}

// SetRxDelay задает базу задержки приема.
func SetRxDelay(v float64) string {
	return "set rxdelay " + formatFloat(v)
}

// SetAdvertInterval задает интервал локальных объявлений (минуты).
func SetAdvertInterval(minutes int) string {
	return fmt.Sprintf("set advert.interval %d", minutes)
}

// SetFloodAdvertInterval задает интервал flood-объявлений (часы).
func SetFloodAdvertInterval(hours int) string {
	return fmt.Sprintf("set flood.advert.interval %d", hours)
}

// SetGuestPassword задает гостевой пароль.
func SetGuestPassword(pwd string) string {
	return prefixGuestPassword + pwd
}

// secretValue находит значение ключа или пароля в любой строке текста, включая эхо в ответе устройства.
var secretValue = regexp.MustCompile(`(set (?:prv\.key|guest\.pwd) )[^\r\n]+`)

// Redact скрывает секреты (ключ, пароль) в команде или ответе устройства для логов и вывода плана.
func Redact(text string) string {
	return secretValue.ReplaceAllString(text, "${1}****")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
