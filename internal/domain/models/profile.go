package models

// ConnectionType определяет способ подключения к ретранслятору.
type ConnectionType string

const (
	ConnectionSerial ConnectionType = "serial" // USB/UART
	ConnectionTCP    ConnectionType = "tcp"    // сетевой мост к UART (ser2net и т.п.)
)

// ConnectionProfile представляет параметры подключения к ретранслятору
type ConnectionProfile struct {
	Type      ConnectionType // serial или tcp
	PortName  string         // Например "/dev/ttyUSB0"
	BaudRate  int            // Например 115200
	Address   string         // Например "192.168.1.50:4000"
	TimeoutMs int            // Таймаут установки TCP-соединения, мс (для serial не используется)
}

// Target возвращает человекочитаемое имя точки подключения.
func (p ConnectionProfile) Target() string {
	if p.Type == ConnectionTCP {
		return p.Address
	}
	return p.PortName
}
