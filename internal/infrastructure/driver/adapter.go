package driver

import (
	"meshrepeater/internal/domain/models"
	"meshrepeater/internal/domain/ports"
	"meshrepeater/pkg/meshcli"
)

// NewMeshcliConnection создает транспорт meshcli по профилю подключения.
// Обмен с устройством пишется в лог на уровне debug.
func NewMeshcliConnection(p models.ConnectionProfile, log ports.Logger) ports.Connection {
	return meshcli.NewTransport(ToMeshcliConfig(p, log))
}

// ToMeshcliConfig переводит доменный профиль в конфигурацию транспорта.
func ToMeshcliConfig(p models.ConnectionProfile, log ports.Logger) meshcli.Config {
	cfg := meshcli.Config{
		ConnectionType: meshcli.ConnectionSerial,
		PortName:       p.PortName,
		BaudRate:       p.BaudRate,
		Address:        p.Address,
		Timeout:        p.TimeoutMs,
	}
	if p.Type == models.ConnectionTCP {
		cfg.ConnectionType = meshcli.ConnectionTCP
	}
	if log != nil {
		cfg.Logger = func(msg string) {
			log.Debug("%s", msg)
		}
	}
	return cfg
}
