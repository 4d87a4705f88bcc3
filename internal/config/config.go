package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"meshrepeater/internal/domain/models"
)

// EnvPrefix - префикс переменных окружения (REPEATER_BAUDRATE, REPEATER_PORT, ...).
const EnvPrefix = "REPEATER"

const (
	DefaultPort         = "/dev/ttyUSB0"
	DefaultBaudRate     = 115200
	DefaultSettingsPath = "/config/settings.json" // том контейнера
	DefaultInterval     = time.Second
	DefaultTimeout      = 3 * time.Second
	DefaultLogLevel     = "info"
)

// Config - вся конфигурация запуска. Собирается в одном месте: значения по умолчанию,
// затем окружение, затем флаги командной строки.
type Config struct {
	Port           string        `mapstructure:"port"`
	BaudRate       int           `mapstructure:"baudrate"`
	SettingsPath   string        `mapstructure:"settings"`
	ConnectionType string        `mapstructure:"conn"`
	Address        string        `mapstructure:"address"`
	Interval       time.Duration `mapstructure:"interval"`
	Timeout        time.Duration `mapstructure:"timeout"`
	LogLevel       string        `mapstructure:"log-level"`
	DryRun         bool          `mapstructure:"dry-run"`
}

// RegisterFlags объявляет флаги командной строки.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("port", "p", DefaultPort, "последовательный порт ретранслятора")
	fs.IntP("baudrate", "b", DefaultBaudRate, "скорость порта")
	fs.StringP("settings", "s", DefaultSettingsPath, "файл настроек (.json, .yaml, .hcl)")
	fs.String("conn", string(models.ConnectionSerial), "тип подключения: serial или tcp")
	fs.String("address", "", "host:port TCP-моста к UART (для --conn tcp)")
	fs.Duration("interval", DefaultInterval, "пауза после каждой команды")
	fs.Duration("timeout", DefaultTimeout, "таймаут подключения")
	fs.String("log-level", DefaultLogLevel, "уровень логирования: debug, info, warn, error")
	fs.Bool("dry-run", false, "только вывести команды, не подключаясь к устройству")
}

// Load собирает Config. fs может быть nil, тогда учитываются только значения по умолчанию и окружение.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", DefaultPort)
	v.SetDefault("baudrate", DefaultBaudRate)
	v.SetDefault("settings", DefaultSettingsPath)
	v.SetDefault("conn", string(models.ConnectionSerial))
	v.SetDefault("address", "")
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("dry-run", false)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("ошибка привязки флагов: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	cfg.ConnectionType = strings.ToLower(strings.TrimSpace(cfg.ConnectionType))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность параметров.
func (c *Config) Validate() error {
	var errs []error

	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baudrate должен быть положительным, получено %d", c.BaudRate))
	}
	if c.Interval < 0 {
		errs = append(errs, fmt.Errorf("interval не может быть отрицательным, получено %s", c.Interval))
	}
	if strings.TrimSpace(c.SettingsPath) == "" {
		errs = append(errs, errors.New("не задан путь к файлу настроек"))
	}

	switch models.ConnectionType(c.ConnectionType) {
	case models.ConnectionSerial:
		if strings.TrimSpace(c.Port) == "" && !c.DryRun {
			errs = append(errs, errors.New("не задан последовательный порт"))
		}
	case models.ConnectionTCP:
		if strings.TrimSpace(c.Address) == "" && !c.DryRun {
			errs = append(errs, errors.New("для --conn tcp нужен --address"))
		}
	default:
		errs = append(errs, fmt.Errorf("неизвестный тип подключения %q", c.ConnectionType))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Profile возвращает параметры подключения.
func (c *Config) Profile() models.ConnectionProfile {
	return models.ConnectionProfile{
		Type:      models.ConnectionType(c.ConnectionType),
		PortName:  c.Port,
		BaudRate:  c.BaudRate,
		Address:   c.Address,
		TimeoutMs: int(c.Timeout / time.Millisecond),
	}
}
