package ports

import "meshrepeater/internal/domain/models"

// SettingsRepository определяет интерфейс источника настроек ретранслятора.
// Реализация интерфейса находится в слое Infrastructure.
type SettingsRepository interface {
	// Load читает и проверяет настройки по указанному пути
	Load(path string) (models.RepeaterSettings, error)
}
