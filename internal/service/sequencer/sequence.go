package sequencer

import (
	"strings"

	"meshrepeater/internal/domain/models"
	"meshrepeater/pkg/meshcli"
)

// BuildSequence превращает настройки в упорядоченный список команд.
// Порядок фиксирован: каждая команда может зависеть от побочных эффектов предыдущих,
// а erase всегда первая. Пустые записи (нет регионов, нет домашнего региона) пропускаются.
func BuildSequence(s models.RepeaterSettings) []string {
	// пустые значения дают "" и отсеиваются в compact
	candidates := make([]string, 0, 12+len(s.Regions))

	candidates = append(candidates,
		meshcli.Erase,
		optional(s.PrivateKey, meshcli.SetPrivateKey),
		optional(s.Name, meshcli.SetName),
		optional(s.OwnerInfo, meshcli.SetOwner),
	)

	for _, region := range s.Regions {
		candidates = append(candidates, optional(region, meshcli.RegionPut))
	}
	candidates = append(candidates, optional(s.HomeRegion, meshcli.RegionHome))
	if s.SaveRegions {
		candidates = append(candidates, meshcli.RegionSave)
	}

	candidates = append(candidates,
		meshcli.SetTxDelay(s.TxDelay),
		meshcli.SetDirectTxDelay(s.DirectTxDelay),
		meshcli.SetRxDelay(s.RxDelay),
		meshcli.SetAdvertInterval(s.AdvertInterval),
		meshcli.SetFloodAdvertInterval(s.FloodAdvertInterval),
		optional(s.GuestPassword, meshcli.SetGuestPassword),
	)

	return compact(candidates)
}

// optional возвращает команду только для непустого значения.
func optional(value string, build func(string) string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return build(value)
}

func compact(cmds []string) []string {
	out := make([]string, 0, len(cmds))
	for _, c := range cmds {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
