package models

// RepeaterSettings представляет собой полный слепок настроек ретранслятора,
// загруженный из файла настроек. После создания не изменяется.
type RepeaterSettings struct {
	// Идентичность узла
	PrivateKey string
	Name       string
	OwnerInfo  string

	// Регионы. Отсутствие регионов - пустой срез, а не nil.
	Regions     []string
	HomeRegion  string
	SaveRegions bool

	// Тайминги и сеть
	TxDelay             float64
	DirectTxDelay       float64
	RxDelay             float64
	AdvertInterval      int
	FloodAdvertInterval int

	GuestPassword string
}

// Clone возвращает глубокую копию настроек.
func (s RepeaterSettings) Clone() RepeaterSettings {
	out := s
	out.Regions = make([]string, len(s.Regions))
	copy(out.Regions, s.Regions)
	return out
}
