package pipeline

import "github.com/pank-su/zin-lab-data/registry"

// State справочники и таблицы одного запуска
// Создается пустым и заполняется только через Assembler
type State struct {
	Orders            *registry.Registry[string, Order]
	Families          *registry.Registry[registry.ParentKey, Family]
	Genera            *registry.Registry[registry.ParentKey, Genus]
	Kinds             *registry.Registry[registry.ParentKey, Kind]
	Countries         *registry.Registry[string, Country]
	Regions           *registry.Registry[registry.ParentKey, Region]
	Subregions        *registry.Registry[registry.ParentKey, Subregion]
	Collectors        *registry.Registry[string, Collector]
	VoucherInstitutes *registry.Registry[string, VoucherInstitute]
	Tissues           *registry.Registry[string, Tissue]

	CollectorLinks []CollectorLink
	Collections    []Collection
}

// NewState создает пустое состояние
func NewState() *State {
	return &State{
		Orders:            registry.New[string, Order](),
		Families:          registry.New[registry.ParentKey, Family](),
		Genera:            registry.New[registry.ParentKey, Genus](),
		Kinds:             registry.New[registry.ParentKey, Kind](),
		Countries:         registry.New[string, Country](),
		Regions:           registry.New[registry.ParentKey, Region](),
		Subregions:        registry.New[registry.ParentKey, Subregion](),
		Collectors:        registry.New[string, Collector](),
		VoucherInstitutes: registry.New[string, VoucherInstitute](),
		Tissues:           registry.New[string, Tissue](),
	}
}

// Summary размеры таблиц после запуска
type Summary struct {
	Records           int `json:"records"`
	Orders            int `json:"orders"`
	Families          int `json:"families"`
	Genera            int `json:"genera"`
	Kinds             int `json:"kinds"`
	Countries         int `json:"countries"`
	Regions           int `json:"regions"`
	Subregions        int `json:"subregions"`
	Collectors        int `json:"collectors"`
	CollectorLinks    int `json:"collector_links"`
	VoucherInstitutes int `json:"voucher_institutes"`
	Tissues           int `json:"tissues"`
}

// Summary возвращает размеры таблиц
func (s *State) Summary() Summary {
	return Summary{
		Records:           len(s.Collections),
		Orders:            s.Orders.Len(),
		Families:          s.Families.Len(),
		Genera:            s.Genera.Len(),
		Kinds:             s.Kinds.Len(),
		Countries:         s.Countries.Len(),
		Regions:           s.Regions.Len(),
		Subregions:        s.Subregions.Len(),
		Collectors:        s.Collectors.Len(),
		CollectorLinks:    len(s.CollectorLinks),
		VoucherInstitutes: s.VoucherInstitutes.Len(),
		Tissues:           s.Tissues.Len(),
	}
}
