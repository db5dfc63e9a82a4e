// Package pipeline собирает нормализованные таблицы коллекции из записей исходной таблицы.
package pipeline

import (
	"fmt"
	"strconv"
)

// Record строка исходной таблицы коллекции, значения как есть
type Record struct {
	Row              int // номер строки в исходном файле, для диагностики
	TaxonID          int
	CatalogNumber    string
	CollectID        string
	Order            string
	Family           string
	Genus            string
	Kind             string
	Country          string
	Region           string
	Subregion        string
	Place1           string
	Place2           string
	Place3           string
	GenBank          string
	Latitude         string
	Longitude        string
	VoucherInstitute string
	VoucherCode      string
	CollectDate      string
	Collectors       string
	RNA              string
	Comments         string
	Tissue           string
	Sex              string
	Age              string
}

// Order отряд
type Order struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Family семейство
type Family struct {
	ID      int    `json:"id"`
	OrderID int    `json:"order_id"`
	Name    string `json:"name"`
}

// Genus род
type Genus struct {
	ID       int    `json:"id"`
	FamilyID int    `json:"family_id"`
	Name     string `json:"name"`
}

// Kind вид
type Kind struct {
	ID      int    `json:"id"`
	GenusID int    `json:"genus_id"`
	Name    string `json:"name"`
}

// Country страна
type Country struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Region регион страны
type Region struct {
	ID        int    `json:"id"`
	CountryID int    `json:"country_id"`
	Name      string `json:"name"`
}

// Subregion район внутри региона
type Subregion struct {
	ID       int    `json:"id"`
	RegionID int    `json:"region_id"`
	Name     string `json:"name"`
}

// Collector коллектор; без распознанной фамилии LastName пустая
type Collector struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Extra     string `json:"extra"`
}

// VoucherInstitute институт-хранитель ваучера; код хранится без приведения регистра
type VoucherInstitute struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tissue тип ткани
type Tissue struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Sex пол
type Sex struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Age возрастная группа
type Age struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CollectorLink связь коллектора с записью коллекции
type CollectorLink struct {
	CollectorID int `json:"collector_id"`
	RecordID    int `json:"record_id"`
}

// Point координаты места сбора
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// String возвращает точку в виде "Point(lat, lon)"
func (p Point) String() string {
	return fmt.Sprintf("Point(%s, %s)",
		strconv.FormatFloat(p.Lat, 'f', -1, 64),
		strconv.FormatFloat(p.Lon, 'f', -1, 64))
}

// Collection запись коллекции (таблица фактов)
// nil означает отсутствующее значение
type Collection struct {
	ID                 int    `json:"id"` // taxon id записи
	CatalogNumber      string `json:"catalog_number"`
	CollectID          string `json:"collect_id"`
	KindID             int    `json:"kind_id"`
	RegionID           int    `json:"region_id"`
	SubregionID        *int   `json:"subregion_id,omitempty"`
	Point              *Point `json:"point,omitempty"`
	VoucherInstituteID *int   `json:"voucher_institute_id,omitempty"`
	VoucherCode        string `json:"voucher_code"`
	Day                *int   `json:"day,omitempty"`
	Month              *int   `json:"month,omitempty"`
	Year               *int   `json:"year,omitempty"`
	SexID              *int   `json:"sex_id,omitempty"`
	AgeID              *int   `json:"age_id,omitempty"`
	TissueID           *int   `json:"tissue_id,omitempty"`
	GenBank            string `json:"gen_bank"`
	RNA                bool   `json:"rna"`
	Comment            string `json:"comment"`
	GeoComment         string `json:"geo_comment"`
}
