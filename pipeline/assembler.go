package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pank-su/zin-lab-data/geocoding"
	"github.com/pank-su/zin-lab-data/normalization"
	"github.com/pank-su/zin-lab-data/registry"
)

// Geocoder определяет страну и регион места сбора
type Geocoder interface {
	ResolveByPosition(ctx context.Context, lat, lon float64) (geocoding.Place, error)
	ResolveByText(ctx context.Context, query string) (geocoding.Place, error)
}

// Config настройки сборщика
type Config struct {
	InvalidValues  []string          // nil - normalization.DefaultInvalidValues
	DefaultCountry string            // страна, если ее не удалось определить
	RegionAliases  map[string]string // дополнительные синонимы регионов
	Logger         *slog.Logger
}

// noNumberVoucherCodes обозначения "без номера" в коде ваучера (после нормализации)
var noNumberVoucherCodes = map[string]bool{
	"б/н":        true,
	"б.н.":       true,
	"б.н":        true,
	"бн":         true,
	"без номера": true,
}

// negativeRNA значения поля RNA, означающие отсутствие пробы
var negativeRNA = map[string]bool{
	"нет":   true,
	"no":    true,
	"0":     true,
	"false": true,
}

// Assembler собирает записи коллекции и справочники из исходных записей
// Записи обрабатываются строго по одной в порядке файла
type Assembler struct {
	state          *State
	geocoder       Geocoder
	values         *normalization.ValueNormalizer
	regions        *normalization.RegionAliasResolver
	defaultCountry string
	logger         *slog.Logger
}

// NewAssembler создает сборщик с пустым состоянием
func NewAssembler(geocoder Geocoder, config Config) *Assembler {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.InvalidValues == nil {
		config.InvalidValues = normalization.DefaultInvalidValues
	}

	return &Assembler{
		state:          NewState(),
		geocoder:       geocoder,
		values:         normalization.NewValueNormalizer(config.InvalidValues),
		regions:        normalization.NewRegionAliasResolver(config.RegionAliases),
		defaultCountry: strings.TrimSpace(config.DefaultCountry),
		logger:         config.Logger,
	}
}

// State возвращает накопленное состояние
func (a *Assembler) State() *State {
	return a.state
}

// Run обрабатывает все записи по порядку
// Ошибка геокодирования (отмена контекста или исчерпанные попытки) прерывает запуск
func (a *Assembler) Run(ctx context.Context, records []Record) error {
	total := len(records)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted after %d of %d records: %w", i, total, err)
		}
		if _, err := a.Process(ctx, rec); err != nil {
			return err
		}
	}

	summary := a.state.Summary()
	a.logger.Info("collection assembled",
		"records", summary.Records,
		"kinds", summary.Kinds,
		"regions", summary.Regions,
		"collectors", summary.Collectors,
	)
	return nil
}

// Process обрабатывает одну запись и добавляет строку в таблицу коллекции
func (a *Assembler) Process(ctx context.Context, rec Record) (Collection, error) {
	// До геокодирования: при зависании сервиса в логе видна текущая запись
	a.logger.Info("processing record",
		"taxon_id", rec.TaxonID,
		"row", rec.Row,
	)

	col := Collection{
		ID:            rec.TaxonID,
		CatalogNumber: strings.TrimSpace(rec.CatalogNumber),
		CollectID:     strings.TrimSpace(rec.CollectID),
		GenBank:       strings.TrimSpace(rec.GenBank),
		Comment:       strings.TrimSpace(rec.Comments),
	}

	// 1. Таксономия: отряд -> семейство -> род -> вид
	col.KindID = a.resolveTaxonomy(rec)

	// 2. Институт ваучера
	col.VoucherInstituteID = a.resolveVoucherInstitute(rec.VoucherInstitute)

	// 3. Коллекторы
	a.resolveCollectors(rec.Collectors, rec.TaxonID)

	// 4. География
	col.Point = parsePoint(rec.Latitude, rec.Longitude)
	regionID, err := a.resolveGeography(ctx, rec, col.Point)
	if err != nil {
		return Collection{}, fmt.Errorf("taxon %d (row %d): %w", rec.TaxonID, rec.Row, err)
	}
	col.RegionID = regionID
	col.SubregionID = a.resolveSubregion(regionID, rec.Subregion)
	col.GeoComment = joinNonEmpty(", ", rec.Place1, rec.Place2, rec.Place3)

	// 5. Дата сбора
	date := normalization.ParseDate(rec.CollectDate)
	col.Day, col.Month, col.Year = date.Day, date.Month, date.Year

	// 6. Пол, возраст, ткань
	col.SexID = lookupCode(sexCodes, a.values.Normalize(rec.Sex))
	col.AgeID = lookupCode(ageCodes, a.values.Normalize(rec.Age))
	col.TissueID = a.resolveTissue(rec.Tissue)
	rna := a.values.Normalize(rec.RNA)
	col.RNA = rna != "" && !negativeRNA[rna]

	// 7. Очистка литералов
	col.VoucherCode = a.cleanVoucherCode(rec.VoucherCode)

	// 8. Строка факта
	a.state.Collections = append(a.state.Collections, col)

	a.logger.Debug("record processed",
		"taxon_id", rec.TaxonID,
		"index", len(a.state.Collections),
	)
	return col, nil
}

func (a *Assembler) resolveTaxonomy(rec Record) int {
	s := a.state

	orderName := a.values.Normalize(rec.Order)
	order := s.Orders.GetOrCreate(orderName, func(id int) Order {
		return Order{ID: id, Name: orderName}
	})

	familyName := a.values.Normalize(rec.Family)
	family := s.Families.GetOrCreate(registry.ParentKey{ParentID: order.ID, Name: familyName}, func(id int) Family {
		return Family{ID: id, OrderID: order.ID, Name: familyName}
	})

	genusName := a.values.Normalize(rec.Genus)
	genus := s.Genera.GetOrCreate(registry.ParentKey{ParentID: family.ID, Name: genusName}, func(id int) Genus {
		return Genus{ID: id, FamilyID: family.ID, Name: genusName}
	})

	kindName := a.values.Normalize(rec.Kind)
	kind := s.Kinds.GetOrCreate(registry.ParentKey{ParentID: genus.ID, Name: kindName}, func(id int) Kind {
		return Kind{ID: id, GenusID: genus.ID, Name: kindName}
	})

	return kind.ID
}

// resolveVoucherInstitute код института не приводится к одному регистру
func (a *Assembler) resolveVoucherInstitute(raw string) *int {
	if a.values.IsInvalid(raw) {
		return nil
	}
	code := strings.TrimSpace(raw)
	institute := a.state.VoucherInstitutes.GetOrCreate(code, func(id int) VoucherInstitute {
		return VoucherInstitute{ID: id, Name: code}
	})
	return &institute.ID
}

// resolveCollectors создает коллекторов и по одной связи на каждое упоминание
func (a *Assembler) resolveCollectors(raw string, recordID int) {
	for _, name := range normalization.ExtractCollectorNames(raw) {
		collector := a.state.Collectors.GetOrCreate(name.Token, func(id int) Collector {
			return Collector{ID: id, FirstName: name.FirstName, LastName: name.LastName}
		})
		a.state.CollectorLinks = append(a.state.CollectorLinks, CollectorLink{
			CollectorID: collector.ID,
			RecordID:    recordID,
		})
	}
}

// resolveGeography определяет страну и регион и возвращает id региона
// Страна: результат геокодирования, затем поле "Страна", затем страна по умолчанию
// Регион: результат геокодирования, затем поле "Регион" после замены синонимов
func (a *Assembler) resolveGeography(ctx context.Context, rec Record, point *Point) (int, error) {
	var place geocoding.Place
	var err error
	if point != nil {
		place, err = a.geocoder.ResolveByPosition(ctx, point.Lat, point.Lon)
	} else {
		place, err = a.geocoder.ResolveByText(ctx, a.TextQuery(rec))
	}
	if err != nil {
		return 0, err
	}

	countryName := a.values.Normalize(place.Country)
	if countryName == "" {
		countryName = a.values.Normalize(rec.Country)
	}
	if countryName == "" {
		countryName = a.values.Normalize(a.defaultCountry)
	}
	country := a.state.Countries.GetOrCreate(countryName, func(id int) Country {
		return Country{ID: id, Name: countryName}
	})

	regionName := a.values.Normalize(place.Region)
	if regionName == "" {
		regionName = a.values.Normalize(a.regions.Normalize(a.clean(rec.Region)))
	}
	region := a.state.Regions.GetOrCreate(registry.ParentKey{ParentID: country.ID, Name: regionName}, func(id int) Region {
		return Region{ID: id, CountryID: country.ID, Name: regionName}
	})

	return region.ID, nil
}

// resolveSubregion субрегион уникален в пределах региона
func (a *Assembler) resolveSubregion(regionID int, raw string) *int {
	name := a.values.Normalize(raw)
	if name == "" {
		return nil
	}
	subregion := a.state.Subregions.GetOrCreate(registry.ParentKey{ParentID: regionID, Name: name}, func(id int) Subregion {
		return Subregion{ID: id, RegionID: regionID, Name: name}
	})
	return &subregion.ID
}

// TextQuery строит текстовый запрос к геокодеру
// Текст: поле "Регион", иначе "Мест.2", если "Мест.1" совпадает со страной, иначе "Мест.1".
// Известная страна, отличная от текста, добавляется через запятую.
func (a *Assembler) TextQuery(rec Record) string {
	country := a.clean(rec.Country)
	place1 := a.clean(rec.Place1)

	text := a.clean(rec.Region)
	if text == "" {
		if place1 != "" && strings.EqualFold(place1, country) {
			text = a.clean(rec.Place2)
		} else {
			text = place1
		}
	}

	text = a.regions.Normalize(text)
	if text == "" {
		return ""
	}
	if country != "" && !strings.EqualFold(text, country) {
		text += ", " + country
	}
	return text
}

func (a *Assembler) resolveTissue(raw string) *int {
	name := a.values.Normalize(raw)
	if name == "" {
		return nil
	}
	tissue := a.state.Tissues.GetOrCreate(name, func(id int) Tissue {
		return Tissue{ID: id, Name: name}
	})
	return &tissue.ID
}

func (a *Assembler) cleanVoucherCode(raw string) string {
	if noNumberVoucherCodes[a.values.Normalize(raw)] {
		return ""
	}
	return strings.TrimSpace(raw)
}

// clean убирает лишние пробелы; неизвестное значение превращается в пустую строку
func (a *Assembler) clean(raw string) string {
	if a.values.IsInvalid(raw) {
		return ""
	}
	return strings.Join(strings.Fields(raw), " ")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
