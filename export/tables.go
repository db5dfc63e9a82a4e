// Package export записывает таблицы коллекции в CSV, Excel и SQLite.
package export

import (
	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/pipeline"
)

var (
	idColumn   = database.Column{Name: "id", Type: "INTEGER", PrimaryKey: true}
	nameColumn = database.Column{Name: "name", Type: "TEXT"}
)

func textColumn(name string) database.Column {
	return database.Column{Name: name, Type: "TEXT"}
}

func intColumn(name string) database.Column {
	return database.Column{Name: name, Type: "INTEGER"}
}

func refColumn(name, table string) database.Column {
	return database.Column{Name: name, Type: "INTEGER", References: table}
}

// nullable превращает отсутствующее значение в nil
func nullable(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// Tables строит выходные таблицы в порядке зависимостей
func Tables(state *pipeline.State) []database.Table {
	return []database.Table{
		namedTable(database.TableOrders, state.Orders.Entities(), func(e pipeline.Order) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		namedTable(database.TableFamilies, state.Families.Entities(), func(e pipeline.Family) []any {
			return []any{e.ID, e.OrderID, e.Name}
		}, idColumn, refColumn("order_id", database.TableOrders), nameColumn),
		namedTable(database.TableGenera, state.Genera.Entities(), func(e pipeline.Genus) []any {
			return []any{e.ID, e.FamilyID, e.Name}
		}, idColumn, refColumn("family_id", database.TableFamilies), nameColumn),
		namedTable(database.TableKinds, state.Kinds.Entities(), func(e pipeline.Kind) []any {
			return []any{e.ID, e.GenusID, e.Name}
		}, idColumn, refColumn("genus_id", database.TableGenera), nameColumn),
		namedTable(database.TableCountries, state.Countries.Entities(), func(e pipeline.Country) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		namedTable(database.TableRegions, state.Regions.Entities(), func(e pipeline.Region) []any {
			return []any{e.ID, e.CountryID, e.Name}
		}, idColumn, refColumn("country_id", database.TableCountries), nameColumn),
		namedTable(database.TableSubregions, state.Subregions.Entities(), func(e pipeline.Subregion) []any {
			return []any{e.ID, e.RegionID, e.Name}
		}, idColumn, refColumn("region_id", database.TableRegions), nameColumn),
		namedTable(database.TableCollectors, state.Collectors.Entities(), func(e pipeline.Collector) []any {
			return []any{e.ID, e.FirstName, e.LastName, e.Extra}
		}, idColumn, textColumn("first_name"), textColumn("last_name"), textColumn("extra")),
		namedTable(database.TableVoucherInstitutes, state.VoucherInstitutes.Entities(), func(e pipeline.VoucherInstitute) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		namedTable(database.TableTissues, state.Tissues.Entities(), func(e pipeline.Tissue) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		namedTable(database.TableSexes, pipeline.Sexes, func(e pipeline.Sex) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		namedTable(database.TableAges, pipeline.Ages, func(e pipeline.Age) []any {
			return []any{e.ID, e.Name}
		}, idColumn, nameColumn),
		collectionsTable(state.Collections),
		namedTable(database.TableCollectorLinks, state.CollectorLinks, func(e pipeline.CollectorLink) []any {
			return []any{e.CollectorID, e.RecordID}
		}, refColumn("collector_id", database.TableCollectors), refColumn("collection_id", database.TableCollections)),
	}
}

func namedTable[E any](name string, entities []E, row func(E) []any, columns ...database.Column) database.Table {
	rows := make([][]any, len(entities))
	for i, e := range entities {
		rows[i] = row(e)
	}
	return database.Table{Name: name, Columns: columns, Rows: rows}
}

func collectionsTable(collections []pipeline.Collection) database.Table {
	return namedTable(database.TableCollections, collections, func(c pipeline.Collection) []any {
		var point any
		if c.Point != nil {
			point = c.Point.String()
		}
		return []any{
			c.ID,
			c.CatalogNumber,
			c.CollectID,
			c.KindID,
			c.RegionID,
			nullable(c.SubregionID),
			point,
			nullable(c.VoucherInstituteID),
			c.VoucherCode,
			nullable(c.Day),
			nullable(c.Month),
			nullable(c.Year),
			nullable(c.SexID),
			nullable(c.AgeID),
			nullable(c.TissueID),
			c.GenBank,
			c.RNA,
			c.Comment,
			c.GeoComment,
		}
	},
		idColumn,
		textColumn("catalog_number"),
		textColumn("collect_id"),
		refColumn("kind_id", database.TableKinds),
		refColumn("region_id", database.TableRegions),
		refColumn("subregion_id", database.TableSubregions),
		textColumn("point"),
		refColumn("voucher_institute_id", database.TableVoucherInstitutes),
		textColumn("voucher_code"),
		intColumn("day"),
		intColumn("month"),
		intColumn("year"),
		refColumn("sex_id", database.TableSexes),
		refColumn("age_id", database.TableAges),
		refColumn("tissue_id", database.TableTissues),
		textColumn("gen_bank"),
		database.Column{Name: "rna", Type: "BOOLEAN"},
		textColumn("comment"),
		textColumn("geo_comment"),
	)
}
