package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Имена выходных таблиц
const (
	TableOrders            = "orders"
	TableFamilies          = "families"
	TableGenera            = "genera"
	TableKinds             = "kinds"
	TableCountries         = "countries"
	TableRegions           = "regions"
	TableSubregions        = "subregions"
	TableCollectors        = "collectors"
	TableVoucherInstitutes = "voucher_institutes"
	TableTissues           = "tissues"
	TableSexes             = "sexes"
	TableAges              = "ages"
	TableCollections       = "collections"
	TableCollectorLinks    = "collector_links"
)

// CollectionView запись коллекции с раскрытыми ссылками
type CollectionView struct {
	ID               int      `json:"id"`
	CatalogNumber    string   `json:"catalog_number,omitempty"`
	CollectID        string   `json:"collect_id,omitempty"`
	Order            string   `json:"order"`
	Family           string   `json:"family"`
	Genus            string   `json:"genus"`
	Kind             string   `json:"kind"`
	Country          string   `json:"country"`
	Region           string   `json:"region"`
	Subregion        string   `json:"subregion,omitempty"`
	Point            string   `json:"point,omitempty"`
	VoucherInstitute string   `json:"voucher_institute,omitempty"`
	VoucherCode      string   `json:"voucher_code,omitempty"`
	Day              *int     `json:"day,omitempty"`
	Month            *int     `json:"month,omitempty"`
	Year             *int     `json:"year,omitempty"`
	Sex              string   `json:"sex,omitempty"`
	Age              string   `json:"age,omitempty"`
	Tissue           string   `json:"tissue,omitempty"`
	GenBank          string   `json:"gen_bank,omitempty"`
	RNA              bool     `json:"rna"`
	Comment          string   `json:"comment,omitempty"`
	GeoComment       string   `json:"geo_comment,omitempty"`
	Collectors       []string `json:"collectors"`
}

// GetCollection возвращает запись коллекции по id (taxon id)
func (db *DB) GetCollection(ctx context.Context, id int) (*CollectionView, error) {
	var v CollectionView
	var subregion, point, institute, sex, age, tissue sql.NullString
	var catalog, collectID, voucherCode, genBank, comment, geo sql.NullString
	var day, month, year sql.NullInt64

	err := db.conn.QueryRowContext(ctx, `
		SELECT c.id, c.catalog_number, c.collect_id,
			o.name, f.name, g.name, k.name,
			co.name, r.name, sr.name,
			c.point, vi.name, c.voucher_code,
			c.day, c.month, c.year,
			s.name, a.name, t.name,
			c.gen_bank, c.rna, c.comment, c.geo_comment
		FROM collections c
		JOIN kinds k ON k.id = c.kind_id
		JOIN genera g ON g.id = k.genus_id
		JOIN families f ON f.id = g.family_id
		JOIN orders o ON o.id = f.order_id
		JOIN regions r ON r.id = c.region_id
		JOIN countries co ON co.id = r.country_id
		LEFT JOIN subregions sr ON sr.id = c.subregion_id
		LEFT JOIN voucher_institutes vi ON vi.id = c.voucher_institute_id
		LEFT JOIN sexes s ON s.id = c.sex_id
		LEFT JOIN ages a ON a.id = c.age_id
		LEFT JOIN tissues t ON t.id = c.tissue_id
		WHERE c.id = ?
	`, id).Scan(
		&v.ID, &catalog, &collectID,
		&v.Order, &v.Family, &v.Genus, &v.Kind,
		&v.Country, &v.Region, &subregion,
		&point, &institute, &voucherCode,
		&day, &month, &year,
		&sex, &age, &tissue,
		&genBank, &v.RNA, &comment, &geo,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("collection %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection %d: %w", id, err)
	}

	v.CatalogNumber = nullString(catalog)
	v.Subregion = nullString(subregion)
	v.CollectID = nullString(collectID)
	v.Point = nullString(point)
	v.VoucherInstitute = nullString(institute)
	v.VoucherCode = nullString(voucherCode)
	v.Sex = nullString(sex)
	v.Age = nullString(age)
	v.Tissue = nullString(tissue)
	v.GenBank = nullString(genBank)
	v.Comment = nullString(comment)
	v.GeoComment = nullString(geo)
	v.Day = nullInt(day)
	v.Month = nullInt(month)
	v.Year = nullInt(year)

	v.Collectors, err = db.collectionCollectors(ctx, id)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (db *DB) collectionCollectors(ctx context.Context, id int) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT DISTINCT cl.id, TRIM(cl.first_name || ' ' || cl.last_name)
		FROM collector_links l
		JOIN collectors cl ON cl.id = l.collector_id
		WHERE l.collection_id = ?
		ORDER BY cl.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query collectors of %d: %w", id, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var collectorID int
		var name string
		if err := rows.Scan(&collectorID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan collector: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func nullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}
