package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pank-su/zin-lab-data/database"
	"github.com/pank-su/zin-lab-data/geocoding"
	"github.com/pank-su/zin-lab-data/internal/logging"
	"github.com/pank-su/zin-lab-data/pipeline"
)

type fixedGeocoder struct{}

func (fixedGeocoder) ResolveByPosition(ctx context.Context, lat, lon float64) (geocoding.Place, error) {
	return geocoding.Place{Country: "Россия", Region: "Приморский край"}, nil
}

func (fixedGeocoder) ResolveByText(ctx context.Context, query string) (geocoding.Place, error) {
	return geocoding.Place{Country: "Россия", Region: "Приморский край"}, nil
}

func assembledState(t *testing.T) *pipeline.State {
	t.Helper()

	a := pipeline.NewAssembler(fixedGeocoder{}, pipeline.Config{
		DefaultCountry: "Россия",
		Logger:         logging.Discard(),
	})
	records := []pipeline.Record{
		{
			TaxonID: 1, Order: "Rodentia", Family: "Muridae", Genus: "Apodemus", Kind: "agrarius",
			Region: "Приморский край", Subregion: "Лазовский р-н", CollectDate: "12.05.2001", Collectors: "Иванов Петров",
			VoucherInstitute: "ZIN", VoucherCode: "123", Sex: "f",
		},
		{
			TaxonID: 2, Order: "Rodentia", Family: "Muridae", Genus: "Apodemus", Kind: "peninsulae",
			Latitude: "43.1", Longitude: "131.9", CollectDate: "2019", Collectors: "Иванов",
		},
	}
	require.NoError(t, a.Run(context.Background(), records))
	return a.State()
}

func tableByName(t *testing.T, tables []database.Table, name string) database.Table {
	t.Helper()
	for _, table := range tables {
		if table.Name == name {
			return table
		}
	}
	t.Fatalf("table %s not found", name)
	return database.Table{}
}

func TestTables(t *testing.T) {
	tables := Tables(assembledState(t))
	require.Len(t, tables, 14)

	for _, table := range tables {
		for _, row := range table.Rows {
			assert.Len(t, row, len(table.Columns), table.Name)
		}
	}

	collections := tableByName(t, tables, database.TableCollections)
	require.Len(t, collections.Rows, 2)
	first := collections.Rows[0]
	assert.Equal(t, 1, first[0])
	assert.Equal(t, 1, first[5], "subregion id")
	assert.Nil(t, first[6], "no point without coordinates")
	assert.Equal(t, 1, first[7])
	assert.Equal(t, 12, first[9])
	assert.Equal(t, 2, first[12])
	assert.Nil(t, first[13])

	second := collections.Rows[1]
	assert.Nil(t, second[5], "no subregion")
	assert.Equal(t, "Point(43.1, 131.9)", second[6])
	assert.Nil(t, second[9])
	assert.Nil(t, second[10])
	assert.Equal(t, 2019, second[11])

	subregions := tableByName(t, tables, database.TableSubregions)
	assert.Equal(t, [][]any{{1, 1, "лазовский р-н"}}, subregions.Rows)
	assert.Len(t, tableByName(t, tables, database.TableCollectorLinks).Rows, 3)
	assert.Len(t, tableByName(t, tables, database.TableSexes).Rows, len(pipeline.Sexes))
}

func TestWriteCSVDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteCSVDir(dir, Tables(assembledState(t))))

	f, err := os.Open(filepath.Join(dir, "collections.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "", rows[2][8], "absent day is an empty cell")
	assert.Equal(t, "2019", rows[2][10])
	assert.Equal(t, "false", rows[2][15])

	_, err = os.Stat(filepath.Join(dir, "collector_links.csv"))
	assert.NoError(t, err)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.xlsx")
	require.NoError(t, WriteWorkbook(path, Tables(assembledState(t))))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Equal(t, database.TableOrders, sheets[0])
	assert.Contains(t, sheets, database.TableCollections)

	rows, err := f.GetRows(database.TableKinds)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"id", "genus_id", "name"}, rows[0])
	assert.Equal(t, []string{"2", "1", "peninsulae"}, rows[2])
}

func TestWriteDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "collection.db")

	require.NoError(t, Write(ctx, Tables(assembledState(t)), Targets{Database: path}))

	db, err := database.Open(path)
	require.NoError(t, err)
	defer db.Close()

	view, err := db.GetCollection(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "rodentia", view.Order)
	assert.Equal(t, "agrarius", view.Kind)
	assert.Equal(t, "приморский край", view.Region)
	assert.Equal(t, "лазовский р-н", view.Subregion)
	assert.Equal(t, "ZIN", view.VoucherInstitute)
	assert.Equal(t, "самка", view.Sex)
	assert.Equal(t, []string{"Иванов", "Петров"}, view.Collectors)

	second, err := db.GetCollection(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Point(43.1, 131.9)", second.Point)
	assert.Nil(t, second.Day)
}
