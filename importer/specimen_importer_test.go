package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}

	path := filepath.Join(t.TempDir(), "collection.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadXLSX(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"ID taxon", "Отряд", "Семейство", "Род", "Вид", "Страна", "Регион", "Latitude", "Longitude", "Дата Сбора", "Коллектор"},
		{1, "Rodentia", "Muridae", "Apodemus", "agrarius", "Россия", "Приморский край", 0, 0, "12.05.2001", "Иванов Петров"},
		{},
		{2, "Eulipotyphla", "Soricidae", "Sorex", "araneus", "Россия", "", "59,9", "30,3", "2019", ""},
	})

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 1, first.TaxonID)
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "Rodentia", first.Order)
	assert.Equal(t, "agrarius", first.Kind)
	assert.Equal(t, "Приморский край", first.Region)
	assert.Equal(t, "0", first.Latitude)
	assert.Equal(t, "12.05.2001", first.CollectDate)
	assert.Equal(t, "Иванов Петров", first.Collectors)
	assert.Empty(t, first.VoucherCode, "absent optional column gives empty value")

	second := records[1]
	assert.Equal(t, 2, second.TaxonID)
	assert.Equal(t, 4, second.Row)
	assert.Equal(t, "59,9", second.Latitude)
}

func TestReadCSV_UTF8Semicolon(t *testing.T) {
	data := "\xef\xbb\xbfID taxon;Отряд;Вауч. Инст.;Вауч. Код;Пол;Comments\n" +
		"10;Chiroptera;ZIN;б/н;m;\"крыло; повреждено\"\n"

	records, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, 10, records[0].TaxonID)
	assert.Equal(t, "Chiroptera", records[0].Order)
	assert.Equal(t, "ZIN", records[0].VoucherInstitute)
	assert.Equal(t, "б/н", records[0].VoucherCode)
	assert.Equal(t, "m", records[0].Sex)
	assert.Equal(t, "крыло; повреждено", records[0].Comments)
}

func TestReadCSV_Windows1251(t *testing.T) {
	utf8Data := "ID taxon,Отряд,Регион\n5,Грызуны,Алма-Атинская обл.\n"
	encoded, err := charmap.Windows1251.NewEncoder().String(utf8Data)
	require.NoError(t, err)

	records, err := ReadCSV(strings.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Грызуны", records[0].Order)
	assert.Equal(t, "Алма-Атинская обл.", records[0].Region)
}

func TestReadCSV_EnglishHeaders(t *testing.T) {
	data := "Taxon ID,Order,Family,Genus,Species,Country,Collectors,Tissue,Age\n" +
		"7,Rodentia,Cricetidae,Microtus,arvalis,Russia,Ivanov,liver,ad\n"

	records, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "arvalis", records[0].Kind)
	assert.Equal(t, "Russia", records[0].Country)
	assert.Equal(t, "liver", records[0].Tissue)
	assert.Equal(t, "ad", records[0].Age)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{"missing taxon column", "Отряд,Род\nRodentia,Apodemus\n", ErrMissingColumn, "ID taxon"},
		{"empty file", "", ErrMissingColumn, "ID taxon"},
		{"non numeric taxon id", "ID taxon,Отряд\n1,Rodentia\nабв,Rodentia\n", ErrMalformedRow, "row 3"},
		{"fractional taxon id", "ID taxon,Отряд\n1.5,Rodentia\n", ErrMalformedRow, "row 2"},
		{"duplicate taxon id", "ID taxon,Отряд\n1,Rodentia\n1,Chiroptera\n", ErrMalformedRow, "already used in row 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.data))
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestReadFile_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collection.ods")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := ReadFile(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

func TestParseTaxonID(t *testing.T) {
	id, err := parseTaxonID("123")
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	id, err = parseTaxonID("123.0")
	require.NoError(t, err)
	assert.Equal(t, 123, id)

	_, err = parseTaxonID("")
	assert.Error(t, err)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', detectDelimiter([]byte("a;b;c\n1,2;3;4")))
	assert.Equal(t, ',', detectDelimiter([]byte("a,b,c")))
	assert.Equal(t, '\t', detectDelimiter([]byte("a\tb\tc")))
}

func TestHeadersStartWithTaxonID(t *testing.T) {
	headers := Headers()
	assert.Equal(t, TaxonIDColumn, headers[0])
	assert.Contains(t, headers, "Мест.1")
	assert.Len(t, headers, len(columns)+1)
}
