package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/pank-su/zin-lab-data/pipeline"
)

var (
	// ErrMissingColumn в заголовке нет обязательной колонки
	ErrMissingColumn = errors.New("required column not found")
	// ErrMalformedRow строку нельзя обработать (например, нечисловой taxon id)
	ErrMalformedRow = errors.New("malformed row")
	// ErrUnsupportedFormat формат файла не поддерживается
	ErrUnsupportedFormat = errors.New("unsupported input format")
)

// TaxonIDColumn обязательная колонка с идентификатором записи
const TaxonIDColumn = "ID taxon"

// column колонка исходной таблицы и допустимые варианты заголовка
type column struct {
	headers []string
	set     func(r *pipeline.Record, v string)
}

// columns колонки таблицы коллекции; первый заголовок - как в исходной таблице
var columns = []column{
	{[]string{"CatalogueNumber", "Catalog Number"}, func(r *pipeline.Record, v string) { r.CatalogNumber = v }},
	{[]string{"Collect_ID", "Collect ID"}, func(r *pipeline.Record, v string) { r.CollectID = v }},
	{[]string{"Отряд", "Order"}, func(r *pipeline.Record, v string) { r.Order = v }},
	{[]string{"Семейство", "Family"}, func(r *pipeline.Record, v string) { r.Family = v }},
	{[]string{"Род", "Genus"}, func(r *pipeline.Record, v string) { r.Genus = v }},
	{[]string{"Вид", "Species", "Kind"}, func(r *pipeline.Record, v string) { r.Kind = v }},
	{[]string{"Страна", "Country"}, func(r *pipeline.Record, v string) { r.Country = v }},
	{[]string{"Регион", "Region"}, func(r *pipeline.Record, v string) { r.Region = v }},
	{[]string{"Субрегион", "Subregion"}, func(r *pipeline.Record, v string) { r.Subregion = v }},
	{[]string{"Мест.1", "Place 1"}, func(r *pipeline.Record, v string) { r.Place1 = v }},
	{[]string{"Мест.2", "Place 2"}, func(r *pipeline.Record, v string) { r.Place2 = v }},
	{[]string{"Мест.3", "Place 3"}, func(r *pipeline.Record, v string) { r.Place3 = v }},
	{[]string{"GEN_BANK", "GenBank"}, func(r *pipeline.Record, v string) { r.GenBank = v }},
	{[]string{"Latitude", "Широта"}, func(r *pipeline.Record, v string) { r.Latitude = v }},
	{[]string{"Longitude", "Долгота"}, func(r *pipeline.Record, v string) { r.Longitude = v }},
	{[]string{"Вауч. Инст.", "Voucher Institute"}, func(r *pipeline.Record, v string) { r.VoucherInstitute = v }},
	{[]string{"Вауч. Код", "Voucher Code"}, func(r *pipeline.Record, v string) { r.VoucherCode = v }},
	{[]string{"Дата Сбора", "Collect Date"}, func(r *pipeline.Record, v string) { r.CollectDate = v }},
	{[]string{"Коллектор", "Collectors"}, func(r *pipeline.Record, v string) { r.Collectors = v }},
	{[]string{"RNA"}, func(r *pipeline.Record, v string) { r.RNA = v }},
	{[]string{"Comments", "Комментарии"}, func(r *pipeline.Record, v string) { r.Comments = v }},
	{[]string{"Ткань", "Tissue"}, func(r *pipeline.Record, v string) { r.Tissue = v }},
	{[]string{"Пол", "Sex"}, func(r *pipeline.Record, v string) { r.Sex = v }},
	{[]string{"Возраст", "Age"}, func(r *pipeline.Record, v string) { r.Age = v }},
}

var taxonHeaders = []string{TaxonIDColumn, "Taxon ID", "id_taxon"}

// Headers заголовки исходной таблицы в каноническом порядке
func Headers() []string {
	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, TaxonIDColumn)
	for _, c := range columns {
		headers = append(headers, c.headers[0])
	}
	return headers
}

// ReadFile читает таблицу коллекции; формат определяется по расширению
func ReadFile(path string) ([]pipeline.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadXLSX читает первый лист Excel-файла
func ReadXLSX(path string) ([]pipeline.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	return parseRows(rows)
}

// ReadCSV читает CSV-выгрузку таблицы
// Кодировка UTF-8 или Windows-1251, разделитель ";" или "," определяются автоматически
func ReadCSV(r io.Reader) ([]pipeline.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1251.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode Windows-1251 data: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	return parseRows(rows)
}

// detectDelimiter выбирает разделитель по строке заголовка
func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}

	best, bestCount := ',', bytes.Count(header, []byte(","))
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(header, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func headerKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func findColumn(headerMap map[string]int, headers []string) int {
	for _, h := range headers {
		if idx, ok := headerMap[headerKey(h)]; ok {
			return idx
		}
	}
	return -1
}

// parseRows разбирает строки с заголовком в первой строке
// Все строки проверяются до начала обработки: ошибка в любой строке прерывает чтение
func parseRows(rows [][]string) ([]pipeline.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, TaxonIDColumn)
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		key := headerKey(header)
		if _, exists := headerMap[key]; !exists && key != "" {
			headerMap[key] = i
		}
	}

	taxonIdx := findColumn(headerMap, taxonHeaders)
	if taxonIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, TaxonIDColumn)
	}

	indices := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		indices[i] = findColumn(headerMap, c.headers)
		if indices[i] == -1 {
			missing = append(missing, c.headers[0])
		}
	}
	if len(missing) > 0 {
		log.Printf("[Importer] Optional columns not found, values will be empty: %s", strings.Join(missing, ", "))
	}

	records := make([]pipeline.Record, 0, len(rows)-1)
	seen := make(map[int]int)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if isEmptyRow(row) {
			continue
		}
		rowNum := rowIdx + 1

		rawID := strings.TrimSpace(cell(row, taxonIdx))
		taxonID, err := parseTaxonID(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: taxon id %q", ErrMalformedRow, rowNum, rawID)
		}
		if prev, dup := seen[taxonID]; dup {
			return nil, fmt.Errorf("%w: row %d: taxon id %d already used in row %d", ErrMalformedRow, rowNum, taxonID, prev)
		}
		seen[taxonID] = rowNum

		record := pipeline.Record{Row: rowNum, TaxonID: taxonID}
		for i, c := range columns {
			if indices[i] >= 0 {
				c.set(&record, strings.TrimSpace(cell(row, indices[i])))
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// parseTaxonID принимает целое число; Excel может отдать его как "123.0"
func parseTaxonID(raw string) (int, error) {
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return int(f), nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
