// Команда generate_specimens создает XLSX с синтетическими записями коллекции
// для ручной проверки пайплайна
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"

	"github.com/pank-su/zin-lab-data/importer"
)

type taxon struct {
	order, family, genus, kind string
}

var taxa = []taxon{
	{"Rodentia", "Muridae", "Apodemus", "agrarius"},
	{"Rodentia", "Muridae", "Apodemus", "peninsulae"},
	{"Rodentia", "Cricetidae", "Microtus", "arvalis"},
	{"Rodentia", "Cricetidae", "Myodes", "rutilus"},
	{"Eulipotyphla", "Soricidae", "Sorex", "araneus"},
	{"Eulipotyphla", "Talpidae", "Talpa", "altaica"},
	{"Chiroptera", "Vespertilionidae", "Myotis", "daubentonii"},
}

var places = []struct {
	country, region, place string
	lat, lon               float64
}{
	{"Россия", "Приморский край", "Лазовский р-н", 43.2, 133.9},
	{"Россия", "Ленинградская обл.", "Лужский р-н", 58.7, 29.8},
	{"Россия", "Республика Алтай", "Телецкое оз.", 51.6, 87.7},
	{"Казахстан", "Алма-Атинская область", "Талгар", 43.3, 77.2},
	{"", "Байкал", "пос. Листвянка", 51.9, 104.9},
}

var (
	institutes = []string{"ZIN", "ЗИН РАН", "MSU", "?", ""}
	tissues    = []string{"мышца", "печень", "muscle", "-", ""}
	sexes      = []string{"самец", "самка", "m", "f", "?", ""}
	ages       = []string{"ad.", "subad.", "juv.", "взрослый", ""}
)

func main() {
	out := flag.String("out", "specimens_sample.xlsx", "Path to the generated workbook")
	count := flag.Int("n", 200, "Number of records")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	gofakeit.Seed(*seed)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := importer.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		log.Fatalf("Failed to write header: %v", err)
	}

	for i := 0; i < *count; i++ {
		values := fakeRecord(i + 1)
		row := make([]interface{}, len(headers))
		for j, h := range headers {
			row[j] = values[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			log.Fatalf("Failed to compute cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			log.Fatalf("Failed to write row %d: %v", i+2, err)
		}
	}

	if err := f.SaveAs(*out); err != nil {
		log.Fatalf("Failed to save workbook: %v", err)
	}
	fmt.Printf("Generated %d records in %s\n", *count, *out)
}

// fakeRecord одна запись с типичным для ручного ввода шумом
func fakeRecord(id int) map[string]string {
	t := taxa[gofakeit.Number(0, len(taxa)-1)]
	p := places[gofakeit.Number(0, len(places)-1)]

	rec := map[string]string{
		importer.TaxonIDColumn: fmt.Sprint(id),
		"CatalogueNumber":      fmt.Sprintf("ZIN-%05d", id),
		"Collect_ID":           gofakeit.Numerify("C-####"),
		"Отряд":                t.order,
		"Семейство":            t.family,
		"Род":                  t.genus,
		"Вид":                  t.kind,
		"Страна":               p.country,
		"Регион":               p.region,
		"Мест.1":               p.place,
		"Вауч. Инст.":          gofakeit.RandomString(institutes),
		"Вауч. Код":            gofakeit.RandomString([]string{gofakeit.Numerify("####"), "б/н", ""}),
		"Дата Сбора":           fakeDate(),
		"Коллектор":            fakeCollectors(),
		"RNA":                  gofakeit.RandomString([]string{"да", "нет", "", "+"}),
		"Ткань":                gofakeit.RandomString(tissues),
		"Пол":                  gofakeit.RandomString(sexes),
		"Возраст":              gofakeit.RandomString(ages),
	}

	// Примерно у половины записей есть координаты, иногда с мусором
	switch gofakeit.Number(0, 3) {
	case 0:
		rec["Latitude"] = fmt.Sprintf("%.4f", p.lat+gofakeit.Float64Range(-0.5, 0.5))
		rec["Longitude"] = fmt.Sprintf("%.4f", p.lon+gofakeit.Float64Range(-0.5, 0.5))
	case 1:
		rec["Latitude"] = strings.Replace(fmt.Sprintf("%.3f", p.lat), ".", ",", 1)
		rec["Longitude"] = strings.Replace(fmt.Sprintf("%.3f", p.lon), ".", ",", 1)
	}
	if gofakeit.Bool() {
		rec["Comments"] = gofakeit.Sentence(5)
	}
	return rec
}

func fakeDate() string {
	d := gofakeit.DateRange(time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	switch gofakeit.Number(0, 4) {
	case 0:
		return d.Format("2006")
	case 1:
		return d.Format("01.2006")
	case 2:
		return d.Format("01/02/2006")
	case 3:
		return ""
	default:
		return d.Format("02.01.2006")
	}
}

func fakeCollectors() string {
	n := gofakeit.Number(0, 3)
	names := make([]string, 0, n)
	for i := 0; i < n; i++ {
		initials := strings.ToUpper(gofakeit.Letter() + "." + gofakeit.Letter() + ".")
		if gofakeit.Bool() {
			names = append(names, initials+" "+gofakeit.LastName())
		} else {
			names = append(names, gofakeit.LastName()+" "+initials)
		}
	}
	return strings.Join(names, ", ")
}
