package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/pank-su/zin-lab-data/database"
)

// Targets куда записывать результат; пустое поле - приемник не используется
type Targets struct {
	Dir      string // каталог с CSV, по файлу на таблицу
	Workbook string // один .xlsx, по листу на таблицу
	Database string // SQLite с внешними ключами
}

// Write записывает таблицы во все заданные приемники
func Write(ctx context.Context, tables []database.Table, targets Targets) error {
	if targets.Dir != "" {
		if err := WriteCSVDir(targets.Dir, tables); err != nil {
			return err
		}
	}
	if targets.Workbook != "" {
		if err := WriteWorkbook(targets.Workbook, tables); err != nil {
			return err
		}
	}
	if targets.Database != "" {
		if err := WriteDatabase(ctx, targets.Database, tables); err != nil {
			return err
		}
	}
	return nil
}

// formatValue значение ячейки CSV; отсутствующее значение - пустая строка
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// WriteCSVDir записывает каждую таблицу в <dir>/<table>.csv (UTF-8, с заголовком)
func WriteCSVDir(dir string, tables []database.Table) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, table := range tables {
		if err := writeCSV(filepath.Join(dir, table.Name+".csv"), table); err != nil {
			return err
		}
	}
	return nil
}

func writeCSV(path string, table database.Table) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(table.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write headers of %s: %w", table.Name, err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record of %s: %w", table.Name, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", table.Name, err)
	}
	return file.Close()
}

// WriteWorkbook записывает таблицы в один Excel-файл, по листу на таблицу
func WriteWorkbook(path string, tables []database.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, table := range tables {
		sheet := table.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}

		for col, header := range table.ColumnNames() {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			f.SetCellValue(sheet, cell, header)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}

		for r, row := range table.Rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", r+1, sheet, err)
			}
		}

		last, _ := excelize.ColumnNumberToName(len(table.Columns))
		f.SetColWidth(sheet, "A", last, 15)
		f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}

	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

// WriteDatabase пересоздает таблицы в SQLite-файле
func WriteDatabase(ctx context.Context, path string, tables []database.Table) error {
	db, err := database.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.WriteTables(ctx, tables)
}
