package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTable таблицы нет в выходной БД
	ErrUnknownTable = errors.New("unknown table")
	// ErrNotFound запись не найдена
	ErrNotFound = errors.New("not found")
)

// Column описание колонки выходной таблицы
type Column struct {
	Name       string
	Type       string // INTEGER, TEXT, REAL, BOOLEAN
	PrimaryKey bool
	References string // имя родительской таблицы (ссылка на ее id)
}

// Table выходная таблица: схема и строки
// Значение nil в строке означает отсутствующее значение
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// ColumnNames имена колонок по порядку
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TableInfo таблица выходной БД и число строк в ней
type TableInfo struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

// internalTables служебные таблицы, не отдаваемые наружу
var internalTables = map[string]bool{
	migrationsTableName: true,
	"geocode_cache":     true,
}

// WriteTables пересоздает таблицы и заполняет их в одной транзакции
// Таблицы должны идти в порядке зависимостей: родительские раньше дочерних
func (db *DB) WriteTables(ctx context.Context, tables []Table) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := len(tables) - 1; i >= 0; i-- {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, quoteIdent(tables[i].Name))); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", tables[i].Name, err)
		}
	}

	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, createTableSQL(table)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.Name, err)
		}
		if err := insertRows(ctx, tx, table); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tables: %w", err)
	}
	return nil
}

func createTableSQL(table Table) string {
	defs := make([]string, 0, len(table.Columns))
	var refs []string
	for _, c := range table.Columns {
		def := quoteIdent(c.Name) + " " + c.Type
		if c.PrimaryKey {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
		if c.References != "" {
			refs = append(refs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(id)", quoteIdent(c.Name), quoteIdent(c.References)))
		}
	}
	defs = append(defs, refs...)

	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", quoteIdent(table.Name), strings.Join(defs, ",\n\t"))
}

func insertRows(ctx context.Context, tx *sql.Tx, table Table) error {
	if len(table.Rows) == 0 {
		return nil
	}

	names := table.ColumnNames()
	for i := range names {
		names[i] = quoteIdent(names[i])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table.Name), strings.Join(names, ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", table.Name, err)
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i+1, table.Name, err)
		}
	}
	return nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ListTables возвращает пользовательские таблицы и число строк в каждой
func (db *DB) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		if !internalTables[name] {
			names = append(names, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		info := TableInfo{Name: name}
		query := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(name))
		if err := db.conn.QueryRowContext(ctx, query).Scan(&info.Rows); err != nil {
			return nil, fmt.Errorf("failed to count rows in %s: %w", name, err)
		}
		tables = append(tables, info)
	}
	return tables, nil
}

// TableRows возвращает страницу строк таблицы в виде "колонка -> значение"
func (db *DB) TableRows(ctx context.Context, name string, limit, offset int) ([]map[string]any, error) {
	tables, err := db.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	known := false
	for _, t := range tables {
		if t.Name == name {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}

	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY rowid LIMIT ? OFFSET ?`, quoteIdent(name))
	rows, err := db.conn.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]map[string]any, 0, limit)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row of %s: %w", name, err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}
