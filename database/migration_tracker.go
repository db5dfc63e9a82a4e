package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration шаг схемы; применяется один раз и отмечается в schema_migrations
type migration struct {
	name       string
	statements []string
}

// applyMigrations применяет еще не примененные миграции в порядке списка
// Каждая миграция выполняется в своей транзакции вместе с отметкой о применении
func applyMigrations(ctx context.Context, conn *sql.DB, migrations []migration) (int, error) {
	_, err := conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, migrationsTableName))
	if err != nil {
		return 0, fmt.Errorf("failed to ensure %s table: %w", migrationsTableName, err)
	}

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range migrations {
		if applied[m.name] {
			continue
		}
		if err := applyMigration(ctx, conn, m); err != nil {
			return count, err
		}
		applied[m.name] = true
		count++
		log.Printf("[Migrations] %s applied successfully", m.name)
	}
	return count, nil
}

func appliedMigrations(ctx context.Context, conn *sql.DB) (map[string]bool, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s`, migrationsTableName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", migrationsTableName, err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration name: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, conn *sql.DB, m migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %s: failed to begin transaction: %w", m.name, err)
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}

	query := fmt.Sprintf(`INSERT INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := tx.ExecContext(ctx, query, m.name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", m.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %s: failed to commit: %w", m.name, err)
	}
	return nil
}
