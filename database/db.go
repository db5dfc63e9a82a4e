package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DB обертка над подключением к SQLite
type DB struct {
	conn *sql.DB
	path string
}

// Open открывает базу данных SQLite
func Open(dbPath string) (*DB, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получит пустую БД без таблиц.
	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return OpenWithConfig(dbPath, config)
}

// isInMemory определяет, что путь относится к in-memory SQLite
func isInMemory(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?mode=memory&cache=shared также хранит БД в памяти
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// OpenWithConfig открывает базу данных SQLite с настройками пула соединений
func OpenWithConfig(dbPath string, config DBConfig) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		// SQLite плохо справляется с большим количеством одновременных соединений
		conn.SetMaxOpenConns(10)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if !isInMemory(dbPath) {
		// WAL позволяет читать БД (например, из API) во время записи
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			log.Printf("[DB] Warning: Failed to enable WAL mode: %v", err)
		}
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close закрывает подключение
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Conn возвращает *sql.DB для прямого доступа
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path путь, с которым была открыта БД
func (db *DB) Path() string {
	return db.path
}
