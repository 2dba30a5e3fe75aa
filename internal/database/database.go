// Package database provides SQLite storage for the food resource.
package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/bryan-buckman/gorestaurant/internal/model"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
}

var _ Store = (*DB)(nil)

// New opens or creates an SQLite database at the given path.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Enable WAL mode for better concurrency.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent handlers.
	conn.SetMaxOpenConns(1)
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DatabaseType returns the database backend name.
func (db *DB) DatabaseType() string {
	return "SQLite"
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS foods (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL DEFAULT '0',
		description TEXT NOT NULL DEFAULT '',
		available INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// --- Food Methods ---

// ListFoods returns all foods ordered by ID.
func (db *DB) ListFoods() ([]model.Food, error) {
	rows, err := db.conn.Query("SELECT id, name, image, price, description, available FROM foods ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFoods(rows)
}

// GetFood returns a single food.
func (db *DB) GetFood(id int64) (*model.Food, error) {
	var f model.Food
	err := db.conn.QueryRow("SELECT id, name, image, price, description, available FROM foods WHERE id = ?", id).
		Scan(&f.ID, &f.Name, &f.Image, &f.Price, &f.Description, &f.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFood inserts f with a fresh ID and returns the stored row.
func (db *DB) CreateFood(f model.Food) (*model.Food, error) {
	res, err := db.conn.Exec("INSERT INTO foods (name, image, price, description, available) VALUES (?, ?, ?, ?, ?)",
		f.Name, f.Image, f.Price, f.Description, f.Available)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return db.GetFood(id)
}

// UpdateFood overwrites the editable fields in one statement.
func (db *DB) UpdateFood(id int64, in model.FoodInput, available *bool) (*model.Food, error) {
	var flag sql.NullBool
	if available != nil {
		flag = sql.NullBool{Bool: *available, Valid: true}
	}
	var f model.Food
	err := db.conn.QueryRow(`
		UPDATE foods SET name = ?, image = ?, price = ?, description = ?, available = COALESCE(?, available)
		WHERE id = ?
		RETURNING id, name, image, price, description, available`,
		in.Name, in.Image, in.Price, in.Description, flag, id,
	).Scan(&f.ID, &f.Name, &f.Image, &f.Price, &f.Description, &f.Available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFood removes a food.
func (db *DB) DeleteFood(id int64) error {
	res, err := db.conn.Exec("DELETE FROM foods WHERE id = ?", id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ImportFoods writes foods in one transaction.
func (db *DB) ImportFoods(foods []model.Food) (int, error) {
	if len(foods) == 0 {
		return 0, nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	withID, err := tx.Prepare(`
		INSERT INTO foods (id, name, image, price, description, available) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, image = excluded.image,
			price = excluded.price, description = excluded.description, available = excluded.available`)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer withID.Close()
	withoutID, err := tx.Prepare("INSERT INTO foods (name, image, price, description, available) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer withoutID.Close()

	for _, f := range foods {
		if f.ID > 0 {
			_, err = withID.Exec(f.ID, f.Name, f.Image, f.Price, f.Description, f.Available)
		} else {
			_, err = withoutID.Exec(f.Name, f.Image, f.Price, f.Description, f.Available)
		}
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("import %q: %w", f.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(foods), nil
}

func scanFoods(rows *sql.Rows) ([]model.Food, error) {
	foods := []model.Food{}
	for rows.Next() {
		var f model.Food
		if err := rows.Scan(&f.ID, &f.Name, &f.Image, &f.Price, &f.Description, &f.Available); err != nil {
			return nil, err
		}
		foods = append(foods, f)
	}
	return foods, rows.Err()
}
