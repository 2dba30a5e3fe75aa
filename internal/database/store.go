// Package database provides storage backends for the food resource.
package database

import (
	"errors"

	"github.com/bryan-buckman/gorestaurant/internal/config"
	"github.com/bryan-buckman/gorestaurant/internal/model"
)

// ErrNotFound is returned when no food has the requested ID.
var ErrNotFound = errors.New("food not found")

// Store defines the interface for database operations.
// Both SQLite and PostgreSQL implementations satisfy this interface.
type Store interface {
	Close() error

	// DatabaseType returns the name of the database backend ("SQLite" or "PostgreSQL").
	DatabaseType() string

	// Food operations
	ListFoods() ([]model.Food, error)
	GetFood(id int64) (*model.Food, error)
	CreateFood(f model.Food) (*model.Food, error)
	// UpdateFood overwrites the editable fields of a food. A nil available
	// keeps the stored flag.
	UpdateFood(id int64, in model.FoodInput, available *bool) (*model.Food, error)
	DeleteFood(id int64) error

	// ImportFoods inserts foods keeping their IDs when set. Existing IDs are
	// overwritten. Returns the number of rows written.
	ImportFoods(foods []model.Food) (int, error)
}

// Open picks PostgreSQL when a connection string is configured, SQLite otherwise.
func Open(cfg config.DatabaseConfig) (Store, error) {
	if cfg.URL != "" {
		return NewPostgres(cfg.URL)
	}
	return New(cfg.SQLitePath)
}
