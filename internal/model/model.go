// Package model defines shared data structures.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFood is wrapped by every validation failure.
var ErrInvalidFood = errors.New("invalid food")

// Food represents one menu entry.
type Food struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"` // decimal encoded as text
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// FoodInput is the shape accepted by the add and edit forms.
// The server assigns the ID; availability is set separately.
type FoodInput struct {
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// Validate checks the fields a food must carry.
func (in FoodInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFood)
	}
	p, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return fmt.Errorf("%w: price %q is not a decimal", ErrInvalidFood, in.Price)
	}
	if p.Sign() < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidFood)
	}
	return nil
}

// WithAvailable builds the food body sent on create.
func (in FoodInput) WithAvailable(available bool) Food {
	return Food{
		Name:        in.Name,
		Image:       in.Image,
		Price:       in.Price,
		Description: in.Description,
		Available:   available,
	}
}

// Input returns the editable fields of f.
func (f Food) Input() FoodInput {
	return FoodInput{
		Name:        f.Name,
		Image:       f.Image,
		Price:       f.Price,
		Description: f.Description,
	}
}

// Merge returns f with the input fields overriding its own.
// ID and Available are kept from f.
func (f Food) Merge(in FoodInput) Food {
	merged := in.WithAvailable(f.Available)
	merged.ID = f.ID
	return merged
}

// FormattedPrice renders the price as Brazilian reais, e.g. "R$ 19,90".
// Prices that don't parse are returned as-is.
func (f Food) FormattedPrice() string {
	p, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil {
		return f.Price
	}
	return "R$ " + strings.Replace(p.StringFixed(2), ".", ",", 1)
}
