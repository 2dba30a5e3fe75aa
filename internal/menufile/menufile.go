// Package menufile handles importing and exporting menu documents.
//
// A menu document is the json-server style file the dashboard was first
// prototyped against:
//
//	{"foods": [{"id": 1, "name": "Ao molho", ...}]}
//
// A bare JSON array of foods is accepted on import as well.
package menufile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bryan-buckman/gorestaurant/internal/model"
)

// Document represents the root of a menu document.
type Document struct {
	Foods []Entry `json:"foods"`
}

// Entry is a food as written in a menu document. Available is a pointer so
// entries that omit it can default to true.
type Entry struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Available   *bool  `json:"available,omitempty"`
}

// Parse reads a menu document and returns its foods in file order.
func Parse(r io.Reader) ([]model.Food, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read menu: %w", err)
	}
	data = bytes.TrimSpace(data)

	var entries []Entry
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode menu: %w", err)
		}
	} else {
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode menu: %w", err)
		}
		entries = doc.Foods
	}

	foods := make([]model.Food, 0, len(entries))
	for i, e := range entries {
		f := model.Food{
			ID:          e.ID,
			Name:        e.Name,
			Image:       e.Image,
			Price:       e.Price,
			Description: e.Description,
			Available:   e.Available == nil || *e.Available,
		}
		if err := f.Input().Validate(); err != nil {
			return nil, fmt.Errorf("food #%d: %w", i+1, err)
		}
		foods = append(foods, f)
	}
	return foods, nil
}

// Export generates a menu document.
func Export(foods []model.Food) ([]byte, error) {
	doc := Document{Foods: make([]Entry, 0, len(foods))}
	for _, f := range foods {
		available := f.Available
		doc.Foods = append(doc.Foods, Entry{
			ID:          f.ID,
			Name:        f.Name,
			Image:       f.Image,
			Price:       f.Price,
			Description: f.Description,
			Available:   &available,
		})
	}
	output, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(output, '\n'), nil
}
