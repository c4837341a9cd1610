package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryNames is the starter set created when no categories exist.
var DefaultCategoryNames = []string{"Electronics", "Documents", "Clothing and accessories"}

// Category groups items, e.g. "Documents".
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// NewCategory creates a Category with a fresh ID.
func NewCategory(name string) (*Category, error) {
	c := &Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
	if c.Name == "" {
		return nil, NewValidationError("name", "Category name is required.", nil)
	}
	return c, nil
}
