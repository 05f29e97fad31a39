package model

import "time"

// DefaultCategoryColor is used when a category is created without a color.
const DefaultCategoryColor = "#6366F1"

// Category is a single-valued grouping for todos, shown as a colored chip.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
