package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
)

const categoryColumns = "id, name, color, created_at"

// CreateCategory inserts a new category. Names are unique.
func (s *SQLStore) CreateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return model.Category{}, apperr.Validationf("category name is required")
	}
	if category.Color == "" {
		category.Color = model.DefaultCategoryColor
	}
	if category.ID == "" {
		category.ID = uuid.New().String()
	}

	_, err := s.exec(ctx,
		"INSERT INTO categories (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		category.ID, category.Name, category.Color, time.Now().UTC(),
	)
	if err != nil {
		return model.Category{}, s.wrap(err, "creating category %q", category.Name)
	}
	return s.GetCategory(ctx, category.ID)
}

// GetCategory retrieves a single category by ID.
func (s *SQLStore) GetCategory(ctx context.Context, id string) (model.Category, error) {
	var c model.Category
	if err := s.get(ctx, &c, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id); err != nil {
		return model.Category{}, s.wrap(err, "category %s", id)
	}
	return c, nil
}

// UpdateCategory renames or recolors a category.
func (s *SQLStore) UpdateCategory(ctx context.Context, category model.Category) (model.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return model.Category{}, apperr.Validationf("category name is required")
	}
	if category.Color == "" {
		category.Color = model.DefaultCategoryColor
	}

	ok, err := s.exec(ctx,
		"UPDATE categories SET name = ?, color = ? WHERE id = ?",
		category.Name, category.Color, category.ID,
	)
	if err != nil {
		return model.Category{}, s.wrap(err, "updating category %q", category.Name)
	}
	if !ok {
		return model.Category{}, apperr.NotFoundf("category %s", category.ID)
	}
	return s.GetCategory(ctx, category.ID)
}

// DeleteCategory removes a category. Todos in it become uncategorized.
func (s *SQLStore) DeleteCategory(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *SQLStore) error {
		if _, err := tx.exec(ctx,
			"UPDATE todos SET category_id = NULL, updated_at = ? WHERE category_id = ?",
			time.Now().UTC(), id); err != nil {
			return tx.wrap(err, "detaching todos from category %s", id)
		}
		ok, err := tx.exec(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return tx.wrap(err, "deleting category %s", id)
		}
		if !ok {
			return apperr.NotFoundf("category %s", id)
		}
		return nil
	})
}

// ListCategories retrieves all categories ordered by name.
func (s *SQLStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.selectAll(ctx, &categories, "SELECT "+categoryColumns+" FROM categories ORDER BY name"); err != nil {
		return nil, s.wrap(err, "querying categories")
	}
	return categories, nil
}
