package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/models"
	"github.com/julianstephens/tracker/internal/storage"
)

func scanCategory(row rowScanner) (models.Category, error) {
	var c models.Category
	var title, createdAt sql.NullString
	if err := row.Scan(&c.ID, &title, &createdAt); err != nil {
		return models.Category{}, err
	}
	c.Title = title.String

	if err := storage.CheckCategoryRow(c); err != nil {
		return models.Category{}, err
	}
	created, err := storage.ParseTimestamp("created_at", createdAt.String)
	if err != nil {
		return models.Category{}, fmt.Errorf("category %s: %w", c.ID, err)
	}
	c.CreatedAt = created
	return c, nil
}

func (s *Store) FetchAllCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, created_at FROM categories ORDER BY created_at, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			if errors.Is(err, errors.ErrConversion) {
				storage.SkipRow("category", err)
				continue
			}
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Store) GetCategory(ctx context.Context, id string) (models.Category, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, title, created_at FROM categories WHERE id = ?", id)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Category{}, fmt.Errorf("category %s: %w", id, errors.ErrNotFound)
		}
		return models.Category{}, err
	}
	return c, nil
}

func (s *Store) InsertCategory(ctx context.Context, c models.Category) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, title, created_at) VALUES (?, ?, ?)",
		c.ID, c.Title, c.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("category %s: %w", id, errors.ErrNotFound)
	}
	return nil
}
