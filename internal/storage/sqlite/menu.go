package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
)

const menuColumns = `id, name, description, price, image_url, category, preparation_time, available`

type menuRow struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	Price           decimal.Decimal `db:"price"`
	ImageURL        string          `db:"image_url"`
	Category        string          `db:"category"`
	PreparationTime int             `db:"preparation_time"`
	Available       bool            `db:"available"`
}

func (r menuRow) model() models.MenuItem {
	return models.MenuItem{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		ImageURL:        r.ImageURL,
		Category:        r.Category,
		PreparationTime: r.PreparationTime,
		Available:       r.Available,
	}
}

// CreateMenuItem inserts a new item and populates item.ID.
func (s *SQLiteStore) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO menu_items (name, description, price, image_url, category, preparation_time, available, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.Category,
		item.PreparationTime, item.Available, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read menu item id: %w", err)
	}
	item.ID = id
	return nil
}

// GetMenuItem retrieves a menu item by ID.
func (s *SQLiteStore) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	var row menuRow
	err := s.db.GetContext(ctx, &row, `SELECT `+menuColumns+` FROM menu_items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("menu item %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	item := row.model()
	return &item, nil
}

// ListMenuItems returns the whole catalog.
func (s *SQLiteStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	var rows []menuRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`,
	); err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	items := make([]models.MenuItem, len(rows))
	for i, row := range rows {
		items[i] = row.model()
	}
	return items, nil
}

// UpdateMenuItem overwrites an existing item.
func (s *SQLiteStore) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE menu_items
		 SET name = ?, description = ?, price = ?, image_url = ?, category = ?,
		     preparation_time = ?, available = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.Category,
		item.PreparationTime, item.Available, time.Now().Unix(), item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return requireRow(res, fmt.Sprintf("menu item %d", item.ID))
}

// DeleteMenuItem removes an item. Order history keeps its snapshots.
func (s *SQLiteStore) DeleteMenuItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return requireRow(res, fmt.Sprintf("menu item %d", id))
}

// requireRow maps "no rows affected" to models.ErrNotFound.
func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
