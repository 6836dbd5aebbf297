package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mmynk/bistro/internal/models"
)

const menuColumns = `id, name, description, price::text, image_url, category, preparation_time, available`

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	var (
		item  models.MenuItem
		price string
	)
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &price, &item.ImageURL,
		&item.Category, &item.PreparationTime, &item.Available); err != nil {
		return nil, err
	}
	p, err := parseMoney(price)
	if err != nil {
		return nil, err
	}
	item.Price = p
	return &item, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, item *models.MenuItem) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO menu_items (name, description, price, image_url, category, preparation_time, available)
		 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
		 RETURNING id`,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.Category,
		item.PreparationTime, item.Available,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

func (s *Store) GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error) {
	item, err := scanMenuItem(s.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id))
	if notFound(err) {
		return nil, fmt.Errorf("menu item %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return item, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate menu items: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE menu_items
		 SET name = $1, description = $2, price = $3::numeric, image_url = $4, category = $5,
		     preparation_time = $6, available = $7, updated_at = now()
		 WHERE id = $8`,
		item.Name, item.Description, item.Price.String(), item.ImageURL, item.Category,
		item.PreparationTime, item.Available, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	return requireRow(tag, fmt.Sprintf("menu item %d", item.ID))
}

func (s *Store) DeleteMenuItem(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	return requireRow(tag, fmt.Sprintf("menu item %d", id))
}
