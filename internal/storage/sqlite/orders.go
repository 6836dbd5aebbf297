package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

const orderColumns = `id, user_id, status, fulfillment, subtotal, fee, tax, total,
	table_number, special_instructions, cancel_reason, created_at, updated_at`

const itemColumns = `id, order_id, menu_item_id, name, price, quantity, subtotal, status`

type orderRow struct {
	ID                  string             `db:"id"`
	UserID              string             `db:"user_id"`
	Status              models.OrderStatus `db:"status"`
	Fulfillment         string             `db:"fulfillment"`
	Subtotal            decimal.Decimal    `db:"subtotal"`
	Fee                 decimal.Decimal    `db:"fee"`
	Tax                 decimal.Decimal    `db:"tax"`
	Total               decimal.Decimal    `db:"total"`
	TableNumber         sql.NullInt64      `db:"table_number"`
	SpecialInstructions string             `db:"special_instructions"`
	CancelReason        string             `db:"cancel_reason"`
	CreatedAt           int64              `db:"created_at"`
	UpdatedAt           int64              `db:"updated_at"`
}

func (r orderRow) model() models.Order {
	o := models.Order{
		ID:                  r.ID,
		UserID:              r.UserID,
		Status:              r.Status,
		Fulfillment:         models.Fulfillment(r.Fulfillment),
		Subtotal:            r.Subtotal,
		Fee:                 r.Fee,
		Tax:                 r.Tax,
		Total:               r.Total,
		SpecialInstructions: r.SpecialInstructions,
		CancelReason:        r.CancelReason,
		CreatedAt:           time.UnixMilli(r.CreatedAt).UTC(),
		UpdatedAt:           time.UnixMilli(r.UpdatedAt).UTC(),
	}
	if r.TableNumber.Valid {
		n := int(r.TableNumber.Int64)
		o.TableNumber = &n
	}
	return o
}

type itemRow struct {
	ID         string            `db:"id"`
	OrderID    string            `db:"order_id"`
	MenuItemID int64             `db:"menu_item_id"`
	Name       string            `db:"name"`
	Price      decimal.Decimal   `db:"price"`
	Quantity   int               `db:"quantity"`
	Subtotal   decimal.Decimal   `db:"subtotal"`
	Status     models.ItemStatus `db:"status"`
}

func (r itemRow) model() models.OrderItem {
	return models.OrderItem{
		ID:         r.ID,
		MenuItemID: r.MenuItemID,
		Name:       r.Name,
		Price:      r.Price,
		Quantity:   r.Quantity,
		Subtotal:   r.Subtotal,
		Status:     r.Status,
	}
}

// CreateOrder persists an order and its items in one transaction.
func (s *SQLiteStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var table any
	if order.TableNumber != nil {
		table = *order.TableNumber
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Status.String(), string(order.Fulfillment),
		order.Subtotal.String(), order.Fee.String(), order.Tax.String(), order.Total.String(),
		table, order.SpecialInstructions, order.CancelReason,
		order.CreatedAt.UnixMilli(), order.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, position, menu_item_id, name, price, quantity, subtotal, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, order.ID, i, item.MenuItemID, item.Name, item.Price.String(),
			item.Quantity, item.Subtotal.String(), item.Status.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by ID, including all items.
func (s *SQLiteStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var items []itemRow
	if err := s.db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ? ORDER BY position`, id,
	); err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	order := row.model()
	for _, item := range items {
		order.Items = append(order.Items, item.model())
	}
	return &order, nil
}

// ListOrders returns matching orders newest first, each with its items.
func (s *SQLiteStore) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1 = 1`
	var args []any
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			names[i] = st.String()
		}
		query += ` AND status IN (?)`
		args = append(args, names)
	}
	query += ` ORDER BY created_at DESC, id`

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build order query: %w", err)
	}

	var rows []orderRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	itemQuery, itemArgs, err := sqlx.In(
		`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY order_id, position`, ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build item query: %w", err)
	}
	var items []itemRow
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(itemQuery), itemArgs...); err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	byOrder := make(map[string][]models.OrderItem, len(rows))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item.model())
	}

	orders := make([]models.Order, len(rows))
	for i, row := range rows {
		orders[i] = row.model()
		orders[i].Items = byOrder[row.ID]
	}
	return orders, nil
}

// UpdateItemStatus writes one item status and the derived order status together.
func (s *SQLiteStore) UpdateItemStatus(ctx context.Context, orderID, itemID string, item models.ItemStatus, status models.OrderStatus) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE order_items SET status = ? WHERE id = ? AND order_id = ?`,
		item.String(), itemID, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if err := requireRow(res, "order item "+itemID); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status.String(), time.Now().UnixMilli(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if err := requireRow(res, "order "+orderID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CancelOrder marks an order cancelled.
func (s *SQLiteStore) CancelOrder(ctx context.Context, orderID, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, cancel_reason = ?, updated_at = ? WHERE id = ?`,
		models.OrderCancelled.String(), reason, time.Now().UnixMilli(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return requireRow(res, "order "+orderID)
}
