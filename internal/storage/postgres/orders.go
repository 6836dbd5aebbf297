package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mmynk/bistro/internal/models"
	"github.com/mmynk/bistro/internal/storage"
)

const orderColumns = `id, user_id, status, fulfillment, subtotal::text, fee::text, tax::text, total::text,
	table_number, special_instructions, cancel_reason, created_at, updated_at`

const itemColumns = `id, order_id, menu_item_id, name, price::text, quantity, subtotal::text, status`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		o                       models.Order
		status, fulfillment     string
		subtotal, fee, tax, tot string
		table                   *int32
	)
	if err := row.Scan(&o.ID, &o.UserID, &status, &fulfillment, &subtotal, &fee, &tax, &tot,
		&table, &o.SpecialInstructions, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if o.Status, err = models.ParseOrderStatus(status); err != nil {
		return nil, err
	}
	o.Fulfillment = models.Fulfillment(fulfillment)
	money := []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, subtotal}, {&o.Fee, fee}, {&o.Tax, tax}, {&o.Total, tot}}
	for _, m := range money {
		if *m.dst, err = parseMoney(m.src); err != nil {
			return nil, err
		}
	}
	if table != nil {
		n := int(*table)
		o.TableNumber = &n
	}
	o.CreatedAt = o.CreatedAt.UTC()
	o.UpdatedAt = o.UpdatedAt.UTC()
	return &o, nil
}

func scanItem(row pgx.Row) (orderID string, item models.OrderItem, err error) {
	var price, subtotal, status string
	if err = row.Scan(&item.ID, &orderID, &item.MenuItemID, &item.Name, &price,
		&item.Quantity, &subtotal, &status); err != nil {
		return "", item, err
	}
	if item.Price, err = parseMoney(price); err != nil {
		return "", item, err
	}
	if item.Subtotal, err = parseMoney(subtotal); err != nil {
		return "", item, err
	}
	if item.Status, err = models.ParseItemStatus(status); err != nil {
		return "", item, err
	}
	return orderID, item, nil
}

// CreateOrder persists an order and its items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO orders (id, user_id, status, fulfillment, subtotal, fee, tax, total,
			table_number, special_instructions, cancel_reason, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, $8::numeric, $9, $10, $11, $12, $13)`,
		order.ID, order.UserID, order.Status.String(), string(order.Fulfillment),
		order.Subtotal.String(), order.Fee.String(), order.Tax.String(), order.Total.String(),
		order.TableNumber, order.SpecialInstructions, order.CancelReason,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		batch.Queue(
			`INSERT INTO order_items (id, order_id, position, menu_item_id, name, price, quantity, subtotal, status)
			 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8::numeric, $9)`,
			item.ID, order.ID, i, item.MenuItemID, item.Name, item.Price.String(),
			item.Quantity, item.Subtotal.String(), item.Status.String(),
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert order items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetOrder retrieves an order by ID, including all items.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if notFound(err) {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := s.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	return order, nil
}

// ListOrders returns matching orders newest first, each with its items.
func (s *Store) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1 = 1`
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if len(filter.Statuses) > 0 {
		names := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			names[i] = st.String()
		}
		args = append(args, names)
		query += fmt.Sprintf(` AND status = ANY($%d)`, len(args))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (s *Store) loadItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, position`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	byOrder := make(map[string][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		orderID, item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		byOrder[orderID] = append(byOrder[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}
	return byOrder, nil
}

// UpdateItemStatus writes one item status and the derived order status together.
func (s *Store) UpdateItemStatus(ctx context.Context, orderID, itemID string, item models.ItemStatus, status models.OrderStatus) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE order_items SET status = $1 WHERE id = $2 AND order_id = $3`,
		item.String(), itemID, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if err := requireRow(tag, "order item "+itemID); err != nil {
		return err
	}

	tag, err = tx.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		status.String(), orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	if err := requireRow(tag, "order "+orderID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CancelOrder marks an order cancelled.
func (s *Store) CancelOrder(ctx context.Context, orderID, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $1, cancel_reason = $2, updated_at = now() WHERE id = $3`,
		models.OrderCancelled.String(), reason, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	return requireRow(tag, "order "+orderID)
}
