package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const (
	opTimeout = 5 * time.Second
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ, его позиции и списывает остатки одной транзакцией.
// Условие inventory >= qty в UPDATE делает списание безопасным при
// конкурентных заказах: не хватило — вся транзакция откатывается.
func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, status, payment_status, total_amount, refund_due,
			shipping_address_id, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		order.ID, order.UserID, string(order.Status), string(order.PaymentStatus),
		order.TotalAmount, order.RefundDue, nullIfEmpty(order.ShippingAddressID),
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderVersionConflict
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for _, item := range order.Items {
		res, execErr := tx.ExecContext(ctx, `
			UPDATE products
			SET inventory = inventory - $1, updated_at = NOW()
			WHERE id = $2 AND inventory >= $1
		`, item.Quantity, item.ProductID)
		if execErr != nil {
			err = fmt.Errorf("deduct inventory: %w", execErr)
			return err
		}
		affected, raErr := res.RowsAffected()
		if raErr != nil {
			err = fmt.Errorf("rows affected: %w", raErr)
			return err
		}
		if affected == 0 {
			err = domain.ErrInsufficientStock
			return err
		}

		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, quantity, unit_price, subtotal, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			item.ID, order.ID, item.ProductID, item.Quantity,
			item.UnitPrice, item.Subtotal, item.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}

	return nil
}

func (r *orderRepository) Get(id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getCtx(ctx, id)
}

func (r *orderRepository) getCtx(ctx context.Context, id string) (domain.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, payment_status, total_amount, refund_due,
		       COALESCE(shipping_address_id::text, ''), version, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items

	return order, nil
}

// GetOwned возвращает заказ владельца; чужой заказ неотличим от несуществующего.
func (r *orderRepository) GetOwned(id, userID string) (domain.Order, error) {
	order, err := r.Get(id)
	if err != nil {
		return domain.Order{}, err
	}
	if order.UserID != userID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *orderRepository) ListByUser(userID string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := `
		SELECT id, user_id, status, payment_status, total_amount, refund_due,
		       COALESCE(shipping_address_id::text, ''), version, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+" LIMIT $2", userID, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}

		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    refund_due = $3,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $5
		  AND version = $6
	`,
		string(order.Status), string(order.PaymentStatus), order.RefundDue,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return r.notFoundOrConflict(ctx, order.ID)
	}
	return nil
}

// CancelAndRestock фиксирует отмену и возвращает остатки одной транзакцией.
// Проверка версии в UPDATE отсекает конкурентную отмену: проигравшая
// транзакция откатывается целиком и остатки не восстанавливаются дважды.
func (r *orderRepository) CancelAndRestock(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    refund_due = $3,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $5
		  AND version = $6
	`,
		string(order.Status), string(order.PaymentStatus), order.RefundDue,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update cancelled order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		err = r.notFoundOrConflict(ctx, order.ID)
		return err
	}

	for _, item := range order.Items {
		if _, err = tx.ExecContext(ctx, `
			UPDATE products
			SET inventory = inventory + $1, updated_at = NOW()
			WHERE id = $2
		`, item.Quantity, item.ProductID); err != nil {
			return fmt.Errorf("restore inventory: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit cancel order: %w", err)
	}
	return nil
}

// GetItemOwned возвращает позицию заказа владельца вместе с заказом.
func (r *orderRepository) GetItemOwned(itemID, userID string) (domain.OrderItem, domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		item    domain.OrderItem
		orderID string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.subtotal, i.created_at
		FROM order_items i
		JOIN orders o ON o.id = i.order_id
		WHERE i.id = $1 AND o.user_id = $2
	`, itemID, userID).Scan(
		&item.ID, &orderID, &item.ProductID, &item.Quantity,
		&item.UnitPrice, &item.Subtotal, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.OrderItem{}, domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.OrderItem{}, domain.Order{}, fmt.Errorf("select order item: %w", err)
	}
	item.OrderID = orderID

	order, err := r.getCtx(ctx, orderID)
	if err != nil {
		return domain.OrderItem{}, domain.Order{}, err
	}
	return item, order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.Subtotal, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) notFoundOrConflict(ctx context.Context, orderID string) error {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM orders WHERE id = $1`, orderID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("check order exists: %w", err)
	}
	return domain.ErrOrderVersionConflict
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order         domain.Order
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&order.ID, &order.UserID, &status, &paymentStatus, &order.TotalAmount,
		&order.RefundDue, &order.ShippingAddressID, &order.Version,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	order.Status = domain.OrderStatus(status)
	order.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return order, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var _ domain.OrderRepository = (*orderRepository)(nil)
