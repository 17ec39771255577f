package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository создаёт PostgreSQL-реализацию CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

// GetOrCreate лениво создаёт корзину. ON CONFLICT гасит гонку двух
// первых обращений одного пользователя.
func (r *cartRepository) GetOrCreate(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1,$2,$3,$3)
		ON CONFLICT (user_id) DO NOTHING
	`, uuid.NewString(), userID, now); err != nil {
		return domain.Cart{}, fmt.Errorf("create cart: %w", err)
	}

	return r.getCtx(ctx, userID)
}

func (r *cartRepository) Get(userID string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getCtx(ctx, userID)
}

func (r *cartRepository) getCtx(ctx context.Context, userID string) (domain.Cart, error) {
	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cart_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC, id ASC
	`, cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return domain.Cart{}, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("iterate cart items: %w", err)
	}
	return cart, nil
}

// AddItem добавляет товар в корзину; существующая позиция увеличивает количество.
func (r *cartRepository) AddItem(userID, productID string, qty int32) (domain.CartItem, error) {
	cart, err := r.GetOrCreate(userID)
	if err != nil {
		return domain.CartItem{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now().UTC()
	var item domain.CartItem
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING id, cart_id, product_id, quantity, created_at, updated_at
	`, uuid.NewString(), cart.ID, productID, qty, now).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) GetItem(userID, itemID string) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, `
		SELECT i.id, i.cart_id, i.product_id, i.quantity, i.created_at, i.updated_at
		FROM cart_items i
		JOIN carts c ON c.id = i.cart_id
		WHERE i.id = $1 AND c.user_id = $2
	`, itemID, userID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, fmt.Errorf("select cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) UpdateItemQuantity(userID, itemID string, qty int32) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var item domain.CartItem
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items i
		SET quantity = $1, updated_at = NOW()
		FROM carts c
		WHERE i.cart_id = c.id AND i.id = $2 AND c.user_id = $3
		RETURNING i.id, i.cart_id, i.product_id, i.quantity, i.created_at, i.updated_at
	`, qty, itemID, userID).Scan(
		&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, fmt.Errorf("update cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) RemoveItem(userID, itemID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items i
		USING carts c
		WHERE i.cart_id = c.id AND i.id = $1 AND c.user_id = $2
	`, itemID, userID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) Clear(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items i
		USING carts c
		WHERE i.cart_id = c.id AND c.user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	return nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
