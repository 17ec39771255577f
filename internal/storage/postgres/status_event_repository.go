package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type statusEventRepository struct {
	db *sql.DB
}

// NewStatusEventRepository создаёт PostgreSQL-реализацию StatusEventRepository.
func NewStatusEventRepository(store *Store) domain.StatusEventRepository {
	return &statusEventRepository{db: store.DB()}
}

func (r *statusEventRepository) Append(event domain.StatusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if event.Occurred.IsZero() {
		event.Occurred = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO order_status_events (order_id, status, description, occurred_at)
		VALUES ($1,$2,$3,$4)
	`, event.OrderID, string(event.Status), event.Description, event.Occurred); err != nil {
		return fmt.Errorf("append status event: %w", err)
	}

	return nil
}

func (r *statusEventRepository) List(orderID string) ([]domain.StatusEvent, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, status, description, occurred_at
		FROM order_status_events
		WHERE order_id = $1
		ORDER BY occurred_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.StatusEvent, 0)
	for rows.Next() {
		var event domain.StatusEvent
		var status string
		if err := rows.Scan(&event.OrderID, &status, &event.Description, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		event.Status = domain.OrderStatus(status)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}

	return events, nil
}

var _ domain.StatusEventRepository = (*statusEventRepository)(nil)
