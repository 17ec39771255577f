package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository создаёт PostgreSQL-реализацию UserRepository.
func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{db: store.DB()}
}

func (r *userRepository) Create(u domain.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, is_staff, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, u.ID, u.Email, u.Username, u.PasswordHash, u.IsStaff, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(id string) (domain.User, error) {
	return r.getWhere(`id = $1`, id)
}

func (r *userRepository) GetByEmail(email string) (domain.User, error) {
	return r.getWhere(`LOWER(email) = LOWER($1)`, email)
}

func (r *userRepository) getWhere(where string, arg interface{}) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var u domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, is_staff, created_at
		FROM users
		WHERE `+where, arg,
	).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *userRepository) CreateAddress(a domain.Address) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (
			id, user_id, first_name, last_name, address_line1, address_line2,
			city, postal_code, country, phone_number, is_default, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID, a.UserID, a.FirstName, a.LastName, a.AddressLine1, a.AddressLine2,
		a.City, a.PostalCode, a.Country, a.PhoneNumber, a.IsDefault, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}
	return nil
}

func (r *userRepository) GetAddress(id, userID string) (domain.Address, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var a domain.Address
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, first_name, last_name, address_line1, address_line2,
		       city, postal_code, country, phone_number, is_default, created_at
		FROM addresses
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&a.ID, &a.UserID, &a.FirstName, &a.LastName, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.PostalCode, &a.Country, &a.PhoneNumber, &a.IsDefault, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, domain.ErrAddressNotFound
		}
		return domain.Address{}, fmt.Errorf("select address: %w", err)
	}
	return a, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
