package memory

import (
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// userRepositoryInMemory — in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	addresses map[string]domain.Address
}

// NewUserRepository возвращает in-memory хранилище пользователей.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{
		users:     make(map[string]domain.User),
		addresses: make(map[string]domain.Address),
	}
}

// Create сохраняет пользователя; занятый email возвращает ErrEmailTaken.
func (r *userRepositoryInMemory) Create(u domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (r *userRepositoryInMemory) CreateAddress(a domain.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.addresses[a.ID] = a
	return nil
}

// GetAddress возвращает адрес владельца; чужой адрес неотличим от несуществующего.
func (r *userRepositoryInMemory) GetAddress(id, userID string) (domain.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.addresses[id]
	if !ok || a.UserID != userID {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return a, nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
