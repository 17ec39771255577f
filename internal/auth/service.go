package auth

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Session — результат успешной аутентификации.
type Session struct {
	User  domain.User
	Token string
}

// Service реализует регистрацию, вход и адреса доставки.
type Service struct {
	users  domain.UserRepository
	tokens *TokenManager
	logger *log.Entry
	now    func() time.Time
}

// NewService создаёт сервис аутентификации.
func NewService(users domain.UserRepository, tokens *TokenManager, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "auth")
	}
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register создаёт учётную запись и сразу выдаёт токен.
func (s *Service) Register(email, username, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	verr := domain.NewValidationError()
	if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "Enter a valid email address.")
	}
	if username == "" {
		verr.Add("username", "Username is required.")
	}
	if len(password) < 8 {
		verr.Add("password", "Password must be at least 8 characters.")
	}
	if !verr.Empty() {
		return Session{}, verr
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Session{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(user); err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.IsStaff)
	if err != nil {
		return Session{}, err
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return Session{User: user, Token: token}, nil
}

// Login проверяет учётные данные и выдаёт токен.
// Несуществующий email и неверный пароль неразличимы для вызывающего.
func (s *Service) Login(email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return Session{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.IsStaff)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

// Authenticate проверяет токен и возвращает claims.
func (s *Service) Authenticate(token string) (Claims, error) {
	return s.tokens.Parse(token)
}

// CreateAddress сохраняет адрес доставки пользователя.
func (s *Service) CreateAddress(userID string, address domain.Address) (domain.Address, error) {
	verr := domain.NewValidationError()
	if address.AddressLine1 == "" {
		verr.Add("address_line1", "Address line is required.")
	}
	if address.City == "" {
		verr.Add("city", "City is required.")
	}
	if address.Country == "" {
		verr.Add("country", "Country is required.")
	}
	if !verr.Empty() {
		return domain.Address{}, verr
	}

	address.ID = uuid.NewString()
	address.UserID = userID
	address.CreatedAt = s.now()
	if err := s.users.CreateAddress(address); err != nil {
		return domain.Address{}, err
	}
	return address, nil
}

// GetAddress возвращает адрес владельца.
func (s *Service) GetAddress(id, userID string) (domain.Address, error) {
	return s.users.GetAddress(id, userID)
}
