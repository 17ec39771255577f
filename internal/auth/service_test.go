package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
)

func newAuthService() *Service {
	return NewService(memory.NewUserRepository(), NewTokenManager("test-secret", time.Hour), nil)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newAuthService()

	session, err := s.Register("User@Example.com", "alice", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", session.User.Email, "email is normalized")
	assert.NotEmpty(t, session.Token)
	assert.NotEqual(t, "correct horse battery", session.User.PasswordHash)

	login, err := s.Login("user@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)

	claims, err := s.Authenticate(login.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.False(t, claims.IsStaff)
}

func TestRegister_Validation(t *testing.T) {
	s := newAuthService()

	_, err := s.Register("not-an-email", "", "short")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["email"], "Enter a valid email address.")
	assert.Contains(t, verr.Fields["username"], "Username is required.")
	assert.Contains(t, verr.Fields["password"], "Password must be at least 8 characters.")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newAuthService()

	_, err := s.Register("user@example.com", "alice", "correct horse battery")
	require.NoError(t, err)

	_, err = s.Register("USER@example.com", "bob", "correct horse battery")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newAuthService()

	_, err := s.Register("user@example.com", "alice", "correct horse battery")
	require.NoError(t, err)

	_, err = s.Login("user@example.com", "wrong password")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Несуществующий пользователь даёт ту же ошибку, что и неверный пароль.
	_, err = s.Login("nobody@example.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenManager_Expiry(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute)
	issued := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, err := m.Issue("user-1", true)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.IsStaff)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue("user-1", false)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateAddress(t *testing.T) {
	s := newAuthService()

	session, err := s.Register("user@example.com", "alice", "correct horse battery")
	require.NoError(t, err)

	address, err := s.CreateAddress(session.User.ID, domain.Address{
		FirstName:    "Alice",
		AddressLine1: "1 Main St",
		City:         "Springfield",
		Country:      "US",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, address.ID)

	got, err := s.GetAddress(address.ID, session.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got.City)

	// Чужой адрес неотличим от несуществующего.
	_, err = s.GetAddress(address.ID, "someone-else")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestCreateAddress_Validation(t *testing.T) {
	s := newAuthService()

	_, err := s.CreateAddress("user-1", domain.Address{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields["address_line1"], "Address line is required.")
	assert.Contains(t, verr.Fields["city"], "City is required.")
	assert.Contains(t, verr.Fields["country"], "Country is required.")
}
