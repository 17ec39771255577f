package domain

import "time"

// User — учётная запись покупателя или сотрудника.
type User struct {
	ID       string
	Email    string
	Username string
	// PasswordHash — bcrypt-хэш пароля; сам пароль нигде не хранится.
	PasswordHash string
	// IsStaff даёт доступ к административным операциям каталога.
	IsStaff   bool
	CreatedAt time.Time
}

// Address — адрес доставки пользователя. У заказа ссылка на адрес опциональна.
type Address struct {
	ID           string
	UserID       string
	FirstName    string
	LastName     string
	AddressLine1 string
	AddressLine2 string
	City         string
	PostalCode   string
	Country      string
	PhoneNumber  string
	IsDefault    bool
	CreatedAt    time.Time
}
