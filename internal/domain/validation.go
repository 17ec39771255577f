package domain

import (
	"sort"
	"strings"
)

// ValidationError агрегирует пофилдовые нарушения входных данных.
// Все нарушения собираются вместе и отдаются клиенту картой поле -> сообщения.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError возвращает пустую ошибку валидации.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add добавляет сообщение к полю.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty сообщает, что нарушений нет.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Error возвращает компактную сводку по полям.
func (e *ValidationError) Error() string {
	if e.Empty() {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}
