package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// allowedMethods — фиксированный allow-list способов оплаты.
var allowedMethods = map[string]bool{
	"card":          true,
	"credit_card":   true,
	"debit_card":    true,
	"paypal":        true,
	"bank_transfer": true,
}

// Request — платёжный payload, присланный клиентом.
type Request struct {
	PaymentMethod string
	CardNumber    string
	ExpiryMonth   string
	ExpiryYear    string
	CVV           string
	Amount        decimal.Decimal
}

// FieldErrors — карта поле -> сообщения. Все нарушения собираются вместе,
// а не только первое.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Empty сообщает, что нарушений нет.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Validate выполняет чистую валидацию платёжного payload до каких-либо
// изменений состояния. orderTotal — сумма заказа для точного (десятичного,
// не плавающего) сравнения, now — текущий момент для проверки срока действия карты.
func Validate(req Request, orderTotal decimal.Decimal, now time.Time) FieldErrors {
	errs := make(FieldErrors)

	if !allowedMethods[req.PaymentMethod] {
		errs.add("payment_method", "Invalid payment method.")
	}

	validateCardNumber(req.CardNumber, errs)
	validateExpiry(req.ExpiryMonth, req.ExpiryYear, now, errs)
	validateCVV(req.CVV, errs)

	if !req.Amount.Equal(orderTotal) {
		errs.add("amount", fmt.Sprintf("Amount does not match order total %s.", orderTotal.StringFixed(2)))
	}

	return errs
}

func validateCardNumber(number string, errs FieldErrors) {
	digits := strings.ReplaceAll(strings.ReplaceAll(number, " ", ""), "-", "")
	if len(digits) < 13 || len(digits) > 19 {
		errs.add("card_number", "Card number length is invalid.")
		return
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			errs.add("card_number", "Card number must contain only digits.")
			return
		}
	}
	if !luhnValid(digits) {
		errs.add("card_number", "Card number failed checksum validation.")
	}
}

// luhnValid проверяет контрольную сумму номера карты по алгоритму Луна.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum != 0 && sum%10 == 0
}

func validateExpiry(monthStr, yearStr string, now time.Time, errs FieldErrors) {
	month, errM := strconv.Atoi(strings.TrimSpace(monthStr))
	year, errY := strconv.Atoi(strings.TrimSpace(yearStr))

	if errM != nil || month < 1 || month > 12 {
		errs.add("expiry_month", "Expiry month must be between 1 and 12.")
		return
	}
	if errY != nil || year < 1000 {
		errs.add("expiry_year", "Expiry year is invalid.")
		return
	}

	// Карта действительна до конца месяца включительно.
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		errs.add("expiry_year", "Card has expired.")
	}
}

func validateCVV(cvv string, errs FieldErrors) {
	if len(cvv) != 3 {
		errs.add("cvv", "CVV must be exactly 3 digits.")
		return
	}
	for _, r := range cvv {
		if r < '0' || r > '9' {
			errs.add("cvv", "CVV must be exactly 3 digits.")
			return
		}
	}
}
