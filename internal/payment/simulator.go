package payment

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Result — исход обращения к платёжному шлюзу.
type Result struct {
	TransactionID string
	Approved      bool
	// Reason заполняется при отклонении платежа.
	Reason string
}

// Processor описывает платёжный шлюз.
type Processor interface {
	// Charge списывает средства по заказу.
	Charge(orderID string, amount decimal.Decimal, req Request) (Result, error)
}

// Simulator — имитация платёжного шлюза: реальный процессинг не вызывается,
// исход детерминирован номером карты.
type Simulator struct{}

// NewSimulator возвращает платёжный симулятор.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// declineSuffixes — хвосты номеров карт, по которым симулятор отклоняет
// платёж. Номера проходят проверку Луна, так что сценарий отказа шлюза
// воспроизводим через публичный API.
var declineSuffixes = map[string]string{
	"0002": "card declined",
	"9995": "insufficient funds",
}

// Charge одобряет платёж и генерирует идентификатор транзакции.
// Карты из declineSuffixes детерминированно отклоняются.
func (s *Simulator) Charge(orderID string, amount decimal.Decimal, req Request) (Result, error) {
	digits := strings.ReplaceAll(strings.ReplaceAll(req.CardNumber, " ", ""), "-", "")
	for suffix, reason := range declineSuffixes {
		if strings.HasSuffix(digits, suffix) {
			return Result{Approved: false, Reason: reason}, nil
		}
	}
	return Result{
		TransactionID: "txn_" + uuid.NewString(),
		Approved:      true,
	}, nil
}

// MockProcessor — конфигурируемая заглушка Processor для тестов.
type MockProcessor struct {
	ChargeResult Result
	ChargeErr    error

	ChargeCalls int
}

// NewMockProcessor возвращает mock с успешным сценарием по умолчанию.
func NewMockProcessor() *MockProcessor {
	return &MockProcessor{
		ChargeResult: Result{TransactionID: "txn_test", Approved: true},
	}
}

// Charge возвращает заранее настроенный результат и считает вызовы.
func (m *MockProcessor) Charge(orderID string, amount decimal.Decimal, req Request) (Result, error) {
	m.ChargeCalls++
	return m.ChargeResult, m.ChargeErr
}

var (
	_ Processor = (*Simulator)(nil)
	_ Processor = (*MockProcessor)(nil)
)
