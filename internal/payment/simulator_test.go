package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chargeRequest(card string) Request {
	return Request{
		PaymentMethod: "card",
		CardNumber:    card,
		ExpiryMonth:   "12",
		ExpiryYear:    "2030",
		CVV:           "123",
		Amount:        decimal.RequireFromString("10.00"),
	}
}

func TestSimulatorCharge_Approves(t *testing.T) {
	s := NewSimulator()

	result, err := s.Charge("order-1", decimal.RequireFromString("10.00"), chargeRequest("4111111111111111"))
	require.NoError(t, err)
	assert.True(t, result.Approved)
	assert.NotEmpty(t, result.TransactionID)
	assert.Empty(t, result.Reason)
}

func TestSimulatorCharge_DeclineSuffixes(t *testing.T) {
	s := NewSimulator()

	cases := []struct {
		card   string
		reason string
	}{
		{"4000000000000002", "card declined"},
		{"4000 0000 0000 9995", "insufficient funds"},
	}
	for _, tc := range cases {
		result, err := s.Charge("order-1", decimal.RequireFromString("10.00"), chargeRequest(tc.card))
		require.NoError(t, err)
		assert.False(t, result.Approved, "card %s must be declined", tc.card)
		assert.Equal(t, tc.reason, result.Reason)
		assert.Empty(t, result.TransactionID)
	}
}
