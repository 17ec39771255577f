package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/payment"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
)

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

type createOrderRequest struct {
	// Пустой список означает оформление текущей корзины.
	Items             []orderItemRequest `json:"items"`
	ShippingAddressID string             `json:"shipping_address_id"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && s.idempotency != nil {
		if done := s.beginIdempotent(w, idemKey, claims.UserID, body); done {
			return
		}
	}

	var req createOrderRequest
	if len(body) > 0 {
		if derr := decodeBody(r, &req); derr != nil {
			s.finishIdempotent(idemKey, derr, nil, http.StatusBadRequest)
			writeError(w, derr)
			return
		}
	}

	items := make([]orders.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orders.ItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.orders.Create(claims.UserID, items, req.ShippingAddressID)
	if err != nil {
		s.finishIdempotent(idemKey, err, nil, statusFor(err))
		writeError(w, err)
		return
	}

	dto := toOrderDTO(order)
	s.finishIdempotent(idemKey, nil, dto, http.StatusCreated)
	writeJSON(w, http.StatusCreated, dto)
}

// beginIdempotent регистрирует ключ идемпотентности. Возвращает true, если
// ответ уже записан (повтор или конфликт) и обработку продолжать не нужно.
func (s *Server) beginIdempotent(w http.ResponseWriter, key, userID string, body []byte) bool {
	hash := requestHash(userID, body)

	_, err := s.idempotency.CreateProcessing(key, hash, s.now().Add(s.idempotencyTTL))
	if err == nil {
		return false
	}
	if !errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists) {
		writeError(w, err)
		return true
	}

	record, err := s.idempotency.Get(key)
	if err != nil {
		writeError(w, err)
		return true
	}
	if record.RequestHash != hash {
		writeError(w, domain.ErrIdempotencyHashMismatch)
		return true
	}

	switch record.Status {
	case domain.IdempotencyStatusProcessing:
		writeJSON(w, http.StatusConflict, errorBody{Error: "request is still being processed"})
	default:
		// Повторяем сохранённый ответ байт в байт.
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(record.HTTPStatus)
		_, _ = w.Write(record.ResponseBody)
	}
	return true
}

// finishIdempotent сохраняет итог обработки под ключом идемпотентности.
func (s *Server) finishIdempotent(key string, opErr error, response interface{}, status int) {
	if key == "" || s.idempotency == nil {
		return
	}

	var body []byte
	if response != nil {
		body, _ = json.Marshal(response)
	} else if opErr != nil {
		// Под ключом сохраняется тот же статус и тело, что ушли клиенту,
		// включая карту полей при ошибке валидации.
		errStatus, payload := errorPayload(opErr)
		status = errStatus
		body, _ = json.Marshal(payload)
	}

	var err error
	if opErr == nil {
		err = s.idempotency.MarkDone(key, body, status)
	} else {
		err = s.idempotency.MarkFailed(key, body, status)
	}
	if err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to finalize idempotency record")
	}
}

func requestHash(userID string, body []byte) string {
	sum := sha256.Sum256(append([]byte(userID+"\n"), body...))
	return hex.EncodeToString(sum[:])
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	list, err := s.orders.List(claims.UserID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]orderDTO, 0, len(list))
	for _, order := range list {
		dtos = append(dtos, toOrderDTO(order))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	order, err := s.orders.Get(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	order, err := s.orders.Get(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		OrderID       string `json:"order_id"`
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}{order.ID, string(order.Status), string(order.PaymentStatus)})
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	order, err := s.orders.Cancel(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
	CardNumber    string `json:"card_number"`
	ExpiryMonth   string `json:"expiry_month"`
	ExpiryYear    string `json:"expiry_year"`
	CVV           string `json:"cvv"`
	Amount        string `json:"amount"`
}

func (s *Server) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	var req paymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		verr := domain.NewValidationError()
		verr.Add("amount", "Amount must be a decimal number.")
		writeError(w, verr)
		return
	}

	order, err := s.orders.Pay(chi.URLParam(r, "id"), claims.UserID, payment.Request{
		PaymentMethod: req.PaymentMethod,
		CardNumber:    req.CardNumber,
		ExpiryMonth:   req.ExpiryMonth,
		ExpiryYear:    req.ExpiryYear,
		CVV:           req.CVV,
		Amount:        amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (s *Server) handleTrackOrder(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFrom(r.Context())

	order, events, err := s.orders.Track(chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	eventDTOs := make([]statusEventDTO, 0, len(events))
	for _, event := range events {
		eventDTOs = append(eventDTOs, statusEventDTO{
			Status:      string(event.Status),
			Description: event.Description,
			Occurred:    event.Occurred,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Order  orderDTO         `json:"order"`
		Events []statusEventDTO `json:"events"`
	}{toOrderDTO(order), eventDTOs})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	order, err := s.orders.UpdateStatus(chi.URLParam(r, "id"), domain.OrderStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("order status updated by staff")
	writeJSON(w, http.StatusOK, toOrderDTO(order))
}
