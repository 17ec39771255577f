package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// errorBody — единый формат ошибок API.
type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.WithError(err).Warn("failed to encode response body")
		}
	}
}

// writeError переводит доменную ошибку в HTTP-статус и JSON-тело.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorPayload(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("internal error")
	}
	writeJSON(w, status, body)
}

// errorPayload строит итоговый статус и тело ответа по ошибке операции.
// Через него же сериализуются ответы, сохраняемые под ключом идемпотентности,
// чтобы повтор воспроизводил исходный ответ байт в байт.
func errorPayload(err error) (int, errorBody) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, errorBody{
			Error:  "validation failed",
			Fields: verr.Fields,
		}
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		return status, errorBody{Error: "internal server error"}
	}
	return status, errorBody{Error: err.Error()}
}

func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	// Конфликты состояния заказа и отзывов отдаются как 400 с читаемым
	// сообщением: клиент ошибся в запросе относительно текущего состояния.
	case errors.Is(err, domain.ErrAlreadyReviewed),
		errors.Is(err, domain.ErrReviewProvenance),
		errors.Is(err, domain.ErrAlreadyPaid),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrCancelShipped),
		errors.Is(err, domain.ErrCancelDelivered),
		errors.Is(err, domain.ErrCancelRefunded),
		errors.Is(err, domain.ErrTransitionNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSlugTaken),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrOrderVersionConflict),
		errors.Is(err, domain.ErrIdempotencyHashMismatch):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		verr := domain.NewValidationError()
		verr.Add("body", "Request body must be valid JSON.")
		return verr
	}
	return nil
}
