package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"el-diego/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", code).Str("message", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error onto the HTTP surface. Unrecognised
// errors answer 500 without leaking internals.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var creationErr *model.OrderCreationError

	switch {
	case errors.Is(err, model.ErrProductNotFound):
		writeError(w, http.StatusNotFound, model.ErrCodeProductNotFound, "one or more products not found", logger)
	case errors.Is(err, model.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, model.ErrCodeOrderNotFound, "order not found", logger)
	case errors.Is(err, model.ErrDuplicateOrder):
		writeError(w, http.StatusConflict, model.ErrCodeDuplicateOrder, "an identical order is already pending", logger)
	case errors.Is(err, model.ErrNoDeliveryAddress):
		writeError(w, http.StatusUnprocessableEntity, model.ErrCodeNoDeliveryAddress, "no active delivery address on file", logger)
	case errors.Is(err, model.ErrInvalidQuantity):
		writeError(w, http.StatusUnprocessableEntity, model.ErrCodeInvalidQuantity, "item quantities must be positive", logger)
	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, model.ErrCodeInvalidCredentials, "invalid credentials", logger)
	case errors.Is(err, model.ErrProductInUse):
		writeError(w, http.StatusConflict, model.ErrCodeProductInUse, "product is referenced by existing orders", logger)
	case errors.As(err, &creationErr):
		// The underlying cause goes out with the response for diagnostics
		writeError(w, http.StatusInternalServerError, model.ErrCodeOrderCreation, creationErr.Error(), logger)
	default:
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}
