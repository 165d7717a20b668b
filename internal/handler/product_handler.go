package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"el-diego/internal/model"
	"el-diego/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// GetAll handles GET /api/products requests with pagination.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	// Parse query parameters
	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 50 // default
	if limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid limit parameter", h.logger)
			return
		}
	}

	offset := 0 // default
	if offsetStr != "" {
		var err error
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid offset parameter", h.logger)
			return
		}
	}

	products, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetBySKU handles GET /api/products/{sku} requests.
func (h *ProductHandler) GetBySKU(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	sku, ok := h.skuFromPath(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetBySKU(r.Context(), sku)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.service.Create(r.Context(), req)
	if err != nil {
		if isProductValidation(err) {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{sku} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	sku, ok := h.skuFromPath(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeProductRequest(w, r)
	if !ok {
		return
	}

	product, err := h.service.Update(r.Context(), sku, req)
	if err != nil {
		if isProductValidation(err) {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{sku} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sku, ok := h.skuFromPath(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sku); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// skuFromPath extracts the SKU path segment from /api/products/{sku}.
func (h *ProductHandler) skuFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	sku := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if sku == "" || strings.Contains(sku, "/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product SKU is required", h.logger)
		return "", false
	}
	return sku, true
}

// decodeProductRequest decodes the request body into a ProductRequest.
func (h *ProductHandler) decodeProductRequest(w http.ResponseWriter, r *http.Request) (*model.ProductRequest, bool) {
	var req model.ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return nil, false
	}
	return &req, true
}

// isProductValidation reports whether the error is a request-shape failure
// from product validation.
func isProductValidation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "required") ||
		strings.Contains(msg, "must") ||
		strings.Contains(msg, "cannot be") ||
		strings.Contains(msg, "is nil")
}
