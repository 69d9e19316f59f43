package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"rewards/domain/entities"

	log "github.com/sirupsen/logrus"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeDomainError maps the error taxonomy onto HTTP status codes
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).WithError(err).Error("Request failed")
	}
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, entities.ErrInsufficientFunds):
		return http.StatusConflict, "insufficient_funds"
	case errors.Is(err, entities.ErrMissionNotAllowed):
		return http.StatusConflict, "mission_not_allowed"
	case errors.Is(err, entities.ErrPrizeInactive):
		return http.StatusConflict, "prize_inactive"
	case errors.Is(err, entities.ErrOutOfStock):
		return http.StatusConflict, "out_of_stock"
	case errors.Is(err, entities.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, entities.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, entities.ErrReferralNotAllowed):
		return http.StatusConflict, "referral_not_allowed"
	case errors.Is(err, entities.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, entities.ErrInvalidCurrency):
		return http.StatusBadRequest, "invalid_currency"
	case errors.Is(err, entities.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, entities.ErrTransactionConflict):
		return http.StatusServiceUnavailable, "transaction_conflict"
	case errors.Is(err, entities.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// decodeBody decodes a JSON body into v. An empty body is accepted when optional is set.
func decodeBody(r *http.Request, v interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, entities.ErrInvalidArgument)
	}
	return nil
}

// pagination reads limit and offset query parameters
func pagination(r *http.Request) (int, int, error) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		return 0, 0, err
	}
	if limit <= 0 || limit > maxPageSize {
		return 0, 0, fmt.Errorf("limit must be between 1 and %d: %w", maxPageSize, entities.ErrInvalidArgument)
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	if offset < 0 {
		return 0, 0, fmt.Errorf("offset must not be negative: %w", entities.ErrInvalidArgument)
	}
	return limit, offset, nil
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, entities.ErrInvalidArgument)
	}
	return value, nil
}
