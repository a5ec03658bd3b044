package restapi

import (
	"errors"
	"net/http"

	"portfolio_rebalancer/internal/app/port"
	"portfolio_rebalancer/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope of every successful response.
type APIResponse struct {
	Data          any                   `json:"data"`
	Warnings      []string              `json:"warnings,omitempty"`
	ServiceErrors []entity.BalanceError `json:"service_errors,omitempty"`
	StatusMessage string                `json:"status_message"`
}

// APIError is the body of every failed response.
type APIError struct {
	Error struct {
		Kind    string         `json:"kind"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrStrategyNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrAssetNotFound), errors.Is(err, entity.ErrPriceNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrInvalidAllocation),
		errors.Is(err, entity.ErrAllocationExceedsPortfolio),
		errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, port.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	var body APIError
	status := statusFor(err)
	body.Error.Message = err.Error()

	var rbErr *entity.RebalanceError
	switch {
	case errors.As(err, &rbErr):
		body.Error.Kind = string(rbErr.Kind)
		body.Error.Message = rbErr.Message
		body.Error.Details = rbErr.Details
	case status == http.StatusBadGateway:
		body.Error.Kind = "UPSTREAM_UNAVAILABLE"
	default:
		body.Error.Kind = "INTERNAL"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

func abortWithKind(c *gin.Context, status int, kind entity.ErrorKind, message string) {
	var body APIError
	body.Error.Kind = string(kind)
	body.Error.Message = message
	c.AbortWithStatusJSON(status, body)
}
