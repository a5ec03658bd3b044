package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies rebalance failures.
type ErrorKind string

const (
	KindAssetNotFound              ErrorKind = "ASSET_NOT_FOUND"
	KindPriceNotFound              ErrorKind = "PRICE_NOT_FOUND"
	KindInvalidAllocation          ErrorKind = "INVALID_ALLOCATION"
	KindAllocationExceedsPortfolio ErrorKind = "ALLOCATION_EXCEEDS_PORTFOLIO"
	KindInvalidInput               ErrorKind = "INVALID_INPUT"
	KindStrategyNotFound           ErrorKind = "STRATEGY_NOT_FOUND"
)

// Sentinels for errors.Is matching against a *RebalanceError of the same kind.
var (
	ErrAssetNotFound              = errors.New("asset not found")
	ErrPriceNotFound              = errors.New("price not found")
	ErrInvalidAllocation          = errors.New("invalid allocation")
	ErrAllocationExceedsPortfolio = errors.New("allocation exceeds portfolio")
	ErrInvalidInput               = errors.New("invalid input")
	ErrStrategyNotFound           = errors.New("strategy not found")
)

var kindSentinels = map[ErrorKind]error{
	KindAssetNotFound:              ErrAssetNotFound,
	KindPriceNotFound:              ErrPriceNotFound,
	KindInvalidAllocation:          ErrInvalidAllocation,
	KindAllocationExceedsPortfolio: ErrAllocationExceedsPortfolio,
	KindInvalidInput:               ErrInvalidInput,
	KindStrategyNotFound:           ErrStrategyNotFound,
}

// RebalanceError is a synchronous, non-retryable failure of a rebalance call.
type RebalanceError struct {
	Kind    ErrorKind
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *RebalanceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the kind sentinel so callers can use errors.Is.
func (e *RebalanceError) Unwrap() error {
	return kindSentinels[e.Kind]
}

// NewAssetNotFoundError reports a canonical symbol absent from the active registry or price snapshot.
func NewAssetNotFoundError(canonical string) *RebalanceError {
	return &RebalanceError{
		Kind:    KindAssetNotFound,
		Message: fmt.Sprintf("asset %s not found in supported assets or prices", canonical),
		Details: map[string]interface{}{"asset": canonical},
	}
}

// NewPriceNotFoundError reports a held asset with no quote in the price snapshot.
func NewPriceNotFoundError(chainID, canonical string) *RebalanceError {
	return &RebalanceError{
		Kind:    KindPriceNotFound,
		Message: fmt.Sprintf("no price for %s on chain %s", canonical, chainID),
		Details: map[string]interface{}{"asset": canonical, "chainId": chainID},
	}
}

// NewInvalidAllocationError reports a malformed allocation request.
func NewInvalidAllocationError(reason string) *RebalanceError {
	return &RebalanceError{Kind: KindInvalidAllocation, Message: reason}
}

// NewAllocationExceedsPortfolioError reports a USD request above the portfolio value.
func NewAllocationExceedsPortfolioError(requested, total float64) *RebalanceError {
	return &RebalanceError{
		Kind:    KindAllocationExceedsPortfolio,
		Message: fmt.Sprintf("requested allocation $%.2f exceeds portfolio value $%.2f", requested, total),
		Details: map[string]interface{}{"requested": requested, "total": total},
	}
}

// NewInvalidInputError reports a contract violation by the caller.
func NewInvalidInputError(reason string) *RebalanceError {
	return &RebalanceError{Kind: KindInvalidInput, Message: reason}
}

// NewStrategyNotFoundError reports an unknown or network-disabled strategy id.
func NewStrategyNotFoundError(id string) *RebalanceError {
	return &RebalanceError{
		Kind:    KindStrategyNotFound,
		Message: fmt.Sprintf("strategy %q not found", id),
		Details: map[string]interface{}{"strategyId": id},
	}
}

// KindOf returns the kind of a *RebalanceError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var rbErr *RebalanceError
	if errors.As(err, &rbErr) {
		return rbErr.Kind, true
	}
	return "", false
}

// NewEmptyPortfolioError reports an allocation request against a portfolio worth nothing.
func NewEmptyPortfolioError() *RebalanceError {
	return &RebalanceError{
		Kind:    KindAllocationExceedsPortfolio,
		Message: "portfolio has no USD value to allocate",
		Details: map[string]interface{}{"total": 0.0},
	}
}
