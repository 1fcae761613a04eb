package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrEmptyItems           = errors.New("empty items")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrProductNotFound      = errors.New("product not found")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrShippingUnavailable  = errors.New("shipping unavailable for destination")
	ErrPaymentGateway       = errors.New("payment gateway error")

	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderNotPending    = errors.New("order is not pending")
	ErrWrongPaymentMethod = errors.New("order uses a different payment method")
	ErrMissingCard        = errors.New("card token or saved card required")

	ErrVariantNotFound = errors.New("variant not found")
)

// StockError carries the product and size that could not be fulfilled.
type StockError struct {
	ProductName string
	Size        string
	Requested   int64
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q size %s", e.ProductName, e.Size)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// CardDeclinedError surfaces the gateway's own status detail when present.
type CardDeclinedError struct {
	StatusDetail string
}

func (e *CardDeclinedError) Error() string {
	if e.StatusDetail == "" {
		return "card declined"
	}
	return "card declined: " + e.StatusDetail
}
