package service

import (
	"context"

	"github.com/google/uuid"
)

// Gateway payment status values as reported by the processor.
const (
	GatewayStatusApproved = "approved"
	GatewayStatusPending  = "pending"
	GatewayStatusRejected = "rejected"
)

type Payer struct {
	Name  string
	Email string
	TaxID string
}

type CreatePixChargeInput struct {
	AmountCents       int64
	Payer             Payer
	ExternalReference string
	IdempotencyKey    string
}

type PixCharge struct {
	PaymentID    string
	QRCode       string
	QRCodeBase64 string
}

type CreateCardChargeInput struct {
	AmountCents       int64
	CardToken         string
	SavedCardID       string
	Installments      int
	Payer             Payer
	ExternalReference string
	IdempotencyKey    string
}

type CardChargeResult struct {
	PaymentID    string
	Status       string // approved | rejected | pending
	StatusDetail string
}

type PaymentInfo struct {
	PaymentID         string
	Status            string
	ExternalReference string
}

// PaymentGateway is the third-party payment processor. Calls happen outside
// store transactions; implementations apply a bounded request timeout.
type PaymentGateway interface {
	CreatePixCharge(ctx context.Context, in CreatePixChargeInput) (*PixCharge, error)
	CreateCardCharge(ctx context.Context, in CreateCardChargeInput) (*CardChargeResult, error)
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
}

type ShippingQuote struct {
	FeeCents     int64
	DeliveryDays int
}

// ShippingQuoter quotes the cheapest carrier price for a destination.
type ShippingQuoter interface {
	Quote(ctx context.Context, destinationZip string, items int) (*ShippingQuote, error)
}

// ReceiptNotifier enqueues the receipt email. Fire and forget: failures are
// logged by the caller, never retried, and never block confirmation.
type ReceiptNotifier interface {
	EnqueueReceipt(ctx context.Context, to string, orderID uuid.UUID, totalCents int64) error
}
