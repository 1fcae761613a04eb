package service

import (
	"context"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type PlaceOrderItem struct {
	ProductID uuid.UUID
	Size      string
	Quantity  int64
}

type PlaceOrderInput struct {
	Items          []PlaceOrderItem
	PaymentMethod  models.PaymentMethod
	DestinationZip string
	Payer          Payer
}

type PlaceOrderResult struct {
	OrderID          uuid.UUID
	Status           models.OrderStatus
	SubtotalCents    int64
	ShippingFeeCents int64
	GrossTotalCents  int64
	FinalTotalCents  int64
	CreatedAt        time.Time

	// PIX only
	PixQRCode       string
	PixQRCodeBase64 string
}

type CardChargeInput struct {
	CardToken    string
	SavedCardID  string
	Installments int
}

type CardChargeOutcome struct {
	OrderID      uuid.UUID
	Status       string // approved | rejected | pending
	StatusDetail string
}

type OrderListInput struct {
	UserID *uuid.UUID
	Status *models.OrderStatus
	Limit  int
	Offset int
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error)
	ChargeCard(ctx context.Context, orderID uuid.UUID, in CardChargeInput) (*CardChargeOutcome, error)

	// ConfirmPayment is the client poll path: returns the current order status,
	// consulting the gateway while the order is still pending.
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error)

	// HandlePaymentWebhook is the authoritative PENDING -> PAID path.
	HandlePaymentWebhook(ctx context.Context, eventID, eventType, paymentID string) error

	// ExpireStale cancels PENDING orders older than the payment window and
	// restores their stock. Returns the number of orders cancelled.
	ExpireStale(ctx context.Context, olderThan time.Time) (int, error)

	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, in OrderListInput) ([]models.Order, int64, error)
}
