package dto

import (
	"time"

	"storefront/internal/models"
	"storefront/internal/service"
)

type PayerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	TaxID string `json:"tax_id" binding:"required"`
}

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Size      string `json:"size" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

type PlaceOrderRequest struct {
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod  string             `json:"payment_method" binding:"required,oneof=PIX CREDIT_CARD"`
	DestinationZip string             `json:"destination_zip" binding:"required"`
	Payer          PayerRequest       `json:"payer" binding:"required"`
}

type PlaceOrderResponse struct {
	OrderID          string    `json:"order_id"`
	Status           string    `json:"status"`
	SubtotalCents    int64     `json:"subtotal_cents"`
	ShippingFeeCents int64     `json:"shipping_fee_cents"`
	GrossTotalCents  int64     `json:"gross_total_cents"`
	FinalTotalCents  int64     `json:"final_total_cents"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`

	PixQRCode       string `json:"pix_qr_code,omitempty"`
	PixQRCodeBase64 string `json:"pix_qr_code_base64,omitempty"`
	PixQRPending    bool   `json:"pix_qr_pending,omitempty"`
}

func NewPlaceOrderResponse(res *service.PlaceOrderResult, qrPending bool) PlaceOrderResponse {
	return PlaceOrderResponse{
		OrderID:          res.OrderID.String(),
		Status:           string(res.Status),
		SubtotalCents:    res.SubtotalCents,
		ShippingFeeCents: res.ShippingFeeCents,
		GrossTotalCents:  res.GrossTotalCents,
		FinalTotalCents:  res.FinalTotalCents,
		CreatedAt:        res.CreatedAt,
		ExpiresAt:        res.CreatedAt.Add(service.PaymentWindow),
		PixQRCode:        res.PixQRCode,
		PixQRCodeBase64:  res.PixQRCodeBase64,
		PixQRPending:     qrPending,
	}
}

type ChargeCardRequest struct {
	CardToken    string `json:"card_token"`
	SavedCardID  string `json:"saved_card_id"`
	Installments int    `json:"installments" binding:"omitempty,gte=1,lte=12"`
}

type ChargeCardResponse struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	StatusDetail string `json:"status_detail,omitempty"`
}

type OrderStatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type OrderLineResponse struct {
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Size           string `json:"size"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderResponse struct {
	OrderID          string              `json:"order_id"`
	Status           string              `json:"status"`
	PaymentMethod    string              `json:"payment_method"`
	SubtotalCents    int64               `json:"subtotal_cents"`
	ShippingFeeCents int64               `json:"shipping_fee_cents"`
	FinalTotalCents  int64               `json:"final_total_cents"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	Lines            []OrderLineResponse `json:"lines"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, OrderLineResponse{
			ProductID:      l.ProductID.String(),
			ProductName:    l.ProductName,
			Size:           l.Size,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			LineTotalCents: l.LineTotalCents,
		})
	}
	resp := OrderResponse{
		OrderID:          o.ID.String(),
		Status:           string(o.Status),
		PaymentMethod:    string(o.PaymentMethod),
		SubtotalCents:    o.SubtotalCents,
		ShippingFeeCents: o.ShippingFeeCents,
		FinalTotalCents:  o.FinalTotalCents,
		CreatedAt:        o.CreatedAt,
		Lines:            lines,
	}
	if o.CancelReason != nil {
		resp.CancelReason = *o.CancelReason
	}
	return resp
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

// PaymentWebhookRequest is the processor's event notification. The payment id
// arrives under data.id; id and action identify the event for deduplication.
type PaymentWebhookRequest struct {
	ID     string `json:"id" binding:"required"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id" binding:"required"`
	} `json:"data" binding:"required"`
}
