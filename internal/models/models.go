package models

import (
	"time"

	"github.com/google/uuid"
)

type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "DRAFT"
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

type Product struct {
	ID                 uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Slug               string        `gorm:"type:text;not null;uniqueIndex"`
	Name               string        `gorm:"type:text;not null"`
	Description        string        `gorm:"type:text"`
	PriceCents         int64         `gorm:"not null;default:0"`
	DiscountPriceCents *int64        `gorm:""`
	Status             ProductStatus `gorm:"type:text;not null;default:'DRAFT';index"`
	// TotalStock is the denormalized sum of variant quantities. It is only
	// ever updated inside the same transaction that mutates a variant.
	TotalStock int64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

func (Product) TableName() string { return "products" }

// CurrentPriceCents is the authoritative unit price: the discount price when
// present and positive, the base price otherwise.
func (p *Product) CurrentPriceCents() int64 {
	if p.DiscountPriceCents != nil && *p.DiscountPriceCents > 0 {
		return *p.DiscountPriceCents
	}
	return p.PriceCents
}

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_variants_product_size"`
	Size      string    `gorm:"type:text;not null;uniqueIndex:ux_variants_product_size"`
	Quantity  int64     `gorm:"not null;default:0"` // CHECK >= 0 added in migration

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductVariant) TableName() string { return "product_variants" }

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "PENDING"
	OrderStatusPaid     OrderStatus = "PAID"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "PIX"
	PaymentMethodCard PaymentMethod = "CREDIT_CARD"
)

type Order struct {
	ID            uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	Status        OrderStatus   `gorm:"type:text;not null;default:'PENDING';index"`
	PaymentMethod PaymentMethod `gorm:"type:text;not null"`

	SubtotalCents    int64 `gorm:"not null;default:0"`
	ShippingFeeCents int64 `gorm:"not null;default:0"`
	GrossTotalCents  int64 `gorm:"not null;default:0"`
	FinalTotalCents  int64 `gorm:"not null;default:0"`

	DestinationZip string `gorm:"type:text;not null"`
	PayerName      string `gorm:"type:text;not null"`
	PayerEmail     string `gorm:"type:text;not null"`
	PayerTaxID     string `gorm:"type:text;not null"`

	// IdempotencyKey is scoped to this order and reused on every QR request
	// retry, so the gateway never issues two charges for one order.
	IdempotencyKey   string  `gorm:"type:text;not null;uniqueIndex"`
	GatewayPaymentID *string `gorm:"type:text;index"`
	PixQRCode        *string `gorm:"type:text"`
	PixQRCodeBase64  *string `gorm:"type:text"`

	CancelReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Lines []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderLine is an immutable snapshot taken at purchase time; later product
// edits never alter historical orders.
type OrderLine struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_lines_order_product_size"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_order_lines_order_product_size"`
	ProductName    string    `gorm:"type:text;not null"`
	Size           string    `gorm:"type:text;not null;uniqueIndex:ux_order_lines_order_product_size"`
	Quantity       int64     `gorm:"not null"`
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderLine) TableName() string { return "order_lines" }

// WebhookEvent records processed gateway callbacks so redeliveries become no-ops.
type WebhookEvent struct {
	EventID     string    `gorm:"type:text;primaryKey"`
	EventType   string    `gorm:"type:text;index"`
	ProcessedAt time.Time `gorm:"not null;default:now()"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
