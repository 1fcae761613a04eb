package service

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type mockProductRepo struct {
	CreateFn           func(ctx context.Context, p *models.Product) error
	GetByIDFn          func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySlugFn        func(ctx context.Context, slug string) (*models.Product, error)
	ListFn             func(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error)
	UpdateFieldsFn     func(ctx context.Context, id uuid.UUID, fields map[string]any) error
	AdjustTotalStockFn func(ctx context.Context, id uuid.UUID, delta int64) (bool, error)

	adjustCalls []int64
}

func (m *mockProductRepo) Create(ctx context.Context, p *models.Product) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *mockProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	if m.GetBySlugFn != nil {
		return m.GetBySlugFn(ctx, slug)
	}
	return nil, nil
}

func (m *mockProductRepo) List(ctx context.Context, f repository.ProductListFilter) ([]models.Product, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *mockProductRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if m.UpdateFieldsFn != nil {
		return m.UpdateFieldsFn(ctx, id, fields)
	}
	return nil
}

func (m *mockProductRepo) AdjustTotalStock(ctx context.Context, id uuid.UUID, delta int64) (bool, error) {
	m.adjustCalls = append(m.adjustCalls, delta)
	if m.AdjustTotalStockFn != nil {
		return m.AdjustTotalStockFn(ctx, id, delta)
	}
	return true, nil
}

type mockVariantRepo struct {
	CreateFn              func(ctx context.Context, v *models.ProductVariant) error
	GetByProductAndSizeFn func(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error)
	ListByProductFn       func(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error)
	TryDecrementFn        func(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error)
	RestockFn             func(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error)
	SetQuantityFn         func(ctx context.Context, variantID uuid.UUID, quantity int64) error

	decrements []int64
	restocks   []int64
}

func (m *mockVariantRepo) Create(ctx context.Context, v *models.ProductVariant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, v)
	}
	return nil
}

func (m *mockVariantRepo) GetByProductAndSize(ctx context.Context, productID uuid.UUID, size string) (*models.ProductVariant, error) {
	if m.GetByProductAndSizeFn != nil {
		return m.GetByProductAndSizeFn(ctx, productID, size)
	}
	return nil, nil
}

func (m *mockVariantRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.ProductVariant, error) {
	if m.ListByProductFn != nil {
		return m.ListByProductFn(ctx, productID)
	}
	return nil, nil
}

func (m *mockVariantRepo) TryDecrement(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error) {
	m.decrements = append(m.decrements, qty)
	if m.TryDecrementFn != nil {
		return m.TryDecrementFn(ctx, variantID, qty)
	}
	return true, nil
}

func (m *mockVariantRepo) Restock(ctx context.Context, variantID uuid.UUID, qty int64) (bool, error) {
	m.restocks = append(m.restocks, qty)
	if m.RestockFn != nil {
		return m.RestockFn(ctx, variantID, qty)
	}
	return true, nil
}

func (m *mockVariantRepo) SetQuantity(ctx context.Context, variantID uuid.UUID, quantity int64) error {
	if m.SetQuantityFn != nil {
		return m.SetQuantityFn(ctx, variantID, quantity)
	}
	return nil
}

type mockOrderRepo struct {
	CreateFn              func(ctx context.Context, o *models.Order) error
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForUserFn      func(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListFn                func(ctx context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error)
	MarkPaidFn            func(ctx context.Context, id uuid.UUID) (bool, error)
	CancelFn              func(ctx context.Context, id uuid.UUID, reason *string) (bool, error)
	SetPixPaymentFn       func(ctx context.Context, id uuid.UUID, gatewayPaymentID, qrCode, qrCodeBase64 string) error
	SetGatewayPaymentIDFn func(ctx context.Context, id uuid.UUID, gatewayPaymentID string) error
	ListStalePendingFn    func(ctx context.Context, before time.Time, limit int) ([]*models.Order, error)
	WithTxFn              func(ctx context.Context, fn func(orders repository.OrderRepo, lines repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error) error

	created []*models.Order
}

func (m *mockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	m.created = append(m.created, o)
	if m.CreateFn != nil {
		return m.CreateFn(ctx, o)
	}
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockOrderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	if m.GetByIDForUserFn != nil {
		return m.GetByIDForUserFn(ctx, id, userID)
	}
	return nil, nil
}

func (m *mockOrderRepo) List(ctx context.Context, f repository.OrderListFilter) ([]*models.Order, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

func (m *mockOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, id)
	}
	return true, nil
}

func (m *mockOrderRepo) Cancel(ctx context.Context, id uuid.UUID, reason *string) (bool, error) {
	if m.CancelFn != nil {
		return m.CancelFn(ctx, id, reason)
	}
	return true, nil
}

func (m *mockOrderRepo) SetPixPayment(ctx context.Context, id uuid.UUID, gatewayPaymentID, qrCode, qrCodeBase64 string) error {
	if m.SetPixPaymentFn != nil {
		return m.SetPixPaymentFn(ctx, id, gatewayPaymentID, qrCode, qrCodeBase64)
	}
	return nil
}

func (m *mockOrderRepo) SetGatewayPaymentID(ctx context.Context, id uuid.UUID, gatewayPaymentID string) error {
	if m.SetGatewayPaymentIDFn != nil {
		return m.SetGatewayPaymentIDFn(ctx, id, gatewayPaymentID)
	}
	return nil
}

func (m *mockOrderRepo) ListStalePending(ctx context.Context, before time.Time, limit int) ([]*models.Order, error) {
	if m.ListStalePendingFn != nil {
		return m.ListStalePendingFn(ctx, before, limit)
	}
	return nil, nil
}

func (m *mockOrderRepo) WithTx(ctx context.Context, fn func(orders repository.OrderRepo, lines repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error) error {
	if m.WithTxFn != nil {
		return m.WithTxFn(ctx, fn)
	}
	return fn(m, &mockOrderLineRepo{}, &mockProductRepo{}, &mockVariantRepo{})
}

type mockOrderLineRepo struct {
	BulkCreateFn   func(ctx context.Context, lines []models.OrderLine) error
	GetByOrderIDFn func(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)

	created []models.OrderLine
}

func (m *mockOrderLineRepo) BulkCreate(ctx context.Context, lines []models.OrderLine) error {
	m.created = append(m.created, lines...)
	if m.BulkCreateFn != nil {
		return m.BulkCreateFn(ctx, lines)
	}
	return nil
}

func (m *mockOrderLineRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	if m.GetByOrderIDFn != nil {
		return m.GetByOrderIDFn(ctx, orderID)
	}
	return nil, nil
}

type mockWebhookEventRepo struct {
	MarkProcessedFn func(ctx context.Context, eventID, eventType string) (bool, error)
}

func (m *mockWebhookEventRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	if m.MarkProcessedFn != nil {
		return m.MarkProcessedFn(ctx, eventID, eventType)
	}
	return true, nil
}

type mockGateway struct {
	CreatePixChargeFn  func(ctx context.Context, in CreatePixChargeInput) (*PixCharge, error)
	CreateCardChargeFn func(ctx context.Context, in CreateCardChargeInput) (*CardChargeResult, error)
	GetPaymentFn       func(ctx context.Context, paymentID string) (*PaymentInfo, error)

	pixCalls  []CreatePixChargeInput
	cardCalls []CreateCardChargeInput
	getCalls  []string
}

func (m *mockGateway) CreatePixCharge(ctx context.Context, in CreatePixChargeInput) (*PixCharge, error) {
	m.pixCalls = append(m.pixCalls, in)
	if m.CreatePixChargeFn != nil {
		return m.CreatePixChargeFn(ctx, in)
	}
	return &PixCharge{PaymentID: "pay-1", QRCode: "qr-data", QRCodeBase64: "cXItZGF0YQ=="}, nil
}

func (m *mockGateway) CreateCardCharge(ctx context.Context, in CreateCardChargeInput) (*CardChargeResult, error) {
	m.cardCalls = append(m.cardCalls, in)
	if m.CreateCardChargeFn != nil {
		return m.CreateCardChargeFn(ctx, in)
	}
	return &CardChargeResult{PaymentID: "pay-2", Status: GatewayStatusApproved}, nil
}

func (m *mockGateway) GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	m.getCalls = append(m.getCalls, paymentID)
	if m.GetPaymentFn != nil {
		return m.GetPaymentFn(ctx, paymentID)
	}
	return &PaymentInfo{PaymentID: paymentID, Status: GatewayStatusPending}, nil
}

type mockShipping struct {
	QuoteFn func(ctx context.Context, destinationZip string, items int) (*ShippingQuote, error)
}

func (m *mockShipping) Quote(ctx context.Context, destinationZip string, items int) (*ShippingQuote, error) {
	if m.QuoteFn != nil {
		return m.QuoteFn(ctx, destinationZip, items)
	}
	return &ShippingQuote{FeeCents: 2000, DeliveryDays: 5}, nil
}

type mockNotifier struct {
	EnqueueReceiptFn func(ctx context.Context, to string, orderID uuid.UUID, totalCents int64) error

	receipts []string
}

func (m *mockNotifier) EnqueueReceipt(ctx context.Context, to string, orderID uuid.UUID, totalCents int64) error {
	m.receipts = append(m.receipts, to)
	if m.EnqueueReceiptFn != nil {
		return m.EnqueueReceiptFn(ctx, to, orderID, totalCents)
	}
	return nil
}

// testEnv bundles a checkout service wired to mocks with a frozen clock.
type testEnv struct {
	svc      *checkoutService
	orders   *mockOrderRepo
	lines    *mockOrderLineRepo
	products *mockProductRepo
	variants *mockVariantRepo
	events   *mockWebhookEventRepo
	gateway  *mockGateway
	shipping *mockShipping
	notifier *mockNotifier
	now      time.Time
}

func newTestEnv() *testEnv {
	env := &testEnv{
		orders:   &mockOrderRepo{},
		lines:    &mockOrderLineRepo{},
		products: &mockProductRepo{},
		variants: &mockVariantRepo{},
		events:   &mockWebhookEventRepo{},
		gateway:  &mockGateway{},
		shipping: &mockShipping{},
		notifier: &mockNotifier{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	env.orders.WithTxFn = func(ctx context.Context, fn func(repository.OrderRepo, repository.OrderLineRepo, repository.ProductRepo, repository.VariantRepo) error) error {
		return fn(env.orders, env.lines, env.products, env.variants)
	}
	env.svc = &checkoutService{
		repo: &repository.Repository{
			Products:      env.products,
			Variants:      env.variants,
			Orders:        env.orders,
			OrderLines:    env.lines,
			WebhookEvents: env.events,
		},
		gateway:  env.gateway,
		shipping: env.shipping,
		notifier: env.notifier,
		log:      zap.NewNop(),
		now:      func() time.Time { return env.now },
		newKey:   func() string { return "idem-key-1" },
	}
	return env
}

func authedCtx(userID uuid.UUID) context.Context {
	return WithUserID(context.Background(), userID)
}

func adminCtx(userID uuid.UUID) context.Context {
	return WithRole(WithUserID(context.Background(), userID), RoleAdmin)
}
