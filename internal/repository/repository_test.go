package repository_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/migrate"
	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStorefrontDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, repo *repository.Repository, qty int64) (*models.Product, *models.ProductVariant) {
	t.Helper()
	ctx := context.Background()

	p := &models.Product{
		Slug:       "basic-tee-" + uuid.NewString()[:8],
		Name:       "Basic Tee",
		PriceCents: 5000,
		Status:     models.ProductStatusActive,
		TotalStock: qty,
	}
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("create product: %v", err)
	}

	v := &models.ProductVariant{ProductID: p.ID, Size: "M", Quantity: qty}
	if err := repo.Variants.Create(ctx, v); err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return p, v
}

func pendingOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		UserID:          userID,
		Status:          models.OrderStatusPending,
		PaymentMethod:   models.PaymentMethodPix,
		SubtotalCents:   10000,
		FinalTotalCents: 11500,
		DestinationZip:  "01310100",
		PayerName:       "Ana Souza",
		PayerEmail:      "ana@example.com",
		PayerTaxID:      "52998224725",
		IdempotencyKey:  uuid.NewString(),
	}
}

func TestVariantRepo_TryDecrementGuards(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	_, v := seedProduct(t, repo, 5)

	ok, err := repo.Variants.TryDecrement(ctx, v.ID, 3)
	if err != nil || !ok {
		t.Fatalf("TryDecrement(3): ok=%v err=%v", ok, err)
	}

	// only 2 left, asking for 3 must refuse and change nothing
	ok, err = repo.Variants.TryDecrement(ctx, v.ID, 3)
	if err != nil {
		t.Fatalf("TryDecrement guard: %v", err)
	}
	if ok {
		t.Fatal("TryDecrement oversold past the guard")
	}

	got, err := repo.Variants.GetByProductAndSize(ctx, v.ProductID, "M")
	if err != nil {
		t.Fatalf("GetByProductAndSize: %v", err)
	}
	if got.Quantity != 2 {
		t.Fatalf("quantity expected 2 got %d", got.Quantity)
	}

	if ok, err := repo.Variants.Restock(ctx, v.ID, 3); err != nil || !ok {
		t.Fatalf("Restock: ok=%v err=%v", ok, err)
	}
	got, _ = repo.Variants.GetByProductAndSize(ctx, v.ProductID, "M")
	if got.Quantity != 5 {
		t.Fatalf("quantity after restock expected 5 got %d", got.Quantity)
	}
}

func TestProductRepo_AdjustTotalStockRefusesNegative(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p, _ := seedProduct(t, repo, 2)

	ok, err := repo.Products.AdjustTotalStock(ctx, p.ID, -2)
	if err != nil || !ok {
		t.Fatalf("AdjustTotalStock(-2): ok=%v err=%v", ok, err)
	}
	ok, err = repo.Products.AdjustTotalStock(ctx, p.ID, -1)
	if err != nil {
		t.Fatalf("AdjustTotalStock guard: %v", err)
	}
	if ok {
		t.Fatal("counter went negative")
	}

	got, _ := repo.Products.GetByID(ctx, p.ID)
	if got.TotalStock != 0 {
		t.Fatalf("total stock expected 0 got %d", got.TotalStock)
	}
}

func TestProductRepo_ListFiltersActiveAndQuery(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	active := &models.Product{Slug: "summer-tee", Name: "Summer Tee", PriceCents: 4000, Status: models.ProductStatusActive}
	draft := &models.Product{Slug: "winter-coat", Name: "Winter Coat", PriceCents: 20000, Status: models.ProductStatusDraft}
	for _, p := range []*models.Product{active, draft} {
		if err := repo.Products.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	st := models.ProductStatusActive
	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{Status: &st, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].Slug != "summer-tee" {
		t.Fatalf("active filter mismatch: total=%d list=%+v", total, list)
	}

	// case-insensitive name match
	list, _, err = repo.Products.List(ctx, repository.ProductListFilter{Query: "winter", Limit: 10})
	if err != nil {
		t.Fatalf("List query: %v", err)
	}
	if len(list) != 1 || list[0].Slug != "winter-coat" {
		t.Fatalf("query filter mismatch: %+v", list)
	}
}

func TestOrderRepo_MarkPaidFlipsOnce(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	ord := pendingOrder(uuid.New())
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}

	flipped, err := repo.Orders.MarkPaid(ctx, ord.ID)
	if err != nil || !flipped {
		t.Fatalf("MarkPaid: flipped=%v err=%v", flipped, err)
	}

	// duplicate webhook delivery must see no pending row
	flipped, err = repo.Orders.MarkPaid(ctx, ord.ID)
	if err != nil {
		t.Fatalf("MarkPaid second: %v", err)
	}
	if flipped {
		t.Fatal("order flipped twice")
	}

	got, _ := repo.Orders.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusPaid {
		t.Fatalf("status expected PAID got %s", got.Status)
	}
}

func TestOrderRepo_CancelOnlyPending(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	ord := pendingOrder(uuid.New())
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Orders.MarkPaid(ctx, ord.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	reason := "payment window expired"
	ok, err := repo.Orders.Cancel(ctx, ord.ID, &reason)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ok {
		t.Fatal("paid order was cancelled")
	}

	ord2 := pendingOrder(uuid.New())
	if err := repo.Orders.Create(ctx, ord2); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err = repo.Orders.Cancel(ctx, ord2.ID, &reason)
	if err != nil || !ok {
		t.Fatalf("Cancel pending: ok=%v err=%v", ok, err)
	}
	got, _ := repo.Orders.GetByID(ctx, ord2.ID)
	if got.Status != models.OrderStatusCanceled || got.CancelReason == nil || *got.CancelReason != reason {
		t.Fatalf("cancel mismatch: %+v", got)
	}
}

func TestOrderRepo_PixPaymentFields(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	ord := pendingOrder(uuid.New())
	if err := repo.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Orders.SetPixPayment(ctx, ord.ID, "pay-1", "qr-data", "cXI="); err != nil {
		t.Fatalf("SetPixPayment: %v", err)
	}
	got, _ := repo.Orders.GetByID(ctx, ord.ID)
	if got.GatewayPaymentID == nil || *got.GatewayPaymentID != "pay-1" {
		t.Fatalf("gateway payment id mismatch: %+v", got.GatewayPaymentID)
	}
	if got.PixQRCode == nil || *got.PixQRCode != "qr-data" {
		t.Fatalf("qr mismatch: %+v", got.PixQRCode)
	}
}

func TestOrderRepo_ListStalePending(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	userID := uuid.New()
	old := pendingOrder(userID)
	if err := repo.Orders.Create(ctx, old); err != nil {
		t.Fatalf("Create: %v", err)
	}
	line := []models.OrderLine{{
		OrderID:        old.ID,
		ProductID:      uuid.New(),
		ProductName:    "Basic Tee",
		Size:           "M",
		Quantity:       2,
		UnitPriceCents: 5000,
		LineTotalCents: 10000,
	}}
	if err := repo.OrderLines.BulkCreate(ctx, line); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	// push the order into the past
	past := time.Now().Add(-20 * time.Minute)
	if err := db.Model(&models.Order{}).Where("id = ?", old.ID).Update("created_at", past).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	recent := pendingOrder(userID)
	if err := repo.Orders.Create(ctx, recent); err != nil {
		t.Fatalf("Create recent: %v", err)
	}

	paidOld := pendingOrder(userID)
	if err := repo.Orders.Create(ctx, paidOld); err != nil {
		t.Fatalf("Create paidOld: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", paidOld.ID).Update("created_at", past).Error; err != nil {
		t.Fatalf("backdate paid: %v", err)
	}
	if _, err := repo.Orders.MarkPaid(ctx, paidOld.ID); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	stale, err := repo.Orders.ListStalePending(ctx, time.Now().Add(-15*time.Minute), 100)
	if err != nil {
		t.Fatalf("ListStalePending: %v", err)
	}
	if len(stale) != 1 || stale[0].ID != old.ID {
		t.Fatalf("stale list mismatch: %+v", stale)
	}
	if len(stale[0].Lines) != 1 {
		t.Fatalf("lines not preloaded: %+v", stale[0].Lines)
	}
}

func TestOrderRepo_WithTxRollsBackAtomically(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	_, v := seedProduct(t, repo, 5)

	boom := uuid.New() // referenced below to force a failure after the decrement
	err := repo.Orders.WithTx(ctx, func(orders repository.OrderRepo, lines repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error {
		ok, err := variants.TryDecrement(ctx, v.ID, 2)
		if err != nil || !ok {
			t.Fatalf("TryDecrement in tx: ok=%v err=%v", ok, err)
		}
		// invalid row, the insert fails and the whole tx must roll back
		return lines.BulkCreate(ctx, []models.OrderLine{{OrderID: boom, ProductID: uuid.Nil, Quantity: 0}})
	})
	if err == nil {
		t.Fatal("expected tx failure")
	}

	got, _ := repo.Variants.GetByProductAndSize(ctx, v.ProductID, "M")
	if got.Quantity != 5 {
		t.Fatalf("decrement leaked out of the rolled back tx: qty=%d", got.Quantity)
	}
}

func TestWebhookEventRepo_DuplicateDelivery(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	fresh, err := repo.WebhookEvents.MarkProcessed(ctx, "evt-1", "payment.updated")
	if err != nil || !fresh {
		t.Fatalf("first delivery: fresh=%v err=%v", fresh, err)
	}
	fresh, err = repo.WebhookEvents.MarkProcessed(ctx, "evt-1", "payment.updated")
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if fresh {
		t.Fatal("duplicate event reported as fresh")
	}
}
