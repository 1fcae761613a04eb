package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PaymentWindow is how long a PENDING order holds its stock before the
	// expiration sweep reclaims it.
	PaymentWindow = 15 * time.Minute

	pixDiscountPercent = 5
)

type checkoutService struct {
	repo     *repository.Repository
	gateway  PaymentGateway
	shipping ShippingQuoter
	notifier ReceiptNotifier
	log      *zap.Logger
	now      func() time.Time
	newKey   func() string
}

func NewCheckoutService(repo *repository.Repository, gateway PaymentGateway, shipping ShippingQuoter, notifier ReceiptNotifier, log *zap.Logger) CheckoutService {
	return &checkoutService{
		repo:     repo,
		gateway:  gateway,
		shipping: shipping,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		newKey:   uuid.NewString,
	}
}

func requireAuth(ctx context.Context) (uuid.UUID, Role, error) {
	uid, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, "", ErrUnauthorized
	}
	role, _ := RoleFromContext(ctx) // no role claim means customer
	if role == "" {
		role = RoleCustomer
	}
	return uid, role, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}
	if in.PaymentMethod != models.PaymentMethodPix && in.PaymentMethod != models.PaymentMethodCard {
		return nil, ErrInvalidPaymentMethod
	}

	var (
		order   *models.Order
		linesDB []models.OrderLine
		now     = s.now()
	)

	err = s.repo.Orders.WithTx(ctx, func(orders repository.OrderRepo, lines repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error {
		var subtotal int64
		var totalItems int64

		for _, it := range in.Items {
			if it.Quantity <= 0 {
				return ErrInvalidQuantity
			}

			p, err := products.GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil || p.Status != models.ProductStatusActive {
				return ErrProductNotFound
			}

			v, err := variants.GetByProductAndSize(ctx, p.ID, it.Size)
			if err != nil {
				return err
			}
			if v == nil {
				return &StockError{ProductName: p.Name, Size: it.Size, Requested: it.Quantity}
			}

			// check-then-decrement is a single guarded UPDATE: racing
			// checkouts serialize on the row, exactly one wins the last unit
			ok, err := variants.TryDecrement(ctx, v.ID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &StockError{ProductName: p.Name, Size: it.Size, Requested: it.Quantity}
			}

			if ok, err := products.AdjustTotalStock(ctx, p.ID, -it.Quantity); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("total stock counter drift for product %s", p.ID)
			}

			// unit price is re-derived server-side, never taken from the cart
			unit := p.CurrentPriceCents()
			lineTotal := unit * it.Quantity
			subtotal += lineTotal
			totalItems += it.Quantity

			linesDB = append(linesDB, models.OrderLine{
				ProductID:      p.ID,
				ProductName:    p.Name,
				Size:           it.Size,
				Quantity:       it.Quantity,
				UnitPriceCents: unit,
				LineTotalCents: lineTotal,
				CreatedAt:      now,
			})
		}

		quote, err := s.shipping.Quote(ctx, in.DestinationZip, int(totalItems))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrShippingUnavailable, err)
		}
		if quote == nil || quote.FeeCents <= 0 {
			return ErrShippingUnavailable
		}

		gross := subtotal + quote.FeeCents
		final := gross
		if in.PaymentMethod == models.PaymentMethodPix {
			// 5% off the subtotal only, shipping is never discounted
			final -= subtotal * pixDiscountPercent / 100
		}

		order = &models.Order{
			UserID:           userID,
			Status:           models.OrderStatusPending,
			PaymentMethod:    in.PaymentMethod,
			SubtotalCents:    subtotal,
			ShippingFeeCents: quote.FeeCents,
			GrossTotalCents:  gross,
			FinalTotalCents:  final,
			DestinationZip:   in.DestinationZip,
			PayerName:        in.Payer.Name,
			PayerEmail:       in.Payer.Email,
			PayerTaxID:       in.Payer.TaxID,
			IdempotencyKey:   s.newKey(),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := orders.Create(ctx, order); err != nil {
			return err
		}

		for i := range linesDB {
			linesDB[i].OrderID = order.ID
		}
		return lines.BulkCreate(ctx, linesDB)
	})
	if err != nil {
		return nil, err
	}

	res := &PlaceOrderResult{
		OrderID:          order.ID,
		Status:           order.Status,
		SubtotalCents:    order.SubtotalCents,
		ShippingFeeCents: order.ShippingFeeCents,
		GrossTotalCents:  order.GrossTotalCents,
		FinalTotalCents:  order.FinalTotalCents,
		CreatedAt:        order.CreatedAt,
	}

	if in.PaymentMethod == models.PaymentMethodPix {
		// Outside the store transaction on purpose: a gateway outage must not
		// roll back the committed stock decrement. The order-scoped
		// idempotency key keeps retries from minting a second QR.
		charge, err := s.gateway.CreatePixCharge(ctx, CreatePixChargeInput{
			AmountCents:       order.FinalTotalCents,
			Payer:             in.Payer,
			ExternalReference: order.ID.String(),
			IdempotencyKey:    order.IdempotencyKey,
		})
		if err != nil {
			s.log.Warn("pix charge request failed, order stays pending until sweep",
				zap.String("order_id", order.ID.String()), zap.Error(err))
			return res, fmt.Errorf("%w: %w", ErrPaymentGateway, err)
		}
		if charge.QRCode == "" {
			return res, fmt.Errorf("%w: gateway returned empty qr payload", ErrPaymentGateway)
		}

		if err := s.repo.Orders.SetPixPayment(ctx, order.ID, charge.PaymentID, charge.QRCode, charge.QRCodeBase64); err != nil {
			return res, err
		}
		res.PixQRCode = charge.QRCode
		res.PixQRCodeBase64 = charge.QRCodeBase64
	}

	return res, nil
}

func (s *checkoutService) ChargeCard(ctx context.Context, orderID uuid.UUID, in CardChargeInput) (*CardChargeOutcome, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if in.CardToken == "" && in.SavedCardID == "" {
		return nil, ErrMissingCard
	}
	if in.Installments <= 0 {
		in.Installments = 1
	}

	ord, err := s.repo.Orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.Status != models.OrderStatusPending {
		return nil, ErrOrderNotPending
	}
	if ord.PaymentMethod != models.PaymentMethodCard {
		return nil, ErrWrongPaymentMethod
	}

	// amount comes from the persisted order, a fresh key per charge attempt
	result, err := s.gateway.CreateCardCharge(ctx, CreateCardChargeInput{
		AmountCents:       ord.FinalTotalCents,
		CardToken:         in.CardToken,
		SavedCardID:       in.SavedCardID,
		Installments:      in.Installments,
		Payer:             Payer{Name: ord.PayerName, Email: ord.PayerEmail, TaxID: ord.PayerTaxID},
		ExternalReference: ord.ID.String(),
		IdempotencyKey:    s.newKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymentGateway, err)
	}

	if result.PaymentID != "" {
		if err := s.repo.Orders.SetGatewayPaymentID(ctx, ord.ID, result.PaymentID); err != nil {
			return nil, err
		}
	}

	outcome := &CardChargeOutcome{
		OrderID:      ord.ID,
		Status:       result.Status,
		StatusDetail: result.StatusDetail,
	}
	if result.Status == GatewayStatusRejected {
		return outcome, &CardDeclinedError{StatusDetail: result.StatusDetail}
	}
	return outcome, nil
}

func (s *checkoutService) ConfirmPayment(ctx context.Context, orderID uuid.UUID) (models.OrderStatus, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return "", err
	}

	var ord *models.Order
	if role == RoleAdmin {
		ord, err = s.repo.Orders.GetByID(ctx, orderID)
	} else {
		ord, err = s.repo.Orders.GetByIDForUser(ctx, orderID, userID)
	}
	if err != nil {
		return "", err
	}
	if ord == nil {
		return "", ErrOrderNotFound
	}

	if ord.Status != models.OrderStatusPending || ord.GatewayPaymentID == nil {
		return ord.Status, nil
	}

	p, err := s.gateway.GetPayment(ctx, *ord.GatewayPaymentID)
	if err != nil {
		// poll is a convenience path; the webhook remains authoritative
		s.log.Warn("payment status poll failed", zap.String("order_id", ord.ID.String()), zap.Error(err))
		return ord.Status, nil
	}
	if p.Status == GatewayStatusApproved {
		if err := s.markPaid(ctx, ord.ID); err != nil {
			return "", err
		}
		return models.OrderStatusPaid, nil
	}
	return ord.Status, nil
}

func (s *checkoutService) HandlePaymentWebhook(ctx context.Context, eventID, eventType, paymentID string) error {
	if eventID == "" || paymentID == "" {
		return nil
	}

	fresh, err := s.repo.WebhookEvents.MarkProcessed(ctx, eventID, eventType)
	if err != nil {
		return err
	}
	if !fresh {
		return nil // duplicate delivery
	}

	p, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPaymentGateway, err)
	}
	if p.Status != GatewayStatusApproved {
		return nil
	}

	orderID, err := uuid.Parse(p.ExternalReference)
	if err != nil {
		s.log.Warn("webhook payment without parsable external reference",
			zap.String("payment_id", paymentID), zap.String("external_reference", p.ExternalReference))
		return nil
	}

	return s.markPaid(ctx, orderID)
}

func (s *checkoutService) markPaid(ctx context.Context, orderID uuid.UUID) error {
	flipped, err := s.repo.Orders.MarkPaid(ctx, orderID)
	if err != nil {
		return err
	}
	if !flipped {
		return nil // already paid or cancelled
	}

	ord, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil || ord == nil {
		s.log.Warn("paid order reload failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return nil
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueReceipt(ctx, ord.PayerEmail, ord.ID, ord.FinalTotalCents); err != nil {
			s.log.Error("receipt enqueue failed", zap.String("order_id", ord.ID.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *checkoutService) ExpireStale(ctx context.Context, olderThan time.Time) (int, error) {
	stale, err := s.repo.Orders.ListStalePending(ctx, olderThan, 100)
	if err != nil {
		return 0, err
	}

	expired := 0
	reason := "payment window expired"
	for _, ord := range stale {
		err := s.repo.Orders.WithTx(ctx, func(orders repository.OrderRepo, _ repository.OrderLineRepo, products repository.ProductRepo, variants repository.VariantRepo) error {
			ok, err := orders.Cancel(ctx, ord.ID, &reason)
			if err != nil {
				return err
			}
			if !ok {
				return nil // paid or cancelled since listing
			}
			// stock goes back in the same transaction as the cancel
			for _, line := range ord.Lines {
				v, err := variants.GetByProductAndSize(ctx, line.ProductID, line.Size)
				if err != nil {
					return err
				}
				if v == nil {
					continue // variant removed since purchase
				}
				if _, err := variants.Restock(ctx, v.ID, line.Quantity); err != nil {
					return err
				}
				if _, err := products.AdjustTotalStock(ctx, line.ProductID, line.Quantity); err != nil {
					return err
				}
			}
			expired++
			return nil
		})
		if err != nil {
			s.log.Error("expire order failed", zap.String("order_id", ord.ID.String()), zap.Error(err))
			continue
		}
	}
	return expired, nil
}

func (s *checkoutService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.Order
	if role == RoleAdmin {
		ord, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		ord, err = s.repo.Orders.GetByIDForUser(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	return ord, nil
}

func (s *checkoutService) ListOrders(ctx context.Context, in OrderListInput) ([]models.Order, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}
	if role != RoleAdmin {
		in.UserID = &userID
	}

	list, total, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		UserID: in.UserID,
		Status: in.Status,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, len(list))
	for i, o := range list {
		orders[i] = *o
	}
	return orders, total, nil
}
