package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/idempotency"
	"storefront/internal/models"
	"storefront/internal/service"
	"storefront/internal/transport/http/dto"
	"storefront/internal/transport/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idempotencyKeyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	checkout service.CheckoutService
	idem     *idempotency.Store // nil when redis is disabled
	log      *zap.Logger
}

func NewCheckoutHandler(checkout service.CheckoutService, idem *idempotency.Store, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, idem: idem, log: log}
}

// PlaceOrder runs the order-placement transaction. A client Idempotency-Key
// header makes retries return the first response instead of a second order.
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid place order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	ctx := c.Request.Context()
	userID := c.GetString(middleware.CtxUserID)
	idemKey := c.GetHeader(idempotencyKeyHeader)

	if h.idem != nil && idemKey != "" {
		stored, err := h.idem.Begin(ctx, userID, idemKey)
		if errors.Is(err, idempotency.ErrInFlight) {
			c.JSON(http.StatusConflict, dto.NewConflictError("request_in_flight", "a request with this idempotency key is being processed"))
			return
		}
		if err != nil {
			h.log.Error("idempotency begin failed", zap.Error(err))
		} else if stored != "" {
			c.Data(http.StatusCreated, "application/json", []byte(stored))
			return
		}
	}

	items := make([]service.PlaceOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid product id", []dto.FieldError{{Field: "items.product_id", Message: "must be a uuid"}}))
			return
		}
		items = append(items, service.PlaceOrderItem{ProductID: pid, Size: it.Size, Quantity: it.Quantity})
	}

	res, err := h.checkout.PlaceOrder(ctx, service.PlaceOrderInput{
		Items:          items,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		DestinationZip: req.DestinationZip,
		Payer: service.Payer{
			Name:  req.Payer.Name,
			Email: req.Payer.Email,
			TaxID: req.Payer.TaxID,
		},
	})

	// a committed order whose QR request failed is still a created order;
	// the client retries the QR via the payment status endpoint
	qrPending := false
	if err != nil {
		if res == nil || !errors.Is(err, service.ErrPaymentGateway) {
			h.abandonKey(c, userID, idemKey)
			writeServiceError(c, h.log, err)
			return
		}
		h.log.Warn("pix charge failed after order commit", zap.String("order_id", res.OrderID.String()), zap.Error(err))
		qrPending = true
	}

	resp := dto.NewPlaceOrderResponse(res, qrPending)
	body, merr := json.Marshal(resp)
	if merr == nil && h.idem != nil && idemKey != "" {
		if cerr := h.idem.Complete(ctx, userID, idemKey, string(body)); cerr != nil {
			h.log.Error("idempotency complete failed", zap.Error(cerr))
		}
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *CheckoutHandler) abandonKey(c *gin.Context, userID, idemKey string) {
	if h.idem == nil || idemKey == "" {
		return
	}
	if err := h.idem.Abandon(c.Request.Context(), userID, idemKey); err != nil {
		h.log.Error("idempotency abandon failed", zap.Error(err))
	}
}

// ChargeCard executes the card payment for a pending card order.
func (h *CheckoutHandler) ChargeCard(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	var req dto.ChargeCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	outcome, err := h.checkout.ChargeCard(c.Request.Context(), orderID, service.CardChargeInput{
		CardToken:    req.CardToken,
		SavedCardID:  req.SavedCardID,
		Installments: req.Installments,
	})
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.ChargeCardResponse{
		OrderID:      outcome.OrderID.String(),
		Status:       outcome.Status,
		StatusDetail: outcome.StatusDetail,
	})
}

// PaymentStatus is the client poll endpoint for PIX settlement.
func (h *CheckoutHandler) PaymentStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	status, err := h.checkout.ConfirmPayment(c.Request.Context(), orderID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.OrderStatusResponse{OrderID: orderID.String(), Status: string(status)})
}

func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid order id", nil))
		return
	}

	order, err := h.checkout.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOrderResponse(order))
}

func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	in := service.OrderListInput{
		Limit:  atoiDefault(c.Query("limit"), 20),
		Offset: atoiDefault(c.Query("offset"), 0),
	}
	if s := c.Query("status"); s != "" {
		status := models.OrderStatus(s)
		in.Status = &status
	}
	if u := c.Query("user_id"); u != "" {
		uid, err := uuid.Parse(u)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid user id", nil))
			return
		}
		in.UserID = &uid
	}

	orders, total, err := h.checkout.ListOrders(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	resp := dto.OrderListResponse{Orders: make([]dto.OrderResponse, 0, len(orders)), Total: total}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
