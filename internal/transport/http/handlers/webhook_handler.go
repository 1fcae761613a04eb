package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"storefront/internal/service"
	"storefront/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const webhookSecretHeader = "X-Webhook-Secret"

type WebhookHandler struct {
	checkout service.CheckoutService
	secret   string
	log      *zap.Logger
}

func NewWebhookHandler(checkout service.CheckoutService, secret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{checkout: checkout, secret: secret, log: log}
}

// HandlePayment receives processor payment notifications. Non-2xx responses
// make the processor retry, so only genuine processing failures return 500.
func (h *WebhookHandler) HandlePayment(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(webhookSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid webhook secret"))
			return
		}
	}

	var req dto.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid webhook payload", nil))
		return
	}

	err := h.checkout.HandlePaymentWebhook(c.Request.Context(), req.ID, req.Action, req.Data.ID)
	if err != nil {
		// unknown references are not ours to retry
		if errors.Is(err, service.ErrOrderNotFound) {
			h.log.Warn("webhook for unknown order", zap.String("event_id", req.ID), zap.String("payment_id", req.Data.ID))
			c.Status(http.StatusOK)
			return
		}
		h.log.Error("webhook processing failed", zap.String("event_id", req.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}

	c.Status(http.StatusOK)
}
