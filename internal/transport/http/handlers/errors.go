package handlers

import (
	"errors"
	"net/http"

	"storefront/internal/service"
	"storefront/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeServiceError translates service sentinels into the HTTP error envelope.
func writeServiceError(c *gin.Context, log *zap.Logger, err error) {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, dto.BaseError{
			Code:    "insufficient_stock",
			Message: "not enough stock for " + stockErr.ProductName + " size " + stockErr.Size,
		})
		return
	}

	var declined *service.CardDeclinedError
	if errors.As(err, &declined) {
		c.JSON(http.StatusPaymentRequired, dto.BaseError{
			Code:    "card_declined",
			Message: "card was declined",
			Details: declined.StatusDetail,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("not allowed"))
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrMissingCard):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, dto.NewConflictError("insufficient_stock", err.Error()))
	case errors.Is(err, service.ErrOrderNotPending):
		c.JSON(http.StatusConflict, dto.NewConflictError("order_not_pending", err.Error()))
	case errors.Is(err, service.ErrWrongPaymentMethod):
		c.JSON(http.StatusConflict, dto.NewConflictError("wrong_payment_method", err.Error()))
	case errors.Is(err, service.ErrShippingUnavailable):
		c.JSON(http.StatusUnprocessableEntity, dto.BaseError{Code: "shipping_unavailable", Message: err.Error()})
	case errors.Is(err, service.ErrPaymentGateway):
		c.JSON(http.StatusBadGateway, dto.NewUpstreamError("payment processor unavailable"))
	default:
		log.Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
