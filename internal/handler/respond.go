package handler

import (
	"errors"
	"net/http"

	"puntoventa-be/internal/invoice"
	"puntoventa-be/internal/logger"
	"puntoventa-be/internal/merchant"
	"puntoventa-be/internal/numbering"
	"puntoventa-be/internal/order"
	"puntoventa-be/internal/payment"
	"puntoventa-be/internal/product"
	"puntoventa-be/internal/settlement"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorKind maps a domain error to a stable machine-readable kind and an
// HTTP status. Clients branch on the kind, not the message.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, settlement.ErrInvalidInstrument):
		return http.StatusUnprocessableEntity, "InvalidInstrument"
	case errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound, "OrderNotFound"
	case errors.Is(err, order.ErrAlreadyPaid):
		return http.StatusConflict, "AlreadyPaid"
	case errors.Is(err, order.ErrOrderCancelled):
		return http.StatusConflict, "OrderCancelled"
	case errors.Is(err, order.ErrEmptyOrder):
		return http.StatusUnprocessableEntity, "EmptyOrder"
	case errors.Is(err, order.ErrInvalidTransition):
		return http.StatusConflict, "InvalidTransition"
	case errors.Is(err, payment.ErrDeclined):
		return http.StatusPaymentRequired, "PaymentDeclined"
	case errors.Is(err, numbering.ErrNumberingExhausted):
		return http.StatusServiceUnavailable, "NumberingExhausted"
	case errors.Is(err, settlement.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "TransientStoreFailure"
	case errors.Is(err, settlement.ErrOrderNotPaid):
		return http.StatusConflict, "OrderNotPaid"
	case errors.Is(err, invoice.ErrInvoiceExists):
		return http.StatusConflict, "InvoiceExists"
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		return http.StatusNotFound, "InvoiceNotFound"
	case errors.Is(err, payment.ErrPaymentNotFound):
		return http.StatusNotFound, "PaymentNotFound"
	case errors.Is(err, product.ErrProductNotFound):
		return http.StatusNotFound, "ProductNotFound"
	case errors.Is(err, merchant.ErrInvalidCredentials):
		return http.StatusUnauthorized, "InvalidCredentials"
	case errors.Is(err, merchant.ErrEmailExists):
		return http.StatusConflict, "EmailExists"
	case errors.Is(err, merchant.ErrMerchantNotFound):
		return http.StatusNotFound, "MerchantNotFound"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

func respondError(c *gin.Context, err error) {
	status, kind := errorKind(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed", zap.Error(err))
		msg = "internal error"
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"kind":      kind,
			"message":   msg,
			"requestId": logger.RequestIDFrom(c.Request.Context()),
		},
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{
			"kind":      "BadRequest",
			"message":   msg,
			"requestId": logger.RequestIDFrom(c.Request.Context()),
		},
	})
}
