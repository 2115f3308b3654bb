package handler

import (
	"net/http"
	"strconv"

	"puntoventa-be/internal/payment"

	"github.com/gin-gonic/gin"
)

type settleReq struct {
	CardNumber string `json:"card_number" binding:"required"`
	CVV        string `json:"cvv" binding:"required"`
	Expiry     string `json:"expiry"`
	HolderName string `json:"holder_name"`
}

// settle runs the full pipeline: validate instrument, capture, mark paid and
// decrement stock atomically, then issue the invoice.
func (h *Handler) settle(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	var req settleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid settle payload")
		return
	}

	inv, err := h.settlement.Settle(c.Request.Context(), orderID, payment.Instrument{
		CardNumber: req.CardNumber,
		CVV:        req.CVV,
		Expiry:     req.Expiry,
		HolderName: req.HolderName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// issueInvoice is the recovery endpoint for paid-but-uninvoiced orders.
func (h *Handler) issueInvoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	inv, err := h.settlement.IssueInvoice(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": inv})
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid invoice id")
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) getOrderInvoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	inv, err := h.invoices.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handler) listCustomerInvoices(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid customer id")
		return
	}

	invoices, err := h.invoices.ListByCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

// renderInvoice returns the rendered document and records the first stamping.
func (h *Handler) renderInvoice(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid invoice id")
		return
	}

	docBytes, err := h.settlement.StampInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/pdf", docBytes)
}
