package handler

import (
	"net/http"
	"strconv"

	"puntoventa-be/internal/middleware"
	"puntoventa-be/internal/order"

	"github.com/gin-gonic/gin"
)

type createOrderReq struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
	Items      []struct {
		ProductID int64 `json:"product_id" binding:"required"`
		Quantity  int64 `json:"quantity" binding:"required"`
		UnitPrice int64 `json:"unit_price"`
	} `json:"items" binding:"required"`
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid order payload")
		return
	}

	merchantID, ok := middleware.MerchantID(c)
	if !ok {
		badRequest(c, "merchant not resolved")
		return
	}

	items := make([]order.NewItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.NewItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	o, err := h.orders.CreateOrder(c.Request.Context(), req.CustomerID, merchantID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	if err := h.orders.CancelOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "CANCELLED"})
}

func (h *Handler) listCustomerOrders(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid customer id")
		return
	}

	orders, err := h.orders.ListOrdersByCustomer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid payment id")
		return
	}

	p, err := h.payments.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) listOrderPayments(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}

	payments, err := h.payments.ListByOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
