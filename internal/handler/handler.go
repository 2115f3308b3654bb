package handler

import (
	"puntoventa-be/internal/dashboard"
	"puntoventa-be/internal/invoice"
	"puntoventa-be/internal/merchant"
	"puntoventa-be/internal/middleware"
	"puntoventa-be/internal/order"
	"puntoventa-be/internal/payment"
	"puntoventa-be/internal/product"
	"puntoventa-be/internal/settlement"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	merchants  merchant.Service
	products   product.Service
	orders     order.Service
	payments   payment.Repository
	settlement settlement.Service
	invoices   invoice.Repository
	dashboard  dashboard.Repository
	jwtSecret  string
}

func New(
	merchants merchant.Service,
	products product.Service,
	orders order.Service,
	payments payment.Repository,
	settlementSvc settlement.Service,
	invoices invoice.Repository,
	dashboardRepo dashboard.Repository,
	jwtSecret string,
) *Handler {
	return &Handler{
		merchants:  merchants,
		products:   products,
		orders:     orders,
		payments:   payments,
		settlement: settlementSvc,
		invoices:   invoices,
		dashboard:  dashboardRepo,
		jwtSecret:  jwtSecret,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.Use(middleware.RequestLogger())

	auth := api.Group("/auth")
	auth.Use(middleware.RateLimit(true))
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)

	public := api.Group("")
	public.Use(middleware.RateLimit(false))
	public.GET("/products", h.listProducts)
	public.GET("/products/:id", h.getProduct)

	private := api.Group("")
	private.Use(middleware.RequireMerchant(h.jwtSecret))
	private.POST("/products", h.createProduct)
	private.PUT("/products/:id", h.updateProduct)
	private.POST("/orders", h.createOrder)
	private.GET("/orders/:id", h.getOrder)
	private.POST("/orders/:id/cancel", h.cancelOrder)
	private.GET("/orders/:id/payments", h.listOrderPayments)
	private.GET("/payments/:id", h.getPayment)
	private.GET("/customers/:id/orders", h.listCustomerOrders)
	private.GET("/customers/:id/invoices", h.listCustomerInvoices)
	private.GET("/orders/:id/invoice", h.getOrderInvoice)
	private.POST("/orders/:id/invoice", h.issueInvoice)
	private.GET("/invoices/:id", h.getInvoice)
	private.GET("/invoices/:id/document", h.renderInvoice)
	private.GET("/dashboard/summary", h.dashboardSummary)

	// Settlement carries card data and moves money. Strictest tier.
	settle := api.Group("")
	settle.Use(middleware.RequireMerchant(h.jwtSecret), middleware.RateLimit(true))
	settle.POST("/orders/:id/settle", h.settle)
}
