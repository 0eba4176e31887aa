// Package httpapi exposes the application services over JSON HTTP.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appauth "github.com/awemart/awemart/internal/application/auth"
	appcart "github.com/awemart/awemart/internal/application/cart"
	appcatalog "github.com/awemart/awemart/internal/application/catalog"
	"github.com/awemart/awemart/internal/application/checkout"
	appinventory "github.com/awemart/awemart/internal/application/inventory"
	apporders "github.com/awemart/awemart/internal/application/orders"
	apppayment "github.com/awemart/awemart/internal/application/payment"
	appshipment "github.com/awemart/awemart/internal/application/shipment"
	appstats "github.com/awemart/awemart/internal/application/stats"
	"github.com/awemart/awemart/internal/domain/billing"
	domcart "github.com/awemart/awemart/internal/domain/cart"
	"github.com/awemart/awemart/internal/domain/catalog"
	"github.com/awemart/awemart/internal/domain/customer"
	"github.com/awemart/awemart/internal/domain/order"
	domshipment "github.com/awemart/awemart/internal/domain/shipment"
	"github.com/awemart/awemart/internal/observability"
)

// Handler bundles the application services behind the route tree.
type Handler struct {
	Auth      *appauth.Service
	Catalog   *appcatalog.Service
	Cart      *appcart.Service
	Checkout  *checkout.Service
	Payment   *apppayment.Service
	Shipment  *appshipment.Service
	Orders    *apporders.Service
	Inventory *appinventory.Service
	Stats     *appstats.Service

	Obs     observability.Observability
	Metrics http.Handler
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler) *gin.Engine {
	if h.Obs == nil {
		h.Obs = observability.Nop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(Observe(h.Obs.Logger(), h.Obs))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	r.POST("/auth/signup", h.signup)
	r.POST("/auth/login", h.login)

	r.GET("/products", h.listProducts)
	r.GET("/products/:id", h.getProduct)
	r.GET("/categories", h.listCategories)
	r.GET("/shipment/track", h.trackShipment)

	authed := r.Group("/", AuthRequired(h.Auth))
	{
		authed.GET("/cart", h.getCart)
		authed.POST("/cart/items", h.addCartItem)
		authed.PUT("/cart/items", h.updateCartItem)
		authed.DELETE("/cart/items/:productID", h.removeCartItem)
		authed.DELETE("/cart", h.clearCart)

		authed.POST("/cart/place-order", h.placeOrder)
		authed.POST("/cart/pay-invoice", h.payInvoice)

		authed.GET("/orders", h.listOrders)
		authed.GET("/orders/:id", h.getOrder)
		authed.GET("/orders/:id/invoice", h.getInvoice)
	}

	admin := r.Group("/", AuthRequired(h.Auth), RequireRole(customer.RoleAdmin))
	{
		admin.POST("/products", h.createProduct)
		admin.POST("/categories", h.createCategory)
	}

	shipmentOps := r.Group("/", AuthRequired(h.Auth),
		RequireRole(customer.RoleAdmin, customer.RoleShipmentManager))
	{
		shipmentOps.POST("/shipment/:id/update-status", h.updateShipmentStatus)
		shipmentOps.GET("/shipment/dashboard", h.shipmentDashboard)
	}

	statsOps := r.Group("/", AuthRequired(h.Auth),
		RequireRole(customer.RoleAdmin, customer.RoleStatisticsManager))
	{
		statsOps.GET("/orders/analytics", h.orderAnalytics)
	}

	inventoryOps := r.Group("/", AuthRequired(h.Auth),
		RequireRole(customer.RoleAdmin, customer.RoleInventoryManager))
	{
		inventoryOps.GET("/inventory", h.listInventory)
		inventoryOps.POST("/inventory/:productID/adjust", h.adjustInventory)
	}

	return r
}

// fail translates domain errors to the response taxonomy: validation and
// business-rule rejections are 400, missing entities 404, everything else 500.
func fail(c *gin.Context, err error) {
	var stockErr *catalog.InsufficientStockError
	var fundsErr *customer.InsufficientFundsError
	var transitionErr *domshipment.InvalidTransitionError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "insufficient stock",
			"product_id": stockErr.ProductID,
			"available":  stockErr.Available,
			"requested":  stockErr.Requested,
		})
	case errors.As(err, &fundsErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient funds",
			"required":  fundsErr.Required,
			"available": fundsErr.Available,
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid transition",
			"from":  transitionErr.From,
			"to":    transitionErr.To,
		})
	case errors.Is(err, billing.ErrAlreadyPaid),
		errors.Is(err, domcart.ErrEmpty),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, order.ErrMissingShipping),
		errors.Is(err, catalog.ErrInvalidPrice),
		errors.Is(err, catalog.ErrInvalidStock),
		errors.Is(err, domshipment.ErrOrderNotPaid),
		errors.Is(err, domshipment.ErrAlreadyExists),
		errors.Is(err, domshipment.ErrInvalidTransition),
		errors.Is(err, customer.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, domcart.ErrNotFound),
		errors.Is(err, domcart.ErrLineNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, billing.ErrInvoiceNotFound),
		errors.Is(err, domshipment.ErrNotFound),
		errors.Is(err, customer.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, appauth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- auth ---

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.Auth.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":       cust.ID,
		"username": cust.Username,
		"role":     cust.Role,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cust, err := h.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       cust.ID,
		"username": cust.Username,
		"role":     cust.Role,
		"wallet":   cust.Wallet,
	})
}

// --- catalog ---

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type createProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	CategoryID  *string         `json:"category_id"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product, err := h.Catalog.CreateProduct(c.Request.Context(),
		req.Name, req.Description, req.Price, req.Stock, req.CategoryID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

type createCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat, err := h.Catalog.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

// --- cart ---

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.Cart.Get(c.Request.Context(), Principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

type cartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := h.Cart.AddItem(c.Request.Context(), Principal(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cart, err := h.Cart.UpdateItem(c.Request.Context(), Principal(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	cart, err := h.Cart.RemoveItem(c.Request.Context(), Principal(c).ID, c.Param("productID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(cart))
}

func (h *Handler) clearCart(c *gin.Context) {
	if err := h.Cart.Clear(c.Request.Context(), Principal(c).ID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func cartView(cart *domcart.Cart) gin.H {
	return gin.H{
		"id":         cart.ID,
		"lines":      cart.Lines,
		"item_count": cart.ItemCount(),
		"total":      cart.Total(),
	}
}

// --- checkout / payment ---

type placeOrderRequest struct {
	FullName   string `json:"full_name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Checkout.PlaceOrder(c.Request.Context(), Principal(c).ID, order.ShippingInfo{
		FullName:   req.FullName,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"order_id": res.Order.ID,
		"invoice": gin.H{
			"id":             res.Invoice.ID,
			"invoice_number": res.Invoice.InvoiceNumber,
			"amount_due":     res.Invoice.AmountDue,
			"due_date":       res.Invoice.DueDate,
			"status":         res.Invoice.Status,
		},
	})
}

type payInvoiceRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
}

func (h *Handler) payInvoice(c *gin.Context) {
	var req payInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.Payment.PayInvoice(c.Request.Context(), Principal(c).ID, req.InvoiceID)
	if err != nil {
		fail(c, err)
		return
	}

	// Payment committed; the shipment is created right behind it so the
	// response can hand the customer their tracking number.
	sh, err := h.Shipment.Create(c.Request.Context(), res.OrderID)
	if err != nil && !errors.Is(err, domshipment.ErrAlreadyExists) {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payment":  res.Payment,
		"receipt":  res.Receipt,
		"shipment": sh,
	})
}

// --- orders ---

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.Orders.ListForCustomer(c.Request.Context(), Principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	ownerID := Principal(c).ID
	if Principal(c).Role == customer.RoleAdmin {
		ownerID = ""
	}
	ord, err := h.Orders.Get(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ord)
}

func (h *Handler) getInvoice(c *gin.Context) {
	ownerID := Principal(c).ID
	if Principal(c).Role == customer.RoleAdmin {
		ownerID = ""
	}
	inv, err := h.Orders.GetInvoice(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// --- shipment ---

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateShipmentStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next := domshipment.Status(req.Status)
	if !next.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status: " + req.Status})
		return
	}
	sh, err := h.Shipment.UpdateStatus(c.Request.Context(), c.Param("id"), next)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sh)
}

func (h *Handler) trackShipment(c *gin.Context) {
	tn := c.Query("tracking_number")
	if tn == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tracking_number is required"})
		return
	}
	snap, err := h.Shipment.Track(c.Request.Context(), tn)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) shipmentDashboard(c *gin.Context) {
	dash, err := h.Stats.ShipmentDashboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

// --- stats / inventory ---

func (h *Handler) orderAnalytics(c *gin.Context) {
	analytics, err := h.Stats.OrderAnalytics(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) listInventory(c *gin.Context) {
	items, err := h.Inventory.AllStock(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": items})
}

type adjustStockRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func (h *Handler) adjustInventory(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stock, err := h.Inventory.AdjustStock(c.Request.Context(), c.Param("productID"), *req.Delta)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("productID"), "stock": stock})
}
