package http

import (
	"net/http"
	"strconv"

	"delivery-service/internal/auth"
	"delivery-service/internal/domain"
	"delivery-service/internal/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	orders   *services.OrderService
	products *services.ProductService
	accounts *services.AuthService
	tokens   *auth.TokenManager
}

func NewHandler(o *services.OrderService, p *services.ProductService, a *services.AuthService, tokens *auth.TokenManager) *Handler {
	return &Handler{orders: o, products: p, accounts: a, tokens: tokens}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	registerValidators()

	r.Use(RequestID(), RequestLogger())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	a := r.Group("/auth")
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
	a.GET("/me", h.RequireAuth(), h.Me)

	o := r.Group("/orders", h.RequireAuth())
	o.POST("", h.CreateOrder)
	o.GET("", h.ListOrders)
	o.GET("/admin/all", h.ListAllOrders)
	o.GET("/:id", h.GetOrder)
	o.GET("/:id/tracking", h.TrackOrder)
	o.PATCH("/:id/status", h.UpdateOrderStatus)

	p := r.Group("/products")
	p.GET("", h.ListProducts)
	p.GET("/:id", h.GetProduct)
	p.POST("", h.RequireAuth(), h.CreateProduct)
	p.PUT("/:id", h.RequireAuth(), h.UpdateProduct)
	p.DELETE("/:id", h.RequireAuth(), h.DeleteProduct)
}

func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, &domain.ValidationError{Field: "id", Reason: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), principalFrom(c), req.toInput())
	if err != nil {
		respondError(c, err, "Error creating order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListForUser(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err, "Error fetching orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err, "Error fetching all orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrderById(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err, "Error fetching order")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) TrackOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	tracking, err := h.orders.Track(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err, "Error tracking order")
		return
	}
	c.JSON(http.StatusOK, tracking)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), principalFrom(c), id, req.Status)
	if err != nil {
		respondError(c, err, "Error updating order status")
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error fetching products")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error fetching product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.products.Create(c.Request.Context(), principalFrom(c), req.toInput())
	if err != nil {
		respondError(c, err, "Error creating product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	product, err := h.products.Update(c.Request.Context(), principalFrom(c), id, req.toInput())
	if err != nil {
		respondError(c, err, "Error updating product")
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), principalFrom(c), id); err != nil {
		respondError(c, err, "Error deleting product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Error registering user")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Error logging in")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.accounts.Me(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err, "Error fetching user")
		return
	}
	c.JSON(http.StatusOK, u)
}
