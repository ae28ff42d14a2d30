package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"delivery-service/internal/auth"
	"delivery-service/internal/domain"
	"delivery-service/internal/mocks"
	"delivery-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   *gin.Engine
	orders   *services.OrderService
	tokens   *auth.TokenManager
	repo     *mocks.MockOrderRepository
	products *mocks.MockProductRepository
	users    *mocks.MockUserRepository
	pub      *mocks.MockPublisher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
		repo:     new(mocks.MockOrderRepository),
		products: new(mocks.MockProductRepository),
		users:    new(mocks.MockUserRepository),
		pub:      new(mocks.MockPublisher),
	}
	s.orders = services.NewOrderService(s.repo, s.products, s.pub, services.OrderOptions{EnforceStock: true})
	h := NewHandler(
		s.orders,
		services.NewProductService(s.products, nil),
		services.NewAuthService(s.users, s.tokens),
		s.tokens,
	)

	s.router = gin.New()
	h.RegisterRoutes(s.router)
	return s
}

func (s *testServer) token(t *testing.T, p domain.Principal) string {
	t.Helper()
	tok, err := s.tokens.Issue(&domain.User{ID: p.UserID, Role: p.Role})
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, body any, p *domain.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(t, *p))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.orders.Wait()
	return w
}

var (
	customer = domain.Principal{UserID: 1, Role: domain.RoleUser}
	stranger = domain.Principal{UserID: 2, Role: domain.RoleUser}
	admin    = domain.Principal{UserID: 99, Role: domain.RoleAdmin}
)

func pendingOrder(id, userID uint64) *domain.Order {
	return &domain.Order{ID: id, UserID: userID, Status: domain.StatusPending, CreatedAt: time.Now()}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication required", decodeError(t, w).Message)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrder(t *testing.T) {
	s := newTestServer(t)
	s.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order"), true).Return(nil).Run(func(args mock.Arguments) {
		o := args.Get(1).(*domain.Order)
		o.ID = 5
		for i := range o.Items {
			o.Items[i].ID = uint64(i + 1)
			o.Items[i].OrderID = 5
		}
	})
	s.pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)

	w := s.do(t, http.MethodPost, "/orders", gin.H{
		"items":   []gin.H{{"productId": 1, "quantity": 2, "price": 9.50}},
		"total":   19.00,
		"address": "Av. Siempre Viva 742",
	}, &customer)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":19,`)
	assert.Contains(t, w.Body.String(), `"price":9.5}`)
	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, uint64(5), order.ID)
	assert.Equal(t, customer.UserID, order.UserID)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("19").Equal(order.Total))
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, uint64(1), order.Items[0].ProductID)
	assert.Equal(t, 0.0, order.Latitude)

	s.repo.AssertExpectations(t)
	s.pub.AssertExpectations(t)
}

func TestCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(*testServer)
		wantStatus int
	}{
		{
			name:       "total mismatch",
			body:       gin.H{"items": []gin.H{{"productId": 1, "quantity": 2, "price": 9.50}}, "total": 5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "price below a cent",
			body:       gin.H{"items": []gin.H{{"productId": 1, "quantity": 2, "price": 0.005}}, "total": 0.01},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative total",
			body:       gin.H{"items": []gin.H{{"productId": 1, "quantity": 1, "price": 1}}, "total": -1},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       "not an object",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing items",
			body:       gin.H{"total": 5},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "out of stock",
			body: gin.H{"items": []gin.H{{"productId": 1, "quantity": 900, "price": 1}}},
			setup: func(s *testServer) {
				s.repo.On("Create", mock.Anything, mock.Anything, true).Return(domain.ErrOutOfStock)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "store failure",
			body: gin.H{"items": []gin.H{{"productId": 1, "quantity": 1, "price": 1}}},
			setup: func(s *testServer) {
				s.repo.On("Create", mock.Anything, mock.Anything, true).Return(errors.New("database error"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			if tt.setup != nil {
				tt.setup(s)
			}

			w := s.do(t, http.MethodPost, "/orders", tt.body, &customer)
			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.NotEmpty(t, body.Error)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Equal(t, "Error creating order", body.Message)
			}
		})
	}
}

func TestListOrders(t *testing.T) {
	s := newTestServer(t)
	s.repo.On("FindByUser", mock.Anything, customer.UserID).Return([]domain.Order{*pendingOrder(2, 1), *pendingOrder(1, 1)}, nil)

	w := s.do(t, http.MethodGet, "/orders", nil, &customer)
	require.Equal(t, http.StatusOK, w.Code)

	var orders []domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.Len(t, orders, 2)
	s.repo.AssertExpectations(t)
}

func TestListAllOrders(t *testing.T) {
	s := newTestServer(t)
	s.repo.On("FindAll", mock.Anything).Return([]domain.Order{*pendingOrder(1, 1)}, nil)

	w := s.do(t, http.MethodGet, "/orders/admin/all", nil, &customer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/orders/admin/all", nil, &admin)
	assert.Equal(t, http.StatusOK, w.Code)
	s.repo.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestGetOrder(t *testing.T) {
	s := newTestServer(t)
	s.repo.On("FindByID", mock.Anything, uint64(5)).Return(pendingOrder(5, customer.UserID), nil)
	s.repo.On("FindByID", mock.Anything, uint64(6)).Return(nil, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/orders/5", nil, &customer).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/orders/5", nil, &admin).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/orders/5", nil, &stranger).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/orders/6", nil, &customer).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/orders/abc", nil, &customer).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/orders/5/tracking", nil, &customer).Code)
}

func TestUpdateOrderStatus_NonAdmin(t *testing.T) {
	s := newTestServer(t)

	for _, status := range []string{"DELIVERED", "LOST"} {
		w := s.do(t, http.MethodPatch, "/orders/5/status", gin.H{"status": status}, &customer)
		assert.Equal(t, http.StatusForbidden, w.Code, status)
	}

	s.repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	s.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	s.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_Admin(t *testing.T) {
	tests := []struct {
		name       string
		current    domain.OrderStatus
		next       string
		wantStatus int
	}{
		{name: "advance", current: domain.StatusPending, next: "PREPARING", wantStatus: http.StatusOK},
		{name: "skip ahead", current: domain.StatusPending, next: "DELIVERED", wantStatus: http.StatusConflict},
		{name: "unknown status", current: domain.StatusPending, next: "LOST", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			o := pendingOrder(5, customer.UserID)
			o.Status = tt.current
			s.repo.On("FindByID", mock.Anything, uint64(5)).Return(o, nil).Maybe()
			s.repo.On("UpdateStatus", mock.Anything, uint64(5), tt.current, domain.OrderStatus(tt.next)).Return(nil).Maybe()
			s.pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.Anything).Return(nil).Maybe()

			w := s.do(t, http.MethodPatch, "/orders/5/status", gin.H{"status": tt.next}, &admin)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus == http.StatusOK {
				var order domain.Order
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
				assert.Equal(t, domain.OrderStatus(tt.next), order.Status)
				s.repo.AssertCalled(t, "UpdateStatus", mock.Anything, uint64(5), tt.current, domain.OrderStatus(tt.next))
			} else {
				s.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProducts(t *testing.T) {
	s := newTestServer(t)
	burger := &domain.Product{ID: 1, Name: "Hamburguesa Doble Queso", Price: decimal.RequireFromString("9.50"), Stock: 50}
	s.products.On("FindAll", mock.Anything).Return([]domain.Product{*burger}, nil)
	s.products.On("FindByID", mock.Anything, uint64(1)).Return(burger, nil)
	s.products.On("FindByID", mock.Anything, uint64(2)).Return(nil, nil)
	s.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)
	s.products.On("Delete", mock.Anything, uint64(1)).Return(true, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/products", nil, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/products/1", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/products/2", nil, nil).Code)

	newProduct := gin.H{"name": "Limonada Natural", "price": 3.00, "stock": 50}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/products", newProduct, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/products", newProduct, &customer).Code)
	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/products", newProduct, &admin).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/products", gin.H{"price": 1}, &admin).Code)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/products/1", nil, &customer).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/products/1", nil, &admin).Code)

	s.products.AssertNumberOfCalls(t, "Create", 1)
	s.products.AssertNumberOfCalls(t, "Delete", 1)
}

func TestAuthRoutes(t *testing.T) {
	s := newTestServer(t)
	s.users.On("FindByEmail", mock.Anything, "nuevo@demo.com").Return(nil, nil)
	s.users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 12
	})
	s.users.On("FindByEmail", mock.Anything, "cliente@demo.com").Return(nil, nil)
	s.users.On("FindByID", mock.Anything, uint64(12)).Return(&domain.User{ID: 12, Name: "Nuevo", Role: domain.RoleUser}, nil)

	w := s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "Nuevo", "email": "nuevo@demo.com", "password": "123456"}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Token string      `json:"token"`
		User  domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, uint64(12), res.User.ID)
	assert.NotContains(t, w.Body.String(), "PasswordHash")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+res.Token)
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	assert.Equal(t, http.StatusOK, me.Code)

	w = s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "cliente@demo.com", "password": "123456"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/auth/register", gin.H{"name": "X", "email": "bad", "password": "123456"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
