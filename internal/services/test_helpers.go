package services

import (
	"time"

	"delivery-service/internal/domain"

	"github.com/shopspring/decimal"
)

func CreateMockOrder(id uint64, userID uint64, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	o := &domain.Order{
		ID:        id,
		UserID:    userID,
		Status:    status,
		Items:     items,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	o.Total = o.ItemsTotal()
	return o
}

func CreateMockProduct(id uint64, name string, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:    id,
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func DecimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var (
	TestCustomer = domain.Principal{UserID: 1, Role: domain.RoleUser}
	TestStranger = domain.Principal{UserID: 2, Role: domain.RoleUser}
	TestAdmin    = domain.Principal{UserID: 99, Role: domain.RoleAdmin}
)

const (
	TestOrderID     = uint64(5)
	TestProductID   = uint64(1)
	TestProductName = "Hamburguesa Doble Queso"
)
