package http

import (
	"delivery-service/internal/services"

	"github.com/shopspring/decimal"
)

type OrderItemRequest struct {
	ProductID uint64           `json:"productId" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required"`
	Price     *decimal.Decimal `json:"price" binding:"omitempty,money"`
}

type CreateOrderRequest struct {
	Items     []OrderItemRequest `json:"items" binding:"required,dive"`
	Total     *decimal.Decimal   `json:"total" binding:"omitempty,money"`
	Address   string             `json:"address"`
	Latitude  *float64           `json:"latitude"`
	Longitude *float64           `json:"longitude"`
}

func (r CreateOrderRequest) toInput() services.CreateOrderInput {
	in := services.CreateOrderInput{
		Items:   make([]services.OrderItemInput, 0, len(r.Items)),
		Total:   r.Total,
		Address: r.Address,
	}
	if r.Latitude != nil {
		in.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		in.Longitude = *r.Longitude
	}
	for _, it := range r.Items {
		in.Items = append(in.Items, services.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return in
}

type UpdateStatusRequest struct {
	// Status is checked by the order service after the caller is authorized.
	Status string `json:"status" binding:"required"`
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Stock       int             `json:"stock" binding:"min=0"`
}

func (r ProductRequest) toInput() services.ProductInput {
	return services.ProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Stock:       r.Stock,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
