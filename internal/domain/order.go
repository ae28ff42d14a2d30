package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places stored for prices and totals.
const MoneyScale = 2

func init() {
	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// FitsMoneyScale reports whether d can be stored without rounding.
func FitsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusOnWay     OrderStatus = "ON_WAY"
	StatusDelivered OrderStatus = "DELIVERED"
)

type Order struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64          `json:"userId" gorm:"not null;index"`
	User      *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Address   string          `json:"address" gorm:"type:varchar(255);not null;default:''"`
	Latitude  float64         `json:"latitude" gorm:"not null;default:0"`
	Longitude float64         `json:"longitude" gorm:"not null;default:0"`
	Status    OrderStatus     `json:"status" gorm:"type:enum('PENDING','PREPARING','ON_WAY','DELIVERED');default:'PENDING';index"`
	Items     []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// OrderItem is a line of an order. Price is the unit price at the time the
// order was placed and does not follow later catalog changes.
type OrderItem struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   uint64          `json:"orderId" gorm:"not null;index"`
	ProductID uint64          `json:"productId" gorm:"not null;index"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// LineTotal returns price * quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the line totals of every item.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}
