package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"delivery-service/internal/domain"
	rabbit "delivery-service/internal/infra/rabbitmq"
	"delivery-service/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderOptions struct {
	// DeliveryFee is added to the item total of every order.
	DeliveryFee decimal.Decimal
	// EnforceStock reserves product stock inside the order transaction.
	EnforceStock bool
	Restaurant   domain.Position
	TravelTime   time.Duration
}

type OrderItemInput struct {
	ProductID uint64
	Quantity  int
	// Price nil means "use the current catalog price".
	Price *decimal.Decimal
}

type CreateOrderInput struct {
	Items []OrderItemInput
	// Total nil means "use the computed total".
	Total     *decimal.Decimal
	Address   string
	Latitude  float64
	Longitude float64
}

type OrderService struct {
	repo      repository.OrderRepository
	products  repository.ProductRepository
	publisher rabbit.PublisherInterface
	opts      OrderOptions
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewOrderService(r repository.OrderRepository, p repository.ProductRepository, pub rabbit.PublisherInterface, opts OrderOptions) *OrderService {
	if pub == nil {
		pub = rabbit.NopPublisher{}
	}
	return &OrderService{
		repo:      r,
		products:  p,
		publisher: pub,
		opts:      opts,
		now:       time.Now,
	}
}

func (u *OrderService) CreateOrder(ctx context.Context, p domain.Principal, in CreateOrderInput) (*domain.Order, error) {
	if err := Authorize(p, Resource{Kind: "order"}, ActionCreateOrder); err != nil {
		return nil, err
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.Total != nil && !domain.FitsMoneyScale(*in.Total) {
		return nil, &domain.ValidationError{Field: "total", Reason: "must have at most 2 decimal places"}
	}

	items, err := u.snapshotItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:    p.UserID,
		Address:   in.Address,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Status:    domain.StatusPending,
		Items:     items,
		CreatedAt: u.now(),
	}

	computed := order.ItemsTotal().Add(u.opts.DeliveryFee)
	if in.Total != nil && !in.Total.Equal(computed) {
		return nil, &domain.ValidationError{
			Field:  "total",
			Reason: fmt.Sprintf("expected %s, got %s", computed.StringFixed(2), in.Total.StringFixed(2)),
		}
	}
	order.Total = computed

	if err := u.repo.Create(ctx, order, u.opts.EnforceStock); err != nil {
		return nil, persistenceErr("create order", err)
	}

	u.publish(domain.EventOrderCreated, domain.OrderCreatedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		ItemCount: len(order.Items),
		CreatedAt: order.CreatedAt,
	})

	return order, nil
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID == 0 {
			return &domain.ValidationError{Field: field + ".productId", Reason: "is required"}
		}
		if it.Quantity <= 0 {
			return &domain.ValidationError{Field: field + ".quantity", Reason: "must be positive"}
		}
		if it.Price == nil {
			continue
		}
		if it.Price.IsNegative() {
			return &domain.ValidationError{Field: field + ".price", Reason: "must not be negative"}
		}
		if !domain.FitsMoneyScale(*it.Price) {
			return &domain.ValidationError{Field: field + ".price", Reason: "must have at most 2 decimal places"}
		}
	}
	return nil
}

// snapshotItems builds order items, filling in catalog prices for items
// that did not carry one.
func (u *OrderService) snapshotItems(ctx context.Context, in []OrderItemInput) ([]domain.OrderItem, error) {
	var missing []uint64
	for _, it := range in {
		if it.Price == nil {
			missing = append(missing, it.ProductID)
		}
	}

	prices := make(map[uint64]decimal.Decimal, len(missing))
	if len(missing) > 0 {
		products, err := u.products.FindByIDs(ctx, missing)
		if err != nil {
			return nil, persistenceErr("load product prices", err)
		}
		for _, p := range products {
			prices[p.ID] = p.Price
		}
	}

	items := make([]domain.OrderItem, 0, len(in))
	for _, it := range in {
		price, ok := decimal.Zero, true
		if it.Price != nil {
			price = *it.Price
		} else if price, ok = prices[it.ProductID]; !ok {
			return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, it.ProductID)
		}
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     price,
		})
	}
	return items, nil
}

func (u *OrderService) ListForUser(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if err := Authorize(p, Resource{Kind: "order", OwnerID: p.UserID}, ActionListOwnOrders); err != nil {
		return nil, err
	}
	orders, err := u.repo.FindByUser(ctx, p.UserID)
	if err != nil {
		return nil, persistenceErr("list orders", err)
	}
	return orders, nil
}

func (u *OrderService) ListAll(ctx context.Context, p domain.Principal) ([]domain.Order, error) {
	if err := Authorize(p, Resource{Kind: "order"}, ActionListAllOrders); err != nil {
		return nil, err
	}
	orders, err := u.repo.FindAll(ctx)
	if err != nil {
		return nil, persistenceErr("list all orders", err)
	}
	return orders, nil
}

func (u *OrderService) GetOrderById(ctx context.Context, p domain.Principal, id uint64) (*domain.Order, error) {
	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceErr("get order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	if err := Authorize(p, OrderResource(o), ActionReadOrder); err != nil {
		return nil, err
	}
	return o, nil
}

func (u *OrderService) SetStatus(ctx context.Context, p domain.Principal, id uint64, status string) (*domain.Order, error) {
	if err := Authorize(p, Resource{Kind: "order", ID: id}, ActionSetOrderStatus); err != nil {
		return nil, err
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	o, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, persistenceErr("get order", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}

	prev := o.Status
	if !prev.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, prev, next)
	}
	if prev == next {
		return o, nil
	}

	if err := u.repo.UpdateStatus(ctx, id, prev, next); err != nil {
		return nil, persistenceErr("update order status", err)
	}
	o.Status = next
	o.UpdatedAt = u.now()

	u.publish(domain.EventOrderStatusChanged, domain.OrderStatusChangedEvent{
		OrderID:   o.ID,
		From:      prev,
		To:        next,
		ChangedBy: p.UserID,
		ChangedAt: o.UpdatedAt,
	})

	return o, nil
}

func (u *OrderService) Track(ctx context.Context, p domain.Principal, id uint64) (*domain.Tracking, error) {
	o, err := u.GetOrderById(ctx, p, id)
	if err != nil {
		return nil, err
	}
	t := domain.EstimateTracking(o, u.opts.Restaurant, u.opts.TravelTime, u.now())
	return &t, nil
}

func (u *OrderService) publish(pattern string, evt any) {
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := u.publisher.Publish(ctx, pattern, evt); err != nil {
			log.Printf("Failed to publish %s event: %v", pattern, err)
		}
	}()
}

// Wait blocks until in-flight event publishes have finished.
func (u *OrderService) Wait() {
	u.wg.Wait()
}

func persistenceErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrOutOfStock) ||
		errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}
	var perr *domain.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &domain.PersistenceError{Op: op, Err: err}
}
