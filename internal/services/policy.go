package services

import (
	"fmt"

	"delivery-service/internal/domain"
)

type Action string

const (
	ActionCreateOrder    Action = "order:create"
	ActionListOwnOrders  Action = "order:list-own"
	ActionReadOrder      Action = "order:read"
	ActionListAllOrders  Action = "order:list-all"
	ActionSetOrderStatus Action = "order:set-status"
	ActionManageProducts Action = "product:manage"
)

// Resource is what an action is applied to. OwnerID is zero for resources
// without an owner.
type Resource struct {
	Kind    string
	ID      uint64
	OwnerID uint64
}

func OrderResource(o *domain.Order) Resource {
	return Resource{Kind: "order", ID: o.ID, OwnerID: o.UserID}
}

// Authorize decides whether principal may perform action on res. Every
// role and ownership check in the service layer goes through here.
func Authorize(p domain.Principal, res Resource, action Action) error {
	if p.UserID == 0 {
		return fmt.Errorf("%w: unauthenticated", domain.ErrForbidden)
	}

	switch action {
	case ActionCreateOrder, ActionListOwnOrders:
		return nil
	case ActionReadOrder:
		if p.IsAdmin() || res.OwnerID == p.UserID {
			return nil
		}
		return fmt.Errorf("%w: %s %d belongs to another user", domain.ErrForbidden, res.Kind, res.ID)
	case ActionListAllOrders, ActionSetOrderStatus, ActionManageProducts:
		if p.IsAdmin() {
			return nil
		}
		return fmt.Errorf("%w: %s requires admin role", domain.ErrForbidden, action)
	}
	return fmt.Errorf("%w: unknown action %s", domain.ErrForbidden, action)
}
