package domain

import "fmt"

// orderTransitions lists the statuses an order may move to from each status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusPreparing},
	StatusPreparing: {StatusOnWay},
	StatusOnWay:     {StatusDelivered},
	StatusDelivered: {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransition reports whether an order in status s may be set to next.
// Re-applying the current status is allowed.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s == next {
		return s.Valid()
	}
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown order status %q", raw)}
	}
	return s, nil
}
