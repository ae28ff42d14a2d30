package domain

import "time"

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Tracking struct {
	OrderID     uint64      `json:"orderId"`
	Status      OrderStatus `json:"status"`
	Origin      Position    `json:"origin"`
	Destination Position    `json:"destination"`
	Courier     Position    `json:"courier"`
	Progress    float64     `json:"progress"`
}

// EstimateTracking places the courier on the straight line between origin and
// the order's delivery point. Progress only advances while the order is
// ON_WAY, measured from the order's last update.
func EstimateTracking(o *Order, origin Position, travel time.Duration, now time.Time) Tracking {
	dest := Position{Latitude: o.Latitude, Longitude: o.Longitude}

	var progress float64
	switch o.Status {
	case StatusOnWay:
		if travel <= 0 {
			progress = 1
			break
		}
		elapsed := now.Sub(o.UpdatedAt)
		progress = float64(elapsed) / float64(travel)
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	case StatusDelivered:
		progress = 1
	}

	return Tracking{
		OrderID:     o.ID,
		Status:      o.Status,
		Origin:      origin,
		Destination: dest,
		Courier: Position{
			Latitude:  origin.Latitude + (dest.Latitude-origin.Latitude)*progress,
			Longitude: origin.Longitude + (dest.Longitude-origin.Longitude)*progress,
		},
		Progress: progress,
	}
}
