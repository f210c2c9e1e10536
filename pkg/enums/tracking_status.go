package enums

import "fmt"

// TrackingStatus is the delivery-progress label shown to buyers.
type TrackingStatus string

const (
	TrackingStatusConfirmed TrackingStatus = "order_confirmed"
	TrackingStatusPreparing TrackingStatus = "preparing_order"
	TrackingStatusOnTheWay  TrackingStatus = "order_on_the_way"
	TrackingStatusDelivered TrackingStatus = "order_delivered"
	TrackingStatusCancelled TrackingStatus = "cancelled"
	TrackingStatusReturned  TrackingStatus = "returned"
)

var validTrackingStatuses = []TrackingStatus{
	TrackingStatusConfirmed,
	TrackingStatusPreparing,
	TrackingStatusOnTheWay,
	TrackingStatusDelivered,
	TrackingStatusCancelled,
	TrackingStatusReturned,
}

// String implements fmt.Stringer.
func (t TrackingStatus) String() string {
	return string(t)
}

// IsValid reports whether the value is a known TrackingStatus.
func (t TrackingStatus) IsValid() bool {
	for _, candidate := range validTrackingStatuses {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTrackingStatus converts raw input into a TrackingStatus.
func ParseTrackingStatus(value string) (TrackingStatus, error) {
	for _, candidate := range validTrackingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid tracking status %q", value)
}
