package model

import "time"

const (
	EventBookingCheckedIn      = "booking.checked_in"
	EventBookingCancelled      = "booking.cancelled"
	EventBookingCompleted      = "booking.completed"
	EventBookingPaymentUpdated = "booking.payment_updated"
)

// BookingEvent is published after a transition has been persisted.
type BookingEvent struct {
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	StoreID    string        `json:"store_id,omitempty"`
	Status     BookingStatus `json:"status"`
	Actor      string        `json:"actor"`
	OccurredAt time.Time     `json:"occurred_at"`
}
