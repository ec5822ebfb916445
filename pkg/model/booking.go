package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// IsTerminal reports whether no transition is defined out of the status.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentNotPaid  PaymentStatus = "not_paid"
	PaymentDeposit  PaymentStatus = "deposit"
	PaymentComplete PaymentStatus = "complete"
)

type BookingKind string

const (
	KindService BookingKind = "service"
	KindOffer   BookingKind = "offer"
)

const (
	ActionCheckedIn        = "Checked In"
	ActionCancelled        = "Cancelled"
	ActionServiceCompleted = "Service Completed"
	ActionPaymentUpdated   = "Payment Updated"

	ActorSystem   = "System"
	ActorMerchant = "Merchant"
)

type ClientInfo struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
	Phone string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type HistoryEntry struct {
	Action    string    `json:"action" bson:"action"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Actor     string    `json:"actor" bson:"actor"`
	Notes     string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

type Booking struct {
	ID      string        `json:"id,omitempty" bson:"_id,omitempty"`
	Status  BookingStatus `json:"status" bson:"status"`
	Kind    BookingKind   `json:"kind" bson:"kind"`
	Client  ClientInfo    `json:"client" bson:"client"`
	StaffID string        `json:"staff_id" bson:"staff_id"`
	StoreID string        `json:"store_id" bson:"store_id"`

	ScheduledStart  time.Time `json:"scheduled_start" bson:"scheduled_start"`
	ScheduledEnd    time.Time `json:"scheduled_end" bson:"scheduled_end"`
	DurationMinutes int       `json:"duration_minutes" bson:"duration_minutes"`

	CheckedInAt        *time.Time `json:"checked_in_at,omitempty" bson:"checked_in_at,omitempty"`
	ServiceStartedAt   *time.Time `json:"service_started_at,omitempty" bson:"service_started_at,omitempty"`
	ServiceEndDeadline *time.Time `json:"service_end_deadline,omitempty" bson:"service_end_deadline,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`

	PaymentStatus PaymentStatus `json:"payment_status" bson:"payment_status"`
	DepositAmount float64       `json:"deposit_amount" bson:"deposit_amount"`
	TotalAmount   float64       `json:"total_amount" bson:"total_amount"`

	CancellationReason string `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	Notes              string `json:"notes,omitempty" bson:"notes,omitempty"`

	History []HistoryEntry `json:"history" bson:"history"`

	Version   int64     `json:"version" bson:"version"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Clone returns a deep copy so transitions can build the next snapshot
// without touching the one they loaded.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	c := *b
	c.CheckedInAt = cloneTime(b.CheckedInAt)
	c.ServiceStartedAt = cloneTime(b.ServiceStartedAt)
	c.ServiceEndDeadline = cloneTime(b.ServiceEndDeadline)
	c.CompletedAt = cloneTime(b.CompletedAt)
	c.CancelledAt = cloneTime(b.CancelledAt)
	if b.History != nil {
		c.History = make([]HistoryEntry, len(b.History))
		copy(c.History, b.History)
	}
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

type CheckInRequest struct {
	ArrivalTime string `json:"arrival_time,omitempty" validate:"omitempty,arrival_time"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=500"`
	Actor       string `json:"actor,omitempty" validate:"omitempty,max=100"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
	Actor  string `json:"actor,omitempty" validate:"omitempty,max=100"`
}

type CompleteRequest struct {
	Notes string `json:"notes,omitempty" validate:"omitempty,max=500"`
	Actor string `json:"actor,omitempty" validate:"omitempty,max=100"`
}

type PaymentUpdate struct {
	Status        PaymentStatus `json:"status" validate:"required,oneof=not_paid deposit complete"`
	DepositAmount *float64      `json:"deposit_amount,omitempty" validate:"omitempty,finite,gte=0"`
	TotalAmount   *float64      `json:"total_amount,omitempty" validate:"omitempty,finite,gte=0"`
	Notes         string        `json:"notes,omitempty" validate:"omitempty,max=500"`
	Actor         string        `json:"actor,omitempty" validate:"omitempty,max=100"`
}

type BookingFilter struct {
	StoreID     string
	StaffID     string
	Statuses    []BookingStatus
	Kind        BookingKind
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}
