package model

import "time"

type DashboardSummary struct {
	MonthlyRevenue          float64   `json:"monthly_revenue"`
	ServiceBookingCount     int64     `json:"service_booking_count"`
	OfferBookingCount       int64     `json:"offer_booking_count"`
	OpenServiceRequestCount int64     `json:"open_service_request_count"`
	UnreadMessageCount      int64     `json:"unread_message_count"`
	RepeatClientCount       int64     `json:"repeat_client_count"`
	FailedMetrics           []string  `json:"failed_metrics,omitempty"`
	GeneratedAt             time.Time `json:"generated_at"`
}
