package validator

import (
	"errors"
	"math"
	"testing"
	"time"

	"bookingdesk/pkg/logger"
	"bookingdesk/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.Nop())
}

func ptr(f float64) *float64 { return &f }

func TestValidateCancel(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCancel(&model.CancelRequest{Reason: "client sick"}); err != nil {
		t.Errorf("expected valid cancel, got %v", err)
	}

	err := v.ValidateCancel(&model.CancelRequest{})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if verrs[0].Field != "Reason" || verrs[0].Message != "Reason is required" {
		t.Errorf("unexpected error: %+v", verrs[0])
	}
}

func TestValidateCheckIn_ArrivalTime(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		arrival string
		wantErr bool
	}{
		{"empty", "", false},
		{"clock", "09:00", false},
		{"rfc3339", "2025-03-10T09:05:00Z", false},
		{"garbage", "nine o'clock", true},
		{"out of range", "25:61", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCheckIn(&model.CheckInRequest{ArrivalTime: tt.arrival})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCheckIn(%q) error = %v, wantErr %v", tt.arrival, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePaymentUpdate(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		update  model.PaymentUpdate
		wantErr bool
	}{
		{"deposit", model.PaymentUpdate{Status: model.PaymentDeposit, DepositAmount: ptr(30)}, false},
		{"zero total", model.PaymentUpdate{Status: model.PaymentComplete, TotalAmount: ptr(0)}, false},
		{"missing status", model.PaymentUpdate{}, true},
		{"unknown status", model.PaymentUpdate{Status: "refunded"}, true},
		{"negative deposit", model.PaymentUpdate{Status: model.PaymentDeposit, DepositAmount: ptr(-1)}, true},
		{"nan total", model.PaymentUpdate{Status: model.PaymentComplete, TotalAmount: ptr(math.NaN())}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePaymentUpdate(&tt.update)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaymentUpdate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePaymentState(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		status  model.PaymentStatus
		deposit float64
		total   float64
		wantErr bool
	}{
		{"deposit within total", model.PaymentDeposit, 30, 120, false},
		{"deposit exceeds total", model.PaymentDeposit, 150, 120, true},
		{"deposit equals total", model.PaymentDeposit, 120, 120, true},
		{"zero deposit", model.PaymentDeposit, 0, 120, true},
		{"not paid", model.PaymentNotPaid, 0, 120, false},
		{"complete", model.PaymentComplete, 30, 120, false},
		{"negative total", model.PaymentComplete, 0, -5, true},
		{"infinite total", model.PaymentComplete, 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePaymentState(tt.status, tt.deposit, tt.total)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaymentState() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseArrivalTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 3, 10, 8, 45, 30, 0, loc)

	got, err := ParseArrivalTime("09:00", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 3, 10, 9, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("ParseArrivalTime(09:00) = %v, want %v", got, want)
	}

	got, err = ParseArrivalTime("", now)
	if err != nil || !got.Equal(now) {
		t.Errorf("empty arrival should default to now, got %v, %v", got, err)
	}

	got, err = ParseArrivalTime("2025-03-10T07:00:00Z", now)
	if err != nil || !got.Equal(time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("rfc3339 arrival = %v, %v", got, err)
	}

	if _, err := ParseArrivalTime("later", now); err == nil {
		t.Error("expected error for unparseable arrival")
	}
}
