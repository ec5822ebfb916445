package validator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"bookingdesk/pkg/logger"
	"bookingdesk/pkg/model"

	"github.com/go-playground/validator/v10"
)

const clockLayout = "15:04"

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("finite", validateFinite); err != nil {
		log.Fatal("Failed to register 'finite' validator", "error", err)
	}
	if err := v.RegisterValidation("arrival_time", validateArrivalTime); err != nil {
		log.Fatal("Failed to register 'arrival_time' validator", "error", err)
	}

	log.Debug("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func validateFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func validateArrivalTime(fl validator.FieldLevel) bool {
	_, err := ParseArrivalTime(fl.Field().String(), time.Now())
	return err == nil
}

// ParseArrivalTime accepts an RFC 3339 timestamp or a wall-clock "HH:MM"
// interpreted on now's date in now's location. An empty value means now.
func ParseArrivalTime(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	clock, err := time.Parse(clockLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("arrival time %q must be RFC 3339 or HH:MM", raw)
	}

	y, m, d := now.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, now.Location()), nil
}

func (v *BookingValidator) ValidateCheckIn(req *model.CheckInRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateComplete(req *model.CompleteRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidatePaymentUpdate(update *model.PaymentUpdate) error {
	return v.validateStruct(update)
}

// ValidatePaymentState checks the amounts a booking would hold after a
// payment update.
func (v *BookingValidator) ValidatePaymentState(status model.PaymentStatus, deposit, total float64) error {
	var errs ValidationErrors

	for _, amount := range []struct {
		field string
		value float64
	}{
		{"DepositAmount", deposit},
		{"TotalAmount", total},
	} {
		if math.IsNaN(amount.value) || math.IsInf(amount.value, 0) {
			errs = append(errs, ValidationError{Field: amount.field, Message: fmt.Sprintf("%s must be a finite number", amount.field)})
		} else if amount.value < 0 {
			errs = append(errs, ValidationError{Field: amount.field, Message: fmt.Sprintf("%s cannot be negative", amount.field)})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if status == model.PaymentDeposit {
		if deposit <= 0 {
			errs = append(errs, ValidationError{Field: "DepositAmount", Message: "deposit_amount must be greater than 0 for a deposit"})
		}
		if deposit >= total {
			errs = append(errs, ValidationError{
				Field:   "DepositAmount",
				Message: fmt.Sprintf("deposit_amount (%.2f) must be less than total_amount (%.2f)", deposit, total),
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "finite":
			message = fmt.Sprintf("%s must be a finite number", err.Field())
		case "arrival_time":
			message = fmt.Sprintf("%s must be RFC 3339 or HH:MM", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
