package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookingdesk/internal/bookings/audit"
	bookingserrors "bookingdesk/internal/bookings/errors"
	"bookingdesk/internal/bookings/repository"
	"bookingdesk/internal/bookings/timer"
	"bookingdesk/internal/bookings/validator"
	"bookingdesk/pkg/config"
	apperrors "bookingdesk/pkg/errors"
	"bookingdesk/pkg/events"
	"bookingdesk/pkg/model"
	"bookingdesk/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	publishTimeout      = 5 * time.Second
	autoCompleteTimeout = 30 * time.Second
	// autoCompleteRetryDelay re-arms a fired timer whose completion could not
	// be persisted.
	autoCompleteRetryDelay = time.Minute
)

type BookingService interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	CheckIn(ctx context.Context, id string, req *model.CheckInRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error)
	Complete(ctx context.Context, id string, req *model.CompleteRequest) (*model.Booking, error)
	AutoComplete(ctx context.Context, id string) (*model.Booking, error)
	UpdatePayment(ctx context.Context, id string, update *model.PaymentUpdate) (*model.Booking, error)
	Recover(ctx context.Context) (RecoveryReport, error)
}

type RecoveryReport struct {
	Completed int
	Rearmed   int
	Failed    int
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	timers    *timer.Manager
	publisher events.Publisher
	cfg       *config.Config
	locks     *keyedMutex
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	timers *timer.Manager,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &bookingService{
		repo:      repo,
		validator: validator,
		timers:    timers,
		publisher: publisher,
		cfg:       cfg,
		locks:     newKeyedMutex(),
	}
}

// mutation builds the next snapshot from a private copy of the stored
// booking. Returning an error leaves the stored booking untouched.
type mutation func(next *model.Booking, now time.Time) error

// effect runs after a successful save, still under the booking's lock.
type effect func(saved *model.Booking)

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	return s.load(ctx, id)
}

func (s *bookingService) CheckIn(ctx context.Context, id string, req *model.CheckInRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.CheckInRequest{}
	}
	if err := s.validator.ValidateCheckIn(req); err != nil {
		return nil, validationError("Invalid check-in request", err)
	}

	actor := sanitizer.NormalizeActor(req.Actor)
	notes := sanitizer.NormalizeNotes(req.Notes)

	return s.apply(ctx, id, model.EventBookingCheckedIn, actor,
		func(next *model.Booking, now time.Time) error {
			if next.Status != model.StatusPending && next.Status != model.StatusConfirmed {
				return invalidTransition(next, "check in")
			}

			arrival, err := validator.ParseArrivalTime(req.ArrivalTime, now)
			if err != nil {
				return apperrors.Validation(err.Error(), map[string]any{"field": "arrival_time"})
			}

			duration := s.serviceDuration(next)
			deadline := now.Add(time.Duration(duration) * time.Minute)

			next.Status = model.StatusInProgress
			next.DurationMinutes = duration
			next.CheckedInAt = &arrival
			next.ServiceStartedAt = &now
			next.ServiceEndDeadline = &deadline
			next.History = audit.Append(next.History, model.ActionCheckedIn, actor, notes, now)
			return nil
		},
		func(saved *model.Booking) {
			s.timers.Arm(saved.ID, *saved.ServiceEndDeadline, s.onTimerFire)
		},
	)
}

func (s *bookingService) Cancel(ctx context.Context, id string, req *model.CancelRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.CancelRequest{}
	}
	normalized := &model.CancelRequest{
		Reason: sanitizer.NormalizeNotes(req.Reason),
		Actor:  sanitizer.NormalizeActor(req.Actor),
	}
	if err := s.validator.ValidateCancel(normalized); err != nil {
		return nil, validationError("A cancellation reason is required", err)
	}

	return s.apply(ctx, id, model.EventBookingCancelled, normalized.Actor,
		func(next *model.Booking, now time.Time) error {
			if next.Status.IsTerminal() {
				return invalidTransition(next, "cancel")
			}

			next.Status = model.StatusCancelled
			next.CancelledAt = &now
			next.CancellationReason = normalized.Reason
			next.History = audit.Append(next.History, model.ActionCancelled, normalized.Actor, normalized.Reason, now)
			return nil
		},
		func(saved *model.Booking) {
			s.timers.Cancel(saved.ID)
		},
	)
}

func (s *bookingService) Complete(ctx context.Context, id string, req *model.CompleteRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.CompleteRequest{}
	}
	if err := s.validator.ValidateComplete(req); err != nil {
		return nil, validationError("Invalid completion request", err)
	}

	actor := sanitizer.NormalizeActor(req.Actor)
	notes := sanitizer.NormalizeNotes(req.Notes)

	return s.apply(ctx, id, model.EventBookingCompleted, actor,
		completeMutation(actor, notes),
		func(saved *model.Booking) {
			s.timers.Cancel(saved.ID)
		},
	)
}

// AutoComplete is the timer path. A booking that is no longer in progress
// is returned unchanged.
func (s *bookingService) AutoComplete(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.apply(ctx, id, model.EventBookingCompleted, model.ActorSystem,
		func(next *model.Booking, now time.Time) error {
			if next.Status != model.StatusInProgress {
				return errSkip
			}
			return completeMutation(model.ActorSystem, "")(next, now)
		},
		nil,
	)
	if errors.Is(err, errSkip) {
		s.cfg.Log.Info("Auto-completion skipped, booking no longer in progress", "booking_id", id)
		return s.load(ctx, id)
	}
	return booking, err
}

func completeMutation(actor, notes string) mutation {
	return func(next *model.Booking, now time.Time) error {
		if next.Status != model.StatusInProgress {
			return invalidTransition(next, "complete")
		}
		next.Status = model.StatusCompleted
		next.CompletedAt = &now
		next.History = audit.Append(next.History, model.ActionServiceCompleted, actor, notes, now)
		return nil
	}
}

func (s *bookingService) UpdatePayment(ctx context.Context, id string, update *model.PaymentUpdate) (*model.Booking, error) {
	if update == nil {
		return nil, apperrors.InvalidInput("Payment update cannot be empty")
	}
	if err := s.validator.ValidatePaymentUpdate(update); err != nil {
		return nil, validationError("Invalid payment update", err)
	}

	actor := sanitizer.NormalizeActor(update.Actor)
	notes := sanitizer.NormalizeNotes(update.Notes)

	return s.apply(ctx, id, model.EventBookingPaymentUpdated, actor,
		func(next *model.Booking, now time.Time) error {
			if next.Status.IsTerminal() {
				return invalidTransition(next, "update payment for")
			}

			deposit, total := next.DepositAmount, next.TotalAmount
			if update.TotalAmount != nil {
				total = *update.TotalAmount
			}
			if update.DepositAmount != nil {
				deposit = *update.DepositAmount
			}
			if update.Status == model.PaymentNotPaid {
				deposit = 0
			}

			if err := s.validator.ValidatePaymentState(update.Status, deposit, total); err != nil {
				return validationError("Payment amounts are invalid", err)
			}

			if notes == "" {
				notes = fmt.Sprintf("%s (deposit %.2f, total %.2f)", update.Status, deposit, total)
			}

			next.PaymentStatus = update.Status
			next.DepositAmount = deposit
			next.TotalAmount = total
			next.History = audit.Append(next.History, model.ActionPaymentUpdated, actor, notes, now)
			return nil
		},
		nil,
	)
}

// Recover rebuilds timers from stored deadlines after a restart. Bookings
// whose deadline already passed are completed immediately.
func (s *bookingService) Recover(ctx context.Context) (RecoveryReport, error) {
	var report RecoveryReport

	bookings, err := s.repo.Find(ctx, model.BookingFilter{
		Statuses: []model.BookingStatus{model.StatusInProgress},
	})
	if err != nil {
		return report, apperrors.StoreUnavailable("Failed to list in-progress bookings", err)
	}

	for _, b := range bookings {
		deadline := s.deadlineOf(b)

		if !deadline.After(s.timers.Now()) {
			if _, err := s.AutoComplete(ctx, b.ID); err != nil {
				s.cfg.Log.Error("Failed to complete overdue booking", "booking_id", b.ID, "error", err)
				report.Failed++
				if retryable(err) {
					s.scheduleRetry(ctx, b.ID)
				}
				continue
			}
			report.Completed++
			continue
		}

		unlock := s.locks.Lock(b.ID)
		s.timers.Arm(b.ID, deadline, s.onTimerFire)
		unlock()
		report.Rearmed++
	}

	s.cfg.Log.Info("Timer recovery finished",
		"in_progress", len(bookings),
		"completed", report.Completed,
		"rearmed", report.Rearmed,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *bookingService) onTimerFire(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), autoCompleteTimeout)
	defer cancel()

	if _, err := s.AutoComplete(ctx, id); err != nil {
		if retryable(err) {
			s.cfg.Log.Warn("Auto-completion failed, retrying", "booking_id", id, "error", err)
			s.scheduleRetry(ctx, id)
			return
		}
		s.cfg.Log.Error("Auto-completion failed", "booking_id", id, "error", err)
	}
}

// scheduleRetry arms another completion attempt unless the booking has left
// InProgress. It runs under the booking lock, so a Cancel lands either before
// the reload or after the Arm.
func (s *bookingService) scheduleRetry(ctx context.Context, id string) {
	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return
	case err != nil:
		s.cfg.Log.Warn("Could not reload booking before retry", "booking_id", id, "error", err)
	case current.Status != model.StatusInProgress:
		return
	}

	retryAt := s.timers.Now().Add(autoCompleteRetryDelay)
	s.timers.Arm(id, retryAt, s.onTimerFire)
	s.cfg.Log.Info("Auto-completion retry scheduled", "booking_id", id, "retry_at", retryAt)
}

func retryable(err error) bool {
	return apperrors.HasCode(err, apperrors.CodeStoreUnavailable) || apperrors.HasCode(err, apperrors.CodeConflict)
}

var errSkip = errors.New("transition not applicable")

// apply runs one transition: lock, load, mutate a copy, save with a version
// check, then run side effects and publish.
func (s *bookingService) apply(ctx context.Context, id, eventType, actor string, mutate mutation, after effect) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.timers.Now()
	next := current.Clone()
	if err := mutate(next, now); err != nil {
		return nil, err
	}
	next.Version = current.Version + 1
	next.UpdatedAt = now

	if err := s.repo.Save(ctx, next, current.Version); err != nil {
		s.cfg.Log.Error("Failed to save booking", "booking_id", id, "event", eventType, "error", err)
		return nil, storeError(err, id)
	}

	if after != nil {
		after(next)
	}

	s.cfg.Log.Info("Booking transition applied",
		"booking_id", id,
		"event", eventType,
		"status", next.Status,
		"actor", actor,
		"version", next.Version,
	)

	s.publish(ctx, next, eventType, actor)
	return next, nil
}

func (s *bookingService) publish(ctx context.Context, b *model.Booking, eventType, actor string) {
	if actor == "" {
		actor = model.ActorMerchant
	}
	event := model.BookingEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		BookingID:  b.ID,
		StoreID:    b.StoreID,
		Status:     b.Status,
		Actor:      actor,
		OccurredAt: b.UpdatedAt,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "booking_id", b.ID, "event", eventType, "error", err)
	}
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return booking, nil
}

func (s *bookingService) serviceDuration(b *model.Booking) int {
	if b.DurationMinutes > 0 {
		return b.DurationMinutes
	}
	if s.cfg.DefaultServiceDurationMin > 0 {
		return s.cfg.DefaultServiceDurationMin
	}
	return config.DefaultServiceDurationMin
}

func (s *bookingService) deadlineOf(b *model.Booking) time.Time {
	if b.ServiceEndDeadline != nil {
		return *b.ServiceEndDeadline
	}
	if b.ServiceStartedAt != nil {
		return b.ServiceStartedAt.Add(time.Duration(s.serviceDuration(b)) * time.Minute)
	}
	return s.timers.Now()
}

func storeError(err error, id string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrVersionConflict):
		return apperrors.Conflict("Booking was modified by another request, reload and retry")
	default:
		return apperrors.StoreUnavailable("Booking store is unavailable", err)
	}
}

func invalidTransition(b *model.Booking, action string) error {
	if b.Status.IsTerminal() {
		return apperrors.InvalidTransition(fmt.Sprintf("Booking is already %s", b.Status), string(b.Status), action)
	}
	return apperrors.InvalidTransition(fmt.Sprintf("Cannot %s a booking that is %s", action, b.Status), string(b.Status), action)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"errors": verrs})
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
