package service

import (
	"context"
	"math"
	"strings"
	"time"

	"bookingdesk/internal/bookings/timer"
	"bookingdesk/internal/dashboard/resolver"
	"bookingdesk/pkg/config"
	"bookingdesk/pkg/model"
)

const (
	MetricMonthlyRevenue      = "monthly_revenue"
	MetricServiceBookings     = "service_booking_count"
	MetricOfferBookings       = "offer_booking_count"
	MetricOpenServiceRequests = "open_service_request_count"
	MetricUnreadMessages      = "unread_message_count"
	MetricRepeatClients       = "repeat_client_count"
)

// AllMetrics lists every summary metric in display order.
func AllMetrics() []string {
	return []string{
		MetricMonthlyRevenue,
		MetricServiceBookings,
		MetricOfferBookings,
		MetricOpenServiceRequests,
		MetricUnreadMessages,
		MetricRepeatClients,
	}
}

// BookingReader is the read side of the booking repository.
type BookingReader interface {
	Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	CountRepeatClients(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error)
}

type MetricResolver interface {
	Lookup(ctx context.Context, candidates []resolver.Descriptor) (int64, error)
}

type DashboardService interface {
	Summary(ctx context.Context, storeID string) (*model.DashboardSummary, error)
}

type dashboardService struct {
	bookings   BookingReader
	resolver   MetricResolver
	sources    resolver.Sources
	aggregator *Aggregator
	clock      timer.Clock
	cfg        *config.Config
}

func NewDashboardService(
	bookings BookingReader,
	metricResolver MetricResolver,
	sources resolver.Sources,
	aggregator *Aggregator,
	clock timer.Clock,
	cfg *config.Config,
) DashboardService {
	if clock == nil {
		clock = timer.RealClock{}
	}
	return &dashboardService{
		bookings:   bookings,
		resolver:   metricResolver,
		sources:    sources,
		aggregator: aggregator,
		clock:      clock,
		cfg:        cfg,
	}
}

// activeStatuses are the statuses counted as bookings on the dashboard.
var activeStatuses = []model.BookingStatus{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusInProgress,
	model.StatusCompleted,
}

// Summary recomputes every metric from its source. Individual failures
// zero that metric and are listed in FailedMetrics.
func (s *dashboardService) Summary(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
	now := s.clock.Now()

	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return &model.DashboardSummary{FailedMetrics: AllMetrics(), GeneratedAt: now}, nil
	}

	from, to := MonthRange(now)
	month := model.BookingFilter{StoreID: storeID, CreatedFrom: &from, CreatedTo: &to}

	results := s.aggregator.Collect(ctx, []Query{
		{Metric: MetricMonthlyRevenue, Run: func(ctx context.Context) (float64, error) {
			bookings, err := s.bookings.Find(ctx, month)
			if err != nil {
				return 0, err
			}
			return Revenue(bookings), nil
		}},
		{Metric: MetricServiceBookings, Run: s.countKind(month, model.KindService)},
		{Metric: MetricOfferBookings, Run: s.countKind(month, model.KindOffer)},
		{Metric: MetricOpenServiceRequests, Run: s.resolve(resolver.MetricOpenServiceRequests, storeID)},
		{Metric: MetricUnreadMessages, Run: s.resolve(resolver.MetricUnreadMessages, storeID)},
		{Metric: MetricRepeatClients, Run: func(ctx context.Context) (float64, error) {
			n, err := s.bookings.CountRepeatClients(ctx, month, s.cfg.RepeatClientThreshold)
			return float64(n), err
		}},
	})

	return &model.DashboardSummary{
		MonthlyRevenue:          results.Value(MetricMonthlyRevenue),
		ServiceBookingCount:     int64(results.Value(MetricServiceBookings)),
		OfferBookingCount:       int64(results.Value(MetricOfferBookings)),
		OpenServiceRequestCount: int64(results.Value(MetricOpenServiceRequests)),
		UnreadMessageCount:      int64(results.Value(MetricUnreadMessages)),
		RepeatClientCount:       int64(results.Value(MetricRepeatClients)),
		FailedMetrics:           results.Failed,
		GeneratedAt:             now,
	}, nil
}

func (s *dashboardService) countKind(month model.BookingFilter, kind model.BookingKind) func(context.Context) (float64, error) {
	filter := month
	filter.Kind = kind
	filter.Statuses = activeStatuses
	return func(ctx context.Context) (float64, error) {
		n, err := s.bookings.Count(ctx, filter)
		return float64(n), err
	}
}

func (s *dashboardService) resolve(metric, storeID string) func(context.Context) (float64, error) {
	return func(ctx context.Context) (float64, error) {
		n, err := s.resolver.Lookup(ctx, s.sources.For(metric, storeID))
		return float64(n), err
	}
}

// MonthRange returns [first instant of now's calendar month, first instant
// of the next) in now's location.
func MonthRange(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

// Revenue sums the amount actually collected on each booking, rounded to
// cents.
func Revenue(bookings []*model.Booking) float64 {
	var total float64
	for _, b := range bookings {
		total += collected(b)
	}
	return math.Round(total*100) / 100
}

func collected(b *model.Booking) float64 {
	if b == nil || b.Status == model.StatusCancelled {
		return 0
	}
	var amount float64
	switch b.PaymentStatus {
	case model.PaymentComplete:
		amount = b.TotalAmount
	case model.PaymentDeposit:
		amount = b.DepositAmount
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0
	}
	return amount
}
