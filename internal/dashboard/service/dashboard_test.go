package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"bookingdesk/internal/bookings/timer"
	"bookingdesk/internal/dashboard/resolver"
	"bookingdesk/pkg/config"
	"bookingdesk/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockBookingReader struct {
	mu                     sync.Mutex
	filters                []model.BookingFilter
	findFunc               func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error)
	countFunc              func(ctx context.Context, filter model.BookingFilter) (int64, error)
	countRepeatClientsFunc func(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error)
}

func (m *mockBookingReader) record(filter model.BookingFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
}

func (m *mockBookingReader) Find(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	m.record(filter)
	if m.findFunc != nil {
		return m.findFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockBookingReader) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	m.record(filter)
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockBookingReader) CountRepeatClients(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error) {
	m.record(filter)
	if m.countRepeatClientsFunc != nil {
		return m.countRepeatClientsFunc(ctx, filter, threshold)
	}
	return 0, nil
}

type mockResolver struct {
	lookupFunc func(ctx context.Context, candidates []resolver.Descriptor) (int64, error)
}

func (m *mockResolver) Lookup(ctx context.Context, candidates []resolver.Descriptor) (int64, error) {
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, candidates)
	}
	return 0, resolver.ErrSourceUnavailable
}

var testSources = resolver.Sources{
	resolver.MetricUnreadMessages:      {{Name: "inbox", URL: "https://inbox.example.com/stores/{store_id}/unread"}},
	resolver.MetricOpenServiceRequests: {{Name: "requests", URL: "https://requests.example.com/stores/{store_id}/open"}},
}

func newTestDashboard(reader BookingReader, res MetricResolver, now time.Time) DashboardService {
	cfg := &config.Config{Settings: config.Settings{RepeatClientThreshold: 3}}
	return NewDashboardService(reader, res, testSources, NewAggregator(4, nil), timer.NewManualClock(now), cfg)
}

func TestSummary_AllMetrics(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	reader := &mockBookingReader{
		findFunc: func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
			return []*model.Booking{
				{Status: model.StatusCompleted, PaymentStatus: model.PaymentComplete, TotalAmount: 150},
				{Status: model.StatusInProgress, PaymentStatus: model.PaymentDeposit, DepositAmount: 30, TotalAmount: 150},
				{Status: model.StatusCancelled, PaymentStatus: model.PaymentComplete, TotalAmount: 80},
				{Status: model.StatusConfirmed, PaymentStatus: model.PaymentNotPaid, TotalAmount: 60},
			}, nil
		},
		countFunc: func(ctx context.Context, filter model.BookingFilter) (int64, error) {
			if filter.Kind == model.KindService {
				return 5, nil
			}
			return 2, nil
		},
		countRepeatClientsFunc: func(ctx context.Context, filter model.BookingFilter, threshold int) (int64, error) {
			if threshold != 3 {
				t.Errorf("expected threshold 3, got %d", threshold)
			}
			return 1, nil
		},
	}
	res := &mockResolver{lookupFunc: func(ctx context.Context, candidates []resolver.Descriptor) (int64, error) {
		if !assert.Len(t, candidates, 1) {
			return 0, errors.New("unexpected candidates")
		}
		switch candidates[0].Name {
		case "inbox":
			assert.Equal(t, "https://inbox.example.com/stores/s1/unread", candidates[0].URL)
			return 7, nil
		default:
			return 4, nil
		}
	}}

	summary, err := newTestDashboard(reader, res, now).Summary(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 180.0, summary.MonthlyRevenue)
	assert.Equal(t, int64(5), summary.ServiceBookingCount)
	assert.Equal(t, int64(2), summary.OfferBookingCount)
	assert.Equal(t, int64(4), summary.OpenServiceRequestCount)
	assert.Equal(t, int64(7), summary.UnreadMessageCount)
	assert.Equal(t, int64(1), summary.RepeatClientCount)
	assert.Empty(t, summary.FailedMetrics)
	assert.True(t, summary.GeneratedAt.Equal(now))
}

func TestSummary_PartialFailure(t *testing.T) {
	reader := &mockBookingReader{
		findFunc: func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
			return nil, errors.New("connection reset")
		},
		countFunc: func(ctx context.Context, filter model.BookingFilter) (int64, error) {
			return 3, nil
		},
	}
	res := &mockResolver{lookupFunc: func(ctx context.Context, candidates []resolver.Descriptor) (int64, error) {
		return 2, nil
	}}

	summary, err := newTestDashboard(reader, res, time.Now()).Summary(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, 0.0, summary.MonthlyRevenue)
	assert.Equal(t, int64(3), summary.ServiceBookingCount)
	assert.Equal(t, int64(3), summary.OfferBookingCount)
	assert.Equal(t, int64(2), summary.UnreadMessageCount)
	assert.Equal(t, []string{MetricMonthlyRevenue}, summary.FailedMetrics)
}

func TestSummary_ResolverExhaustedIsZero(t *testing.T) {
	summary, err := newTestDashboard(&mockBookingReader{}, &mockResolver{}, time.Now()).Summary(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, int64(0), summary.UnreadMessageCount)
	assert.Equal(t, int64(0), summary.OpenServiceRequestCount)
	assert.ElementsMatch(t, []string{MetricOpenServiceRequests, MetricUnreadMessages}, summary.FailedMetrics)
}

func TestSummary_RecomputesEachCall(t *testing.T) {
	reader := &mockBookingReader{
		findFunc: func(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
			return []*model.Booking{{Status: model.StatusCompleted, PaymentStatus: model.PaymentComplete, TotalAmount: 50}}, nil
		},
		countFunc: func(ctx context.Context, filter model.BookingFilter) (int64, error) {
			return 1, nil
		},
	}
	svc := newTestDashboard(reader, &mockResolver{}, time.Now())

	first, err := svc.Summary(context.Background(), "s1")
	require.NoError(t, err)
	second, err := svc.Summary(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, first.MonthlyRevenue, second.MonthlyRevenue)
	assert.Equal(t, first.ServiceBookingCount, second.ServiceBookingCount)
	assert.Equal(t, 50.0, second.MonthlyRevenue)
}

func TestSummary_FiltersCurrentMonth(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	now := time.Date(2025, 12, 31, 23, 30, 0, 0, loc)
	reader := &mockBookingReader{}

	_, err := newTestDashboard(reader, &mockResolver{}, now).Summary(context.Background(), "s1")
	require.NoError(t, err)

	require.NotEmpty(t, reader.filters)
	for _, f := range reader.filters {
		assert.Equal(t, "s1", f.StoreID)
		require.NotNil(t, f.CreatedFrom)
		require.NotNil(t, f.CreatedTo)
		assert.True(t, f.CreatedFrom.Equal(time.Date(2025, 12, 1, 0, 0, 0, 0, loc)))
		assert.True(t, f.CreatedTo.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, loc)))
		if f.Kind != "" {
			assert.NotContains(t, f.Statuses, model.StatusCancelled)
		}
	}
}

func TestSummary_WithoutStoreReportsEveryMetricFailed(t *testing.T) {
	reader := &mockBookingReader{}
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	summary, err := newTestDashboard(reader, &mockResolver{}, now).Summary(context.Background(), "  ")
	require.NoError(t, err)
	require.NotNil(t, summary)

	assert.Equal(t, AllMetrics(), summary.FailedMetrics)
	assert.Zero(t, summary.MonthlyRevenue)
	assert.Zero(t, summary.ServiceBookingCount)
	assert.True(t, summary.GeneratedAt.Equal(now))
	assert.Empty(t, reader.filters, "no store query should run without a store")
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid month",
			now:       time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "first instant",
			now:       time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "year end",
			now:       time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			wantStart: time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := MonthRange(tt.now)
			assert.True(t, start.Equal(tt.wantStart), "start = %v", start)
			assert.True(t, end.Equal(tt.wantEnd), "end = %v", end)
		})
	}
}

func TestRevenue(t *testing.T) {
	tests := []struct {
		name     string
		bookings []*model.Booking
		want     float64
	}{
		{"empty", nil, 0},
		{"complete uses total", []*model.Booking{{PaymentStatus: model.PaymentComplete, DepositAmount: 30, TotalAmount: 150}}, 150},
		{"deposit uses deposit", []*model.Booking{{PaymentStatus: model.PaymentDeposit, DepositAmount: 30, TotalAmount: 150}}, 30},
		{"not paid", []*model.Booking{{PaymentStatus: model.PaymentNotPaid, TotalAmount: 150}}, 0},
		{"cancelled", []*model.Booking{{Status: model.StatusCancelled, PaymentStatus: model.PaymentComplete, TotalAmount: 150}}, 0},
		{"non-finite", []*model.Booking{{PaymentStatus: model.PaymentComplete, TotalAmount: math.Inf(1)}, {PaymentStatus: model.PaymentDeposit, DepositAmount: math.NaN()}}, 0},
		{"negative", []*model.Booking{{PaymentStatus: model.PaymentComplete, TotalAmount: -20}}, 0},
		{"rounded to cents", []*model.Booking{{PaymentStatus: model.PaymentComplete, TotalAmount: 0.1}, {PaymentStatus: model.PaymentComplete, TotalAmount: 0.2}}, 0.3},
		{"nil entry", []*model.Booking{nil}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Revenue(tt.bookings))
		})
	}
}
