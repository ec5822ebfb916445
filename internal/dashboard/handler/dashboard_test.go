package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookingdesk/internal/dashboard/service"
	"bookingdesk/pkg/client"
	apperrors "bookingdesk/pkg/errors"
	"bookingdesk/pkg/logger"
	"bookingdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDashboardService struct {
	summaryFunc func(ctx context.Context, storeID string) (*model.DashboardSummary, error)
}

func (m *mockDashboardService) Summary(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
	return m.summaryFunc(ctx, storeID)
}

func newDashboardServer(t *testing.T, svc service.DashboardService, defaultStoreID string) *client.DashboardClient {
	t.Helper()

	router := httprouter.New()
	NewDashboardHandler(svc, defaultStoreID, logger.Nop()).RegisterRoutes(router)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return client.NewDashboardClient(server.URL)
}

func TestSummary_PartialIsStillOK(t *testing.T) {
	generated := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	dashboard := newDashboardServer(t, &mockDashboardService{
		summaryFunc: func(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
			return &model.DashboardSummary{
				MonthlyRevenue:     180,
				UnreadMessageCount: 7,
				FailedMetrics:      []string{service.MetricServiceBookings},
				GeneratedAt:        generated,
			}, nil
		},
	}, "")

	resp, err := dashboard.Summary(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	summary, err := dashboard.DecodeSummary(resp)
	require.NoError(t, err)
	assert.Equal(t, 180.0, summary.MonthlyRevenue)
	assert.Equal(t, int64(7), summary.UnreadMessageCount)
	assert.Equal(t, []string{service.MetricServiceBookings}, summary.FailedMetrics)
	assert.True(t, summary.GeneratedAt.Equal(generated))
}

func TestSummary_DefaultStore(t *testing.T) {
	var received string
	dashboard := newDashboardServer(t, &mockDashboardService{
		summaryFunc: func(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
			received = storeID
			return &model.DashboardSummary{}, nil
		},
	}, "main-store")

	resp, err := dashboard.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "main-store", received)
}

func TestSummary_MissingStore(t *testing.T) {
	var received string
	dashboard := newDashboardServer(t, &mockDashboardService{
		summaryFunc: func(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
			received = storeID
			return &model.DashboardSummary{FailedMetrics: service.AllMetrics()}, nil
		},
	}, "")

	resp, err := dashboard.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, received)
}

func TestSummary_ServiceError(t *testing.T) {
	dashboard := newDashboardServer(t, &mockDashboardService{
		summaryFunc: func(ctx context.Context, storeID string) (*model.DashboardSummary, error) {
			return nil, apperrors.InvalidInput("store_id is malformed")
		},
	}, "")

	resp, err := dashboard.Summary(context.Background(), "bad")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
