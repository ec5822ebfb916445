package handler

import (
	"net/http"

	"bookingdesk/internal/dashboard/service"
	httputil "bookingdesk/pkg/http"
	"bookingdesk/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type DashboardHandler struct {
	service        service.DashboardService
	defaultStoreID string
	log            *logger.Logger
}

// NewDashboardHandler serves summaries. defaultStoreID is used when the
// request carries no store_id.
func NewDashboardHandler(service service.DashboardService, defaultStoreID string, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		defaultStoreID: defaultStoreID,
		log:            log,
	}
}

func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	storeID := r.URL.Query().Get("store_id")
	if storeID == "" {
		storeID = h.defaultStoreID
	}

	summary, err := h.service.Summary(r.Context(), storeID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Summary", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if len(summary.FailedMetrics) > 0 {
		h.log.Warn("Dashboard summary is partial",
			"store_id", storeID,
			"failed_metrics", summary.FailedMetrics,
		)
	}

	if err := httputil.WriteSuccess(w, summary); err != nil {
		h.log.Error("failed to write success response", "handler", "Summary", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DashboardHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/dashboard/summary", h.Summary)
}
