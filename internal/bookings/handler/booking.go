package handler

import (
	"net/http"

	"bookingdesk/internal/bookings/service"
	httputil "bookingdesk/pkg/http"
	"bookingdesk/pkg/logger"
	"bookingdesk/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	h.respond(w, "GetByID", booking, err)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CheckInRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.respond(w, "CheckIn", nil, err)
		return
	}

	booking, err := h.service.CheckIn(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "CheckIn", booking, err)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.respond(w, "Cancel", nil, err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "Cancel", booking, err)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CompleteRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		h.respond(w, "Complete", nil, err)
		return
	}

	booking, err := h.service.Complete(r.Context(), ps.ByName("id"), &req)
	h.respond(w, "Complete", booking, err)
}

func (h *BookingHandler) UpdatePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.PaymentUpdate
	if err := httputil.DecodeBody(r, &update); err != nil {
		h.respond(w, "UpdatePayment", nil, err)
		return
	}

	booking, err := h.service.UpdatePayment(r.Context(), ps.ByName("id"), &update)
	h.respond(w, "UpdatePayment", booking, err)
}

func (h *BookingHandler) respond(w http.ResponseWriter, handlerName string, booking *model.Booking, err error) {
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if writeErr := httputil.WriteSuccess(w, booking); writeErr != nil {
		h.log.Error("failed to write success response", "handler", handlerName, "operation", "WriteSuccess", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.POST("/api/v1/bookings/id/:id/check-in", h.CheckIn)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/id/:id/complete", h.Complete)
	router.PATCH("/api/v1/bookings/id/:id/payment", h.UpdatePayment)
}
