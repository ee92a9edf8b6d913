package handler

import (
	"context"
	"net/http"

	"slotbook/internal/bookings/service"
	apperrors "slotbook/pkg/errors"
	httputil "slotbook/pkg/http"
	"slotbook/pkg/logger"
	"slotbook/pkg/middleware"
	"slotbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service     service.BookingService
	requireAuth func(httprouter.Handle) httprouter.Handle
	log         *logger.Logger
}

// NewBookingHandler wraps every route with requireAuth, which must put the
// principal into the request context.
func NewBookingHandler(service service.BookingService, requireAuth func(httprouter.Handle) httprouter.Handle, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service:     service,
		requireAuth: requireAuth,
		log:         log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	principal, ok := h.principal(w, r, "Create")
	if !ok {
		return
	}

	var input model.BookingCreate
	if err := httputil.DecodeJSON(r, &input); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), principal, &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "List", h.service.ListByOwner)
}

func (h *BookingHandler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "History", h.service.History)
}

func (h *BookingHandler) Upcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "Upcoming", h.service.Upcoming)
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Update")
	if !ok {
		return
	}

	var update model.BookingUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	booking, err := h.service.Update(r.Context(), principal, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	principal, ok := h.principal(w, r, "Cancel")
	if !ok {
		return
	}

	if err := h.service.Cancel(r.Context(), principal, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, "Booking cancelled successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	handler string,
	fetch func(ctx context.Context, principal *model.User) ([]*model.Booking, error),
) {
	principal, ok := h.principal(w, r, handler)
	if !ok {
		return
	}

	bookings, err := fetch(r.Context(), principal)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) principal(w http.ResponseWriter, r *http.Request, handler string) (*model.User, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.writeError(w, handler, apperrors.Unauthorized("Not authenticated"))
		return nil, false
	}
	return principal, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/bookings/", h.requireAuth(h.Create))
	router.GET("/bookings/", h.requireAuth(h.List))
	router.GET("/bookings/history", h.requireAuth(h.History))
	router.GET("/bookings/upcoming", h.requireAuth(h.Upcoming))
	router.PUT("/bookings/:id", h.requireAuth(h.Update))
	router.DELETE("/bookings/:id", h.requireAuth(h.Cancel))
}
