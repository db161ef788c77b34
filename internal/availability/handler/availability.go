package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"courtbook/internal/availability/service"
	apperrors "courtbook/pkg/errors"
	httputil "courtbook/pkg/http"
	"courtbook/pkg/logger"
	"courtbook/pkg/middleware"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	day := query.Get("day")
	if day == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("'day' query parameter is required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	slotMinutes := 0
	if s := query.Get("slot_minutes"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput(fmt.Sprintf("invalid slot_minutes parameter: %s", s))); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		slotMinutes = v
	}

	viewerID := ""
	if caller, ok := middleware.CallerFrom(r.Context()); ok {
		viewerID = caller.ID
	}

	blocks, err := h.service.GetAvailability(r.Context(), service.Query{
		Day:         day,
		CourtID:     query.Get("court_id"),
		Category:    query.Get("category"),
		SlotMinutes: slotMinutes,
		ViewerID:    viewerID,
	})
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, blocks); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability", h.Get)
}
