package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/slotswapper/api/internal/models"
	"github.com/slotswapper/api/internal/services"
)

type EventHandler struct {
	slotService services.SlotServiceInterface
}

func NewEventHandler(slotService services.SlotServiceInterface) *EventHandler {
	return &EventHandler{slotService: slotService}
}

type EventRequest struct {
	Title     string            `json:"title"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    models.SlotStatus `json:"status"`
}

type ConflictResponse struct {
	Message   string        `json:"message"`
	Conflicts []models.Slot `json:"conflicts"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := models.SlotFilter{
		Search: r.URL.Query().Get("search"),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		s := models.SlotStatus(status)
		if !s.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter.Status = s
	}
	if raw := r.URL.Query().Get("start_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date")
			return
		}
		filter.StartDate = &t
	}
	if raw := r.URL.Query().Get("end_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date")
			return
		}
		filter.EndDate = &t
	}

	slots, err := h.slotService.ListByOwner(r.Context(), user.ID, filter)
	if err != nil {
		log.Printf("Error listing events: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slot, err := h.slotService.Create(r.Context(), models.CreateSlotParams{
		OwnerID:   user.ID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})

	var overlap *services.OverlapError
	if errors.As(err, &overlap) {
		writeJSON(w, http.StatusConflict, ConflictResponse{
			Message:   "Time slot conflicts with existing events",
			Conflicts: overlap.Conflicts,
		})
		return
	}
	if isSlotValidationError(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		log.Printf("Error creating event: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, slot)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slot, err := h.slotService.Update(r.Context(), user.ID, eventID, models.UpdateSlotParams{
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
	})

	var overlap *services.OverlapError
	switch {
	case errors.Is(err, services.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
		return
	case errors.Is(err, services.ErrSlotLocked):
		writeError(w, http.StatusConflict, "Event is locked by a pending swap request")
		return
	case errors.As(err, &overlap):
		writeJSON(w, http.StatusConflict, ConflictResponse{
			Message:   "Time slot conflicts with existing events",
			Conflicts: overlap.Conflicts,
		})
		return
	case isSlotValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("Error updating event: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, slot)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	err = h.slotService.Delete(r.Context(), user.ID, eventID)
	if errors.Is(err, services.ErrSlotNotFound) {
		writeError(w, http.StatusNotFound, "Event not found")
		return
	}
	if errors.Is(err, services.ErrSlotLocked) {
		writeError(w, http.StatusConflict, "Event is locked by a pending swap request")
		return
	}
	if err != nil {
		log.Printf("Error deleting event: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.slotService.Stats(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error computing event stats: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func isSlotValidationError(err error) bool {
	return errors.Is(err, services.ErrTitleRequired) ||
		errors.Is(err, services.ErrEndBeforeStart) ||
		errors.Is(err, services.ErrSlotTooShort) ||
		errors.Is(err, services.ErrSlotTooLong) ||
		errors.Is(err, services.ErrInvalidSlotStatus)
}
