package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/slotswapper/api/internal/services"
)

type SwapHandler struct {
	swapService services.SwapServiceInterface
}

func NewSwapHandler(swapService services.SwapServiceInterface) *SwapHandler {
	return &SwapHandler{swapService: swapService}
}

type SwapRequestRequest struct {
	OfferedSlotID   string `json:"offeredSlotId"`
	RequestedSlotID string `json:"requestedSlotId"`
}

type SwapRequestResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

type SwapResponseRequest struct {
	Accept bool `json:"accept"`
}

type SwapResponseResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (h *SwapHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SwapRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offeredID, err := uuid.Parse(req.OfferedSlotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid offered slot ID")
		return
	}
	requestedID, err := uuid.Parse(req.RequestedSlotID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requested slot ID")
		return
	}

	requestID, err := h.swapService.Create(r.Context(), user.ID, offeredID, requestedID)
	switch {
	case errors.Is(err, services.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "One of the slots not found")
		return
	case errors.Is(err, services.ErrNotSlotOwner):
		writeError(w, http.StatusForbidden, "You can only swap your own slots")
		return
	case errors.Is(err, services.ErrOfferedNotSwappable):
		writeError(w, http.StatusBadRequest, "Your slot must be SWAPPABLE")
		return
	case errors.Is(err, services.ErrRequestedNotSwappable):
		writeError(w, http.StatusBadRequest, "Their slot must be SWAPPABLE")
		return
	case errors.Is(err, services.ErrSameSlot):
		writeError(w, http.StatusBadRequest, "Cannot swap a slot with itself")
		return
	case err != nil:
		log.Printf("Error creating swap request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SwapRequestResponse{
		Message: "Swap request created successfully",
		ID:      requestID,
	})
}

func (h *SwapHandler) Respond(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req SwapResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status, err := h.swapService.Respond(r.Context(), user.ID, requestID, req.Accept)

	var resolved *services.AlreadyResolvedError
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Swap request not found")
		return
	case errors.Is(err, services.ErrNotResponder):
		writeError(w, http.StatusForbidden, "You cannot respond to this request")
		return
	case errors.As(err, &resolved):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("This request has already been %s", strings.ToLower(string(resolved.Status))))
		return
	case errors.Is(err, services.ErrSlotGone):
		writeError(w, http.StatusNotFound, "One of the slots no longer exists")
		return
	case err != nil:
		log.Printf("Error responding to swap request: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := "Swap rejected successfully"
	if req.Accept {
		message = "Swap accepted successfully"
	}

	writeJSON(w, http.StatusOK, SwapResponseResponse{
		Message: message,
		Status:  string(status),
	})
}

func (h *SwapHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	list, err := h.swapService.ListForUser(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing swap requests: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (h *SwapHandler) SwappableSlots(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	slots, err := h.swapService.ListSwappableSlots(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing swappable slots: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, slots)
}
