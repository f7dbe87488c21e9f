package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/slotswapper/api/internal/models"
	"github.com/slotswapper/api/internal/services"
	"github.com/slotswapper/api/internal/testutil"
)

func TestEventHandler_List_Unauthenticated(t *testing.T) {
	h := NewEventHandler(&mockSlotService{})

	req := testutil.NewTestRequest(http.MethodGet, "/api/events", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assertErrorResponse(t, rr, http.StatusUnauthorized, "Authentication required")
}

func TestEventHandler_List_Filters(t *testing.T) {
	user := testUser()
	var gotFilter models.SlotFilter
	slotService := &mockSlotService{
		ListByOwnerFunc: func(ctx context.Context, ownerID uuid.UUID, filter models.SlotFilter) ([]models.Slot, error) {
			if ownerID != user.ID {
				t.Fatalf("expected owner %v, got %v", user.ID, ownerID)
			}
			gotFilter = filter
			return []models.Slot{}, nil
		},
	}
	h := NewEventHandler(slotService)

	req := withUser(testutil.NewTestRequest(http.MethodGet,
		"/api/events?status=SWAPPABLE&start_date=2026-09-01T00:00:00Z&search=standup", nil), user)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	if gotFilter.Status != models.SlotStatusSwappable {
		t.Fatalf("unexpected status filter: %v", gotFilter.Status)
	}
	if gotFilter.StartDate == nil || gotFilter.StartDate.Year() != 2026 {
		t.Fatalf("unexpected start date: %v", gotFilter.StartDate)
	}
	if gotFilter.Search != "standup" {
		t.Fatalf("unexpected search: %q", gotFilter.Search)
	}
}

func TestEventHandler_List_InvalidStatus(t *testing.T) {
	h := NewEventHandler(&mockSlotService{})

	req := withUser(testutil.NewTestRequest(http.MethodGet, "/api/events?status=BOGUS", nil), testUser())
	rr := httptest.NewRecorder()
	h.List(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid status filter")
}

func TestEventHandler_Create_Success(t *testing.T) {
	user := testUser()
	slotID := uuid.New()
	start := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	end := start.Add(time.Hour)

	slotService := &mockSlotService{
		CreateFunc: func(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
			if params.OwnerID != user.ID {
				t.Fatalf("expected owner %v, got %v", user.ID, params.OwnerID)
			}
			return &models.Slot{
				ID:        slotID,
				Title:     params.Title,
				StartTime: params.StartTime,
				EndTime:   params.EndTime,
				Status:    models.SlotStatusBusy,
				OwnerID:   user.ID,
			}, nil
		},
	}
	h := NewEventHandler(slotService)

	req := withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/events", EventRequest{
		Title:     "Team sync",
		StartTime: start,
		EndTime:   end,
	}), user)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusCreated)

	var slot models.Slot
	if err := json.Unmarshal(rr.Body.Bytes(), &slot); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if slot.ID != slotID || slot.Title != "Team sync" {
		t.Fatalf("unexpected slot: %+v", slot)
	}
}

func TestEventHandler_Create_Overlap(t *testing.T) {
	user := testUser()
	conflict := models.Slot{ID: uuid.New(), Title: "Existing"}
	slotService := &mockSlotService{
		CreateFunc: func(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
			return nil, &services.OverlapError{Conflicts: []models.Slot{conflict}}
		},
	}
	h := NewEventHandler(slotService)

	start := time.Now().Add(time.Hour)
	req := withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/events", EventRequest{
		Title:     "Team sync",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}), user)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusConflict)

	var resp ConflictResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Message != "Time slot conflicts with existing events" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
	if len(resp.Conflicts) != 1 || resp.Conflicts[0].ID != conflict.ID {
		t.Fatalf("unexpected conflicts: %+v", resp.Conflicts)
	}
}

func TestEventHandler_Create_ValidationError(t *testing.T) {
	user := testUser()
	slotService := &mockSlotService{
		CreateFunc: func(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
			return nil, services.ErrSlotTooShort
		},
	}
	h := NewEventHandler(slotService)

	start := time.Now().Add(time.Hour)
	req := withUser(testutil.NewTestRequestWithJSON(t, http.MethodPost, "/api/events", EventRequest{
		Title:     "Quick chat",
		StartTime: start,
		EndTime:   start.Add(5 * time.Minute),
	}), user)
	rr := httptest.NewRecorder()
	h.Create(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "time slot must be at least 15 minutes")
}

func TestEventHandler_Update_NotFound(t *testing.T) {
	user := testUser()
	slotService := &mockSlotService{
		UpdateFunc: func(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error) {
			return nil, services.ErrSlotNotFound
		},
	}
	h := NewEventHandler(slotService)

	start := time.Now().Add(time.Hour)
	req := withUser(testutil.NewTestRequestWithJSON(t, http.MethodPatch, "/api/events/x", EventRequest{
		Title:     "Moved",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}), user)
	req.SetPathValue("id", uuid.New().String())
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	assertErrorResponse(t, rr, http.StatusNotFound, "Event not found")
}

func TestEventHandler_Update_Locked(t *testing.T) {
	user := testUser()
	slotService := &mockSlotService{
		UpdateFunc: func(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error) {
			return nil, services.ErrSlotLocked
		},
	}
	h := NewEventHandler(slotService)

	start := time.Now().Add(time.Hour)
	req := withUser(testutil.NewTestRequestWithJSON(t, http.MethodPatch, "/api/events/x", EventRequest{
		Title:     "Moved",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}), user)
	req.SetPathValue("id", uuid.New().String())
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	assertErrorResponse(t, rr, http.StatusConflict, "Event is locked by a pending swap request")
}

func TestEventHandler_Update_InvalidID(t *testing.T) {
	h := NewEventHandler(&mockSlotService{})

	req := withUser(testutil.NewTestRequest(http.MethodPatch, "/api/events/nope", nil), testUser())
	req.SetPathValue("id", "nope")
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "Invalid event ID")
}

func TestEventHandler_Delete_Success(t *testing.T) {
	user := testUser()
	slotID := uuid.New()
	var deleted bool
	slotService := &mockSlotService{
		DeleteFunc: func(ctx context.Context, ownerID, id uuid.UUID) error {
			if ownerID != user.ID || id != slotID {
				t.Fatalf("unexpected delete args: %v %v", ownerID, id)
			}
			deleted = true
			return nil
		},
	}
	h := NewEventHandler(slotService)

	req := withUser(testutil.NewTestRequest(http.MethodDelete, "/api/events/x", nil), user)
	req.SetPathValue("id", slotID.String())
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)
	if !deleted {
		t.Fatal("expected delete call")
	}

	var resp MessageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Message != "Event deleted successfully" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

func TestEventHandler_Delete_Locked(t *testing.T) {
	slotService := &mockSlotService{
		DeleteFunc: func(ctx context.Context, ownerID, id uuid.UUID) error {
			return services.ErrSlotLocked
		},
	}
	h := NewEventHandler(slotService)

	req := withUser(testutil.NewTestRequest(http.MethodDelete, "/api/events/x", nil), testUser())
	req.SetPathValue("id", uuid.New().String())
	rr := httptest.NewRecorder()
	h.Delete(rr, req)

	assertErrorResponse(t, rr, http.StatusConflict, "Event is locked by a pending swap request")
}

func TestEventHandler_Stats(t *testing.T) {
	user := testUser()
	slotService := &mockSlotService{
		StatsFunc: func(ctx context.Context, ownerID uuid.UUID) (*models.SlotStats, error) {
			return &models.SlotStats{
				TotalEvents:    4,
				UpcomingEvents: 2,
				StatusBreakdown: map[models.SlotStatus]int{
					models.SlotStatusBusy:      3,
					models.SlotStatusSwappable: 1,
				},
			}, nil
		},
	}
	h := NewEventHandler(slotService)

	req := withUser(testutil.NewTestRequest(http.MethodGet, "/api/events/stats", nil), user)
	rr := httptest.NewRecorder()
	h.Stats(rr, req)

	testutil.AssertStatusCode(t, rr, http.StatusOK)

	var stats models.SlotStats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if stats.TotalEvents != 4 || stats.UpcomingEvents != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
