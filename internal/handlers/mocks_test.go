package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/slotswapper/api/internal/models"
	"github.com/slotswapper/api/internal/services"
)

type mockUserService struct {
	CreateFunc     func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

type mockAuthService struct {
	HashPasswordFunc   func(password string) (string, error)
	VerifyPasswordFunc func(hash, password string) bool
	GenerateTokenFunc  func(userID uuid.UUID) (string, error)
	ValidateTokenFunc  func(ctx context.Context, token string) (*models.User, error)
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc != nil {
		return m.VerifyPasswordFunc(hash, password)
	}
	return hash == "hashed:"+password
}

func (m *mockAuthService) GenerateToken(userID uuid.UUID) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID)
	}
	return "token-" + userID.String(), nil
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, services.ErrInvalidToken
}

type mockSlotService struct {
	CreateFunc      func(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error)
	GetByIDFunc     func(ctx context.Context, id uuid.UUID) (*models.Slot, error)
	ListByOwnerFunc func(ctx context.Context, ownerID uuid.UUID, filter models.SlotFilter) ([]models.Slot, error)
	StatsFunc       func(ctx context.Context, ownerID uuid.UUID) (*models.SlotStats, error)
	UpdateFunc      func(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error)
	DeleteFunc      func(ctx context.Context, ownerID, slotID uuid.UUID) error
}

func (m *mockSlotService) Create(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockSlotService) GetByID(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockSlotService) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter models.SlotFilter) ([]models.Slot, error) {
	return m.ListByOwnerFunc(ctx, ownerID, filter)
}

func (m *mockSlotService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.SlotStats, error) {
	return m.StatsFunc(ctx, ownerID)
}

func (m *mockSlotService) Update(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error) {
	return m.UpdateFunc(ctx, ownerID, slotID, params)
}

func (m *mockSlotService) Delete(ctx context.Context, ownerID, slotID uuid.UUID) error {
	return m.DeleteFunc(ctx, ownerID, slotID)
}

type mockSwapService struct {
	CreateFunc             func(ctx context.Context, requesterID, offeredSlotID, requestedSlotID uuid.UUID) (uuid.UUID, error)
	RespondFunc            func(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (models.RequestStatus, error)
	ListForUserFunc        func(ctx context.Context, userID uuid.UUID) (*services.SwapRequestList, error)
	ListSwappableSlotsFunc func(ctx context.Context, userID uuid.UUID) ([]models.Slot, error)
}

func (m *mockSwapService) Create(ctx context.Context, requesterID, offeredSlotID, requestedSlotID uuid.UUID) (uuid.UUID, error) {
	return m.CreateFunc(ctx, requesterID, offeredSlotID, requestedSlotID)
}

func (m *mockSwapService) Respond(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (models.RequestStatus, error) {
	return m.RespondFunc(ctx, responderID, requestID, accept)
}

func (m *mockSwapService) ListForUser(ctx context.Context, userID uuid.UUID) (*services.SwapRequestList, error) {
	return m.ListForUserFunc(ctx, userID)
}

func (m *mockSwapService) ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.Slot, error) {
	return m.ListSwappableSlotsFunc(ctx, userID)
}

func testUser() *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Alice",
		Email: "alice@test.com",
	}
}

// withUser attaches a user to the request context like the auth middleware does.
func withUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(SetUserInContext(r.Context(), user))
}

func assertErrorResponse(t *testing.T, rr *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("expected status %d, got %d. Body: %s", status, rr.Code, rr.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	if resp.Error != message {
		t.Fatalf("expected error %q, got %q", message, resp.Error)
	}
}
