package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotswapper/api/internal/models"
)

// UserServiceInterface defines the contract for user operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthServiceInterface defines the contract for credential and token operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	GenerateToken(userID uuid.UUID) (string, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// SlotServiceInterface defines the contract for calendar slot operations.
type SlotServiceInterface interface {
	Create(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Slot, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, filter models.SlotFilter) ([]models.Slot, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (*models.SlotStats, error)
	Update(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error)
	Delete(ctx context.Context, ownerID, slotID uuid.UUID) error
}

// SwapServiceInterface defines the contract for the swap negotiation engine.
type SwapServiceInterface interface {
	Create(ctx context.Context, requesterID, offeredSlotID, requestedSlotID uuid.UUID) (uuid.UUID, error)
	Respond(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (models.RequestStatus, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (*SwapRequestList, error)
	ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.Slot, error)
}
