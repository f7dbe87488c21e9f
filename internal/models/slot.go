package models

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotStatusBusy        SlotStatus = "BUSY"
	SlotStatusSwappable   SlotStatus = "SWAPPABLE"
	SlotStatusSwapPending SlotStatus = "SWAP_PENDING"
)

// Valid reports whether the status is one of the three known slot states.
func (s SlotStatus) Valid() bool {
	switch s {
	case SlotStatusBusy, SlotStatusSwappable, SlotStatusSwapPending:
		return true
	}
	return false
}

type Slot struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	Status    SlotStatus `json:"status"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CreateSlotParams struct {
	OwnerID   uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Status    SlotStatus
}

type UpdateSlotParams struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Status    SlotStatus
}

// SlotFilter narrows ListByOwner results. Zero values mean "no filter".
type SlotFilter struct {
	Status    SlotStatus
	StartDate *time.Time
	EndDate   *time.Time
	Search    string
}

type SlotStats struct {
	TotalEvents     int                `json:"total_events"`
	StatusBreakdown map[SlotStatus]int `json:"status_breakdown"`
	UpcomingEvents  int                `json:"upcoming_events"`
}
