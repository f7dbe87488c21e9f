package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusAccepted RequestStatus = "ACCEPTED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

// SwapRequest proposes exchanging ownership of two slots between two users.
// Responder is the owner of the requested slot at creation time. Terminal
// records (ACCEPTED/REJECTED) are immutable and persist as history.
type SwapRequest struct {
	ID              uuid.UUID     `json:"id"`
	RequesterID     uuid.UUID     `json:"requester_id"`
	ResponderID     uuid.UUID     `json:"responder_id"`
	OfferedSlotID   uuid.UUID     `json:"offered_slot_id"`
	RequestedSlotID uuid.UUID     `json:"requested_slot_id"`
	Status          RequestStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SwapSlotSummary is the denormalized slot view embedded in request listings.
type SwapSlotSummary struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// IncomingSwapRequest is a request someone else opened against the listing
// user's slot. MySlot is the slot owned by the listing user, TheirSlot the
// requester's offer.
type IncomingSwapRequest struct {
	ID             uuid.UUID       `json:"id"`
	Status         RequestStatus   `json:"status"`
	RequesterName  string          `json:"requester_name"`
	RequesterEmail string          `json:"requester_email"`
	MySlot         SwapSlotSummary `json:"my_slot"`
	TheirSlot      SwapSlotSummary `json:"their_slot"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OutgoingSwapRequest is a request the listing user opened. MySlot is the
// offered slot, TheirSlot the responder's slot being asked for.
type OutgoingSwapRequest struct {
	ID             uuid.UUID       `json:"id"`
	Status         RequestStatus   `json:"status"`
	ResponderName  string          `json:"responder_name"`
	ResponderEmail string          `json:"responder_email"`
	MySlot         SwapSlotSummary `json:"my_slot"`
	TheirSlot      SwapSlotSummary `json:"their_slot"`
	CreatedAt      time.Time       `json:"created_at"`
}
