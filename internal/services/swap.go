package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/slotswapper/api/internal/models"
)

var (
	ErrRequestNotFound       = errors.New("swap request not found")
	ErrNotResponder          = errors.New("only the responder can answer this request")
	ErrNotSlotOwner          = errors.New("you can only offer your own slots")
	ErrOfferedNotSwappable   = errors.New("offered slot is not swappable")
	ErrRequestedNotSwappable = errors.New("requested slot is not swappable")
	ErrSameSlot              = errors.New("cannot swap a slot with itself")
	ErrSlotGone              = errors.New("slot no longer exists")
)

// AlreadyResolvedError reports a response to a request that has already
// reached a terminal status.
type AlreadyResolvedError struct {
	Status models.RequestStatus
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("request has already been %s", strings.ToLower(string(e.Status)))
}

// SwapService is the negotiation engine over slots and swap requests. Every
// mutation runs as one transaction with the affected slot and request rows
// locked, so concurrent requests against the same slot serialize and the
// loser fails its status precondition.
type SwapService struct {
	db DB
}

func NewSwapService(db DB) *SwapService {
	return &SwapService{db: db}
}

// lockedSlot is the subset of slot columns the engine transitions.
type lockedSlot struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Status  models.SlotStatus
}

// lockSlotPair locks up to two slot rows in a deterministic order and returns
// them keyed by id. Missing ids are simply absent from the map.
func lockSlotPair(ctx context.Context, tx Tx, a, b uuid.UUID) (map[uuid.UUID]lockedSlot, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, owner_id, status FROM slots
		 WHERE id = $1 OR id = $2
		 ORDER BY id
		 FOR UPDATE`,
		a, b,
	)
	if err != nil {
		return nil, fmt.Errorf("locking slots: %w", err)
	}
	defer rows.Close()

	slots := make(map[uuid.UUID]lockedSlot, 2)
	for rows.Next() {
		var slot lockedSlot
		if err := rows.Scan(&slot.ID, &slot.OwnerID, &slot.Status); err != nil {
			return nil, fmt.Errorf("scanning locked slot: %w", err)
		}
		slots[slot.ID] = slot
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading locked slots: %w", err)
	}
	return slots, nil
}

// Create opens a swap negotiation: both slots move to SWAP_PENDING and a
// PENDING request is recorded with the requested slot's owner as responder.
// Preconditions are checked in order under row locks; the first failure wins.
func (s *SwapService) Create(ctx context.Context, requesterID, offeredSlotID, requestedSlotID uuid.UUID) (uuid.UUID, error) {
	if offeredSlotID == requestedSlotID {
		return uuid.Nil, ErrSameSlot
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin swap create transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	slots, err := lockSlotPair(ctx, tx, offeredSlotID, requestedSlotID)
	if err != nil {
		return uuid.Nil, err
	}

	offered, ok := slots[offeredSlotID]
	if !ok {
		return uuid.Nil, ErrSlotNotFound
	}
	requested, ok := slots[requestedSlotID]
	if !ok {
		return uuid.Nil, ErrSlotNotFound
	}

	if offered.OwnerID != requesterID {
		return uuid.Nil, ErrNotSlotOwner
	}
	if offered.Status != models.SlotStatusSwappable {
		return uuid.Nil, ErrOfferedNotSwappable
	}
	if requested.Status != models.SlotStatusSwappable {
		return uuid.Nil, ErrRequestedNotSwappable
	}

	_, err = tx.Exec(ctx,
		`UPDATE slots SET status = $1, updated_at = NOW() WHERE id = $2 OR id = $3`,
		models.SlotStatusSwapPending, offeredSlotID, requestedSlotID,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marking slots swap pending: %w", err)
	}

	var requestID uuid.UUID
	err = tx.QueryRow(ctx,
		`INSERT INTO swap_requests (requester_id, responder_id, offered_slot_id, requested_slot_id, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		requesterID, requested.OwnerID, offeredSlotID, requestedSlotID, models.RequestStatusPending,
	).Scan(&requestID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting swap request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit swap create: %w", err)
	}
	committed = true

	return requestID, nil
}

// Respond resolves a pending request. Accepting exchanges the two slots'
// owners and marks both BUSY; rejecting returns both to SWAPPABLE. Either way
// the request reaches a terminal status and becomes immutable.
func (s *SwapService) Respond(ctx context.Context, responderID, requestID uuid.UUID, accept bool) (models.RequestStatus, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin swap respond transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	req := models.SwapRequest{}
	err = tx.QueryRow(ctx,
		`SELECT id, requester_id, responder_id, offered_slot_id, requested_slot_id, status
		 FROM swap_requests WHERE id = $1
		 FOR UPDATE`,
		requestID,
	).Scan(&req.ID, &req.RequesterID, &req.ResponderID, &req.OfferedSlotID, &req.RequestedSlotID, &req.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrRequestNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading swap request: %w", err)
	}

	if req.ResponderID != responderID {
		return "", ErrNotResponder
	}
	if req.Status != models.RequestStatusPending {
		return "", &AlreadyResolvedError{Status: req.Status}
	}

	slots, err := lockSlotPair(ctx, tx, req.OfferedSlotID, req.RequestedSlotID)
	if err != nil {
		return "", err
	}
	offered, offeredOK := slots[req.OfferedSlotID]
	requested, requestedOK := slots[req.RequestedSlotID]
	if !offeredOK || !requestedOK {
		return "", ErrSlotGone
	}

	final := models.RequestStatusRejected
	if accept {
		final = models.RequestStatusAccepted

		// Pairwise owner exchange. The SWAP_PENDING flag acts as the lock
		// here; ownership is not re-validated at accept time.
		_, err = tx.Exec(ctx,
			`UPDATE slots SET owner_id = $1, status = $2, updated_at = NOW() WHERE id = $3`,
			requested.OwnerID, models.SlotStatusBusy, offered.ID,
		)
		if err != nil {
			return "", fmt.Errorf("reassigning offered slot: %w", err)
		}
		_, err = tx.Exec(ctx,
			`UPDATE slots SET owner_id = $1, status = $2, updated_at = NOW() WHERE id = $3`,
			offered.OwnerID, models.SlotStatusBusy, requested.ID,
		)
		if err != nil {
			return "", fmt.Errorf("reassigning requested slot: %w", err)
		}
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE slots SET status = $1, updated_at = NOW() WHERE id = $2 OR id = $3`,
			models.SlotStatusSwappable, offered.ID, requested.ID,
		)
		if err != nil {
			return "", fmt.Errorf("releasing slots: %w", err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE swap_requests SET status = $1 WHERE id = $2`,
		final, req.ID,
	)
	if err != nil {
		return "", fmt.Errorf("resolving swap request: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit swap respond: %w", err)
	}
	committed = true

	return final, nil
}

// SwapRequestList groups a user's requests by direction.
type SwapRequestList struct {
	Incoming []models.IncomingSwapRequest `json:"incoming"`
	Outgoing []models.OutgoingSwapRequest `json:"outgoing"`
}

// swapRequestRow is the shared scan target for both listing directions; the
// counterpart is the requester for incoming rows, the responder for outgoing.
type swapRequestRow struct {
	ID               uuid.UUID
	Status           models.RequestStatus
	CreatedAt        time.Time
	CounterpartName  string
	CounterpartEmail string
	MySlot           models.SwapSlotSummary
	TheirSlot        models.SwapSlotSummary
}

// ListForUser returns the user's incoming (user is responder) and outgoing
// (user is requester) requests with counterpart and slot details, oldest
// first.
func (s *SwapService) ListForUser(ctx context.Context, userID uuid.UUID) (*SwapRequestList, error) {
	incoming, err := s.listDirection(ctx,
		`SELECT sr.id, sr.status, sr.created_at,
		        u.name, u.email,
		        mine.id, mine.title, mine.start_time, mine.end_time,
		        theirs.id, theirs.title, theirs.start_time, theirs.end_time
		 FROM swap_requests sr
		 JOIN users u ON u.id = sr.requester_id
		 JOIN slots mine ON mine.id = sr.requested_slot_id
		 JOIN slots theirs ON theirs.id = sr.offered_slot_id
		 WHERE sr.responder_id = $1
		 ORDER BY sr.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing incoming requests: %w", err)
	}

	outgoing, err := s.listDirection(ctx,
		`SELECT sr.id, sr.status, sr.created_at,
		        u.name, u.email,
		        mine.id, mine.title, mine.start_time, mine.end_time,
		        theirs.id, theirs.title, theirs.start_time, theirs.end_time
		 FROM swap_requests sr
		 JOIN users u ON u.id = sr.responder_id
		 JOIN slots mine ON mine.id = sr.offered_slot_id
		 JOIN slots theirs ON theirs.id = sr.requested_slot_id
		 WHERE sr.requester_id = $1
		 ORDER BY sr.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing requests: %w", err)
	}

	list := &SwapRequestList{
		Incoming: make([]models.IncomingSwapRequest, 0, len(incoming)),
		Outgoing: make([]models.OutgoingSwapRequest, 0, len(outgoing)),
	}
	for _, row := range incoming {
		list.Incoming = append(list.Incoming, models.IncomingSwapRequest{
			ID:             row.ID,
			Status:         row.Status,
			RequesterName:  row.CounterpartName,
			RequesterEmail: row.CounterpartEmail,
			MySlot:         row.MySlot,
			TheirSlot:      row.TheirSlot,
			CreatedAt:      row.CreatedAt,
		})
	}
	for _, row := range outgoing {
		list.Outgoing = append(list.Outgoing, models.OutgoingSwapRequest{
			ID:             row.ID,
			Status:         row.Status,
			ResponderName:  row.CounterpartName,
			ResponderEmail: row.CounterpartEmail,
			MySlot:         row.MySlot,
			TheirSlot:      row.TheirSlot,
			CreatedAt:      row.CreatedAt,
		})
	}
	return list, nil
}

func (s *SwapService) listDirection(ctx context.Context, query string, userID uuid.UUID) ([]swapRequestRow, error) {
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []swapRequestRow{}
	for rows.Next() {
		var d swapRequestRow
		err := rows.Scan(
			&d.ID, &d.Status, &d.CreatedAt,
			&d.CounterpartName, &d.CounterpartEmail,
			&d.MySlot.ID, &d.MySlot.Title, &d.MySlot.StartTime, &d.MySlot.EndTime,
			&d.TheirSlot.ID, &d.TheirSlot.Title, &d.TheirSlot.StartTime, &d.TheirSlot.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning swap request: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListSwappableSlots returns every SWAPPABLE slot owned by someone else.
func (s *SwapService) ListSwappableSlots(ctx context.Context, userID uuid.UUID) ([]models.Slot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, start_time, end_time, status, owner_id, created_at, updated_at
		 FROM slots
		 WHERE status = $1 AND owner_id != $2
		 ORDER BY start_time`,
		models.SlotStatusSwappable, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing swappable slots: %w", err)
	}
	defer rows.Close()

	slots := []models.Slot{}
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning swappable slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading swappable slots: %w", err)
	}

	return slots, nil
}
