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

const (
	minSlotDuration = 15 * time.Minute
	maxSlotDuration = 240 * time.Minute
)

var (
	ErrSlotNotFound      = errors.New("slot not found")
	ErrSlotLocked        = errors.New("slot is locked by a pending swap request")
	ErrInvalidSlotStatus = errors.New("invalid slot status")
	ErrEndBeforeStart    = errors.New("end time must be after start time")
	ErrSlotTooShort      = errors.New("time slot must be at least 15 minutes")
	ErrSlotTooLong       = errors.New("time slot cannot exceed 240 minutes")
	ErrTitleRequired     = errors.New("title is required")
)

// OverlapError reports that a candidate time range intersects existing slots
// of the same owner. Conflicts holds the intersecting slots.
type OverlapError struct {
	Conflicts []models.Slot
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("time slot conflicts with %d existing event(s)", len(e.Conflicts))
}

type SlotService struct {
	db DB
}

func NewSlotService(db DB) *SlotService {
	return &SlotService{db: db}
}

func validateTimeSlot(start, end time.Time) error {
	if !end.After(start) {
		return ErrEndBeforeStart
	}
	duration := end.Sub(start)
	if duration < minSlotDuration {
		return ErrSlotTooShort
	}
	if duration > maxSlotDuration {
		return ErrSlotTooLong
	}
	return nil
}

// Create inserts a new slot after validating the time range and checking for
// overlaps with the owner's existing slots. The overlap check and insert run
// in one transaction with the conflicting rows locked, so two concurrent
// creates cannot both pass the check.
func (s *SlotService) Create(ctx context.Context, params models.CreateSlotParams) (*models.Slot, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := validateTimeSlot(params.StartTime, params.EndTime); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = models.SlotStatusBusy
	}
	if status != models.SlotStatusBusy && status != models.SlotStatusSwappable {
		return nil, ErrInvalidSlotStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin slot create transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	conflicts, err := overlappingSlots(ctx, tx, params.OwnerID, params.StartTime, params.EndTime, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	slot := &models.Slot{}
	err = tx.QueryRow(ctx,
		`INSERT INTO slots (title, start_time, end_time, status, owner_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, title, start_time, end_time, status, owner_id, created_at, updated_at`,
		params.Title, params.StartTime, params.EndTime, status, params.OwnerID,
	).Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit slot create: %w", err)
	}
	committed = true

	return slot, nil
}

// overlappingSlots returns the owner's slots whose range intersects
// [start, end) using half-open interval semantics, locking matching rows.
// excludeID skips one slot (for updates checking against themselves).
func overlappingSlots(ctx context.Context, tx Tx, ownerID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Slot, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, title, start_time, end_time, status, owner_id, created_at, updated_at
		 FROM slots
		 WHERE owner_id = $1
		   AND start_time < $2
		   AND end_time > $3
		   AND id != $4
		 ORDER BY start_time
		 FOR UPDATE`,
		ownerID, end, start, excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("checking slot overlap: %w", err)
	}
	defer rows.Close()

	var conflicts []models.Slot
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning conflicting slot: %w", err)
		}
		conflicts = append(conflicts, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading conflicting slots: %w", err)
	}
	return conflicts, nil
}

func (s *SlotService) GetByID(ctx context.Context, id uuid.UUID) (*models.Slot, error) {
	slot := &models.Slot{}
	err := s.db.QueryRow(ctx,
		`SELECT id, title, start_time, end_time, status, owner_id, created_at, updated_at
		 FROM slots WHERE id = $1`,
		id,
	).Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting slot by id: %w", err)
	}

	return slot, nil
}

func (s *SlotService) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter models.SlotFilter) ([]models.Slot, error) {
	query := `SELECT id, title, start_time, end_time, status, owner_id, created_at, updated_at
	 FROM slots WHERE owner_id = $1`
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		query += fmt.Sprintf(" AND end_time <= $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); len(search) >= 3 {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	query += " ORDER BY start_time"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	defer rows.Close()

	slots := []models.Slot{}
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading slots: %w", err)
	}

	return slots, nil
}

func (s *SlotService) Stats(ctx context.Context, ownerID uuid.UUID) (*models.SlotStats, error) {
	stats := &models.SlotStats{
		StatusBreakdown: make(map[models.SlotStatus]int),
	}

	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM slots WHERE owner_id = $1`,
		ownerID,
	).Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("counting slots: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT status, COUNT(*) FROM slots WHERE owner_id = $1 GROUP BY status`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("counting slots by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.SlotStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		stats.StatusBreakdown[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading status counts: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM slots WHERE owner_id = $1 AND start_time > NOW()`,
		ownerID,
	).Scan(&stats.UpcomingEvents)
	if err != nil {
		return nil, fmt.Errorf("counting upcoming slots: %w", err)
	}

	return stats, nil
}

// Update rewrites a slot's title, time range, and BUSY/SWAPPABLE status. A
// slot referenced by an open swap request cannot be edited until the request
// resolves.
func (s *SlotService) Update(ctx context.Context, ownerID, slotID uuid.UUID, params models.UpdateSlotParams) (*models.Slot, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if err := validateTimeSlot(params.StartTime, params.EndTime); err != nil {
		return nil, err
	}

	status := params.Status
	if status == "" {
		status = models.SlotStatusBusy
	}
	if status != models.SlotStatusBusy && status != models.SlotStatusSwappable {
		return nil, ErrInvalidSlotStatus
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin slot update transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var current models.SlotStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM slots WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		slotID, ownerID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading slot for update: %w", err)
	}
	if current == models.SlotStatusSwapPending {
		return nil, ErrSlotLocked
	}

	conflicts, err := overlappingSlots(ctx, tx, ownerID, params.StartTime, params.EndTime, slotID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &OverlapError{Conflicts: conflicts}
	}

	slot := &models.Slot{}
	err = tx.QueryRow(ctx,
		`UPDATE slots
		 SET title = $1, start_time = $2, end_time = $3, status = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING id, title, start_time, end_time, status, owner_id, created_at, updated_at`,
		params.Title, params.StartTime, params.EndTime, status, slotID,
	).Scan(&slot.ID, &slot.Title, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.OwnerID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updating slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit slot update: %w", err)
	}
	committed = true

	return slot, nil
}

// Delete removes a slot and, via foreign keys, its resolved swap request
// history. A slot locked by a pending request must be resolved first.
func (s *SlotService) Delete(ctx context.Context, ownerID, slotID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin slot delete transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var current models.SlotStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM slots WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		slotID, ownerID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("loading slot for delete: %w", err)
	}
	if current == models.SlotStatusSwapPending {
		return ErrSlotLocked
	}

	if _, err := tx.Exec(ctx, `DELETE FROM slots WHERE id = $1`, slotID); err != nil {
		return fmt.Errorf("deleting slot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit slot delete: %w", err)
	}
	committed = true

	return nil
}
