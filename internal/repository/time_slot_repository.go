package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const slotAvailability = `NOT EXISTS (SELECT 1 FROM student_bookings b WHERE b.slot_id = s.id AND b.status IN ('pending', 'confirmed')) AS available`

// TimeSlotRepository persists instructor time slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs a TimeSlotRepository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Create inserts a new slot.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.InstructorTimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO instructor_time_slots (id, instructor_id, start_at, end_at, created_at)
		VALUES (:id, :instructor_id, :start_at, :end_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// FindByID fetches a slot with its availability.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlotDetail, error) {
	query := "SELECT s.id, s.instructor_id, s.start_at, s.end_at, s.created_at, " + slotAvailability +
		" FROM instructor_time_slots s WHERE s.id = $1"
	var slot models.TimeSlotDetail
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListByInstructor returns slots of an instructor ordered by start time.
func (r *TimeSlotRepository) ListByInstructor(ctx context.Context, instructorID string) ([]models.TimeSlotDetail, error) {
	query := "SELECT s.id, s.instructor_id, s.start_at, s.end_at, s.created_at, " + slotAvailability +
		" FROM instructor_time_slots s WHERE s.instructor_id = $1 ORDER BY s.start_at"
	slots := []models.TimeSlotDetail{}
	if err := r.db.SelectContext(ctx, &slots, query, instructorID); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// HasOverlap reports whether the instructor already has a slot intersecting [start, end).
func (r *TimeSlotRepository) HasOverlap(ctx context.Context, instructorID string, start, end time.Time) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM instructor_time_slots WHERE instructor_id = $1 AND start_at < $3 AND end_at > $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, instructorID, start, end); err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}
	return exists, nil
}
