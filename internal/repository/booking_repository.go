package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const bookingDetailSelect = `SELECT b.id, b.student_id, b.instructor_id, b.slot_id, b.status, b.booked_at, b.updated_at, s.start_at, s.end_at
	FROM student_bookings b
	JOIN instructor_time_slots s ON s.id = b.slot_id`

// BookingRepository persists slot bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking. A second active booking on the same slot fails with a unique violation.
func (r *BookingRepository) Create(ctx context.Context, booking *models.StudentBooking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.BookedAt = now
	booking.UpdatedAt = now

	const query = `INSERT INTO student_bookings (id, student_id, instructor_id, slot_id, status, booked_at, updated_at)
		VALUES (:id, :student_id, :instructor_id, :slot_id, :status, :booked_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID returns a booking with its slot times.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.BookingDetail, error) {
	var booking models.BookingDetail
	if err := r.db.GetContext(ctx, &booking, bookingDetailSelect+" WHERE b.id = $1", id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// ListByStudent returns a student's bookings, latest slot first.
func (r *BookingRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error) {
	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, bookingDetailSelect+" WHERE b.student_id = $1 ORDER BY s.start_at DESC", studentID); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// HasActiveForSlot reports whether the slot already holds a pending or confirmed booking.
func (r *BookingRepository) HasActiveForSlot(ctx context.Context, slotID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM student_bookings WHERE slot_id = $1 AND status IN ('pending', 'confirmed'))`
	if err := r.db.GetContext(ctx, &exists, query, slotID); err != nil {
		return false, fmt.Errorf("check slot bookings: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves a booking from one status to another. It reports false when the
// booking was no longer in the expected status.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	const query = `UPDATE student_bookings SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	return affected == 1, nil
}
