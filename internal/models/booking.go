package models

import "time"

// BookingStatus is the lifecycle state of a slot booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether the booking may move from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Active reports whether the booking still holds its slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// StudentBooking is a student's claim on an instructor time slot.
type StudentBooking struct {
	ID           string        `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	InstructorID string        `db:"instructor_id" json:"instructor_id"`
	SlotID       string        `db:"slot_id" json:"slot_id"`
	Status       BookingStatus `db:"status" json:"status"`
	BookedAt     time.Time     `db:"booked_at" json:"booked_at"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail joins slot times onto a booking.
type BookingDetail struct {
	StudentBooking
	StartAt time.Time `db:"start_at" json:"start_at"`
	EndAt   time.Time `db:"end_at" json:"end_at"`
}
