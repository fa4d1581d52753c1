package dto

import "time"

// CreateBookingRequest asks for a time slot.
type CreateBookingRequest struct {
	SlotID string `json:"slotId" validate:"required,uuid"`
}

// UpdateBookingStatusRequest moves a booking to another status.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed rejected cancelled completed"`
}

// BookingDto is the public view of a booking.
type BookingDto struct {
	BookingID    string    `json:"bookingId"`
	StudentID    string    `json:"studentId"`
	InstructorID string    `json:"instructorId"`
	SlotID       string    `json:"slotId"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	Status       string    `json:"status"`
	BookedAt     time.Time `json:"bookedAt"`
}
