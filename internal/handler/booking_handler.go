package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/pkg/response"
)

type bookingService interface {
	Create(ctx context.Context, studentID string, req dto.CreateBookingRequest) (*dto.BookingDto, error)
	Get(ctx context.Context, id string) (*dto.BookingDto, error)
	ListByStudent(ctx context.Context, studentID string) ([]dto.BookingDto, error)
	UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*dto.BookingDto, error)
}

// BookingHandler exposes slot booking endpoints.
type BookingHandler struct {
	bookings bookingService
}

// NewBookingHandler constructs BookingHandler.
func NewBookingHandler(bookings bookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create godoc
// @Summary Book a time slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CreateBookingRequest true "Slot to book"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid booking payload"))
		return
	}
	booking, err := h.bookings.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// ListByStudent godoc
// @Summary List bookings of a student
// @Tags Bookings
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/bookings [get]
func (h *BookingHandler) ListByStudent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	bookings, err := h.bookings.ListByStudent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookings)
}

// Get godoc
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// UpdateStatus godoc
// @Summary Change booking status
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param payload body dto.UpdateBookingStatusRequest true "New status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/{id}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid booking status payload"))
		return
	}
	booking, err := h.bookings.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}
