package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/lock"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.StudentBooking) error
	FindByID(ctx context.Context, id string) (*models.BookingDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.BookingDetail, error)
	HasActiveForSlot(ctx context.Context, slotID string) (bool, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error)
}

type slotLookup interface {
	FindByID(ctx context.Context, id string) (*models.TimeSlotDetail, error)
}

type studentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// BookingService books instructor time slots for students.
type BookingService struct {
	repo      bookingRepository
	slots     slotLookup
	students  studentChecker
	locker    lock.Locker
	lockTTL   time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo bookingRepository, slots slotLookup, students studentChecker, locker lock.Locker, lockTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = lock.NewMemoryLock()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &BookingService{
		repo:      repo,
		slots:     slots,
		students:  students,
		locker:    locker,
		lockTTL:   lockTTL,
		validator: validate,
		logger:    logger,
	}
}

// Create books a slot for a student. The slot must not hold another pending or confirmed booking.
func (s *BookingService) Create(ctx context.Context, studentID string, req dto.CreateBookingRequest) (*dto.BookingDto, error) {
	if err := validationError(s.validator, req, "invalid booking payload"); err != nil {
		return nil, err
	}
	exists, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	slot, err := s.slots.FindByID(ctx, req.SlotID)
	if err != nil {
		return nil, lookupError(err, "time slot not found", "failed to load time slot")
	}

	lockKey := "slot:" + slot.ID
	token, acquired, err := s.locker.Lock(ctx, lockKey, s.lockTTL)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to lock time slot")
	}
	if !acquired {
		return nil, appErrors.Clone(appErrors.ErrLocked, "time slot is being booked")
	}
	defer func() {
		if err := s.locker.Unlock(context.Background(), lockKey, token); err != nil {
			s.logger.Warn("failed to release slot lock", zap.String("slot_id", slot.ID), zap.Error(err))
		}
	}()

	taken, err := s.repo.HasActiveForSlot(ctx, slot.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check time slot")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "time slot already booked")
	}

	booking := &models.StudentBooking{
		StudentID:    studentID,
		InstructorID: slot.InstructorID,
		SlotID:       slot.ID,
		Status:       models.BookingPending,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "time slot already booked")
		}
		return nil, writeError(err, "time slot already booked", "failed to create booking")
	}
	s.logger.Info("slot booked", zap.String("booking_id", booking.ID), zap.String("slot_id", slot.ID))

	return toBookingDto(&models.BookingDetail{StudentBooking: *booking, StartAt: slot.StartAt, EndAt: slot.EndAt}), nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*dto.BookingDto, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	return toBookingDto(booking), nil
}

// ListByStudent returns every booking of a student.
func (s *BookingService) ListByStudent(ctx context.Context, studentID string) ([]dto.BookingDto, error) {
	exists, err := s.students.Exists(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load student")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	bookings, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list bookings")
	}
	result := make([]dto.BookingDto, 0, len(bookings))
	for i := range bookings {
		result = append(result, *toBookingDto(&bookings[i]))
	}
	return result, nil
}

// UpdateStatus moves a booking along its lifecycle.
func (s *BookingService) UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*dto.BookingDto, error) {
	if err := validationError(s.validator, req, "invalid booking status payload"); err != nil {
		return nil, err
	}
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "booking not found", "failed to load booking")
	}
	next := models.BookingStatus(req.Status)
	if !booking.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot change booking from "+string(booking.Status)+" to "+string(next))
	}
	updated, err := s.repo.UpdateStatus(ctx, id, booking.Status, next)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update booking")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking was modified concurrently")
	}
	booking.Status = next
	booking.UpdatedAt = time.Now().UTC()
	return toBookingDto(booking), nil
}
