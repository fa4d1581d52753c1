package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

func TestBookingRepositoryCreateSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO student_bookings").
		WithArgs(sqlmock.AnyArg(), "s1", "i1", "slot-1", models.BookingPending, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.StudentBooking{StudentID: "s1", InstructorID: "i1", SlotID: "slot-1", Status: models.BookingPending})
	require.Error(t, err)
	assert.True(t, appErrors.IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryUpdateStatusIsConditional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	query := regexp.QuoteMeta("UPDATE student_bookings SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")
	mock.ExpectExec(query).WithArgs("b1", models.BookingPending, models.BookingConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("b1", models.BookingPending, models.BookingConfirmed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), "b1", models.BookingPending, models.BookingConfirmed)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UpdateStatus(context.Background(), "b1", models.BookingPending, models.BookingConfirmed)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryListByInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM instructor_time_slots s WHERE s.instructor_id = \\$1 ORDER BY s.start_at").
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "instructor_id", "start_at", "end_at", "created_at", "available"}).
			AddRow("slot-1", "i1", start, start.Add(time.Hour), start, false))

	slots, err := repo.ListByInstructor(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].Available)
	assert.NoError(t, mock.ExpectationsWereMet())
}
