package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.course_id, e.progress, e.status, e.enrolled_at, e.updated_at, c.title AS course_title
	FROM student_course_enrollments e
	JOIN courses c ON c.id = e.course_id`

// EnrollmentRepository persists course enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment. The (student, course) pair is unique.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.StudentCourseEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	enrollment.EnrolledAt = now
	enrollment.UpdatedAt = now

	const query = `INSERT INTO student_course_enrollments (id, student_id, course_id, progress, status, enrolled_at, updated_at)
		VALUES (:id, :student_id, :course_id, :progress, :status, :enrolled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// FindByID returns an enrollment with the course title.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var enrollment models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &enrollment, enrollmentDetailSelect+" WHERE e.id = $1", id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsForCourse reports whether the student is already enrolled in the course.
func (r *EnrollmentRepository) ExistsForCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS(SELECT 1 FROM student_course_enrollments WHERE student_id = $1 AND course_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// ListByStudent returns a student's enrollments, newest first.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error) {
	enrollments := []models.EnrollmentDetail{}
	if err := r.db.SelectContext(ctx, &enrollments, enrollmentDetailSelect+" WHERE e.student_id = $1 ORDER BY e.enrolled_at DESC", studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateProgress writes progress and status.
func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, id string, progress float64, status models.EnrollmentStatus) error {
	const query = `UPDATE student_course_enrollments SET progress = $2, status = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, progress, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return nil
}
