package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.StudentCourseEnrollment) error
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	ExistsForCourse(ctx context.Context, studentID, courseID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentDetail, error)
	UpdateProgress(ctx context.Context, id string, progress float64, status models.EnrollmentStatus) error
}

type courseLookup interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// EnrollmentService manages student course enrollments.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   courseLookup
	students  studentChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates a new enrollment service.
func NewEnrollmentService(repo enrollmentRepository, courses courseLookup, students studentChecker, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, courses: courses, students: students, validator: validate, logger: logger}
}

// Enroll registers a student in a published course.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*dto.EnrollmentDto, error) {
	if err := validationError(s.validator, req, "invalid enrollment payload"); err != nil {
		return nil, err
	}
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if !course.IsPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	exists, err := s.repo.ExistsForCourse(ctx, studentID, course.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicateResource, "student already enrolled in course")
	}

	enrollment := &models.StudentCourseEnrollment{
		StudentID: studentID,
		CourseID:  course.ID,
		Progress:  0,
		Status:    models.EnrollmentActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, writeError(err, "student already enrolled in course", "failed to create enrollment")
	}
	s.logger.Info("student enrolled", zap.String("student_id", studentID), zap.String("course_id", course.ID))
	return toEnrollmentDto(&models.EnrollmentDetail{StudentCourseEnrollment: *enrollment, CourseTitle: course.Title}), nil
}

// Get returns an enrollment by id.
func (s *EnrollmentService) Get(ctx context.Context, id string) (*dto.EnrollmentDto, error) {
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	return toEnrollmentDto(enrollment), nil
}

// ListByStudent returns every enrollment of a student.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID string) ([]dto.EnrollmentDto, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	enrollments, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	result := make([]dto.EnrollmentDto, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, *toEnrollmentDto(&enrollments[i]))
	}
	return result, nil
}

// Update changes progress and status. Completed and dropped enrollments are final.
func (s *EnrollmentService) Update(ctx context.Context, id string, req dto.UpdateEnrollmentRequest) (*dto.EnrollmentDto, error) {
	if err := validationError(s.validator, req, "invalid enrollment payload"); err != nil {
		return nil, err
	}
	if req.Progress == nil && req.Status == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "progress or status is required")
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "enrollment not found", "failed to load enrollment")
	}
	if enrollment.Status.Final() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is "+string(enrollment.Status))
	}

	progress := enrollment.Progress
	status := enrollment.Status
	if req.Progress != nil {
		progress = *req.Progress
	}
	if req.Status != nil {
		status = models.EnrollmentStatus(*req.Status)
	}
	if progress >= 100 {
		progress = 100
		if status != models.EnrollmentDropped {
			status = models.EnrollmentCompleted
		}
	}
	if status == models.EnrollmentCompleted {
		progress = 100
	}

	if err := s.repo.UpdateProgress(ctx, id, progress, status); err != nil {
		return nil, appErrors.Internal(err, "failed to update enrollment")
	}
	enrollment.Progress = progress
	enrollment.Status = status
	return toEnrollmentDto(enrollment), nil
}

func (s *EnrollmentService) ensureStudent(ctx context.Context, id string) error {
	exists, err := s.students.Exists(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to load student")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}
