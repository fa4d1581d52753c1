package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

const (
	publishedCourseID = "8e2b1c4d-6a5f-4e3d-9c2b-1a0f9e8d7c6b"
	draftCourseID     = "1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
)

func newEnrollmentFixture() (*EnrollmentService, *mockEnrollmentRepo) {
	courses := &mockCourseRepo{items: map[string]*models.CourseDetail{
		publishedCourseID: {Course: models.Course{ID: publishedCourseID, Title: "Algebra Basics", IsPublished: true}},
		draftCourseID:     {Course: models.Course{ID: draftCourseID, Title: "Draft"}},
	}}
	students := &mockStudentRepo{items: map[string]*models.Student{"s1": {ID: "s1"}}}
	repo := &mockEnrollmentRepo{}
	return NewEnrollmentService(repo, courses, students, nil, zap.NewNop()), repo
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

func TestEnrollmentServiceEnroll(t *testing.T) {
	svc, repo := newEnrollmentFixture()
	ctx := context.Background()

	enrollment, err := svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: publishedCourseID})
	require.NoError(t, err)
	assert.Equal(t, "active", enrollment.Status)
	assert.Equal(t, 0.0, enrollment.Progress)
	assert.Equal(t, "Algebra Basics", enrollment.CourseTitle)

	_, err = svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: publishedCourseID})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateResource)
	assert.Len(t, repo.items, 1)
}

func TestEnrollmentServiceRejectsUnpublishedAndUnknown(t *testing.T) {
	svc, _ := newEnrollmentFixture()
	ctx := context.Background()

	_, err := svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: draftCourseID})
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	_, err = svc.Enroll(ctx, "ghost", dto.EnrollRequest{CourseID: publishedCourseID})
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	_, err = svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: "course"})
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceProgress(t *testing.T) {
	svc, _ := newEnrollmentFixture()
	ctx := context.Background()
	enrollment, err := svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: publishedCourseID})
	require.NoError(t, err)

	_, err = svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{})
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	_, err = svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{Progress: floatPtr(120)})
	assert.Equal(t, 400, appErrors.FromError(err).Status)

	halfway, err := svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{Progress: floatPtr(45.5)})
	require.NoError(t, err)
	assert.Equal(t, 45.5, halfway.Progress)
	assert.Equal(t, "active", halfway.Status)

	done, err := svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{Progress: floatPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)

	_, err = svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{Progress: floatPtr(10)})
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestEnrollmentServiceCompleteForcesFullProgress(t *testing.T) {
	svc, _ := newEnrollmentFixture()
	ctx := context.Background()
	enrollment, err := svc.Enroll(ctx, "s1", dto.EnrollRequest{CourseID: publishedCourseID})
	require.NoError(t, err)

	done, err := svc.Update(ctx, enrollment.EnrollmentID, dto.UpdateEnrollmentRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, 100.0, done.Progress)

	list, err := svc.ListByStudent(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "completed", list[0].Status)

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
