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

const courseInstructorID = "6f1c2a8e-5d43-4b7a-9a55-0a4a8c1e7b21"

type courseFixture struct {
	service *CourseService
	repo    *mockCourseRepo
	cache   *mockCache
}

func newCourseFixture() *courseFixture {
	instructors := &mockInstructorRepo{items: map[string]*models.Instructor{
		courseInstructorID: {ID: courseInstructorID, FullName: "Ravi Kumar", Active: true},
	}}
	repo := &mockCourseRepo{}
	cache := &mockCache{}
	svc := NewCourseService(repo, instructors, cache, 0, nil, zap.NewNop())
	return &courseFixture{service: svc, repo: repo, cache: cache}
}

func (f *courseFixture) create(t *testing.T, title string) *dto.CourseDto {
	t.Helper()
	skill := 1
	out, err := f.service.Create(context.Background(), dto.CourseRequest{
		InstructorID: courseInstructorID,
		Title:        title,
		SkillID:      &skill,
		Price:        1999.999,
	})
	require.NoError(t, err)
	return out
}

func TestCourseServiceCreateStartsUnpublished(t *testing.T) {
	f := newCourseFixture()
	course := f.create(t, "Algebra Basics")

	assert.False(t, course.IsPublished)
	assert.Equal(t, 2000.0, course.Price)
	assert.Contains(t, f.cache.invalidated, catalogCachePattern)
}

func TestCourseServiceValidatesReferences(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, dto.CourseRequest{InstructorID: "0b9d6a53-1c1e-4c1f-8c4e-2d2b3c4d5e6f", Title: "Orphan", Price: 10})
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	skill := 7
	_, err = f.service.Create(ctx, dto.CourseRequest{InstructorID: courseInstructorID, Title: "Bad skill", Price: 10, SkillID: &skill})
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	_, err = f.service.Create(ctx, dto.CourseRequest{InstructorID: courseInstructorID, Title: "Free", Price: 0})
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Empty(t, f.repo.items)
}

func TestCourseServiceCatalogCache(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()
	course := f.create(t, "Algebra Basics")
	published := true

	_, err := f.service.SetPublished(ctx, course.CourseID, dto.PublishRequest{Published: &published})
	require.NoError(t, err)

	filter := models.CourseFilter{Published: &published}
	items, _, hit, err := f.service.List(ctx, filter)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, items, 1)

	items, pagination, hit, err := f.service.List(ctx, filter)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, f.repo.listCalls)

	f.create(t, "Geometry")
	_, _, hit, err = f.service.List(ctx, filter)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, f.repo.listCalls)
}

func TestCourseServiceInstructorListsBypassCache(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()
	f.create(t, "Algebra Basics")

	items, err := f.service.ListByInstructor(ctx, courseInstructorID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Empty(t, f.cache.store)

	_, err = f.service.ListByInstructor(ctx, "missing")
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceUpdateAndGet(t *testing.T) {
	f := newCourseFixture()
	ctx := context.Background()
	course := f.create(t, "Algebra Basics")

	updated, err := f.service.Update(ctx, course.CourseID, dto.CourseRequest{InstructorID: courseInstructorID, Title: "Algebra II", Price: 2500})
	require.NoError(t, err)
	assert.Equal(t, "Algebra II", updated.Title)
	assert.Nil(t, updated.SkillID)

	_, err = f.service.Get(ctx, "missing")
	assert.Equal(t, 404, appErrors.FromError(err).Status)

	_, err = f.service.Update(ctx, "missing", dto.CourseRequest{InstructorID: courseInstructorID, Title: "X", Price: 1})
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestCourseServiceReferenceLists(t *testing.T) {
	f := newCourseFixture()
	skills, err := f.service.ListSkills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", skills[0].Name)

	levels, err := f.service.ListLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Beginner", levels[0].Name)
}
