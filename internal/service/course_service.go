package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

const catalogCachePattern = "catalog:*"

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	SetPublished(ctx context.Context, id string, published bool) error
	SkillExists(ctx context.Context, id int) (bool, error)
	LevelExists(ctx context.Context, id int) (bool, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
	ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error)
}

type instructorLookup interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type cachedCoursePage struct {
	Items      []dto.CourseDto    `json:"items"`
	Pagination *models.Pagination `json:"pagination"`
}

// CourseService manages courses and the published catalog.
type CourseService struct {
	repo        courseRepository
	instructors instructorLookup
	cache       catalogCache
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseService constructs a CourseService. cache may be nil.
func NewCourseService(repo courseRepository, instructors instructorLookup, cache catalogCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		repo:        repo,
		instructors: instructors,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger,
	}
}

// List returns courses matching filter. Published catalog pages are served from cache when possible;
// the returned bool reports a cache hit.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseDto, *models.Pagination, bool, error) {
	cacheable := s.cache != nil && filter.InstructorID == "" && filter.Published != nil && *filter.Published
	key := catalogKey(filter)
	if cacheable {
		var cached cachedCoursePage
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return cached.Items, cached.Pagination, true, nil
		}
	}

	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Internal(err, "failed to list courses")
	}
	items := make([]dto.CourseDto, 0, len(courses))
	for i := range courses {
		items = append(items, *toCourseDto(&courses[i]))
	}
	pagination := paginationFor(filter.Page, filter.PageSize, total)

	if cacheable {
		_ = s.cache.Set(ctx, key, cachedCoursePage{Items: items, Pagination: pagination}, s.cacheTTL)
	}
	return items, pagination, false, nil
}

// ListByInstructor returns every course of an instructor.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID string) ([]dto.CourseDto, error) {
	if err := s.ensureInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	items, _, _, err := s.List(ctx, models.CourseFilter{InstructorID: instructorID, PageSize: 100})
	return items, err
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*dto.CourseDto, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	return toCourseDto(course), nil
}

// Create adds an unpublished course.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseDto, error) {
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	course := &models.Course{IsPublished: false}
	applyCourseRequest(course, req)
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, writeError(err, "course already exists", "failed to create course")
	}
	s.invalidate(ctx)
	return s.Get(ctx, course.ID)
}

// Update replaces the editable fields of a course.
func (s *CourseService) Update(ctx context.Context, id string, req dto.CourseRequest) (*dto.CourseDto, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if err := s.validateRequest(ctx, req); err != nil {
		return nil, err
	}
	course := existing.Course
	applyCourseRequest(&course, req)
	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, writeError(err, "course already exists", "failed to update course")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// SetPublished toggles catalog visibility.
func (s *CourseService) SetPublished(ctx context.Context, id string, req dto.PublishRequest) (*dto.CourseDto, error) {
	if err := validationError(s.validator, req, "invalid publish payload"); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "course not found", "failed to load course")
	}
	if err := s.repo.SetPublished(ctx, id, *req.Published); err != nil {
		return nil, appErrors.Internal(err, "failed to publish course")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// ListSkills returns the skill reference list.
func (s *CourseService) ListSkills(ctx context.Context) ([]models.Skill, error) {
	skills, err := s.repo.ListSkills(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skills")
	}
	return skills, nil
}

// ListLevels returns the proficiency level reference list.
func (s *CourseService) ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error) {
	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list levels")
	}
	return levels, nil
}

func (s *CourseService) validateRequest(ctx context.Context, req dto.CourseRequest) error {
	if err := validationError(s.validator, req, "invalid course payload"); err != nil {
		return err
	}
	if strings.TrimSpace(req.Title) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if err := s.ensureInstructor(ctx, req.InstructorID); err != nil {
		return err
	}
	if req.SkillID != nil {
		ok, err := s.repo.SkillExists(ctx, *req.SkillID)
		if err != nil {
			return appErrors.Internal(err, "failed to check skill")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "skill not found")
		}
	}
	if req.LevelID != nil {
		ok, err := s.repo.LevelExists(ctx, *req.LevelID)
		if err != nil {
			return appErrors.Internal(err, "failed to check level")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "level not found")
		}
	}
	return nil
}

func (s *CourseService) ensureInstructor(ctx context.Context, id string) error {
	if _, err := s.instructors.FindByID(ctx, id); err != nil {
		return lookupError(err, "instructor not found", "failed to load instructor")
	}
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, catalogCachePattern); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func applyCourseRequest(course *models.Course, req dto.CourseRequest) {
	course.InstructorID = req.InstructorID
	course.Title = strings.TrimSpace(req.Title)
	course.Description = normalizeOptional(req.Description)
	course.SkillID = req.SkillID
	course.Price = math.Round(req.Price*100) / 100
	course.Duration = req.Duration
	course.LevelID = req.LevelID
}

func catalogKey(filter models.CourseFilter) string {
	p := models.Pagination{Page: filter.Page, PageSize: filter.PageSize}.Normalize()
	return fmt.Sprintf("catalog:courses:p%d:n%d:skill%s:level%s:q%s",
		p.Page, p.PageSize, intKey(filter.SkillID), intKey(filter.LevelID), strings.ToLower(strings.TrimSpace(filter.Search)))
}

func intKey(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
