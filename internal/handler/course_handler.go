package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/middleware"
	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseDto, *models.Pagination, bool, error)
	Get(ctx context.Context, id string) (*dto.CourseDto, error)
	Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseDto, error)
	Update(ctx context.Context, id string, req dto.CourseRequest) (*dto.CourseDto, error)
	SetPublished(ctx context.Context, id string, req dto.PublishRequest) (*dto.CourseDto, error)
	ListSkills(ctx context.Context) ([]models.Skill, error)
	ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error)
}

// CourseHandler exposes the course catalog and reference data.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Description Published courses by default; published=false lists drafts, published=all lists everything
// @Tags Courses
// @Produce json
// @Param instructorId query string false "Filter by instructor"
// @Param published query string false "true, false or all" default(true)
// @Param skillId query int false "Filter by skill"
// @Param levelId query int false "Filter by level"
// @Param search query string false "Search in title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	filter := models.CourseFilter{
		InstructorID: strings.TrimSpace(c.Query("instructorId")),
		Search:       strings.TrimSpace(c.Query("search")),
	}
	if strings.ToLower(c.Query("published")) != "all" {
		filter.Published = boolQuery(c, "published")
		if filter.Published == nil {
			published := true
			filter.Published = &published
		}
	}
	var err error
	if filter.SkillID, err = intQuery(c, "skillId"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.LevelID, err = intQuery(c, "levelId"); err != nil {
		response.Error(c, err)
		return
	}
	filter.Page, filter.PageSize = pageParams(c)

	courses, pagination, hit, err := h.courses.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, courses, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Create godoc
// @Summary Create course
// @Description New courses start unpublished
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid course payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Publish godoc
// @Summary Publish or unpublish course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.PublishRequest true "Publish flag"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/publish [patch]
func (h *CourseHandler) Publish(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid publish payload"))
		return
	}
	course, err := h.courses.SetPublished(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

// Skills godoc
// @Summary List skills
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /skills [get]
func (h *CourseHandler) Skills(c *gin.Context) {
	skills, err := h.courses.ListSkills(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, skills)
}

// Levels godoc
// @Summary List proficiency levels
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /levels [get]
func (h *CourseHandler) Levels(c *gin.Context) {
	levels, err := h.courses.ListLevels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, levels)
}
