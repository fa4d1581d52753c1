package handler

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/internal/service"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/response"
)

type instructorService interface {
	Create(ctx context.Context, req dto.CreateInstructorRequest) (*dto.InstructorDto, error)
	Get(ctx context.Context, id string) (*dto.InstructorDto, error)
	List(ctx context.Context, filter models.InstructorFilter) ([]dto.InstructorDto, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateInstructorRequest) (*dto.InstructorDto, error)
	UploadResume(ctx context.Context, id string, upload service.ResumeUpload) (*dto.InstructorResumeDto, error)
	GetResume(ctx context.Context, id string) (*dto.InstructorResumeDto, error)
	OpenResume(ctx context.Context, id, token string) (*os.File, *models.InstructorResume, error)
	CreateSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*dto.TimeSlotDto, error)
	ListSlots(ctx context.Context, id string) ([]dto.TimeSlotDto, error)
}

type instructorCourses interface {
	ListByInstructor(ctx context.Context, instructorID string) ([]dto.CourseDto, error)
}

// InstructorHandler exposes instructor profile, resume and slot endpoints.
type InstructorHandler struct {
	instructors instructorService
	courses     instructorCourses
}

// NewInstructorHandler constructs InstructorHandler.
func NewInstructorHandler(instructors instructorService, courses instructorCourses) *InstructorHandler {
	return &InstructorHandler{instructors: instructors, courses: courses}
}

// List godoc
// @Summary List instructors
// @Tags Instructors
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /instructors [get]
func (h *InstructorHandler) List(c *gin.Context) {
	filter := models.InstructorFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Active: boolQuery(c, "active"),
	}
	filter.Page, filter.PageSize = pageParams(c)

	instructors, pagination, err := h.instructors.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, pagination)
}

// Get godoc
// @Summary Get instructor detail
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id} [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	instructor, err := h.instructors.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// Create godoc
// @Summary Create instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param payload body dto.CreateInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors [post]
func (h *InstructorHandler) Create(c *gin.Context) {
	var req dto.CreateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid instructor payload"))
		return
	}
	instructor, err := h.instructors.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, instructor)
}

// Update godoc
// @Summary Update instructor
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body dto.UpdateInstructorRequest true "Instructor payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors/{id} [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid instructor payload"))
		return
	}
	instructor, err := h.instructors.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, instructor)
}

// UploadResume godoc
// @Summary Upload instructor resume
// @Tags Instructors
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Instructor ID"
// @Param file formData file true "Resume document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/resume [post]
func (h *InstructorHandler) UploadResume(c *gin.Context) {
	h.storeResume(c, http.StatusCreated)
}

// ReplaceResume godoc
// @Summary Replace instructor resume
// @Tags Instructors
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Instructor ID"
// @Param file formData file true "Resume document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/resume [put]
func (h *InstructorHandler) ReplaceResume(c *gin.Context) {
	h.storeResume(c, http.StatusOK)
}

func (h *InstructorHandler) storeResume(c *gin.Context, status int) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, bindError(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close()

	resume, err := h.instructors.UploadResume(c.Request.Context(), id, service.ResumeUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, status, resume, nil)
}

// GetResume godoc
// @Summary Get resume metadata
// @Description Returns resume metadata with a signed download link
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/resume [get]
func (h *InstructorHandler) GetResume(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	resume, err := h.instructors.GetResume(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, resume)
}

// DownloadResume godoc
// @Summary Download resume file
// @Tags Instructors
// @Produce octet-stream
// @Param id path string true "Instructor ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/resume/download [get]
func (h *InstructorHandler) DownloadResume(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, resume, err := h.instructors.OpenResume(c.Request.Context(), id, c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": resume.FileName})
	if disposition == "" {
		disposition = fmt.Sprintf("attachment; filename=%q", "resume")
	}
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, resume.SizeBytes, resume.MimeType, file, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Courses godoc
// @Summary List instructor courses
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/courses [get]
func (h *InstructorHandler) Courses(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	courses, err := h.courses.ListByInstructor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses)
}

// CreateSlot godoc
// @Summary Publish a bookable time slot
// @Tags Instructors
// @Accept json
// @Produce json
// @Param id path string true "Instructor ID"
// @Param payload body dto.TimeSlotRequest true "Slot window"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructors/{id}/slots [post]
func (h *InstructorHandler) CreateSlot(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid time slot payload"))
		return
	}
	slot, err := h.instructors.CreateSlot(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// ListSlots godoc
// @Summary List instructor time slots
// @Tags Instructors
// @Produce json
// @Param id path string true "Instructor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructors/{id}/slots [get]
func (h *InstructorHandler) ListSlots(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	slots, err := h.instructors.ListSlots(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}
