package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/storage"
)

type instructorRepository interface {
	List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
	FindQualification(ctx context.Context, instructorID string) (*models.InstructorQualification, error)
	QualificationsFor(ctx context.Context, instructorIDs []string) (map[string]models.InstructorQualification, error)
	Create(ctx context.Context, user *models.User, instructor *models.Instructor, qualification *models.InstructorQualification) error
	Update(ctx context.Context, instructor *models.Instructor, qualification *models.InstructorQualification) error
}

type emailRegistry interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
}

type resumeRepository interface {
	FindByInstructorID(ctx context.Context, instructorID string) (*models.InstructorResume, error)
	Upsert(ctx context.Context, resume *models.InstructorResume) error
}

type timeSlotRepository interface {
	Create(ctx context.Context, slot *models.InstructorTimeSlot) error
	ListByInstructor(ctx context.Context, instructorID string) ([]models.TimeSlotDetail, error)
	HasOverlap(ctx context.Context, instructorID string, start, end time.Time) (bool, error)
}

type fileStorage interface {
	SaveStream(name string, r io.Reader, limit int64) (int64, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
}

type fileSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string) (*storage.SignedFile, error)
}

// ResumeConfig bounds resume uploads.
type ResumeConfig struct {
	MaxSizeBytes int64
	AllowedMIMEs []string
	// DownloadPrefix is the API prefix used to build download links, e.g. "/api".
	DownloadPrefix string
}

// ResumeUpload is a file received from a multipart request.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// InstructorService orchestrates instructor profiles, resumes and time slots.
type InstructorService struct {
	repo      instructorRepository
	users     emailRegistry
	resumes   resumeRepository
	slots     timeSlotRepository
	files     fileStorage
	signer    fileSigner
	cfg       ResumeConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstructorService constructs an InstructorService.
func NewInstructorService(repo instructorRepository, users emailRegistry, resumes resumeRepository, slots timeSlotRepository, files fileStorage, signer fileSigner, cfg ResumeConfig, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxSizeBytes <= 0 {
		cfg.MaxSizeBytes = 5 * 1024 * 1024
	}
	return &InstructorService{
		repo:      repo,
		users:     users,
		resumes:   resumes,
		slots:     slots,
		files:     files,
		signer:    signer,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Create registers an instructor with a login account and optional qualification.
func (s *InstructorService) Create(ctx context.Context, req dto.CreateInstructorRequest) (*dto.InstructorDto, error) {
	if err := validationError(s.validator, req, "invalid instructor payload"); err != nil {
		return nil, err
	}
	email := lowerEmail(req.Email)
	if err := s.ensureEmailAvailable(ctx, email, ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	instructor := &models.Instructor{
		Email:    email,
		FullName: req.DisplayName(),
		Phone:    normalizeOptional(req.Phone),
		Headline: normalizeOptional(req.Headline),
		Active:   true,
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     instructor.FullName,
		Role:         models.RoleInstructor,
		Active:       true,
	}
	qualification := qualificationFromRequest(req.Qualification)

	if err := s.repo.Create(ctx, user, instructor, qualification); err != nil {
		return nil, writeError(err, "email already registered", "failed to create instructor")
	}
	s.logger.Info("instructor created", zap.String("instructor_id", instructor.ID))
	return toInstructorDto(instructor, qualification), nil
}

// Get returns an instructor with its qualification.
func (s *InstructorService) Get(ctx context.Context, id string) (*dto.InstructorDto, error) {
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	qualification, err := s.repo.FindQualification(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to load qualification")
	}
	return toInstructorDto(instructor, qualification), nil
}

// List returns instructors plus pagination data.
func (s *InstructorService) List(ctx context.Context, filter models.InstructorFilter) ([]dto.InstructorDto, *models.Pagination, error) {
	instructors, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list instructors")
	}
	ids := make([]string, 0, len(instructors))
	for _, instructor := range instructors {
		ids = append(ids, instructor.ID)
	}
	qualifications, err := s.repo.QualificationsFor(ctx, ids)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load qualifications")
	}

	result := make([]dto.InstructorDto, 0, len(instructors))
	for i := range instructors {
		var qualification *models.InstructorQualification
		if q, ok := qualifications[instructors[i].ID]; ok {
			qualification = &q
		}
		result = append(result, *toInstructorDto(&instructors[i], qualification))
	}
	return result, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Update replaces the mutable fields of an instructor. A nil qualification leaves
// the stored qualification untouched.
func (s *InstructorService) Update(ctx context.Context, id string, req dto.UpdateInstructorRequest) (*dto.InstructorDto, error) {
	if err := validationError(s.validator, req, "invalid instructor payload"); err != nil {
		return nil, err
	}
	instructor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	email := lowerEmail(req.Email)
	if err := s.ensureEmailAvailable(ctx, email, id); err != nil {
		return nil, err
	}

	instructor.Email = email
	instructor.FullName = strings.TrimSpace(req.FullName)
	instructor.Phone = normalizeOptional(req.Phone)
	instructor.Headline = normalizeOptional(req.Headline)
	if req.Active != nil {
		instructor.Active = *req.Active
	}
	qualification := qualificationFromRequest(req.Qualification)

	if err := s.repo.Update(ctx, instructor, qualification); err != nil {
		return nil, writeError(err, "email already registered", "failed to update instructor")
	}
	if qualification == nil {
		return s.Get(ctx, id)
	}
	return toInstructorDto(instructor, qualification), nil
}

// UploadResume stores a resume file and replaces any previous one.
func (s *InstructorService) UploadResume(ctx context.Context, id string, upload ResumeUpload) (*dto.InstructorResumeDto, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resume file is required")
	}
	if upload.Size > s.cfg.MaxSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("resume exceeds %d bytes", s.cfg.MaxSizeBytes))
	}
	mimeType, err := s.allowedMIME(upload.ContentType)
	if err != nil {
		return nil, err
	}

	fileName := sanitizeFilename(upload.FileName)
	relPath := filepath.ToSlash(filepath.Join(id, uuid.NewString()+strings.ToLower(filepath.Ext(fileName))))
	written, err := s.files.SaveStream(relPath, upload.Content, s.cfg.MaxSizeBytes)
	if err != nil {
		return nil, appErrors.Validation(err, "failed to store resume")
	}

	previous, err := s.resumes.FindByInstructorID(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.Warn("failed to load previous resume", zap.String("instructor_id", id), zap.Error(err))
	}

	resume := &models.InstructorResume{
		InstructorID: id,
		FileName:     fileName,
		FilePath:     relPath,
		MimeType:     mimeType,
		SizeBytes:    written,
	}
	if err := s.resumes.Upsert(ctx, resume); err != nil {
		if delErr := s.files.Delete(relPath); delErr != nil {
			s.logger.Warn("failed to remove orphaned resume", zap.String("path", relPath), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "failed to save resume")
	}

	if previous != nil && previous.FilePath != relPath {
		if err := s.files.Delete(previous.FilePath); err != nil {
			s.logger.Warn("failed to remove previous resume", zap.String("path", previous.FilePath), zap.Error(err))
		}
	}
	return s.toResumeDto(resume), nil
}

// GetResume returns resume metadata with a signed download link.
func (s *InstructorService) GetResume(ctx context.Context, id string) (*dto.InstructorResumeDto, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	resume, err := s.resumes.FindByInstructorID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "resume not found", "failed to load resume")
	}
	return s.toResumeDto(resume), nil
}

// OpenResume validates a download token and opens the stored file.
func (s *InstructorService) OpenResume(ctx context.Context, id, token string) (*os.File, *models.InstructorResume, error) {
	signed, err := s.signer.Parse(token)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download token")
	}
	if signed.OwnerID != id {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not match instructor")
	}
	resume, err := s.resumes.FindByInstructorID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(err, "resume not found", "failed to load resume")
	}
	if resume.FilePath != signed.Path {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "resume has been replaced")
	}
	file, err := s.files.Open(resume.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "resume file missing")
		}
		return nil, nil, appErrors.Internal(err, "failed to open resume")
	}
	return file, resume, nil
}

// CreateSlot opens a bookable time window for an instructor.
func (s *InstructorService) CreateSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*dto.TimeSlotDto, error) {
	if err := validationError(s.validator, req, "invalid time slot payload"); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	start, end := req.StartAt.UTC(), req.EndAt.UTC()
	overlap, err := s.slots.HasOverlap(ctx, id, start, end)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check time slots")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "time slot overlaps an existing slot")
	}

	slot := &models.InstructorTimeSlot{InstructorID: id, StartAt: start, EndAt: end}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Internal(err, "failed to create time slot")
	}
	return toTimeSlotDto(models.TimeSlotDetail{InstructorTimeSlot: *slot, Available: true}), nil
}

// ListSlots returns every slot of an instructor with availability.
func (s *InstructorService) ListSlots(ctx context.Context, id string) ([]dto.TimeSlotDto, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, lookupError(err, "instructor not found", "failed to load instructor")
	}
	slots, err := s.slots.ListByInstructor(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list time slots")
	}
	result := make([]dto.TimeSlotDto, 0, len(slots))
	for _, slot := range slots {
		result = append(result, *toTimeSlotDto(slot))
	}
	return result, nil
}

func (s *InstructorService) ensureEmailAvailable(ctx context.Context, email, excludeID string) error {
	exists, err := s.users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check email uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateResource, "email already registered")
	}
	return nil
}

func (s *InstructorService) allowedMIME(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", appErrors.Validation(err, "resume content type is missing or malformed")
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if strings.EqualFold(allowed, mediaType) {
			return mediaType, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("resume type %s is not allowed", mediaType))
}

func (s *InstructorService) toResumeDto(resume *models.InstructorResume) *dto.InstructorResumeDto {
	out := &dto.InstructorResumeDto{
		InstructorID: resume.InstructorID,
		FileName:     resume.FileName,
		MimeType:     resume.MimeType,
		SizeBytes:    resume.SizeBytes,
		UploadedAt:   resume.UploadedAt,
		UpdatedAt:    resume.UpdatedAt,
	}
	if s.signer == nil {
		return out
	}
	token, expiresAt, err := s.signer.Generate(resume.InstructorID, resume.FilePath)
	if err != nil {
		s.logger.Warn("failed to sign resume url", zap.String("instructor_id", resume.InstructorID), zap.Error(err))
		return out
	}
	out.DownloadURL = fmt.Sprintf("%s/instructors/%s/resume/download?token=%s", s.cfg.DownloadPrefix, resume.InstructorID, url.QueryEscape(token))
	out.DownloadExpiresAt = &expiresAt
	return out
}

func qualificationFromRequest(req *dto.QualificationRequest) *models.InstructorQualification {
	if req == nil {
		return nil
	}
	return &models.InstructorQualification{
		Bio:                  normalizeOptional(req.Bio),
		HighestQualification: normalizeOptional(req.HighestQualification),
		RelevantExperience:   req.RelevantExperience,
	}
}

func sanitizeFilename(raw string) string {
	name := filepath.Base(strings.ReplaceAll(raw, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "_" {
		return "resume"
	}
	return name
}
