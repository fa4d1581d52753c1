package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, user *models.User, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type preferenceRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.StudentPreference, error)
	Upsert(ctx context.Context, pref *models.StudentPreference) error
}

type bankDetailsRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.StudentBankDetails, error)
	Upsert(ctx context.Context, details *models.StudentBankDetails) error
	DeleteByStudentID(ctx context.Context, studentID string) (bool, error)
}

type referenceData interface {
	SkillExists(ctx context.Context, id int) (bool, error)
	LevelExists(ctx context.Context, id int) (bool, error)
}

// StudentService orchestrates student profiles, preferences and bank details.
type StudentService struct {
	repo        studentRepository
	users       emailRegistry
	preferences preferenceRepository
	bank        bankDetailsRepository
	reference   referenceData
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, users emailRegistry, preferences preferenceRepository, bank bankDetailsRepository, reference referenceData, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:        repo,
		users:       users,
		preferences: preferences,
		bank:        bank,
		reference:   reference,
		validator:   validate,
		logger:      logger,
	}
}

// Create registers a student together with a login account.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*dto.StudentDto, error) {
	if err := validationError(s.validator, req, "invalid student payload"); err != nil {
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

	student := &models.Student{
		Email:    email,
		FullName: req.DisplayName(),
		Phone:    normalizeOptional(req.Phone),
		Active:   true,
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     student.FullName,
		Role:         models.RoleStudent,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user, student); err != nil {
		return nil, writeError(err, "email already registered", "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return toStudentDto(student), nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*dto.StudentDto, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return toStudentDto(student), nil
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]dto.StudentDto, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	result := make([]dto.StudentDto, 0, len(students))
	for i := range students {
		result = append(result, *toStudentDto(&students[i]))
	}
	return result, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Update replaces the mutable fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*dto.StudentDto, error) {
	if err := validationError(s.validator, req, "invalid student payload"); err != nil {
		return nil, err
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	email := lowerEmail(req.Email)
	if err := s.ensureEmailAvailable(ctx, email, id); err != nil {
		return nil, err
	}

	student.Email = email
	student.FullName = strings.TrimSpace(req.FullName)
	student.Phone = normalizeOptional(req.Phone)
	if req.Active != nil {
		student.Active = *req.Active
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, writeError(err, "email already registered", "failed to update student")
	}
	return toStudentDto(student), nil
}

// SavePreference creates or replaces the learning preference of a student.
func (s *StudentService) SavePreference(ctx context.Context, studentID string, req dto.StudentPreferenceDto) (*dto.StudentPreferenceDto, error) {
	if err := validationError(s.validator, req, "invalid preference payload"); err != nil {
		return nil, err
	}
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.PreferredSkillIDs, req.PreferredLevelID); err != nil {
		return nil, err
	}

	skills := dedupeInts(req.PreferredSkillIDs)
	encoded, err := json.Marshal(skills)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to encode preferred skills")
	}
	pref := &models.StudentPreference{
		StudentID:         studentID,
		LearningGoals:     normalizeOptional(req.LearningGoals),
		PreferredSkillIDs: encoded,
		PreferredLevelID:  req.PreferredLevelID,
		LearningMode:      normalizeOptional(req.LearningMode),
		PreferredLanguage: normalizeOptional(req.PreferredLanguage),
	}
	if err := s.preferences.Upsert(ctx, pref); err != nil {
		return nil, writeError(err, "preference already exists", "failed to save preference")
	}
	return toPreferenceDto(pref), nil
}

// GetPreference returns the stored preference of a student.
func (s *StudentService) GetPreference(ctx context.Context, studentID string) (*dto.StudentPreferenceDto, error) {
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	pref, err := s.preferences.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "preference not found", "failed to load preference")
	}
	return toPreferenceDto(pref), nil
}

// SaveBankDetails creates or replaces the bank account of a student.
func (s *StudentService) SaveBankDetails(ctx context.Context, studentID string, req dto.StudentBankDetailsDto) (*dto.StudentBankDetailsDto, error) {
	if err := validationError(s.validator, req, "invalid bank details payload"); err != nil {
		return nil, err
	}
	if err := s.ensureStudent(ctx, studentID); err != nil {
		return nil, err
	}
	details := &models.StudentBankDetails{
		StudentID:         studentID,
		AccountHolderName: strings.TrimSpace(req.AccountHolderName),
		BankName:          strings.TrimSpace(req.BankName),
		AccountNumber:     strings.TrimSpace(req.AccountNumber),
		IFSCCode:          strings.ToUpper(strings.TrimSpace(req.IFSCCode)),
		AccountType:       normalizeOptional(req.AccountType),
		BranchName:        normalizeOptional(req.BranchName),
	}
	if err := s.bank.Upsert(ctx, details); err != nil {
		return nil, writeError(err, "bank details already exist", "failed to save bank details")
	}
	return toBankDetailsDto(details), nil
}

// GetBankDetails returns the bank account of a student.
func (s *StudentService) GetBankDetails(ctx context.Context, studentID string) (*dto.StudentBankDetailsDto, error) {
	details, err := s.bank.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "bank details not found", "failed to load bank details")
	}
	return toBankDetailsDto(details), nil
}

// DeleteBankDetails removes the bank account of a student.
func (s *StudentService) DeleteBankDetails(ctx context.Context, studentID string) error {
	deleted, err := s.bank.DeleteByStudentID(ctx, studentID)
	if err != nil {
		return appErrors.Internal(err, "failed to delete bank details")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "bank details not found")
	}
	return nil
}

func (s *StudentService) ensureStudent(ctx context.Context, id string) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return appErrors.Internal(err, "failed to load student")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return nil
}

func (s *StudentService) ensureEmailAvailable(ctx context.Context, email, excludeID string) error {
	exists, err := s.users.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check email uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicateResource, "email already registered")
	}
	return nil
}

func (s *StudentService) checkReferences(ctx context.Context, skillIDs []int, levelID *int) error {
	if s.reference == nil {
		return nil
	}
	for _, id := range skillIDs {
		ok, err := s.reference.SkillExists(ctx, id)
		if err != nil {
			return appErrors.Internal(err, "failed to check skill")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown skill %d", id))
		}
	}
	if levelID != nil {
		ok, err := s.reference.LevelExists(ctx, *levelID)
		if err != nil {
			return appErrors.Internal(err, "failed to check level")
		}
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown level %d", *levelID))
		}
	}
	return nil
}

func dedupeInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
