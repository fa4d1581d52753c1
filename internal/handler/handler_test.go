package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/middleware"
	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/internal/service"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
)

const (
	testStudentID    = "5b0c7d1e-2f3a-4b5c-8d6e-7f8091a2b3c4"
	testInstructorID = "0f1e2d3c-4b5a-4968-8776-a5b4c3d2e1f0"
	testPaymentID    = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f2a3b4c5d"
	testBookingID    = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
	testEnrollmentID = "e5f4d3c2-b1a0-4987-b654-3210fedcba98"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type envelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      *appErrors.Error       `json:"error"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type studentServiceMock struct {
	created   dto.CreateStudentRequest
	createErr error
	deleteErr error
	listed    models.StudentFilter
}

func (m *studentServiceMock) Create(ctx context.Context, req dto.CreateStudentRequest) (*dto.StudentDto, error) {
	m.created = req
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &dto.StudentDto{StudentID: "s1", Email: req.Email, FullName: req.DisplayName(), Active: true}, nil
}

func (m *studentServiceMock) Get(ctx context.Context, id string) (*dto.StudentDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func (m *studentServiceMock) List(ctx context.Context, filter models.StudentFilter) ([]dto.StudentDto, *models.Pagination, error) {
	m.listed = filter
	return []dto.StudentDto{}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (m *studentServiceMock) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*dto.StudentDto, error) {
	return &dto.StudentDto{StudentID: id}, nil
}

func (m *studentServiceMock) SavePreference(ctx context.Context, studentID string, req dto.StudentPreferenceDto) (*dto.StudentPreferenceDto, error) {
	req.StudentID = studentID
	return &req, nil
}

func (m *studentServiceMock) GetPreference(ctx context.Context, studentID string) (*dto.StudentPreferenceDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "preference not found")
}

func (m *studentServiceMock) SaveBankDetails(ctx context.Context, studentID string, req dto.StudentBankDetailsDto) (*dto.StudentBankDetailsDto, error) {
	req.StudentID = studentID
	return &req, nil
}

func (m *studentServiceMock) GetBankDetails(ctx context.Context, studentID string) (*dto.StudentBankDetailsDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "bank details not found")
}

func (m *studentServiceMock) DeleteBankDetails(ctx context.Context, studentID string) error {
	return m.deleteErr
}

func TestStudentHandlerCreate(t *testing.T) {
	mock := &studentServiceMock{}
	h := NewStudentHandler(mock)

	body, _ := json.Marshal(dto.CreateStudentRequest{Email: "a@example.com", Password: "password123", FullName: "Asha"})
	c, w := newGinContext(http.MethodPost, "/students", body)
	h.Create(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "a@example.com", mock.created.Email)

	mock.createErr = appErrors.Clone(appErrors.ErrDuplicateResource, "email already registered")
	c, w = newGinContext(http.MethodPost, "/students", body)
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_RESOURCE", decode(t, w).Error.Code)

	c, w = newGinContext(http.MethodPost, "/students", []byte(`{bad`))
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerCreateAcceptsNameWithoutPassword(t *testing.T) {
	mock := &studentServiceMock{}
	h := NewStudentHandler(mock)

	c, w := newGinContext(http.MethodPost, "/students", []byte(`{"name":"A","email":"a@x.com"}`))
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "A", mock.created.Name)
	assert.Empty(t, mock.created.Password)
	assert.Contains(t, string(decode(t, w).Data), `"fullName":"A"`)

	mock.createErr = appErrors.Clone(appErrors.ErrDuplicateResource, "email already registered")
	c, w = newGinContext(http.MethodPost, "/students", []byte(`{"name":"A","email":"a@x.com"}`))
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStudentHandlerListParsesQuery(t *testing.T) {
	mock := &studentServiceMock{}
	h := NewStudentHandler(mock)

	c, w := newGinContext(http.MethodGet, "/students?search=asha&active=false&page=2&limit=5", nil)
	h.List(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha", mock.listed.Search)
	require.NotNil(t, mock.listed.Active)
	assert.False(t, *mock.listed.Active)
	assert.Equal(t, 2, mock.listed.Page)
	assert.Equal(t, 5, mock.listed.PageSize)
	assert.Equal(t, 2, decode(t, w).Pagination.Page)
}

func TestStudentHandlerBankDetails(t *testing.T) {
	mock := &studentServiceMock{}
	h := NewStudentHandler(mock)

	c, w := newGinContext(http.MethodDelete, "/students/"+testStudentID+"/bankDetails", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.DeleteBankDetails(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bank details deleted successfully")

	mock.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "bank details not found")
	c, w = newGinContext(http.MethodDelete, "/students/"+testStudentID+"/bankDetails", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.DeleteBankDetails(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newGinContext(http.MethodGet, "/students/"+testStudentID+"/bankDetails", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.GetBankDetails(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newGinContext(http.MethodGet, "/students/"+testStudentID+"/preferences", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.GetPreference(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type paymentServiceMock struct {
	studentID string
	receipt   string
}

func (m *paymentServiceMock) Create(ctx context.Context, studentID string, req dto.StudentPaymentDto) (*dto.StudentPaymentDto, error) {
	m.studentID = studentID
	req.StudentID = studentID
	req.PaymentID = "p1"
	return &req, nil
}

func (m *paymentServiceMock) Get(ctx context.Context, paymentID string) (*dto.StudentPaymentDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
}

func (m *paymentServiceMock) List(ctx context.Context, studentID string) ([]dto.StudentPaymentDto, error) {
	return []dto.StudentPaymentDto{}, nil
}

func (m *paymentServiceMock) Export(ctx context.Context, studentID, format string) (*service.Statement, error) {
	if format != "csv" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.Statement{Filename: "payments-" + studentID + ".csv", ContentType: "text/csv", Content: []byte("payment_id\n")}, nil
}

func (m *paymentServiceMock) OpenReceipt(ctx context.Context, paymentID string) (*os.File, error) {
	if m.receipt == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
	}
	return os.Open(m.receipt)
}

func TestPaymentHandlerUsesPathStudent(t *testing.T) {
	mock := &paymentServiceMock{}
	h := NewPaymentHandler(mock)

	body, _ := json.Marshal(dto.StudentPaymentDto{StudentID: "other", Amount: 10, Method: "cash"})
	c, w := newGinContext(http.MethodPost, "/students/"+testStudentID+"/payments", body)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.Create(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testStudentID, mock.studentID)

	c, w = newGinContext(http.MethodGet, "/students/payments/"+testPaymentID, nil)
	c.Params = gin.Params{{Key: "paymentId", Value: testPaymentID}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandlerExportAndReceipt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3 test"), 0o644))
	mock := &paymentServiceMock{}
	h := NewPaymentHandler(mock)

	c, w := newGinContext(http.MethodGet, "/students/"+testStudentID+"/payments/export", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.Export(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "payments-"+testStudentID+".csv")

	c, w = newGinContext(http.MethodGet, "/students/"+testStudentID+"/payments/export?format=xlsx", nil)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/students/payments/"+testPaymentID+"/receipt", nil)
	c.Params = gin.Params{{Key: "paymentId", Value: testPaymentID}}
	h.Receipt(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	mock.receipt = path
	c, w = newGinContext(http.MethodGet, "/students/payments/"+testPaymentID+"/receipt", nil)
	c.Params = gin.Params{{Key: "paymentId", Value: testPaymentID}}
	h.Receipt(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3 test", w.Body.String())
}

type instructorServiceMock struct {
	upload  service.ResumeUpload
	content []byte
	file    string
}

func (m *instructorServiceMock) Create(ctx context.Context, req dto.CreateInstructorRequest) (*dto.InstructorDto, error) {
	return &dto.InstructorDto{InstructorID: "i1", Email: req.Email}, nil
}

func (m *instructorServiceMock) Get(ctx context.Context, id string) (*dto.InstructorDto, error) {
	return &dto.InstructorDto{InstructorID: id}, nil
}

func (m *instructorServiceMock) List(ctx context.Context, filter models.InstructorFilter) ([]dto.InstructorDto, *models.Pagination, error) {
	return nil, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *instructorServiceMock) Update(ctx context.Context, id string, req dto.UpdateInstructorRequest) (*dto.InstructorDto, error) {
	return &dto.InstructorDto{InstructorID: id}, nil
}

func (m *instructorServiceMock) UploadResume(ctx context.Context, id string, upload service.ResumeUpload) (*dto.InstructorResumeDto, error) {
	m.upload = upload
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(upload.Content)
	m.content = buf.Bytes()
	return &dto.InstructorResumeDto{InstructorID: id, FileName: upload.FileName, MimeType: upload.ContentType, SizeBytes: upload.Size}, nil
}

func (m *instructorServiceMock) GetResume(ctx context.Context, id string) (*dto.InstructorResumeDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "resume not found")
}

func (m *instructorServiceMock) OpenResume(ctx context.Context, id, token string) (*os.File, *models.InstructorResume, error) {
	if token != "valid" {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download token")
	}
	file, err := os.Open(m.file)
	if err != nil {
		return nil, nil, err
	}
	info, _ := file.Stat()
	return file, &models.InstructorResume{InstructorID: id, FileName: "cv.pdf", MimeType: "application/pdf", SizeBytes: info.Size()}, nil
}

func (m *instructorServiceMock) CreateSlot(ctx context.Context, id string, req dto.TimeSlotRequest) (*dto.TimeSlotDto, error) {
	return &dto.TimeSlotDto{SlotID: "slot-1", InstructorID: id, StartAt: req.StartAt, EndAt: req.EndAt, Available: true}, nil
}

func (m *instructorServiceMock) ListSlots(ctx context.Context, id string) ([]dto.TimeSlotDto, error) {
	return []dto.TimeSlotDto{}, nil
}

type coursesByInstructorMock struct{}

func (coursesByInstructorMock) ListByInstructor(ctx context.Context, instructorID string) ([]dto.CourseDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
}

func multipartRequest(t *testing.T, method, path, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if field != "" {
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
		header["Content-Type"] = []string{contentType}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestInstructorHandlerResumeUploadStatuses(t *testing.T) {
	mock := &instructorServiceMock{}
	h := NewInstructorHandler(mock, coursesByInstructorMock{})
	router := gin.New()
	router.POST("/instructors/:id/resume", h.UploadResume)
	router.PUT("/instructors/:id/resume", h.ReplaceResume)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/instructors/"+testInstructorID+"/resume", "file", "cv.pdf", "application/pdf", []byte("%PDF-1.4")))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "cv.pdf", mock.upload.FileName)
	assert.Equal(t, "application/pdf", mock.upload.ContentType)
	assert.Equal(t, int64(8), mock.upload.Size)
	assert.Equal(t, []byte("%PDF-1.4"), mock.content)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, http.MethodPut, "/instructors/"+testInstructorID+"/resume", "file", "cv2.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, multipartRequest(t, http.MethodPost, "/instructors/"+testInstructorID+"/resume", "", "", "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstructorHandlerDownloadResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-resume"), 0o644))
	h := NewInstructorHandler(&instructorServiceMock{file: path}, coursesByInstructorMock{})
	router := gin.New()
	router.GET("/instructors/:id/resume/download", h.DownloadResume)
	router.GET("/instructors/:id/resume", h.GetResume)
	router.GET("/instructors/:id/courses", h.Courses)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/instructors/"+testInstructorID+"/resume/download?token=valid", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-resume", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename=cv.pdf`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/instructors/"+testInstructorID+"/resume/download?token=forged", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/instructors/"+testInstructorID+"/resume", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/instructors/"+testInstructorID+"/courses", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type courseServiceMock struct {
	filter models.CourseFilter
	hit    bool
}

func (m *courseServiceMock) List(ctx context.Context, filter models.CourseFilter) ([]dto.CourseDto, *models.Pagination, bool, error) {
	m.filter = filter
	return []dto.CourseDto{{CourseID: "c1", Title: "Algebra"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, m.hit, nil
}

func (m *courseServiceMock) Get(ctx context.Context, id string) (*dto.CourseDto, error) {
	return &dto.CourseDto{CourseID: id}, nil
}

func (m *courseServiceMock) Create(ctx context.Context, req dto.CourseRequest) (*dto.CourseDto, error) {
	return &dto.CourseDto{CourseID: "c1", Title: req.Title}, nil
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req dto.CourseRequest) (*dto.CourseDto, error) {
	return &dto.CourseDto{CourseID: id, Title: req.Title}, nil
}

func (m *courseServiceMock) SetPublished(ctx context.Context, id string, req dto.PublishRequest) (*dto.CourseDto, error) {
	return &dto.CourseDto{CourseID: id, IsPublished: *req.Published}, nil
}

func (m *courseServiceMock) ListSkills(ctx context.Context) ([]models.Skill, error) {
	return []models.Skill{{ID: 1, Name: "Mathematics"}}, nil
}

func (m *courseServiceMock) ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error) {
	return nil, errors.New("db down")
}

func TestCourseHandlerListDefaultsToPublishedCatalog(t *testing.T) {
	mock := &courseServiceMock{hit: true}
	h := NewCourseHandler(mock)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	router.GET("/courses", h.List)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses?skillId=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.filter.Published)
	assert.True(t, *mock.filter.Published)
	require.NotNil(t, mock.filter.SkillID)
	assert.Equal(t, 1, *mock.filter.SkillID)
	assert.Equal(t, true, decode(t, w).Meta["cache_hit"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses?published=all", nil))
	assert.Nil(t, mock.filter.Published)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses?levelId=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseHandlerReferenceData(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{})

	c, w := newGinContext(http.MethodGet, "/skills", nil)
	h.Skills(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/levels", nil)
	h.Levels(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type bookingServiceMock struct{}

func (bookingServiceMock) Create(ctx context.Context, studentID string, req dto.CreateBookingRequest) (*dto.BookingDto, error) {
	return nil, appErrors.Clone(appErrors.ErrConflict, "time slot already booked")
}

func (bookingServiceMock) Get(ctx context.Context, id string) (*dto.BookingDto, error) {
	return &dto.BookingDto{BookingID: id, Status: "pending"}, nil
}

func (bookingServiceMock) ListByStudent(ctx context.Context, studentID string) ([]dto.BookingDto, error) {
	return []dto.BookingDto{}, nil
}

func (bookingServiceMock) UpdateStatus(ctx context.Context, id string, req dto.UpdateBookingStatusRequest) (*dto.BookingDto, error) {
	return &dto.BookingDto{BookingID: id, Status: req.Status}, nil
}

func TestBookingHandler(t *testing.T) {
	h := NewBookingHandler(bookingServiceMock{})

	body, _ := json.Marshal(dto.CreateBookingRequest{SlotID: "3d4f9a2b-7c1e-4e2a-8b6d-5f0a1b2c3d4e"})
	c, w := newGinContext(http.MethodPost, "/students/"+testStudentID+"/bookings", body)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	body, _ = json.Marshal(dto.UpdateBookingStatusRequest{Status: "confirmed"})
	c, w = newGinContext(http.MethodPatch, "/bookings/"+testBookingID+"/status", body)
	c.Params = gin.Params{{Key: "id", Value: testBookingID}}
	h.UpdateStatus(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"confirmed"`)
}

type enrollmentServiceMock struct{}

func (enrollmentServiceMock) Enroll(ctx context.Context, studentID string, req dto.EnrollRequest) (*dto.EnrollmentDto, error) {
	return &dto.EnrollmentDto{EnrollmentID: "e1", StudentID: studentID, CourseID: req.CourseID, Status: "active"}, nil
}

func (enrollmentServiceMock) Get(ctx context.Context, id string) (*dto.EnrollmentDto, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
}

func (enrollmentServiceMock) ListByStudent(ctx context.Context, studentID string) ([]dto.EnrollmentDto, error) {
	return []dto.EnrollmentDto{}, nil
}

func (enrollmentServiceMock) Update(ctx context.Context, id string, req dto.UpdateEnrollmentRequest) (*dto.EnrollmentDto, error) {
	return nil, appErrors.Clone(appErrors.ErrConflict, "enrollment is completed")
}

func TestEnrollmentHandler(t *testing.T) {
	h := NewEnrollmentHandler(enrollmentServiceMock{})

	body, _ := json.Marshal(dto.EnrollRequest{CourseID: "8e2b1c4d-6a5f-4e3d-9c2b-1a0f9e8d7c6b"})
	c, w := newGinContext(http.MethodPost, "/students/"+testStudentID+"/enrollments", body)
	c.Params = gin.Params{{Key: "id", Value: testStudentID}}
	h.Enroll(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newGinContext(http.MethodPatch, "/enrollments/"+testEnrollmentID, []byte(`{"progress":50}`))
	c.Params = gin.Params{{Key: "id", Value: testEnrollmentID}}
	h.Update(c)
	assert.Equal(t, http.StatusConflict, w.Code)

	c, w = newGinContext(http.MethodGet, "/enrollments/"+testEnrollmentID, nil)
	c.Params = gin.Params{{Key: "id", Value: testEnrollmentID}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type authServiceMock struct{}

func (authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Password != "password" {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.LoginResponse{AccessToken: "token", TokenType: "Bearer"}, nil
}

func (authServiceMock) Me(ctx context.Context, claims *models.JWTClaims) (*models.UserInfo, error) {
	return &models.UserInfo{ID: claims.UserID, Role: claims.Role}, nil
}

func TestAuthHandler(t *testing.T) {
	h := NewAuthHandler(authServiceMock{})

	c, w := newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@example.com","password":"nope"}`))
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodPost, "/auth/login", []byte(`{"email":"a@example.com","password":"password"}`))
	h.Login(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/auth/me", nil)
	h.Me(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newGinContext(http.MethodGet, "/auth/me", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleStudent})
	h.Me(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"u1"`)
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func TestMetricsHandlerReadiness(t *testing.T) {
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{}).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newGinContext(http.MethodGet, "/ready", nil)
	NewMetricsHandler(nil, pingerStub{err: errors.New("connection refused")}).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	c, w = newGinContext(http.MethodGet, "/metrics", nil)
	NewMetricsHandler(nil, nil).Prometheus(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")

	c, w = newGinContext(http.MethodGet, "/health", nil)
	NewMetricsHandler(nil, nil).Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMalformedPathIDsAreNotFound(t *testing.T) {
	students := NewStudentHandler(&studentServiceMock{})
	payments := NewPaymentHandler(&paymentServiceMock{})
	instructors := NewInstructorHandler(&instructorServiceMock{}, coursesByInstructorMock{})
	courses := NewCourseHandler(&courseServiceMock{})
	bookings := NewBookingHandler(bookingServiceMock{})
	enrollments := NewEnrollmentHandler(enrollmentServiceMock{})

	router := gin.New()
	router.GET("/students/:id", students.Get)
	router.GET("/students/:id/preferences", students.GetPreference)
	router.GET("/students/:id/bankDetails", students.GetBankDetails)
	router.GET("/students/:id/payments", payments.List)
	router.GET("/students/payments/:paymentId", payments.Get)
	router.GET("/students/payments/:paymentId/receipt", payments.Receipt)
	router.GET("/instructors/:id", instructors.Get)
	router.GET("/instructors/:id/resume", instructors.GetResume)
	router.GET("/instructors/:id/courses", instructors.Courses)
	router.GET("/courses/:id", courses.Get)
	router.GET("/bookings/:id", bookings.Get)
	router.GET("/enrollments/:id", enrollments.Get)

	paths := []string{
		"/students/123",
		"/students/s1/preferences",
		"/students/abc/bankDetails",
		"/students/1/payments",
		"/students/payments/p9",
		"/students/payments/p1/receipt",
		"/instructors/123",
		"/instructors/i1/resume",
		"/instructors/i1/courses",
		"/courses/42",
		"/bookings/b1",
		"/enrollments/e1",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/instructors/"+testInstructorID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
