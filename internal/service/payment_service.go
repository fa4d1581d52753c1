package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/export"
	"github.com/noah-isme/tap-api/pkg/jobs"
	"github.com/noah-isme/tap-api/pkg/payment"
)

// JobTypeReceipt identifies receipt rendering jobs.
const JobTypeReceipt = "payment_receipt"

type paymentRepository interface {
	Create(ctx context.Context, payment *models.StudentPayment) error
	FindByID(ctx context.Context, id string) (*models.StudentPayment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentPayment, error)
	SetReceiptPath(ctx context.Context, id, path string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type fileOpener interface {
	Open(name string) (*os.File, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// PaymentConfig configures payment defaults.
type PaymentConfig struct {
	Currency string
	// LinkPrefix is the API prefix used to build receipt links, e.g. "/api".
	LinkPrefix string
}

// Statement is a rendered payment history document.
type Statement struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PaymentService records student payments and serves statements and receipts.
type PaymentService struct {
	repo      paymentRepository
	students  studentLookup
	gateway   payment.Gateway
	receipts  jobEnqueuer
	files     fileOpener
	csv       csvRenderer
	pdf       pdfRenderer
	cfg       PaymentConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService. gateway, receipts and files may be nil.
func NewPaymentService(repo paymentRepository, students studentLookup, gateway payment.Gateway, receipts jobEnqueuer, files fileOpener, csv csvRenderer, pdf pdfRenderer, cfg PaymentConfig, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &PaymentService{
		repo:      repo,
		students:  students,
		gateway:   gateway,
		receipts:  receipts,
		files:     files,
		csv:       csv,
		pdf:       pdf,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create records a payment for studentID. Any student id in the body is ignored.
func (s *PaymentService) Create(ctx context.Context, studentID string, req dto.StudentPaymentDto) (*dto.StudentPaymentDto, error) {
	if err := validationError(s.validator, req, "invalid payment payload"); err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.cfg.Currency
	}
	record := &models.StudentPayment{
		ID:          uuid.NewString(),
		StudentID:   student.ID,
		Amount:      req.Amount,
		Currency:    currency,
		Method:      req.Method,
		Status:      req.Status,
		CourseID:    normalizeOptional(req.CourseID),
		BookingID:   normalizeOptional(req.BookingID),
		Description: normalizeOptional(req.Description),
		Reference:   normalizeOptional(req.Reference),
	}

	if record.Method == models.PaymentMethodGateway {
		if err := s.attachCheckout(ctx, student, record); err != nil {
			return nil, err
		}
	}
	if record.Status == "" {
		record.Status = models.PaymentStatusCompleted
	}
	if record.Status == models.PaymentStatusCompleted {
		paidAt := s.now().UTC()
		if req.PaidAt != nil {
			paidAt = req.PaidAt.UTC()
		}
		record.PaidAt = &paidAt
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, writeError(err, "payment already recorded", "failed to create payment")
	}
	s.logger.Info("payment recorded",
		zap.String("payment_id", record.ID),
		zap.String("student_id", record.StudentID),
		zap.String("method", record.Method),
		zap.String("status", record.Status),
	)

	if record.Status == models.PaymentStatusCompleted {
		s.enqueueReceipt(record.ID)
	}
	return s.toPaymentDto(record), nil
}

// Get returns a payment by id.
func (s *PaymentService) Get(ctx context.Context, paymentID string) (*dto.StudentPaymentDto, error) {
	record, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	return s.toPaymentDto(record), nil
}

// List returns every payment of a student.
func (s *PaymentService) List(ctx context.Context, studentID string) ([]dto.StudentPaymentDto, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	result := make([]dto.StudentPaymentDto, 0, len(records))
	for i := range records {
		result = append(result, *s.toPaymentDto(&records[i]))
	}
	return result, nil
}

// Export renders the payment history of a student as CSV or PDF.
func (s *PaymentService) Export(ctx context.Context, studentID, format string) (*Statement, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = export.FormatCSV
	}
	if format != export.FormatCSV && format != export.FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	records, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}

	dataset := paymentDataset(records)
	var content []byte
	if format == export.FormatPDF {
		content, err = s.pdf.Render(dataset, fmt.Sprintf("Payment statement: %s", student.FullName))
	} else {
		content, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render statement")
	}
	return &Statement{
		Filename:    fmt.Sprintf("payments-%s.%s", studentID, format),
		ContentType: export.ContentType(format),
		Content:     content,
	}, nil
}

// OpenReceipt opens the rendered receipt of a payment.
func (s *PaymentService) OpenReceipt(ctx context.Context, paymentID string) (*os.File, error) {
	record, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	if record.ReceiptPath == nil || s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
	}
	file, err := s.files.Open(*record.ReceiptPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "receipt not available")
		}
		return nil, appErrors.Internal(err, "failed to open receipt")
	}
	return file, nil
}

func (s *PaymentService) attachCheckout(ctx context.Context, student *models.Student, record *models.StudentPayment) error {
	if s.gateway == nil {
		return appErrors.Clone(appErrors.ErrValidation, "payment gateway is not configured")
	}
	itemName := "Tutoring payment"
	if record.Description != nil {
		itemName = *record.Description
	}
	phone := ""
	if student.Phone != nil {
		phone = *student.Phone
	}
	checkout, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		OrderID:       record.ID,
		Amount:        record.Amount,
		ItemName:      itemName,
		CustomerName:  student.FullName,
		CustomerEmail: student.Email,
		CustomerPhone: phone,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "payment gateway unavailable")
	}
	record.GatewayToken = &checkout.Token
	record.CheckoutURL = &checkout.RedirectURL
	record.Status = models.PaymentStatusPending
	return nil
}

func (s *PaymentService) enqueueReceipt(paymentID string) {
	if s.receipts == nil {
		return
	}
	err := s.receipts.Enqueue(jobs.Job{ID: paymentID, Type: JobTypeReceipt, Payload: paymentID})
	if err != nil {
		s.logger.Warn("failed to enqueue receipt", zap.String("payment_id", paymentID), zap.Error(err))
	}
}

func (s *PaymentService) toPaymentDto(record *models.StudentPayment) *dto.StudentPaymentDto {
	created := record.CreatedAt
	out := &dto.StudentPaymentDto{
		PaymentID:   record.ID,
		StudentID:   record.StudentID,
		Amount:      record.Amount,
		Currency:    record.Currency,
		Method:      record.Method,
		Status:      record.Status,
		CourseID:    record.CourseID,
		BookingID:   record.BookingID,
		Description: record.Description,
		Reference:   record.Reference,
		CheckoutURL: record.CheckoutURL,
		PaidAt:      record.PaidAt,
		CreatedAt:   &created,
	}
	if record.ReceiptPath != nil {
		link := fmt.Sprintf("%s/students/payments/%s/receipt", s.cfg.LinkPrefix, record.ID)
		out.ReceiptURL = &link
	}
	return out
}

func paymentDataset(records []models.StudentPayment) export.Dataset {
	headers := []string{"payment_id", "date", "amount", "currency", "method", "status", "reference", "description"}
	rows := make([]map[string]string, 0, len(records))
	for _, p := range records {
		date := p.CreatedAt
		if p.PaidAt != nil {
			date = *p.PaidAt
		}
		rows = append(rows, map[string]string{
			"payment_id":  p.ID,
			"date":        date.UTC().Format("2006-01-02 15:04"),
			"amount":      fmt.Sprintf("%.2f", p.Amount),
			"currency":    p.Currency,
			"method":      p.Method,
			"status":      p.Status,
			"reference":   deref(p.Reference),
			"description": deref(p.Description),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
