package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tap-api/internal/models"
	"github.com/noah-isme/tap-api/pkg/export"
	"github.com/noah-isme/tap-api/pkg/jobs"
)

type receiptPaymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentPayment, error)
	SetReceiptPath(ctx context.Context, id, path string) error
}

type fileWriter interface {
	Save(name string, data []byte) (string, error)
}

type receiptRenderer interface {
	RenderReceipt(r export.Receipt) ([]byte, error)
}

// ReceiptService renders payment receipts in the background.
type ReceiptService struct {
	payments receiptPaymentRepository
	students studentLookup
	files    fileWriter
	renderer receiptRenderer
	logger   *zap.Logger
}

// NewReceiptService constructs a ReceiptService.
func NewReceiptService(payments receiptPaymentRepository, students studentLookup, files fileWriter, renderer receiptRenderer, logger *zap.Logger) *ReceiptService {
	if renderer == nil {
		renderer = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{payments: payments, students: students, files: files, renderer: renderer, logger: logger}
}

// Handle is the jobs.Handler for receipt jobs.
func (s *ReceiptService) Handle(ctx context.Context, job jobs.Job) error {
	paymentID, ok := job.Payload.(string)
	if !ok || paymentID == "" {
		return fmt.Errorf("receipt job %s: invalid payload %T", job.ID, job.Payload)
	}
	return s.Render(ctx, paymentID)
}

// Render produces the receipt PDF of a payment and records its location.
func (s *ReceiptService) Render(ctx context.Context, paymentID string) error {
	record, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("load payment %s: %w", paymentID, err)
	}
	student, err := s.students.FindByID(ctx, record.StudentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", record.StudentID, err)
	}

	paidAt := record.CreatedAt
	if record.PaidAt != nil {
		paidAt = *record.PaidAt
	}
	content, err := s.renderer.RenderReceipt(export.Receipt{
		Number:      receiptNumber(record.ID, paidAt),
		IssuedTo:    student.FullName,
		Email:       student.Email,
		Description: deref(record.Description),
		Method:      record.Method,
		Status:      record.Status,
		Reference:   deref(record.Reference),
		Currency:    record.Currency,
		Amount:      record.Amount,
		PaidAt:      paidAt,
	})
	if err != nil {
		return fmt.Errorf("render receipt %s: %w", paymentID, err)
	}

	relPath := fmt.Sprintf("%s/%s.pdf", record.StudentID, record.ID)
	if _, err := s.files.Save(relPath, content); err != nil {
		return fmt.Errorf("store receipt %s: %w", paymentID, err)
	}
	if err := s.payments.SetReceiptPath(ctx, record.ID, relPath); err != nil {
		return fmt.Errorf("record receipt %s: %w", paymentID, err)
	}
	s.logger.Info("receipt rendered", zap.String("payment_id", record.ID), zap.String("path", relPath))
	return nil
}

func receiptNumber(paymentID string, paidAt time.Time) string {
	short := paymentID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("RCPT-%s-%s", paidAt.UTC().Format("20060102"), short)
}
