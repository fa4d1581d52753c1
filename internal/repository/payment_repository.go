package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const paymentColumns = "id, student_id, amount, currency, method, status, course_id, booking_id, description, reference, checkout_url, gateway_token, receipt_path, paid_at, created_at, updated_at"

// PaymentRepository persists student payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.StudentPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	const query = `INSERT INTO student_payments (id, student_id, amount, currency, method, status, course_id, booking_id, description, reference, checkout_url, gateway_token, receipt_path, paid_at, created_at, updated_at)
		VALUES (:id, :student_id, :amount, :currency, :method, :status, :course_id, :booking_id, :description, :reference, :checkout_url, :gateway_token, :receipt_path, :paid_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// FindByID returns a payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.StudentPayment, error) {
	var payment models.StudentPayment
	if err := r.db.GetContext(ctx, &payment, "SELECT "+paymentColumns+" FROM student_payments WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByStudent returns a student's payments, newest first.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentPayment, error) {
	payments := []models.StudentPayment{}
	query := "SELECT " + paymentColumns + " FROM student_payments WHERE student_id = $1 ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// SetReceiptPath records where the rendered receipt was stored.
func (r *PaymentRepository) SetReceiptPath(ctx context.Context, id, path string) error {
	const query = `UPDATE student_payments SET receipt_path = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("set receipt path: %w", err)
	}
	return nil
}
