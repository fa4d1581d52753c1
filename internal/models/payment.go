package models

import "time"

// Payment methods.
const (
	PaymentMethodCard         = "card"
	PaymentMethodUPI          = "upi"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodGateway      = "gateway"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// StudentPayment is one payment event of a student.
type StudentPayment struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	Amount       float64    `db:"amount" json:"amount"`
	Currency     string     `db:"currency" json:"currency"`
	Method       string     `db:"method" json:"method"`
	Status       string     `db:"status" json:"status"`
	CourseID     *string    `db:"course_id" json:"course_id,omitempty"`
	BookingID    *string    `db:"booking_id" json:"booking_id,omitempty"`
	Description  *string    `db:"description" json:"description,omitempty"`
	Reference    *string    `db:"reference" json:"reference,omitempty"`
	CheckoutURL  *string    `db:"checkout_url" json:"checkout_url,omitempty"`
	GatewayToken *string    `db:"gateway_token" json:"gateway_token,omitempty"`
	ReceiptPath  *string    `db:"receipt_path" json:"receipt_path,omitempty"`
	PaidAt       *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
