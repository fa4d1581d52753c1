package dto

import (
	"strings"
	"time"
)

// CreateStudentRequest registers a student. name is accepted in place of fullName.
// Without a password the account exists but cannot log in.
type CreateStudentRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"omitempty,min=8,max=72"`
	FullName string  `json:"fullName" validate:"required_without=Name,max=150"`
	Name     string  `json:"name" validate:"required_without=FullName,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
}

// DisplayName returns fullName, falling back to name.
func (r CreateStudentRequest) DisplayName() string {
	return displayName(r.FullName, r.Name)
}

// UpdateStudentRequest replaces every mutable student field.
type UpdateStudentRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	FullName string  `json:"fullName" validate:"required,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Active   *bool   `json:"active"`
}

// StudentDto is the public view of a student.
type StudentDto struct {
	StudentID string    `json:"studentId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     *string   `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StudentPreferenceDto is both the upsert payload and the response for preferences.
type StudentPreferenceDto struct {
	StudentID         string     `json:"studentId,omitempty"`
	LearningGoals     *string    `json:"learningGoals" validate:"omitempty,max=1000"`
	PreferredSkillIDs []int      `json:"preferredSkillIds" validate:"omitempty,max=20,dive,gt=0"`
	PreferredLevelID  *int       `json:"preferredLevelId" validate:"omitempty,gt=0"`
	LearningMode      *string    `json:"learningMode" validate:"omitempty,oneof=online offline hybrid"`
	PreferredLanguage *string    `json:"preferredLanguage" validate:"omitempty,max=50"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// StudentBankDetailsDto is both the upsert payload and the response for bank details.
type StudentBankDetailsDto struct {
	StudentID         string     `json:"studentId,omitempty"`
	AccountHolderName string     `json:"accountHolderName" validate:"required,max=100"`
	BankName          string     `json:"bankName" validate:"required,max=100"`
	AccountNumber     string     `json:"accountNumber" validate:"required,max=30,numeric"`
	IFSCCode          string     `json:"ifscCode" validate:"required,max=20,alphanum"`
	AccountType       *string    `json:"accountType" validate:"omitempty,oneof=savings current"`
	BranchName        *string    `json:"branchName" validate:"omitempty,max=100"`
	CreatedAt         *time.Time `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// StudentPaymentDto is both the create payload and the response for payments.
// StudentID in a request body is ignored in favour of the path.
type StudentPaymentDto struct {
	PaymentID   string     `json:"paymentId,omitempty"`
	StudentID   string     `json:"studentId,omitempty"`
	Amount      float64    `json:"amount" validate:"gt=0,lte=10000000"`
	Currency    string     `json:"currency" validate:"omitempty,len=3,alpha"`
	Method      string     `json:"method" validate:"required,oneof=card upi bank_transfer cash gateway"`
	Status      string     `json:"status,omitempty" validate:"omitempty,oneof=pending completed failed refunded"`
	CourseID    *string    `json:"courseId,omitempty" validate:"omitempty,uuid"`
	BookingID   *string    `json:"bookingId,omitempty" validate:"omitempty,uuid"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=255"`
	Reference   *string    `json:"reference,omitempty" validate:"omitempty,max=100"`
	CheckoutURL *string    `json:"checkoutUrl,omitempty"`
	ReceiptURL  *string    `json:"receiptUrl,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

func displayName(fullName, name string) string {
	if trimmed := strings.TrimSpace(fullName); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(name)
}
