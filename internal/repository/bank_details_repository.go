package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const bankDetailsColumns = "id, student_id, account_holder_name, bank_name, account_number, ifsc_code, account_type, branch_name, created_at, updated_at"

// BankDetailsRepository persists student bank accounts, one per student.
type BankDetailsRepository struct {
	db *sqlx.DB
}

// NewBankDetailsRepository constructs the repository.
func NewBankDetailsRepository(db *sqlx.DB) *BankDetailsRepository {
	return &BankDetailsRepository{db: db}
}

// FindByStudentID returns the bank details of a student.
func (r *BankDetailsRepository) FindByStudentID(ctx context.Context, studentID string) (*models.StudentBankDetails, error) {
	var details models.StudentBankDetails
	if err := r.db.GetContext(ctx, &details, "SELECT "+bankDetailsColumns+" FROM student_bank_details WHERE student_id = $1", studentID); err != nil {
		return nil, err
	}
	return &details, nil
}

// Upsert creates or replaces the bank details of details.StudentID and reloads the stored row.
func (r *BankDetailsRepository) Upsert(ctx context.Context, details *models.StudentBankDetails) error {
	if details.ID == "" {
		details.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	details.CreatedAt = now
	details.UpdatedAt = now

	const query = `INSERT INTO student_bank_details (id, student_id, account_holder_name, bank_name, account_number, ifsc_code, account_type, branch_name, created_at, updated_at)
		VALUES (:id, :student_id, :account_holder_name, :bank_name, :account_number, :ifsc_code, :account_type, :branch_name, :created_at, :updated_at)
		ON CONFLICT (student_id) DO UPDATE
		SET account_holder_name = EXCLUDED.account_holder_name,
		    bank_name = EXCLUDED.bank_name,
		    account_number = EXCLUDED.account_number,
		    ifsc_code = EXCLUDED.ifsc_code,
		    account_type = EXCLUDED.account_type,
		    branch_name = EXCLUDED.branch_name,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + bankDetailsColumns
	if err := namedGet(ctx, r.db, details, query, details); err != nil {
		return fmt.Errorf("upsert bank details: %w", err)
	}
	return nil
}

// DeleteByStudentID removes the bank details and reports whether a row existed.
func (r *BankDetailsRepository) DeleteByStudentID(ctx context.Context, studentID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_bank_details WHERE student_id = $1`, studentID)
	if err != nil {
		return false, fmt.Errorf("delete bank details: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete bank details: %w", err)
	}
	return affected > 0, nil
}
