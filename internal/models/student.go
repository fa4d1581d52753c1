package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Student is a learner who books slots, enrolls in courses and pays.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// Learning modes accepted in preferences.
const (
	LearningModeOnline  = "online"
	LearningModeOffline = "offline"
	LearningModeHybrid  = "hybrid"
)

// StudentPreference stores what a student wants to learn and how.
type StudentPreference struct {
	ID                string         `db:"id" json:"id"`
	StudentID         string         `db:"student_id" json:"student_id"`
	LearningGoals     *string        `db:"learning_goals" json:"learning_goals,omitempty"`
	PreferredSkillIDs types.JSONText `db:"preferred_skill_ids" json:"preferred_skill_ids"`
	PreferredLevelID  *int           `db:"preferred_level_id" json:"preferred_level_id,omitempty"`
	LearningMode      *string        `db:"learning_mode" json:"learning_mode,omitempty"`
	PreferredLanguage *string        `db:"preferred_language" json:"preferred_language,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// Bank account types.
const (
	AccountTypeSavings = "savings"
	AccountTypeCurrent = "current"
)

// StudentBankDetails is the payout account of a student.
type StudentBankDetails struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"student_id"`
	AccountHolderName string    `db:"account_holder_name" json:"account_holder_name"`
	BankName          string    `db:"bank_name" json:"bank_name"`
	AccountNumber     string    `db:"account_number" json:"account_number"`
	IFSCCode          string    `db:"ifsc_code" json:"ifsc_code"`
	AccountType       *string   `db:"account_type" json:"account_type,omitempty"`
	BranchName        *string   `db:"branch_name" json:"branch_name,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
