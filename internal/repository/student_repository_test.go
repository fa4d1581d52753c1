package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tap-api/internal/models"
)

func TestStudentRepositoryUpdateSyncsUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = $2, full_name = $3, active = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("s1", "new@example.com", "Student", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Student{ID: "s1", Email: "new@example.com", FullName: "Student", Active: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBankDetailsRepositoryUpsertAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBankDetailsRepository(db)

	created := time.Now().Add(-time.Hour)
	mock.ExpectQuery("INSERT INTO student_bank_details .* ON CONFLICT \\(student_id\\) DO UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "account_holder_name", "bank_name", "account_number", "ifsc_code", "account_type", "branch_name", "created_at", "updated_at"}).
			AddRow("existing-id", "s1", "Asha", "SBI", "1234", "SBIN0001", "savings", nil, created, time.Now()))

	details := &models.StudentBankDetails{StudentID: "s1", AccountHolderName: "Asha", BankName: "SBI", AccountNumber: "1234", IFSCCode: "SBIN0001"}
	require.NoError(t, repo.Upsert(context.Background(), details))
	assert.Equal(t, "existing-id", details.ID)
	assert.WithinDuration(t, created, details.CreatedAt, time.Second)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_bank_details WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_bank_details WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteByStudentID(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.DeleteByStudentID(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryUpsertDefaultsSkillList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery("INSERT INTO student_preferences").
		WithArgs(sqlmock.AnyArg(), "s1", nil, []byte("[]"), nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "learning_goals", "preferred_skill_ids", "preferred_level_id", "learning_mode", "preferred_language", "created_at", "updated_at"}).
			AddRow("p1", "s1", nil, []byte("[]"), nil, nil, nil, time.Now(), time.Now()))

	pref := &models.StudentPreference{StudentID: "s1"}
	require.NoError(t, repo.Upsert(context.Background(), pref))
	assert.Equal(t, "p1", pref.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
