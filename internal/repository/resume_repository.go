package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const resumeColumns = "id, instructor_id, file_name, file_path, mime_type, size_bytes, uploaded_at, updated_at"

// ResumeRepository stores resume metadata, one row per instructor.
type ResumeRepository struct {
	db *sqlx.DB
}

// NewResumeRepository constructs a ResumeRepository.
func NewResumeRepository(db *sqlx.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// FindByInstructorID returns the resume of an instructor.
func (r *ResumeRepository) FindByInstructorID(ctx context.Context, instructorID string) (*models.InstructorResume, error) {
	query := "SELECT " + resumeColumns + " FROM instructor_resumes WHERE instructor_id = $1"
	var resume models.InstructorResume
	if err := r.db.GetContext(ctx, &resume, query, instructorID); err != nil {
		return nil, err
	}
	return &resume, nil
}

// Upsert creates or replaces the resume record and reloads the stored row.
func (r *ResumeRepository) Upsert(ctx context.Context, resume *models.InstructorResume) error {
	if resume.ID == "" {
		resume.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resume.UploadedAt = now
	resume.UpdatedAt = now

	const query = `INSERT INTO instructor_resumes (id, instructor_id, file_name, file_path, mime_type, size_bytes, uploaded_at, updated_at)
		VALUES (:id, :instructor_id, :file_name, :file_path, :mime_type, :size_bytes, :uploaded_at, :updated_at)
		ON CONFLICT (instructor_id) DO UPDATE
		SET file_name = EXCLUDED.file_name,
		    file_path = EXCLUDED.file_path,
		    mime_type = EXCLUDED.mime_type,
		    size_bytes = EXCLUDED.size_bytes,
		    uploaded_at = EXCLUDED.uploaded_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + resumeColumns
	if err := namedGet(ctx, r.db, resume, query, resume); err != nil {
		return fmt.Errorf("upsert resume: %w", err)
	}
	return nil
}
