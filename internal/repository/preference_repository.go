package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const preferenceColumns = "id, student_id, learning_goals, preferred_skill_ids, preferred_level_id, learning_mode, preferred_language, created_at, updated_at"

// PreferenceRepository persists student learning preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByStudentID returns stored preferences for a student.
func (r *PreferenceRepository) FindByStudentID(ctx context.Context, studentID string) (*models.StudentPreference, error) {
	var pref models.StudentPreference
	if err := r.db.GetContext(ctx, &pref, "SELECT "+preferenceColumns+" FROM student_preferences WHERE student_id = $1", studentID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or updates the preferences of pref.StudentID.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.StudentPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	pref.CreatedAt = now
	pref.UpdatedAt = now
	if len(pref.PreferredSkillIDs) == 0 {
		pref.PreferredSkillIDs = []byte("[]")
	}

	const query = `INSERT INTO student_preferences (id, student_id, learning_goals, preferred_skill_ids, preferred_level_id, learning_mode, preferred_language, created_at, updated_at)
		VALUES (:id, :student_id, :learning_goals, :preferred_skill_ids, :preferred_level_id, :learning_mode, :preferred_language, :created_at, :updated_at)
		ON CONFLICT (student_id) DO UPDATE
		SET learning_goals = EXCLUDED.learning_goals,
		    preferred_skill_ids = EXCLUDED.preferred_skill_ids,
		    preferred_level_id = EXCLUDED.preferred_level_id,
		    learning_mode = EXCLUDED.learning_mode,
		    preferred_language = EXCLUDED.preferred_language,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + preferenceColumns
	if err := namedGet(ctx, r.db, pref, query, pref); err != nil {
		return fmt.Errorf("upsert student preference: %w", err)
	}
	return nil
}
