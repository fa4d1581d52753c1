package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tap-api/internal/models"
)

const (
	instructorColumns    = "id, email, full_name, phone, headline, active, created_at, updated_at"
	qualificationColumns = "id, instructor_id, bio, highest_qualification, relevant_experience, created_at, updated_at"
)

// InstructorRepository manages persistence for instructors and their qualifications.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns instructors matching filters along with total count.
func (r *InstructorRepository) List(ctx context.Context, filter models.InstructorFilter) ([]models.Instructor, int, error) {
	base := "FROM instructors WHERE 1=1"
	var args []interface{}

	if filter.Active != nil {
		args = append(args, *filter.Active)
		base += fmt.Sprintf(" AND active = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		base += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(COALESCE(headline, '')) LIKE $%d)", len(args), len(args), len(args))
	}

	_, _, limit := pageClause(filter.Page, filter.PageSize)
	query := "SELECT " + instructorColumns + " " + base + " ORDER BY created_at DESC" + limit
	instructors := []models.Instructor{}
	if err := r.db.SelectContext(ctx, &instructors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list instructors: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count instructors: %w", err)
	}
	return instructors, total, nil
}

// FindByID fetches an instructor by ID.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	query := "SELECT " + instructorColumns + " FROM instructors WHERE id = $1"
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}

// FindQualification returns the qualification of one instructor.
func (r *InstructorRepository) FindQualification(ctx context.Context, instructorID string) (*models.InstructorQualification, error) {
	query := "SELECT " + qualificationColumns + " FROM instructor_qualifications WHERE instructor_id = $1"
	var q models.InstructorQualification
	if err := r.db.GetContext(ctx, &q, query, instructorID); err != nil {
		return nil, err
	}
	return &q, nil
}

// QualificationsFor loads the qualifications of several instructors keyed by instructor id.
func (r *InstructorRepository) QualificationsFor(ctx context.Context, instructorIDs []string) (map[string]models.InstructorQualification, error) {
	result := make(map[string]models.InstructorQualification, len(instructorIDs))
	if len(instructorIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In("SELECT "+qualificationColumns+" FROM instructor_qualifications WHERE instructor_id IN (?)", instructorIDs)
	if err != nil {
		return nil, fmt.Errorf("build qualification query: %w", err)
	}
	var rows []models.InstructorQualification
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load qualifications: %w", err)
	}
	for _, q := range rows {
		result[q.InstructorID] = q
	}
	return result, nil
}

// Create inserts the login, the instructor and the optional qualification in one transaction.
func (r *InstructorRepository) Create(ctx context.Context, user *models.User, instructor *models.Instructor, qualification *models.InstructorQualification) error {
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	instructor.CreatedAt = now
	instructor.UpdatedAt = now
	user.ID = instructor.ID
	user.CreatedAt = now
	user.UpdatedAt = now

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		const query = `INSERT INTO instructors (id, email, full_name, phone, headline, active, created_at, updated_at)
			VALUES (:id, :email, :full_name, :phone, :headline, :active, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, instructor); err != nil {
			return fmt.Errorf("create instructor: %w", err)
		}
		if qualification != nil {
			qualification.InstructorID = instructor.ID
			return upsertQualification(ctx, tx, qualification)
		}
		return nil
	})
}

// Update writes the instructor, mirrors email and name onto the login and upserts the qualification.
func (r *InstructorRepository) Update(ctx context.Context, instructor *models.Instructor, qualification *models.InstructorQualification) error {
	instructor.UpdatedAt = time.Now().UTC()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE instructors SET email = :email, full_name = :full_name, phone = :phone, headline = :headline,
			active = :active, updated_at = :updated_at WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, instructor); err != nil {
			return fmt.Errorf("update instructor: %w", err)
		}
		if err := syncUserProfile(ctx, tx, instructor.ID, instructor.Email, instructor.FullName, instructor.Active, instructor.UpdatedAt); err != nil {
			return err
		}
		if qualification != nil {
			qualification.InstructorID = instructor.ID
			return upsertQualification(ctx, tx, qualification)
		}
		return nil
	})
}

func upsertQualification(ctx context.Context, tx *sqlx.Tx, q *models.InstructorQualification) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	const query = `INSERT INTO instructor_qualifications (id, instructor_id, bio, highest_qualification, relevant_experience, created_at, updated_at)
		VALUES (:id, :instructor_id, :bio, :highest_qualification, :relevant_experience, :created_at, :updated_at)
		ON CONFLICT (instructor_id) DO UPDATE
		SET bio = EXCLUDED.bio,
		    highest_qualification = EXCLUDED.highest_qualification,
		    relevant_experience = EXCLUDED.relevant_experience,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + qualificationColumns
	if err := namedGet(ctx, tx, q, query, q); err != nil {
		return fmt.Errorf("upsert qualification: %w", err)
	}
	return nil
}
