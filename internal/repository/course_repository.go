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

const courseDetailSelect = `SELECT c.id, c.instructor_id, c.title, c.description, c.skill_id, c.price, c.duration, c.level_id,
	c.is_published, c.created_at, c.updated_at, i.full_name AS instructor_name, s.name AS skill_name, l.name AS level_name
	FROM courses c
	JOIN instructors i ON i.id = c.instructor_id
	LEFT JOIN skills s ON s.id = c.skill_id
	LEFT JOIN proficiency_levels l ON l.id = c.level_id`

// CourseRepository persists courses and reads the skill/level reference tables.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching the filter with total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetail, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if filter.InstructorID != "" {
		args = append(args, filter.InstructorID)
		where += fmt.Sprintf(" AND c.instructor_id = $%d", len(args))
	}
	if filter.Published != nil {
		args = append(args, *filter.Published)
		where += fmt.Sprintf(" AND c.is_published = $%d", len(args))
	}
	if filter.SkillID != nil {
		args = append(args, *filter.SkillID)
		where += fmt.Sprintf(" AND c.skill_id = $%d", len(args))
	}
	if filter.LevelID != nil {
		args = append(args, *filter.LevelID)
		where += fmt.Sprintf(" AND c.level_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where += fmt.Sprintf(" AND (LOWER(c.title) LIKE $%d OR LOWER(COALESCE(c.description, '')) LIKE $%d)", len(args), len(args))
	}

	_, _, limit := pageClause(filter.Page, filter.PageSize)
	courses := []models.CourseDetail{}
	if err := r.db.SelectContext(ctx, &courses, courseDetailSelect+where+" ORDER BY c.created_at DESC"+limit, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses c"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindByID returns a course with display names.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.CourseDetail, error) {
	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, courseDetailSelect+" WHERE c.id = $1", id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `INSERT INTO courses (id, instructor_id, title, description, skill_id, price, duration, level_id, is_published, created_at, updated_at)
		VALUES (:id, :instructor_id, :title, :description, :skill_id, :price, :duration, :level_id, :is_published, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the editable course columns.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET instructor_id = :instructor_id, title = :title, description = :description, skill_id = :skill_id,
		price = :price, duration = :duration, level_id = :level_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// SetPublished toggles the publish flag.
func (r *CourseRepository) SetPublished(ctx context.Context, id string, published bool) error {
	const query = `UPDATE courses SET is_published = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, published, time.Now().UTC()); err != nil {
		return fmt.Errorf("publish course: %w", err)
	}
	return nil
}

// SkillExists reports whether the skill id is known.
func (r *CourseRepository) SkillExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM skills WHERE id = $1)", id); err != nil {
		return false, fmt.Errorf("check skill: %w", err)
	}
	return exists, nil
}

// LevelExists reports whether the level id is known.
func (r *CourseRepository) LevelExists(ctx context.Context, id int) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM proficiency_levels WHERE id = $1)", id); err != nil {
		return false, fmt.Errorf("check level: %w", err)
	}
	return exists, nil
}

// ListSkills returns every skill ordered by name.
func (r *CourseRepository) ListSkills(ctx context.Context) ([]models.Skill, error) {
	skills := []models.Skill{}
	if err := r.db.SelectContext(ctx, &skills, "SELECT id, name FROM skills ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	return skills, nil
}

// ListLevels returns every proficiency level ordered by id.
func (r *CourseRepository) ListLevels(ctx context.Context) ([]models.ProficiencyLevel, error) {
	levels := []models.ProficiencyLevel{}
	if err := r.db.SelectContext(ctx, &levels, "SELECT id, name FROM proficiency_levels ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list levels: %w", err)
	}
	return levels, nil
}
