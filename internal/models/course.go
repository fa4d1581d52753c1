package models

import "time"

// Course is an offering published by an instructor.
type Course struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	Title        string    `db:"title" json:"title"`
	Description  *string   `db:"description" json:"description,omitempty"`
	SkillID      *int      `db:"skill_id" json:"skill_id,omitempty"`
	Price        float64   `db:"price" json:"price"`
	Duration     *int      `db:"duration" json:"duration,omitempty"`
	LevelID      *int      `db:"level_id" json:"level_id,omitempty"`
	IsPublished  bool      `db:"is_published" json:"is_published"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins display names onto a course.
type CourseDetail struct {
	Course
	InstructorName string  `db:"instructor_name" json:"instructor_name"`
	SkillName      *string `db:"skill_name" json:"skill_name,omitempty"`
	LevelName      *string `db:"level_name" json:"level_name,omitempty"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	InstructorID string
	Published    *bool
	SkillID      *int
	LevelID      *int
	Search       string
	Page         int
	PageSize     int
}

// Skill is reference data for course subjects.
type Skill struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// ProficiencyLevel is reference data for course difficulty.
type ProficiencyLevel struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
