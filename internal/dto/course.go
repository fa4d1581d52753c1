package dto

import "time"

// CourseRequest creates or fully replaces a course.
type CourseRequest struct {
	InstructorID string  `json:"instructorId" validate:"required,uuid"`
	Title        string  `json:"title" validate:"required,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=100"`
	SkillID      *int    `json:"skillId" validate:"omitempty,gt=0"`
	Price        float64 `json:"price" validate:"gt=0,lte=99999999.99"`
	Duration     *int    `json:"duration" validate:"omitempty,gt=0"`
	LevelID      *int    `json:"levelId" validate:"omitempty,gt=0"`
}

// PublishRequest toggles course visibility.
type PublishRequest struct {
	Published *bool `json:"isPublished" validate:"required"`
}

// CourseDto is the public view of a course; duration is in minutes.
type CourseDto struct {
	CourseID     string    `json:"courseId"`
	InstructorID string    `json:"instructorId"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	SkillID      *int      `json:"skillId,omitempty"`
	SkillName    *string   `json:"skillName,omitempty"`
	Price        float64   `json:"price"`
	Duration     *int      `json:"duration,omitempty"`
	LevelID      *int      `json:"levelId,omitempty"`
	LevelName    *string   `json:"levelName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	IsPublished  bool      `json:"isPublished"`
}
