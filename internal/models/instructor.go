package models

import "time"

// Instructor is a tutor who publishes courses and time slots.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Headline  *string   `db:"headline" json:"headline,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorFilter captures filtering options for listing instructors.
type InstructorFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}

// InstructorQualification is the single qualification record of an instructor.
type InstructorQualification struct {
	ID                   string    `db:"id" json:"id"`
	InstructorID         string    `db:"instructor_id" json:"instructor_id"`
	Bio                  *string   `db:"bio" json:"bio,omitempty"`
	HighestQualification *string   `db:"highest_qualification" json:"highest_qualification,omitempty"`
	RelevantExperience   int       `db:"relevant_experience" json:"relevant_experience"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorResume is the metadata of the stored resume file.
type InstructorResume struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	FilePath     string    `db:"file_path" json:"file_path"`
	MimeType     string    `db:"mime_type" json:"mime_type"`
	SizeBytes    int64     `db:"size_bytes" json:"size_bytes"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorTimeSlot is a bookable window.
type InstructorTimeSlot struct {
	ID           string    `db:"id" json:"id"`
	InstructorID string    `db:"instructor_id" json:"instructor_id"`
	StartAt      time.Time `db:"start_at" json:"start_at"`
	EndAt        time.Time `db:"end_at" json:"end_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimeSlotDetail is a time slot with its current availability.
type TimeSlotDetail struct {
	InstructorTimeSlot
	Available bool `db:"available" json:"available"`
}
