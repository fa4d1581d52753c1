package dto

import "time"

// QualificationRequest is the qualification part of an instructor payload.
type QualificationRequest struct {
	Bio                  *string `json:"bio" validate:"omitempty,max=2000"`
	HighestQualification *string `json:"highestQualification" validate:"omitempty,max=255"`
	RelevantExperience   int     `json:"relevantExperience" validate:"gte=0,lte=80"`
}

// CreateInstructorRequest registers an instructor. name is accepted in place of
// fullName and the password is optional, as for students.
type CreateInstructorRequest struct {
	Email         string                `json:"email" validate:"required,email,max=255"`
	Password      string                `json:"password" validate:"omitempty,min=8,max=72"`
	FullName      string                `json:"fullName" validate:"required_without=Name,max=150"`
	Name          string                `json:"name" validate:"required_without=FullName,max=150"`
	Phone         *string               `json:"phone" validate:"omitempty,max=30"`
	Headline      *string               `json:"headline" validate:"omitempty,max=255"`
	Qualification *QualificationRequest `json:"qualification" validate:"omitempty"`
}

// DisplayName returns fullName, falling back to name.
func (r CreateInstructorRequest) DisplayName() string {
	return displayName(r.FullName, r.Name)
}

// UpdateInstructorRequest replaces every mutable instructor field. An omitted
// qualification keeps the stored one; a sent one replaces it.
type UpdateInstructorRequest struct {
	Email         string                `json:"email" validate:"required,email,max=255"`
	FullName      string                `json:"fullName" validate:"required,max=150"`
	Phone         *string               `json:"phone" validate:"omitempty,max=30"`
	Headline      *string               `json:"headline" validate:"omitempty,max=255"`
	Active        *bool                 `json:"active"`
	Qualification *QualificationRequest `json:"qualification" validate:"omitempty"`
}

// QualificationDto is the qualification returned with an instructor.
type QualificationDto struct {
	Bio                  *string `json:"bio,omitempty"`
	HighestQualification *string `json:"highestQualification,omitempty"`
	RelevantExperience   int     `json:"relevantExperience"`
}

// InstructorDto is the public view of an instructor.
type InstructorDto struct {
	InstructorID  string            `json:"instructorId"`
	Email         string            `json:"email"`
	FullName      string            `json:"fullName"`
	Phone         *string           `json:"phone,omitempty"`
	Headline      *string           `json:"headline,omitempty"`
	Active        bool              `json:"active"`
	Qualification *QualificationDto `json:"qualification,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// InstructorResumeDto describes a stored resume and how to download it.
type InstructorResumeDto struct {
	InstructorID      string     `json:"instructorId"`
	FileName          string     `json:"fileName"`
	MimeType          string     `json:"mimeType"`
	SizeBytes         int64      `json:"sizeBytes"`
	UploadedAt        time.Time  `json:"uploadedAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	DownloadURL       string     `json:"downloadUrl,omitempty"`
	DownloadExpiresAt *time.Time `json:"downloadExpiresAt,omitempty"`
}

// TimeSlotRequest opens a bookable window.
type TimeSlotRequest struct {
	StartAt time.Time `json:"startAt" validate:"required"`
	EndAt   time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
}

// TimeSlotDto is a bookable window with its availability.
type TimeSlotDto struct {
	SlotID       string    `json:"slotId"`
	InstructorID string    `json:"instructorId"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	Available    bool      `json:"available"`
}
