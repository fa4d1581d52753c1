package dto

import "time"

// EnrollRequest enrolls a student in a course.
type EnrollRequest struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
}

// UpdateEnrollmentRequest changes progress and/or status.
type UpdateEnrollmentRequest struct {
	Progress *float64 `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Status   *string  `json:"status" validate:"omitempty,oneof=active completed dropped"`
}

// EnrollmentDto is the public view of an enrollment.
type EnrollmentDto struct {
	EnrollmentID string    `json:"enrollmentId"`
	StudentID    string    `json:"studentId"`
	CourseID     string    `json:"courseId"`
	CourseTitle  string    `json:"courseTitle,omitempty"`
	Progress     float64   `json:"progress"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolledAt"`
}
