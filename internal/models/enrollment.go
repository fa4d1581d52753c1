package models

import "time"

// EnrollmentStatus is the lifecycle state of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Final reports whether the enrollment can no longer change.
func (s EnrollmentStatus) Final() bool {
	return s == EnrollmentCompleted || s == EnrollmentDropped
}

// StudentCourseEnrollment links a student to a course.
type StudentCourseEnrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	Progress   float64          `db:"progress" json:"progress"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail joins the course title onto an enrollment.
type EnrollmentDetail struct {
	StudentCourseEnrollment
	CourseTitle string `db:"course_title" json:"course_title"`
}
