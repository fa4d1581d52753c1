package service

import (
	"encoding/json"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/models"
)

func toInstructorDto(instructor *models.Instructor, qualification *models.InstructorQualification) *dto.InstructorDto {
	out := &dto.InstructorDto{
		InstructorID: instructor.ID,
		Email:        instructor.Email,
		FullName:     instructor.FullName,
		Phone:        instructor.Phone,
		Headline:     instructor.Headline,
		Active:       instructor.Active,
		CreatedAt:    instructor.CreatedAt,
		UpdatedAt:    instructor.UpdatedAt,
	}
	if qualification != nil {
		out.Qualification = &dto.QualificationDto{
			Bio:                  qualification.Bio,
			HighestQualification: qualification.HighestQualification,
			RelevantExperience:   qualification.RelevantExperience,
		}
	}
	return out
}

func toTimeSlotDto(slot models.TimeSlotDetail) *dto.TimeSlotDto {
	return &dto.TimeSlotDto{
		SlotID:       slot.ID,
		InstructorID: slot.InstructorID,
		StartAt:      slot.StartAt,
		EndAt:        slot.EndAt,
		Available:    slot.Available,
	}
}

func toStudentDto(student *models.Student) *dto.StudentDto {
	return &dto.StudentDto{
		StudentID: student.ID,
		Email:     student.Email,
		FullName:  student.FullName,
		Phone:     student.Phone,
		Active:    student.Active,
		CreatedAt: student.CreatedAt,
		UpdatedAt: student.UpdatedAt,
	}
}

func toPreferenceDto(pref *models.StudentPreference) *dto.StudentPreferenceDto {
	skills := []int{}
	if len(pref.PreferredSkillIDs) > 0 {
		_ = json.Unmarshal(pref.PreferredSkillIDs, &skills)
	}
	updated := pref.UpdatedAt
	return &dto.StudentPreferenceDto{
		StudentID:         pref.StudentID,
		LearningGoals:     pref.LearningGoals,
		PreferredSkillIDs: skills,
		PreferredLevelID:  pref.PreferredLevelID,
		LearningMode:      pref.LearningMode,
		PreferredLanguage: pref.PreferredLanguage,
		UpdatedAt:         &updated,
	}
}

func toBankDetailsDto(details *models.StudentBankDetails) *dto.StudentBankDetailsDto {
	created, updated := details.CreatedAt, details.UpdatedAt
	return &dto.StudentBankDetailsDto{
		StudentID:         details.StudentID,
		AccountHolderName: details.AccountHolderName,
		BankName:          details.BankName,
		AccountNumber:     details.AccountNumber,
		IFSCCode:          details.IFSCCode,
		AccountType:       details.AccountType,
		BranchName:        details.BranchName,
		CreatedAt:         &created,
		UpdatedAt:         &updated,
	}
}

func toCourseDto(course *models.CourseDetail) *dto.CourseDto {
	return &dto.CourseDto{
		CourseID:     course.ID,
		InstructorID: course.InstructorID,
		Title:        course.Title,
		Description:  course.Description,
		SkillID:      course.SkillID,
		SkillName:    course.SkillName,
		Price:        course.Price,
		Duration:     course.Duration,
		LevelID:      course.LevelID,
		LevelName:    course.LevelName,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
		IsPublished:  course.IsPublished,
	}
}

func toBookingDto(booking *models.BookingDetail) *dto.BookingDto {
	return &dto.BookingDto{
		BookingID:    booking.ID,
		StudentID:    booking.StudentID,
		InstructorID: booking.InstructorID,
		SlotID:       booking.SlotID,
		StartAt:      booking.StartAt,
		EndAt:        booking.EndAt,
		Status:       string(booking.Status),
		BookedAt:     booking.BookedAt,
	}
}

func toEnrollmentDto(enrollment *models.EnrollmentDetail) *dto.EnrollmentDto {
	return &dto.EnrollmentDto{
		EnrollmentID: enrollment.ID,
		StudentID:    enrollment.StudentID,
		CourseID:     enrollment.CourseID,
		CourseTitle:  enrollment.CourseTitle,
		Progress:     enrollment.Progress,
		Status:       string(enrollment.Status),
		EnrolledAt:   enrollment.EnrolledAt,
	}
}
