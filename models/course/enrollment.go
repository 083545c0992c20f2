package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
)

// Assessment outcomes recorded against a completed enrollment
const (
	AssessmentPass = "PASS"
	AssessmentFail = "FAIL"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"index;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	Status           string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED
	Progress         float64    `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	AssessmentResult string     `json:"assessment_result"`                // PASS, FAIL, empty until graded
	CompletedAt      *time.Time `json:"completed_at"`
	IsDeleted        bool       `gorm:"default:false"`
}
