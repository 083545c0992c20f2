package certification

import (
	"time"

	"gorm.io/gorm"
)

// CertificateRequest statuses. APPROVED is never written directly from
// PENDING: an approval first moves the request to PROCESSING, and the
// generation coordinator performs the terminal write.
const (
	StatusPending        = "PENDING"
	StatusProcessing     = "PROCESSING"
	StatusApproved       = "APPROVED"
	StatusRejected       = "REJECTED"
	StatusApprovalFailed = "APPROVAL_FAILED"
	StatusArchived       = "ARCHIVED"
	StatusArchiveFailed  = "ARCHIVE_FAILED"
)

// TerminalStatuses are statuses from which no further automatic
// transition occurs without a new external trigger.
var TerminalStatuses = []string{
	StatusApproved,
	StatusRejected,
	StatusApprovalFailed,
	StatusArchived,
	StatusArchiveFailed,
}

// IsTerminal reports whether a request status is terminal.
func IsTerminal(status string) bool {
	for _, s := range TerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CertificateRequest represents a student's request for a course completion
// certificate awaiting admin review
type CertificateRequest struct {
	gorm.Model
	UserID           uint       `json:"user_id" gorm:"index"`
	RecipientName    string     `json:"recipient_name"`
	RecipientEmail   string     `json:"recipient_email" gorm:"index;not null"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	EnrollmentID     uint       `json:"enrollment_id" gorm:"index"`
	AssessmentResult string     `json:"assessment_result"` // PASS, FAIL, empty until graded
	BatchCode        string     `json:"batch_code" gorm:"index"`
	Status           string     `json:"status" gorm:"default:'PENDING';index"`
	RejectionReason  string     `json:"rejection_reason"`
	ReviewerID       *uint      `json:"reviewer_id"`
	ReviewedAt       *time.Time `json:"reviewed_at"`
	CertificateID    *uint      `json:"certificate_id"` // set once generation succeeds
	GenerationError  string     `json:"generation_error"`
	RequestedAt      time.Time  `json:"requested_at"`
	IsDeleted        bool       `gorm:"default:false"`
}

// Certificate represents an issued certificate artifact
type Certificate struct {
	gorm.Model
	RequestID        uint       `json:"request_id" gorm:"index;not null"`
	UserID           uint       `json:"user_id" gorm:"index"`
	CourseID         uint       `json:"course_id" gorm:"index;not null"`
	RecipientName    string     `json:"recipient_name"`
	CertificateURL   string     `json:"certificate_url"`
	VerificationCode string     `json:"verification_code" gorm:"unique"`
	IssuedAt         time.Time  `json:"issued_at"`
	ExpiresAt        *time.Time `json:"expires_at"`
	IsDeleted        bool       `gorm:"default:false"`
}
