package certification

import (
	"time"

	"gorm.io/gorm"
)

// NotificationRetry statuses. Only pending entries are ever mutated;
// completed and failed entries are retained for audit.
const (
	RetryPending    = "pending"
	RetryProcessing = "processing"
	RetryCompleted  = "completed"
	RetryFailed     = "failed"
)

// NotificationRetry is one scheduled redelivery attempt for a certificate
// notification. A failed attempt supersedes its entry with a new pending
// entry at retry_count+1, or terminates once the retry budget is spent.
type NotificationRetry struct {
	gorm.Model
	CertificateRequestID uint      `json:"certificate_request_id" gorm:"index;not null"`
	Kind                 string    `json:"kind" gorm:"not null"` // notification kind being redelivered
	RetryCount           int       `json:"retry_count" gorm:"default:0"`
	NextRetryAt          time.Time `json:"next_retry_at" gorm:"index;not null"`
	Status               string    `json:"status" gorm:"default:'pending';index"`
	LastError            string    `json:"last_error"`
	// Message context that only exists at dispatch time (operator note,
	// batch size) is carried on the entry so a redelivery renders the same
	// message as the original send.
	Note       string `json:"note"`
	BatchCount int    `json:"batch_count"`
}
