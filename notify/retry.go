package notify

import (
	"context"
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"gorm.io/gorm"
)

// RetrySettings configures the retry queue processor.
type RetrySettings struct {
	MaxRetries  int           // default 3
	BackoffBase time.Duration // default 30m; delay = base * 2^retry_count
	BatchSize   int           // default 50
	MailTimeout time.Duration
}

// RetryStats summarizes one processor invocation.
type RetryStats struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// RetryProcessor is the periodically invoked worker that scans due retry
// entries, attempts redelivery, and reschedules with exponential backoff
// or marks permanent failure. It is safe to run with multiple concurrent
// workers: each entry is claimed with a conditional pending->processing
// update before any network call is made.
type RetryProcessor struct {
	db        *gorm.DB
	transport Transport
	settings  RetrySettings
}

// NewRetryProcessor creates a processor with the given settings.
func NewRetryProcessor(db *gorm.DB, transport Transport, settings RetrySettings) *RetryProcessor {
	if settings.MaxRetries <= 0 {
		settings.MaxRetries = 3
	}
	if settings.BackoffBase <= 0 {
		settings.BackoffBase = 30 * time.Minute
	}
	if settings.BatchSize <= 0 {
		settings.BatchSize = 50
	}
	if settings.MailTimeout <= 0 {
		settings.MailTimeout = 15 * time.Second
	}
	return &RetryProcessor{db: db, transport: transport, settings: settings}
}

// ProcessDue handles one batch of due entries. Entries are processed in
// next_retry_at order; one entry's failure never aborts the scan.
func (p *RetryProcessor) ProcessDue(ctx context.Context) (RetryStats, error) {
	var stats RetryStats

	var due []certification.NotificationRetry
	err := p.db.
		Where("status = ? AND next_retry_at <= ?", certification.RetryPending, time.Now()).
		Order("next_retry_at asc").
		Limit(p.settings.BatchSize).
		Find(&due).Error
	if err != nil {
		return stats, err
	}

	for i := range due {
		entry := &due[i]
		if ctx.Err() != nil {
			break
		}

		// Claim step: the conditional write is the mutual-exclusion signal
		// keeping two workers off the same entry.
		claim := p.db.Model(&certification.NotificationRetry{}).
			Where("id = ? AND status = ?", entry.ID, certification.RetryPending).
			Update("status", certification.RetryProcessing)
		if claim.Error != nil {
			log.Printf("[RETRY] Failed to claim entry %d: %v", entry.ID, claim.Error)
			continue
		}
		if claim.RowsAffected == 0 {
			// Another worker got there first.
			continue
		}

		stats.Total++
		if sendErr := p.attempt(ctx, entry); sendErr != nil {
			p.reschedule(entry, sendErr)
			stats.Failed++
		} else {
			p.db.Model(entry).Update("status", certification.RetryCompleted)
			stats.Processed++
		}
	}

	return stats, nil
}

// attempt re-fetches the underlying certificate request and re-invokes the
// mail transport for the entry's notification kind.
func (p *RetryProcessor) attempt(ctx context.Context, entry *certification.NotificationRetry) error {
	var request certification.CertificateRequest
	err := p.db.Where("id = ? AND is_deleted = ?", entry.CertificateRequestID, false).First(&request).Error
	if err != nil {
		return Permanent(err)
	}

	event := p.eventForRequest(&request, entry)
	subject, body := Render(event)

	sendCtx, cancel := context.WithTimeout(ctx, p.settings.MailTimeout)
	defer cancel()

	messageID, sendErr := p.transport.Send(sendCtx, event.RecipientEmail, subject, body)
	recordOutcome(p.db, event, messageID, sendErr)
	return sendErr
}

// eventForRequest rebuilds the notification event from the persisted
// request and the dispatch-time context carried on the entry. Missing
// collaterals (course row, certificate row) degrade to omitted fields,
// never to a rendering failure.
func (p *RetryProcessor) eventForRequest(request *certification.CertificateRequest, entry *certification.NotificationRetry) Event {
	event := Event{
		Kind:            Kind(entry.Kind),
		RequestID:       request.ID,
		RecipientName:   request.RecipientName,
		RecipientEmail:  request.RecipientEmail,
		NewStatus:       request.Status,
		RejectionReason: request.RejectionReason,
		BatchCode:       request.BatchCode,
		BatchCount:      entry.BatchCount,
	}
	if entry.Note != "" {
		event.RejectionReason = entry.Note
	}

	var course courseModels.Course
	if err := p.db.Select("title").Where("id = ?", request.CourseID).First(&course).Error; err == nil {
		event.CourseTitle = course.Title
	}

	if request.CertificateID != nil {
		var cert certification.Certificate
		if err := p.db.Where("id = ?", *request.CertificateID).First(&cert).Error; err == nil {
			event.CertificateURL = cert.CertificateURL
			event.VerificationCode = cert.VerificationCode
		}
	}

	return event
}

// reschedule closes the current entry and, while the retry budget lasts,
// inserts exactly one pending successor with retry_count+1 and an
// exponentially backed-off eligibility time. Once retry_count reaches the
// maximum the failure is terminal: no successor is created.
func (p *RetryProcessor) reschedule(entry *certification.NotificationRetry, sendErr error) {
	updates := map[string]interface{}{
		"status":     certification.RetryFailed,
		"last_error": sendErr.Error(),
	}
	if err := p.db.Model(entry).Updates(updates).Error; err != nil {
		log.Printf("[RETRY] Failed to close entry %d: %v", entry.ID, err)
		return
	}

	if entry.RetryCount >= p.settings.MaxRetries {
		log.Printf("[RETRY] Request %d exhausted %d retries, giving up: %v",
			entry.CertificateRequestID, entry.RetryCount, sendErr)
		return
	}

	successor := certification.NotificationRetry{
		CertificateRequestID: entry.CertificateRequestID,
		Kind:                 entry.Kind,
		RetryCount:           entry.RetryCount + 1,
		NextRetryAt:          time.Now().Add(p.settings.BackoffBase * (1 << entry.RetryCount)),
		Status:               certification.RetryPending,
		LastError:            sendErr.Error(),
		Note:                 entry.Note,
		BatchCount:           entry.BatchCount,
	}
	if err := p.db.Create(&successor).Error; err != nil {
		log.Printf("[RETRY] Failed to schedule retry %d for request %d: %v",
			successor.RetryCount, entry.CertificateRequestID, err)
	}
}
