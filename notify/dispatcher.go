package notify

import (
	"context"
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	"gorm.io/gorm"
)

// DispatcherSettings configures the notification dispatcher.
type DispatcherSettings struct {
	MailTimeout time.Duration
}

// Dispatcher renders and delivers status-change messages. A failed delivery
// enqueues a retry entry with immediate eligibility; the failure is returned
// to the caller for logging but must never fail the originating transition.
type Dispatcher struct {
	db        *gorm.DB
	transport Transport
	settings  DispatcherSettings
}

// NewDispatcher creates a dispatcher over the given transport.
func NewDispatcher(db *gorm.DB, transport Transport, settings DispatcherSettings) *Dispatcher {
	if settings.MailTimeout <= 0 {
		settings.MailTimeout = 15 * time.Second
	}
	return &Dispatcher{db: db, transport: transport, settings: settings}
}

// Dispatch sends one event through the mail transport. On transport failure
// it records a pending NotificationRetry with retry_count 0 eligible now and
// returns the error for logging.
func (d *Dispatcher) Dispatch(event Event) error {
	subject, body := Render(event)

	ctx, cancel := context.WithTimeout(context.Background(), d.settings.MailTimeout)
	defer cancel()

	messageID, err := d.transport.Send(ctx, event.RecipientEmail, subject, body)
	recordOutcome(d.db, event, messageID, err)

	if err != nil {
		d.enqueueRetry(event, err)
		return err
	}
	return nil
}

// enqueueRetry creates the initial retry entry for a failed dispatch. At
// most one pending or processing entry may exist per request and kind, so
// a duplicate dispatch failure does not double-schedule.
func (d *Dispatcher) enqueueRetry(event Event, sendErr error) {
	if event.RequestID == 0 {
		return
	}

	var open int64
	d.db.Model(&certification.NotificationRetry{}).
		Where("certificate_request_id = ? AND kind = ? AND status IN ?",
			event.RequestID, string(event.Kind), []string{certification.RetryPending, certification.RetryProcessing}).
		Count(&open)
	if open > 0 {
		return
	}

	entry := certification.NotificationRetry{
		CertificateRequestID: event.RequestID,
		Kind:                 string(event.Kind),
		RetryCount:           0,
		NextRetryAt:          time.Now(),
		Status:               certification.RetryPending,
		LastError:            sendErr.Error(),
		Note:                 event.RejectionReason,
		BatchCount:           event.BatchCount,
	}
	if err := d.db.Create(&entry).Error; err != nil {
		log.Printf("[NOTIFY] Failed to enqueue retry for request %d: %v", event.RequestID, err)
	}
}

// recordOutcome persists one delivery outcome row for bounce-rate
// aggregation. Failures to record are logged and swallowed; telemetry must
// never break delivery.
func recordOutcome(db *gorm.DB, event Event, messageID string, sendErr error) {
	outcome := certification.DeliveryOutcome{
		CertificateRequestID: event.RequestID,
		RecipientEmail:       event.RecipientEmail,
		Domain:               event.Domain(),
		Kind:                 string(event.Kind),
		MessageID:            messageID,
		Bounced:              sendErr != nil && IsPermanent(sendErr),
	}
	if sendErr != nil {
		outcome.ErrorMessage = sendErr.Error()
	}
	if err := db.Create(&outcome).Error; err != nil {
		log.Printf("[NOTIFY] Failed to record delivery outcome for %s: %v", event.RecipientEmail, err)
	}
}
