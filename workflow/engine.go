package workflow

import (
	"errors"
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/notify"
	"gorm.io/gorm"
)

// Typed errors returned by Transition. Any precondition failure leaves the
// request untouched.
var (
	ErrRequestNotFound   = errors.New("certificate request not found")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrMissingReason     = errors.New("rejection reason is required")
	ErrMissingActor      = errors.New("reviewer id is required")
	ErrConcurrentUpdate  = errors.New("request was modified concurrently")
)

// Notifier delivers a status-change message. Dispatch failures are
// best-effort and must never roll back the transition that caused them.
type Notifier interface {
	Dispatch(event notify.Event) error
}

// Engine validates and applies status transitions for a single certificate
// request. It is the only writer of request status in the system.
type Engine struct {
	db       *gorm.DB
	notifier Notifier
}

// NewEngine creates the state machine engine.
func NewEngine(db *gorm.DB, notifier Notifier) *Engine {
	return &Engine{db: db, notifier: notifier}
}

// Transition moves a pending request toward the requested target status.
//
// An APPROVED target is persisted as the intermediate PROCESSING status; the
// generation coordinator performs the terminal APPROVED write. Status,
// reviewer id, and review timestamp are written atomically with a
// conditional single-row update so a concurrent reviewer loses cleanly.
func (e *Engine) Transition(requestID uint, targetStatus string, actorID uint, rejectionReason string) (*certification.CertificateRequest, error) {
	if actorID == 0 {
		return nil, ErrMissingActor
	}

	var request certification.CertificateRequest
	if err := e.db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return nil, ErrRequestNotFound
	}

	if !isLegalTarget(&request, targetStatus) {
		return nil, ErrIllegalTransition
	}

	if targetStatus == certification.StatusRejected && rejectionReason == "" {
		return nil, ErrMissingReason
	}

	// An approval never jumps straight to APPROVED.
	persisted := targetStatus
	if targetStatus == certification.StatusApproved {
		persisted = certification.StatusProcessing
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      persisted,
		"reviewer_id": actorID,
		"reviewed_at": now,
	}
	if targetStatus == certification.StatusRejected {
		updates["rejection_reason"] = rejectionReason
	}

	result := e.db.Model(&certification.CertificateRequest{}).
		Where("id = ? AND status = ? AND is_deleted = ?", requestID, certification.StatusPending, false).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrConcurrentUpdate
	}

	oldStatus := request.Status
	if err := e.db.Where("id = ?", requestID).First(&request).Error; err != nil {
		return nil, err
	}

	// Notification is causally linked to the transition but not
	// transactionally coupled: a dispatch failure lands in the retry queue
	// and the transition stands.
	event := e.eventFor(&request, targetStatus, oldStatus)
	if err := e.notifier.Dispatch(event); err != nil {
		log.Printf("[WORKFLOW] Notification for request %d queued for retry: %v", request.ID, err)
	}

	return &request, nil
}

// isLegalTarget applies the transition table. Requests are only ever moved
// out of PENDING here, and a FAIL assessment can only be archived.
func isLegalTarget(request *certification.CertificateRequest, target string) bool {
	if request.Status != certification.StatusPending {
		return false
	}

	switch target {
	case certification.StatusApproved, certification.StatusRejected:
		return request.AssessmentResult != courseModels.AssessmentFail
	case certification.StatusArchived, certification.StatusArchiveFailed:
		return request.AssessmentResult == courseModels.AssessmentFail
	default:
		return false
	}
}

// eventFor builds the notification for a completed transition.
func (e *Engine) eventFor(request *certification.CertificateRequest, target, oldStatus string) notify.Event {
	event := notify.Event{
		RequestID:       request.ID,
		RecipientName:   request.RecipientName,
		RecipientEmail:  request.RecipientEmail,
		OldStatus:       oldStatus,
		NewStatus:       request.Status,
		RejectionReason: request.RejectionReason,
		BatchCode:       request.BatchCode,
	}

	switch target {
	case certification.StatusApproved:
		event.Kind = notify.KindApproved
	case certification.StatusRejected:
		event.Kind = notify.KindRejected
	default:
		event.Kind = notify.KindArchived
	}

	var course courseModels.Course
	if err := e.db.Select("title").Where("id = ?", request.CourseID).First(&course).Error; err == nil {
		event.CourseTitle = course.Title
	}

	return event
}
