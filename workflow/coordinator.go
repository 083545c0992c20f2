package workflow

import (
	"context"
	"log"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generator is the external document generation collaborator. Calls may be
// slow (seconds); failures are business-as-usual, not exceptional.
type Generator interface {
	Generate(ctx context.Context, request *certification.CertificateRequest, issuerID uint) (artifactRef string, err error)
}

// CoordinatorSettings configures the generation coordinator.
type CoordinatorSettings struct {
	Timeout time.Duration // bound on one generation call
}

// Coordinator drives the second phase of an approval: it awaits the
// document generator and performs the terminal status write. There is no
// automatic regeneration retry; APPROVAL_FAILED requires human re-approval.
type Coordinator struct {
	db        *gorm.DB
	generator Generator
	settings  CoordinatorSettings
}

// NewCoordinator creates the generation coordinator.
func NewCoordinator(db *gorm.DB, generator Generator, settings CoordinatorSettings) *Coordinator {
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &Coordinator{db: db, generator: generator, settings: settings}
}

// OnApproved generates the certificate artifact for a request in PROCESSING
// and writes the terminal status. Invoking it for a request already in a
// terminal state is a no-op, so duplicate triggers are harmless.
func (co *Coordinator) OnApproved(ctx context.Context, requestID uint, reviewerID uint) (*certification.Certificate, error) {
	var request certification.CertificateRequest
	if err := co.db.Where("id = ? AND is_deleted = ?", requestID, false).First(&request).Error; err != nil {
		return nil, ErrRequestNotFound
	}
	if request.Status != certification.StatusProcessing {
		// Already finished (or never approved): nothing to do.
		return nil, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, co.settings.Timeout)
	defer cancel()

	artifactRef, err := co.generator.Generate(genCtx, &request, reviewerID)
	if err != nil {
		co.markFailed(&request, err)
		return nil, err
	}

	return co.finalize(&request, reviewerID, artifactRef)
}

// finalize creates the certificate row and flips PROCESSING to APPROVED in
// a single transaction. The conditional status update makes a duplicate
// invocation racing past the terminal check collapse to a no-op.
func (co *Coordinator) finalize(request *certification.CertificateRequest, reviewerID uint, artifactRef string) (*certification.Certificate, error) {
	now := time.Now()

	certificate := certification.Certificate{
		RequestID:        request.ID,
		UserID:           request.UserID,
		CourseID:         request.CourseID,
		RecipientName:    request.RecipientName,
		CertificateURL:   artifactRef,
		VerificationCode: uuid.NewString(),
		IssuedAt:         now,
	}

	var course courseModels.Course
	if err := co.db.Where("id = ?", request.CourseID).First(&course).Error; err == nil && course.ValidityYears > 0 {
		expires := now.AddDate(course.ValidityYears, 0, 0)
		certificate.ExpiresAt = &expires
	}

	tx := co.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.Create(&certificate).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	result := tx.Model(&certification.CertificateRequest{}).
		Where("id = ? AND status = ?", request.ID, certification.StatusProcessing).
		Updates(map[string]interface{}{
			"status":         certification.StatusApproved,
			"certificate_id": certificate.ID,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// A concurrent invocation already wrote the terminal state.
		tx.Rollback()
		return nil, nil
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	log.Printf("[WORKFLOW] Request %d approved, certificate %s issued by reviewer %d",
		request.ID, certificate.VerificationCode, reviewerID)
	return &certificate, nil
}

// RecoverStale re-drives generation for requests stuck in PROCESSING longer
// than olderThan, which happens when the process dies between the approval
// write and the terminal write. Re-invoking OnApproved is safe because the
// terminal write is conditional. Returns the number of requests brought to
// APPROVED.
func (co *Coordinator) RecoverStale(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	var stale []certification.CertificateRequest
	err := co.db.
		Where("status = ? AND is_deleted = ? AND reviewed_at <= ?",
			certification.StatusProcessing, false, cutoff).
		Order("reviewed_at asc").
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	recovered := 0
	for i := range stale {
		request := &stale[i]
		if ctx.Err() != nil {
			break
		}

		reviewerID := uint(0)
		if request.ReviewerID != nil {
			reviewerID = *request.ReviewerID
		}

		if _, err := co.OnApproved(ctx, request.ID, reviewerID); err != nil {
			// Generation failed again; the request is now APPROVAL_FAILED,
			// which is a resolution too, just not a recovery.
			log.Printf("[WORKFLOW] Recovery generation for request %d failed: %v", request.ID, err)
			continue
		}
		recovered++
	}

	if len(stale) > 0 {
		log.Printf("[WORKFLOW] Generation sweep: %d stale request(s), %d recovered", len(stale), recovered)
	}
	return recovered, nil
}

// markFailed records a terminal APPROVAL_FAILED with the generation error.
func (co *Coordinator) markFailed(request *certification.CertificateRequest, genErr error) {
	result := co.db.Model(&certification.CertificateRequest{}).
		Where("id = ? AND status = ?", request.ID, certification.StatusProcessing).
		Updates(map[string]interface{}{
			"status":           certification.StatusApprovalFailed,
			"generation_error": genErr.Error(),
		})
	if result.Error != nil {
		log.Printf("[WORKFLOW] Failed to record generation failure for request %d: %v", request.ID, result.Error)
		return
	}
	if result.RowsAffected > 0 {
		log.Printf("[WORKFLOW] Request %d generation failed: %v", request.ID, genErr)
	}
}
