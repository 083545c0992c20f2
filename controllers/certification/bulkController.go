package controllers

import (
	"context"
	"fmt"
	"log"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/bulkops"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/notify"
	certValidator "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/certification"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// BulkTransitionCertificates applies one status change across many requests.
// A failed item is recorded and counted, and the run always completes.
func (h *Handler) BulkTransitionCertificates(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedBulkTransition").(*certValidator.BulkTransitionPayload)

	result := h.applyTransitions(reqData.RequestIDs, reqData.TargetStatus, actorID, reqData.RejectionReason)

	return bulkResponse(c, "Bulk status update completed!", result)
}

// applyTransitions moves each request independently. An illegal or
// conflicting item is recorded and counted; every remaining item is still
// attempted, so the tally reflects exactly what was persisted.
func (h *Handler) applyTransitions(requestIDs []uint, targetStatus string, actorID uint, rejectionReason string) *bulkops.Result {
	return bulkops.Run(requestIDs, func(requestID uint) error {
		request, err := h.Engine.Transition(requestID, targetStatus, actorID, rejectionReason)
		if err != nil {
			return fmt.Errorf("request %d: %w", requestID, err)
		}
		if request.Status == certification.StatusProcessing {
			h.generateInBackground(request.ID, actorID)
		}
		return nil
	}, nil)
}

// BulkUpdateUserRoles changes the role of each listed user independently
func (h *Handler) BulkUpdateUserRoles(c *fiber.Ctx) error {
	if _, err := adminUser(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedBulkRole").(*certValidator.BulkRolePayload)

	result := bulkops.Run(reqData.UserIDs, func(userID uint) error {
		res := database.Database.Db.Model(&models.User{}).
			Where("id = ? AND is_deleted = ?", userID, false).
			Update("role", reqData.Role)
		if res.Error != nil {
			return fmt.Errorf("user %d: %v", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: not found", userID)
		}
		return nil
	}, nil)

	return bulkResponse(c, "Bulk role update completed!", result)
}

// BulkDeactivateUsers deactivates each listed user independently
func (h *Handler) BulkDeactivateUsers(c *fiber.Ctx) error {
	if _, err := adminUser(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedBulkUsers").(*certValidator.BulkUsersPayload)

	result := bulkops.Run(reqData.UserIDs, func(userID uint) error {
		res := database.Database.Db.Model(&models.User{}).
			Where("id = ? AND is_deleted = ?", userID, false).
			Update("is_active", false)
		if res.Error != nil {
			return fmt.Errorf("user %d: %v", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("user %d: not found", userID)
		}
		return nil
	}, nil)

	return bulkResponse(c, "Bulk deactivation completed!", result)
}

// BulkSendBatchEmail sends a batch notification to every request in a batch
// code. Progress counters are persisted after each recipient so operators
// can poll the EmailBatch row for a live indicator.
func (h *Handler) BulkSendBatchEmail(c *fiber.Ctx) error {
	if _, err := adminUser(c); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	actorID := c.Locals("userId").(uint)

	reqData := c.Locals("validatedBatchEmail").(*certValidator.BatchEmailPayload)

	var requests []certification.CertificateRequest
	if err := database.Database.Db.
		Where("batch_code = ? AND is_deleted = ?", reqData.BatchCode, false).
		Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch batch requests!", nil)
	}

	batch := certification.EmailBatch{
		Reference: uuid.NewString(),
		BatchCode: reqData.BatchCode,
		Subject:   reqData.Kind,
		Status:    certification.BatchRunning,
		Total:     len(requests),
		StartedBy: actorID,
	}
	if err := database.Database.Db.Create(&batch).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start email batch!", nil)
	}

	result := bulkops.Run(requests, func(request certification.CertificateRequest) error {
		event := notify.Event{
			Kind:            notify.Kind(reqData.Kind),
			RequestID:       request.ID,
			RecipientName:   request.RecipientName,
			RecipientEmail:  request.RecipientEmail,
			BatchCode:       request.BatchCode,
			BatchCount:      len(requests),
			RejectionReason: reqData.Note,
		}
		if err := h.Dispatcher.Dispatch(event); err != nil {
			return fmt.Errorf("request %d (%s): %v", request.ID, request.RecipientEmail, err)
		}
		return nil
	}, func(current, total int) {
		// Live progress for the UI; a failed write never aborts the run.
		database.Database.Db.Model(&certification.EmailBatch{}).
			Where("id = ?", batch.ID).
			Update("current", current)
	})

	database.Database.Db.Model(&certification.EmailBatch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"status":       certification.BatchCompleted,
			"current":      result.Total,
			"succeeded":    result.Successes,
			"failed_count": result.Failures,
		})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Batch email completed!", fiber.Map{
		"batch":  batch.Reference,
		"result": result,
	})
}

// generateInBackground runs phase two of an approval without holding the
// request path open.
func (h *Handler) generateInBackground(requestID, reviewerID uint) {
	go func() {
		if _, err := h.Coordinator.OnApproved(context.Background(), requestID, reviewerID); err != nil {
			log.Printf("[ADMIN] Generation for request %d failed: %v", requestID, err)
		}
	}()
}
