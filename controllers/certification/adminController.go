package controllers

import (
	"errors"
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/bulkops"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/notify"
	certValidator "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/certification"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/workflow"

	"github.com/gofiber/fiber/v2"
)

// Handler bundles the workflow engines behind the admin HTTP surface. The
// engines are constructed once in main with explicit settings.
type Handler struct {
	Engine      *workflow.Engine
	Coordinator *workflow.Coordinator
	Dispatcher  *notify.Dispatcher
	Processor   *notify.RetryProcessor
	Monitor     *notify.BounceMonitor
	StaleAfter  time.Duration // age before a PROCESSING request is swept
}

// NewHandler wires the admin handlers to the given engines.
func NewHandler(engine *workflow.Engine, coordinator *workflow.Coordinator, dispatcher *notify.Dispatcher,
	processor *notify.RetryProcessor, monitor *notify.BounceMonitor, staleAfter time.Duration) *Handler {
	return &Handler{
		Engine:      engine,
		Coordinator: coordinator,
		Dispatcher:  dispatcher,
		Processor:   processor,
		Monitor:     monitor,
		StaleAfter:  staleAfter,
	}
}

// TransitionCertificate applies a reviewed status change to one request.
// An APPROVED target lands in PROCESSING and kicks off generation in the
// background; the terminal APPROVED write happens when generation finishes.
func (h *Handler) TransitionCertificate(c *fiber.Ctx) error {
	actorID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requestID := c.Locals("requestID").(int)
	reqData := c.Locals("validatedTransition").(*certValidator.TransitionPayload)

	request, err := h.Engine.Transition(uint(requestID), reqData.TargetStatus, actorID, reqData.RejectionReason)
	if err != nil {
		return transitionErrorResponse(c, err)
	}

	if request.Status == certification.StatusProcessing {
		h.generateInBackground(request.ID, actorID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Transition applied successfully!", request)
}

// transitionErrorResponse maps engine errors to HTTP statuses.
func transitionErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrRequestNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate request not found!", nil)
	case errors.Is(err, workflow.ErrIllegalTransition):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Illegal status transition!", nil)
	case errors.Is(err, workflow.ErrMissingReason):
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Rejection reason is required!", nil)
	case errors.Is(err, workflow.ErrMissingActor):
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Reviewer id is required!", nil)
	case errors.Is(err, workflow.ErrConcurrentUpdate):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Request was modified concurrently!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to apply transition!", nil)
	}
}

// GetPendingRequests lists certificate requests awaiting review
func (h *Handler) GetPendingRequests(c *fiber.Ctx) error {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var total int64
	database.Database.Db.Model(&certification.CertificateRequest{}).
		Where("status = ? AND is_deleted = ?", certification.StatusPending, false).
		Count(&total)

	type RequestWithCourse struct {
		certification.CertificateRequest
		CourseName string `json:"course_name"`
	}

	var requests []certification.CertificateRequest
	if err := database.Database.Db.
		Where("status = ? AND is_deleted = ?", certification.StatusPending, false).
		Offset(offset).Limit(limit).Order("requested_at asc").
		Find(&requests).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch pending requests!", nil)
	}

	result := make([]RequestWithCourse, len(requests))
	for i, request := range requests {
		var course courseModels.Course
		database.Database.Db.Select("title").Where("id = ?", request.CourseID).First(&course)
		result[i] = RequestWithCourse{CertificateRequest: request, CourseName: course.Title}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending requests fetched successfully!", fiber.Map{
		"requests": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// GetIssuedCertificates lists issued certificates
func (h *Handler) GetIssuedCertificates(c *fiber.Ctx) error {
	page, limit := pagination(c)
	offset := (page - 1) * limit

	var total int64
	database.Database.Db.Model(&certification.Certificate{}).
		Where("is_deleted = ?", false).Count(&total)

	var certificates []certification.Certificate
	if err := database.Database.Db.Where("is_deleted = ?", false).
		Offset(offset).Limit(limit).Order("issued_at desc").
		Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Issued certificates fetched successfully!", fiber.Map{
		"certificates": certificates,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// DashboardStats gets back-office statistics
func (h *Handler) DashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db

	var pending, processing, approved, rejected, failed, dueRetries, openAlerts int64
	db.Model(&certification.CertificateRequest{}).Where("status = ? AND is_deleted = ?", certification.StatusPending, false).Count(&pending)
	db.Model(&certification.CertificateRequest{}).Where("status = ? AND is_deleted = ?", certification.StatusProcessing, false).Count(&processing)
	db.Model(&certification.CertificateRequest{}).Where("status = ? AND is_deleted = ?", certification.StatusApproved, false).Count(&approved)
	db.Model(&certification.CertificateRequest{}).Where("status = ? AND is_deleted = ?", certification.StatusRejected, false).Count(&rejected)
	db.Model(&certification.CertificateRequest{}).Where("status = ? AND is_deleted = ?", certification.StatusApprovalFailed, false).Count(&failed)
	db.Model(&certification.NotificationRetry{}).Where("status = ?", certification.RetryPending).Count(&dueRetries)
	db.Model(&certification.DeliveryAlert{}).Count(&openAlerts)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"requests": fiber.Map{
			"pending":         pending,
			"processing":      processing,
			"approved":        approved,
			"rejected":        rejected,
			"approval_failed": failed,
		},
		"pending_retries": dueRetries,
		"delivery_alerts": openAlerts,
	})
}

// pagination reads page/limit query params with sane defaults.
func pagination(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// adminUser loads and checks the acting admin. Kept for handlers that need
// the full user row, not just the role guard.
func adminUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, errors.New("unauthorized")
	}
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// bulkResponse shapes a bulkops result for the UI tally.
func bulkResponse(c *fiber.Ctx, message string, result *bulkops.Result) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}
