package certValidator

import (
	"strconv"
	"strings"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// TransitionPayload is the reviewed status change for one request.
type TransitionPayload struct {
	TargetStatus    string `json:"target_status" validate:"required,oneof=APPROVED REJECTED ARCHIVED ARCHIVE_FAILED"`
	RejectionReason string `json:"rejection_reason"`
}

// BulkTransitionPayload applies one status change to many requests.
type BulkTransitionPayload struct {
	RequestIDs      []uint `json:"request_ids" validate:"required,min=1,dive,gt=0"`
	TargetStatus    string `json:"target_status" validate:"required,oneof=APPROVED REJECTED ARCHIVED ARCHIVE_FAILED"`
	RejectionReason string `json:"rejection_reason"`
}

// BulkRolePayload changes the role of many users.
type BulkRolePayload struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,gt=0"`
	Role    string `json:"role" validate:"required,oneof=STUDENT INSTRUCTOR ADMIN"`
}

// BulkUsersPayload targets many users with no further arguments.
type BulkUsersPayload struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,gt=0"`
}

// BatchEmailPayload sends one batch notification kind to a request batch.
type BatchEmailPayload struct {
	BatchCode string `json:"batch_code" validate:"required"`
	Kind      string `json:"kind" validate:"required,oneof=BATCH_SUBMITTED BATCH_APPROVED BATCH_REJECTED"`
	Note      string `json:"note"`
}

// RequestCertificate validates the student certificate request path
func RequestCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("course_id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, err := strconv.Atoi(courseIDStr)
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			BatchCode string `json:"batch_code"`
		})
		// Body is optional here; batch code is the only field.
		_ = c.BodyParser(reqData)

		c.Locals("courseID", courseID)
		c.Locals("batchCode", strings.TrimSpace(reqData.BatchCode))
		return c.Next()
	}
}

// TransitionCertificate validates the admin transition request
func TransitionCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestIDStr := strings.TrimSpace(c.Params("request_id"))
		requestID, err := strconv.Atoi(requestIDStr)
		if err != nil || requestID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Request ID!", nil)
		}

		reqData := new(TransitionPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.TargetStatus = strings.ToUpper(strings.TrimSpace(reqData.TargetStatus))
		reqData.RejectionReason = strings.TrimSpace(reqData.RejectionReason)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		if reqData.TargetStatus == certification.StatusRejected && reqData.RejectionReason == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"rejection_reason": "Rejection reason is required!",
			})
		}

		c.Locals("requestID", requestID)
		c.Locals("validatedTransition", reqData)
		return c.Next()
	}
}

// BulkTransition validates the bulk certificate status update request
func BulkTransition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkTransitionPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.TargetStatus = strings.ToUpper(strings.TrimSpace(reqData.TargetStatus))
		reqData.RejectionReason = strings.TrimSpace(reqData.RejectionReason)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedBulkTransition", reqData)
		return c.Next()
	}
}

// BulkRole validates the bulk role change request
func BulkRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkRolePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedBulkRole", reqData)
		return c.Next()
	}
}

// BulkUsers validates a user-id list request
func BulkUsers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BulkUsersPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedBulkUsers", reqData)
		return c.Next()
	}
}

// BatchEmail validates the batch email request
func BatchEmail() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(BatchEmailPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.BatchCode = strings.TrimSpace(reqData.BatchCode)
		reqData.Kind = strings.ToUpper(strings.TrimSpace(reqData.Kind))
		reqData.Note = strings.TrimSpace(reqData.Note)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedBatchEmail", reqData)
		return c.Next()
	}
}

// validationErrors flattens validator.v10 errors into the field->message
// shape the handlers return.
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[strings.ToLower(fe.Field())] = "Failed validation: " + fe.Tag()
		}
		return errors
	}
	errors["body"] = err.Error()
	return errors
}
