package courseValidator

import (
	"strconv"
	"strings"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreateCoursePayload is the admin course creation body.
type CreateCoursePayload struct {
	Title         string `json:"title" validate:"required,min=3"`
	Description   string `json:"description"`
	Provider      string `json:"provider" validate:"required"`
	DurationHours int64  `json:"duration_hours" validate:"gte=0"`
	ValidityYears int    `json:"validity_years" validate:"gte=0,lte=10"`
	Status        string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// CompletionPayload records the outcome of a finished enrollment.
type CompletionPayload struct {
	AssessmentResult string `json:"assessment_result" validate:"required,oneof=PASS FAIL"`
}

// CreateCourse validates the admin course creation request
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCoursePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Provider = strings.TrimSpace(reqData.Provider)
		reqData.Status = strings.ToUpper(strings.TrimSpace(reqData.Status))
		if reqData.Status == "" {
			reqData.Status = "DRAFT"
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// EnrollCourse validates the course id path param for enrollment
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, err := strconv.Atoi(strings.TrimSpace(c.Params("course_id")))
		if err != nil || courseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// RecordCompletion validates the enrollment completion request
func RecordCompletion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := strconv.Atoi(strings.TrimSpace(c.Params("enrollment_id")))
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		reqData := new(CompletionPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.AssessmentResult = strings.ToUpper(strings.TrimSpace(reqData.AssessmentResult))

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}

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
