package controllers

import (
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	courseValidator "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/course"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the current user in an active course
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ?", courseID, false, "ACTIVE").First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	}

	var existing courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
	}

	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: uint(courseID),
		Status:   courseModels.EnrollmentEnrolled,
	}

	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// GetMyEnrollments lists the current user's enrollments
func GetMyEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}

// RecordCompletion marks an enrollment COMPLETED with its assessment
// outcome. The outcome decides which certificate paths are open later:
// a FAIL can only ever be archived.
func RecordCompletion(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCompletion").(*courseValidator.CompletionPayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.Status == courseModels.EnrollmentCompleted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Enrollment already completed!", nil)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":            courseModels.EnrollmentCompleted,
		"assessment_result": reqData.AssessmentResult,
		"progress":          100.0,
		"completed_at":      now,
	}
	if err := database.Database.Db.Model(&enrollment).Updates(updates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record completion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completion recorded successfully!", fiber.Map{
		"enrollment_id":     enrollment.ID,
		"status":            courseModels.EnrollmentCompleted,
		"assessment_result": reqData.AssessmentResult,
		"completed_at":      now,
	})
}
