package controllers

import (
	"time"

	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models/certification"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"

	"github.com/gofiber/fiber/v2"
)

// RequestCertificate submits a certificate request for a completed course
func RequestCertificate(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	batchCode, _ := c.Locals("batchCode").(string)

	// Check enrollment and completion
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	if enrollment.Status != courseModels.EnrollmentCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before requesting a certificate!", nil)
	}

	// Check if a request is already open or granted
	var existingRequest certification.CertificateRequest
	if err := database.Database.Db.Where("enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).
		Order("created_at desc").First(&existingRequest).Error; err == nil {
		switch existingRequest.Status {
		case certification.StatusPending, certification.StatusProcessing:
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate request already pending!", nil)
		case certification.StatusApproved:
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Certificate already issued!", nil)
		}
	}

	request := certification.CertificateRequest{
		UserID:           user.ID,
		RecipientName:    user.Name,
		RecipientEmail:   user.Email,
		CourseID:         uint(courseID),
		EnrollmentID:     enrollment.ID,
		AssessmentResult: enrollment.AssessmentResult,
		BatchCode:        batchCode,
		Status:           certification.StatusPending,
		RequestedAt:      time.Now(),
	}

	if err := database.Database.Db.Create(&request).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit certificate request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate request submitted successfully!", request)
}

// GetMyCertificates gets all certificates for the current user
func GetMyCertificates(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type CertificateWithCourse struct {
		certification.Certificate
		CourseName string `json:"course_name"`
	}

	var certificates []certification.Certificate
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("issued_at desc").Find(&certificates).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch certificates!", nil)
	}

	result := make([]CertificateWithCourse, len(certificates))
	for i, cert := range certificates {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", cert.CourseID).First(&course)
		result[i] = CertificateWithCourse{
			Certificate: cert,
			CourseName:  course.Title,
		}
	}

	// Also surface open requests
	var openRequests int64
	database.Database.Db.Model(&certification.CertificateRequest{}).
		Where("user_id = ? AND status IN ? AND is_deleted = ?",
			userID, []string{certification.StatusPending, certification.StatusProcessing}, false).
		Count(&openRequests)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", fiber.Map{
		"certificates":  result,
		"open_requests": openRequests,
	})
}
