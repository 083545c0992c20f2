package controllers

import (
	"github.com/BlindPI/bpiinc-arccm-42-sub024/database"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	courseModels "github.com/BlindPI/bpiinc-arccm-42-sub024/models/course"
	courseValidator "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/course"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a new training course (admin only)
func CreateCourse(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCoursePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course := courseModels.Course{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Provider:      reqData.Provider,
		DurationHours: reqData.DurationHours,
		ValidityYears: reqData.ValidityYears,
		Status:        reqData.Status,
		IsPublished:   reqData.Status == "ACTIVE",
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// GetCourses lists active published courses
func GetCourses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_published = ? AND status = ?", false, true, "ACTIVE")

	var total int64
	query.Count(&total)

	var courses []courseModels.Course
	if err := query.Offset((page - 1) * limit).Limit(limit).Order("title asc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
