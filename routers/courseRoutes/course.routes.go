package courseRoutes

import (
	controllers "github.com/BlindPI/bpiinc-arccm-42-sub024/controllers/course"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	courseValidator "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up course catalogue and enrollment routes
func SetupCourseRoutes(app *fiber.App) {
	staffOnly := middleware.RequireRole(models.RoleInstructor, models.RoleAdmin, models.RoleSuperAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	courseGroup := app.Group("/course")
	courseGroup.Get("/list", middleware.JWTMiddleware, controllers.GetCourses)
	courseGroup.Post("/", middleware.JWTMiddleware, adminOnly, courseValidator.CreateCourse(), controllers.CreateCourse)
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, courseValidator.EnrollCourse(), controllers.EnrollInCourse)

	enrollGroup := app.Group("/enrollments")
	enrollGroup.Get("/mine", middleware.JWTMiddleware, controllers.GetMyEnrollments)
	enrollGroup.Post("/:enrollment_id/complete", middleware.JWTMiddleware, staffOnly, courseValidator.RecordCompletion(), controllers.RecordCompletion)
}
