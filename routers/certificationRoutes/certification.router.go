package certificationRoutes

import (
	controllers "github.com/BlindPI/bpiinc-arccm-42-sub024/controllers/certification"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/middleware"
	"github.com/BlindPI/bpiinc-arccm-42-sub024/models"
	certValidators "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/certification"

	"github.com/gofiber/fiber/v2"
)

// SetupCertificationRoutes sets up the student-facing certificate routes
func SetupCertificationRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")
	courseGroup.Post("/:course_id/certificate/request", middleware.JWTMiddleware, certValidators.RequestCertificate(), controllers.RequestCertificate)

	certGroup := app.Group("/certificates")
	certGroup.Get("/mine", middleware.JWTMiddleware, controllers.GetMyCertificates)
}

// SetupAdminCertificationRoutes sets up the review, bulk, and job routes
func SetupAdminCertificationRoutes(app *fiber.App, h *controllers.Handler) {
	adminOnly := middleware.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	// Certificate review
	certGroup := app.Group("/admin/certificate")
	certGroup.Post("/:request_id/transition", middleware.JWTMiddleware, adminOnly, certValidators.TransitionCertificate(), h.TransitionCertificate)

	listGroup := app.Group("/admin/certificates")
	listGroup.Get("/pending", middleware.JWTMiddleware, adminOnly, h.GetPendingRequests)
	listGroup.Get("/issued", middleware.JWTMiddleware, adminOnly, h.GetIssuedCertificates)

	// Bulk operations
	bulkGroup := app.Group("/admin/bulk")
	bulkGroup.Post("/certificates/transition", middleware.JWTMiddleware, adminOnly, certValidators.BulkTransition(), h.BulkTransitionCertificates)
	bulkGroup.Post("/users/role", middleware.JWTMiddleware, adminOnly, certValidators.BulkRole(), h.BulkUpdateUserRoles)
	bulkGroup.Post("/users/deactivate", middleware.JWTMiddleware, adminOnly, certValidators.BulkUsers(), h.BulkDeactivateUsers)
	bulkGroup.Post("/email/batch", middleware.JWTMiddleware, adminOnly, certValidators.BatchEmail(), h.BulkSendBatchEmail)

	// Job triggers (scheduler or manual operator action)
	jobsGroup := app.Group("/admin/jobs")
	jobsGroup.Post("/retry-queue/run", middleware.JWTMiddleware, adminOnly, h.RunRetryQueue)
	jobsGroup.Post("/bounce-scan/run", middleware.JWTMiddleware, adminOnly, h.RunBounceScan)
	jobsGroup.Post("/generation-sweep/run", middleware.JWTMiddleware, adminOnly, h.RunGenerationSweep)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard")
	dashGroup.Get("/stats", middleware.JWTMiddleware, adminOnly, h.DashboardStats)
}
