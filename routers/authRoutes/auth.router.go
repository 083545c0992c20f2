package authRoutes

import (
	authControllers "github.com/BlindPI/bpiinc-arccm-42-sub024/controllers/auth"
	authValidators "github.com/BlindPI/bpiinc-arccm-42-sub024/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
}
