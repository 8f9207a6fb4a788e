// handlers/preferences.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"badminton-score-system/services"
)

func SetupPreferenceRoutes(app *fiber.App, prefService *services.PreferenceService) {
	app.Get("/preferences", prefService.GetPreferences)
	app.Put("/preferences/language", prefService.SetLanguage)
	app.Put("/preferences/:flag", prefService.SetFlag)
}
