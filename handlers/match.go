// handlers/match.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"badminton-score-system/services"
)

func SetupMatchRoutes(app *fiber.App, matchService *services.MatchService) {
	app.Get("/match", matchService.GetMatch)

	// Scoring intents
	app.Post("/match/players/:id/points", matchService.ChangePoints)
	app.Post("/match/undo", matchService.Undo)
	app.Post("/match/reset/game", matchService.ResetGame)
	app.Post("/match/reset/match", matchService.ResetMatch)

	// Serve control
	app.Post("/match/swap-ends", matchService.SwapEnds)
	app.Post("/match/server/toggle", matchService.ToggleServer)
	app.Put("/match/server", matchService.SetServer)

	// Names
	app.Put("/match/players/:id/name", matchService.SetName)
	app.Post("/match/players/:id/name/save", matchService.SaveName)
	app.Post("/match/players/:id/name/apply", matchService.ApplySavedName)
	app.Get("/match/saved-names", matchService.GetSavedNames)

	// Doubles partners
	app.Put("/match/players/:id/teammates/:mateId/name", matchService.SetTeammateName)
	app.Post("/match/players/:id/teammates/:mateId/name/save", matchService.SaveTeammateName)
	app.Post("/match/players/:id/teammates/:mateId/name/apply", matchService.ApplySavedTeammateName)
	app.Post("/match/players/:id/teammates/swap", matchService.SwapTeammates)
	app.Get("/match/rotation", matchService.GetRotation)

	// Settings
	app.Put("/match/settings/race-to", matchService.ChangeRaceTo)
	app.Put("/match/settings/best-of", matchService.ChangeBestOf)
	app.Put("/match/settings/win-by-two", matchService.ToggleWinByTwo)
	app.Put("/match/settings/doubles", matchService.ToggleDoubles)

	// Clock
	app.Post("/match/clock/toggle", matchService.ToggleClock)
	app.Get("/match/clock", matchService.GetClock)
	app.Get("/match/clock/stream", matchService.StreamClockSSE)

	// Game history and derived stats
	app.Get("/match/history", matchService.GetHistory)
	app.Delete("/match/history", matchService.ClearHistory)
	app.Get("/match/insights", matchService.GetInsights)
}
