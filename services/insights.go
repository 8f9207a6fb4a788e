// services/insights.go
package services

import (
	"github.com/gofiber/fiber/v2"

	"badminton-score-system/models"
	"badminton-score-system/utils"
)

// GetInsights derives headline stats from the completed-games log and the
// live state. Everything here is recomputed on request; nothing is stored.
func (s *MatchService) GetInsights(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.match
	gamesPlayed := len(state.CompletedGames)

	pointsWon := map[models.PlayerID]int{}
	gamesWon := map[models.PlayerID]int{}
	var totalDuration, longest int64
	shortest := int64(-1)
	for _, game := range state.CompletedGames {
		gamesWon[game.WinnerID]++
		for id, score := range game.Scores {
			pointsWon[id] += score.Points
		}
		totalDuration += game.DurationMs
		if game.DurationMs > longest {
			longest = game.DurationMs
		}
		if shortest < 0 || game.DurationMs < shortest {
			shortest = game.DurationMs
		}
	}

	var avgDuration int64
	if gamesPlayed > 0 {
		avgDuration = totalDuration / int64(gamesPlayed)
	}
	if shortest < 0 {
		shortest = 0
	}

	// Current winning streak: consecutive newest entries by the same player.
	var streakPlayer models.PlayerID
	streak := 0
	if gamesPlayed > 0 {
		streakPlayer = state.CompletedGames[0].WinnerID
		for _, game := range state.CompletedGames {
			if game.WinnerID != streakPlayer {
				break
			}
			streak++
		}
	}

	elapsed := liveElapsedAt(state, models.NowMs())

	players := make([]fiber.Map, 0, len(state.Players))
	for _, player := range state.Players {
		players = append(players, fiber.Map{
			"id":        player.ID,
			"name":      player.Name,
			"gamesWon":  gamesWon[player.ID],
			"pointsWon": pointsWon[player.ID],
		})
	}

	return c.JSON(fiber.Map{
		"gamesPlayed":        gamesPlayed,
		"players":            players,
		"avgGameDurationMs":  avgDuration,
		"avgGameDuration":    utils.FormatDuration(avgDuration),
		"longestGameMs":      longest,
		"shortestGameMs":     shortest,
		"matchElapsedMs":     elapsed,
		"matchElapsed":       utils.FormatDuration(elapsed),
		"currentStreakOwner": streakPlayer,
		"currentStreak":      streak,
	})
}
