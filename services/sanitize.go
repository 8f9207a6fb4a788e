// services/sanitize.go
//
// Loading the stored blob must never fail: every field is decoded on its own
// and anything absent or wrong-shaped degrades to its default. Malformed
// storage is a recovery situation, not an error.
package services

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"badminton-score-system/models"
)

type storedPlayer struct {
	ID        *string                `json:"id"`
	Name      *string                `json:"name"`
	Points    *int                   `json:"points"`
	Games     *int                   `json:"games"`
	Teammates []models.TeammateState `json:"teammates"`
}

type storedGame struct {
	ID         *string                              `json:"id"`
	Number     *int                                 `json:"number"`
	Timestamp  *int64                               `json:"timestamp"`
	WinnerID   *string                              `json:"winnerId"`
	WinnerName *string                              `json:"winnerName"`
	DurationMs *int64                               `json:"durationMs"`
	Scores     map[models.PlayerID]models.GameScore `json:"scores"`
}

func decodeField(fields map[string]json.RawMessage, key string, target any) bool {
	raw, ok := fields[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, target) == nil
}

func isPlayerID(value string) bool {
	return value == string(models.PlayerA) || value == string(models.PlayerB)
}

// decodeStoredState rebuilds a valid MatchState from whatever is in the slot.
func decodeStoredState(raw []byte, now int64) models.MatchState {
	state := models.DefaultState(now)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return state
	}

	// Scoring configuration. bestOf must be one of the enumerated options;
	// raceTo only gets the maxPoint ceiling here; the interactive floor does
	// not apply to stored values.
	var maxPoint int
	if decodeField(fields, "maxPoint", &maxPoint) && maxPoint > 0 {
		state.MaxPoint = maxPoint
	}
	var raceTo int
	if decodeField(fields, "raceTo", &raceTo) && raceTo > 0 {
		state.RaceTo = raceTo
	}
	if state.RaceTo > state.MaxPoint {
		state.RaceTo = state.MaxPoint
	}
	var winByTwo bool
	if decodeField(fields, "winByTwo", &winByTwo) {
		state.WinByTwo = winByTwo
	}
	var bestOf int
	if decodeField(fields, "bestOf", &bestOf) && models.IsValidBestOf(bestOf) {
		state.BestOf = bestOf
	}

	// Players: merge stored entries over the two defaults, normalize
	// teammates to exactly two, clamp scores into range.
	var players []storedPlayer
	decodeField(fields, "players", &players)
	gamesNeeded := models.GamesNeeded(state.BestOf)
	for i := range state.Players {
		if i >= len(players) {
			break
		}
		stored := players[i]
		player := &state.Players[i]

		if stored.ID != nil && isPlayerID(*stored.ID) {
			player.ID = models.PlayerID(*stored.ID)
		}
		if stored.Name != nil && strings.TrimSpace(*stored.Name) != "" {
			player.Name = *stored.Name
		}
		if stored.Points != nil {
			player.Points = clampPoints(*stored.Points, state.MaxPoint)
		}
		if stored.Games != nil {
			games := *stored.Games
			if games < 0 {
				games = 0
			}
			if games > gamesNeeded {
				games = gamesNeeded
			}
			player.Games = games
		}
		player.Teammates = normalizeTeammates(player.ID, stored.Teammates)
	}
	if state.Players[0].ID == state.Players[1].ID {
		state.Players[0].ID = models.PlayerA
		state.Players[1].ID = models.PlayerB
	}

	var server string
	if decodeField(fields, "server", &server) && isPlayerID(server) {
		state.Server = models.PlayerID(server)
	}

	// The winner is kept only when the game counts still justify it;
	// otherwise it is rederived so the winner/games invariant holds.
	state.MatchWinner = nil
	var storedWinner *string
	decodeField(fields, "matchWinner", &storedWinner)
	for _, player := range state.Players {
		if player.Games >= gamesNeeded {
			winner := player.ID
			if storedWinner != nil && isPlayerID(*storedWinner) && models.PlayerID(*storedWinner) == player.ID {
				state.MatchWinner = &winner
				break
			}
			if state.MatchWinner == nil {
				state.MatchWinner = &winner
			}
		}
	}

	// Completed games: backfill missing numbers by position, floor durations,
	// trim to the cap.
	var games []storedGame
	if decodeField(fields, "completedGames", &games) {
		completed := make([]models.CompletedGame, 0, len(games))
		for i, stored := range games {
			game := models.CompletedGame{Number: i + 1}
			if stored.ID != nil && *stored.ID != "" {
				game.ID = *stored.ID
			} else {
				game.ID = uuid.NewString()
			}
			if stored.Number != nil && *stored.Number > 0 {
				game.Number = *stored.Number
			}
			if stored.Timestamp != nil {
				game.Timestamp = *stored.Timestamp
			}
			if stored.WinnerID != nil && isPlayerID(*stored.WinnerID) {
				game.WinnerID = models.PlayerID(*stored.WinnerID)
			} else {
				game.WinnerID = models.PlayerA
			}
			if stored.WinnerName != nil {
				game.WinnerName = *stored.WinnerName
			}
			if stored.DurationMs != nil && *stored.DurationMs > 0 {
				game.DurationMs = *stored.DurationMs
			}
			if stored.Scores != nil {
				game.Scores = stored.Scores
			} else {
				game.Scores = map[models.PlayerID]models.GameScore{}
			}
			completed = append(completed, game)
			if len(completed) == models.GameHistoryLimit {
				break
			}
		}
		state.CompletedGames = completed
	}

	// Saved names: trimmed, non-empty, deduped, capped.
	var names []string
	if decodeField(fields, "savedNames", &names) {
		saved := make([]string, 0, models.SavedNamesLimit)
		seen := map[string]bool{}
		for _, name := range names {
			trimmed := strings.TrimSpace(name)
			if trimmed == "" {
				continue
			}
			key := savedNameKey(trimmed)
			if seen[key] {
				continue
			}
			seen[key] = true
			saved = append(saved, trimmed)
			if len(saved) == models.SavedNamesLimit {
				break
			}
		}
		state.SavedNames = saved
	}

	// Clock: elapsed floored at zero; a running clock with no start gets one
	// synthesized now.
	var clockRunning bool
	if decodeField(fields, "clockRunning", &clockRunning) {
		state.ClockRunning = clockRunning
	}
	var clockElapsed int64
	state.ClockElapsedMs = 0
	if decodeField(fields, "clockElapsedMs", &clockElapsed) && clockElapsed > 0 {
		state.ClockElapsedMs = clockElapsed
	}
	var clockStartedAt *int64
	if decodeField(fields, "clockStartedAt", &clockStartedAt) && clockStartedAt != nil {
		state.ClockStartedAt = clockStartedAt
	} else if state.ClockRunning {
		startedAt := now
		state.ClockStartedAt = &startedAt
	} else {
		state.ClockStartedAt = nil
	}

	var doublesMode bool
	if decodeField(fields, "doublesMode", &doublesMode) {
		state.DoublesMode = doublesMode
	}

	var serverMap map[models.PlayerID]string
	decodeField(fields, "teammateServerMap", &serverMap)
	state.TeammateServerMap = normalizeTeammateServerMap(state.Players, serverMap)

	var lastUpdated int64
	if decodeField(fields, "lastUpdated", &lastUpdated) && lastUpdated > 0 {
		state.LastUpdated = lastUpdated
	}

	return state
}

// encodeState serializes the full aggregate for the slot.
func encodeState(state models.MatchState) ([]byte, error) {
	return json.Marshal(state)
}
