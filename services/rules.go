// services/rules.go
//
// Pure transition functions for the match state machine. Every function takes
// the current state and returns a complete new state; the caller (the match
// service) decides whether to commit it. None of them touch the database.
package services

import (
	"strings"

	"github.com/google/uuid"

	"badminton-score-system/models"
)

// pointOutcome tags what a point transition did, so the HTTP layer can pick
// the right notice and the doubles rotation stays tied to serve retention.
type pointOutcome struct {
	Rejected      bool // match already decided, positive delta refused
	Won           bool // the point completed a game
	MatchWon      bool // the game completed the match
	RetainedServe bool // scorer was already serving before the point
	WinnerName    string
}

func clampPoints(value, maxPoint int) int {
	if value < 0 {
		return 0
	}
	if value > maxPoint {
		return maxPoint
	}
	return value
}

// didWinGame evaluates the scorer's post-increment score against the
// untouched opponent score. The hard cap always wins; below raceTo never
// wins; at or past raceTo the winByTwo lead rule decides.
func didWinGame(playerScore, opponentScore int, state models.MatchState) bool {
	if playerScore >= state.MaxPoint {
		return true
	}
	if playerScore < state.RaceTo {
		return false
	}
	if !state.WinByTwo {
		return true
	}
	return playerScore-opponentScore >= 2
}

// nextGameNumber keeps completed-game numbers strictly increasing even after
// the oldest entries have been trimmed off the bounded log.
func nextGameNumber(games []models.CompletedGame) int {
	if len(games) == 0 {
		return 1
	}
	return games[0].Number + 1
}

// applyPointDelta is the heart of the engine: clamp the score, detect a game
// win, rotate the doubles serving partner on a serve-retaining point, record
// the completed game, and freeze the clock if the match just ended.
func applyPointDelta(state models.MatchState, playerID models.PlayerID, delta int, now int64) (models.MatchState, pointOutcome) {
	if state.MatchWinner != nil && delta > 0 {
		return state, pointOutcome{Rejected: true}
	}

	index := state.PlayerIndex(playerID)
	if index < 0 {
		return state, pointOutcome{Rejected: true}
	}

	next := state.Clone()
	scorer := &next.Players[index]
	scorer.Points = clampPoints(scorer.Points+delta, next.MaxPoint)

	if delta < 0 {
		// Corrections never move the serve or the rotation.
		return next, pointOutcome{}
	}

	wasServing := state.Server == playerID
	opponent := next.Players[(index+1)%2]
	outcome := pointOutcome{RetainedServe: wasServing, WinnerName: scorer.Name}

	if !didWinGame(scorer.Points, opponent.Points, next) {
		next.Server = playerID
		if next.DoublesMode && wasServing {
			// Service-team point: serve stays with the team but switches
			// between the partners.
			rotateRightCourtTeammate(next.Players[index], next.TeammateServerMap)
		}
		return next, outcome
	}

	liveElapsed := liveElapsedAt(state, now)

	completed := models.CompletedGame{
		ID:         uuid.NewString(),
		Number:     nextGameNumber(next.CompletedGames),
		Timestamp:  now,
		WinnerID:   playerID,
		WinnerName: scorer.Name,
		DurationMs: liveElapsed,
		Scores:     make(map[models.PlayerID]models.GameScore, len(next.Players)),
	}
	for _, player := range next.Players {
		completed.Scores[player.ID] = models.GameScore{Name: player.Name, Points: player.Points}
	}

	for i := range next.Players {
		next.Players[i].Points = 0
	}
	scorer.Games++

	next.CompletedGames = append([]models.CompletedGame{completed}, next.CompletedGames...)
	if len(next.CompletedGames) > models.GameHistoryLimit {
		next.CompletedGames = next.CompletedGames[:models.GameHistoryLimit]
	}
	next.Server = playerID
	outcome.Won = true

	if scorer.Games >= models.GamesNeeded(next.BestOf) {
		winner := playerID
		next.MatchWinner = &winner
		freezeClock(&next, liveElapsed)
		outcome.MatchWon = true
	}

	return next, outcome
}

// resetGame zeroes both scores; games, winner, clock and history are kept.
// Used to correct a misscored game without losing match progress.
func resetGame(state models.MatchState) models.MatchState {
	next := state.Clone()
	for i := range next.Players {
		next.Players[i].Points = 0
	}
	return next
}

// resetMatch starts over: scores and games to zero, winner cleared, server
// back to playerA, right-court slots back to defaults, clock fresh-running.
// Completed games and saved names survive until explicitly cleared.
func resetMatch(state models.MatchState, now int64) models.MatchState {
	next := state.Clone()
	for i := range next.Players {
		next.Players[i].Points = 0
		next.Players[i].Games = 0
	}
	next.MatchWinner = nil
	next.Server = models.PlayerA
	next.TeammateServerMap = normalizeTeammateServerMap(next.Players, nil)
	freshClock(&next, now)
	return next
}

// swapEnds reverses the player order; scores and serve are untouched.
func swapEnds(state models.MatchState) models.MatchState {
	next := state.Clone()
	for i, j := 0, len(next.Players)-1; i < j; i, j = i+1, j-1 {
		next.Players[i], next.Players[j] = next.Players[j], next.Players[i]
	}
	return next
}

// toggleServer flips the serve unconditionally (manual override).
func toggleServer(state models.MatchState) models.MatchState {
	next := state.Clone()
	next.Server = models.Opponent(next.Server)
	return next
}

// setServer assigns the serve iff the id names a known player.
func setServer(state models.MatchState, playerID models.PlayerID) (models.MatchState, bool) {
	if state.PlayerIndex(playerID) < 0 {
		return state, false
	}
	next := state.Clone()
	next.Server = playerID
	return next, true
}

// setName trims the name; an empty result reverts to the built-in default.
func setName(state models.MatchState, playerID models.PlayerID, rawName string) (models.MatchState, bool) {
	index := state.PlayerIndex(playerID)
	if index < 0 {
		return state, false
	}

	trimmed := strings.TrimSpace(rawName)
	if trimmed == "" {
		trimmed = models.DefaultName(playerID)
	}

	next := state.Clone()
	next.Players[index].Name = trimmed
	return next, true
}

// changeRaceTo validates the target score: anything below the badminton floor
// falls back to the default, anything above the cap is clamped to it.
func changeRaceTo(state models.MatchState, value int) models.MatchState {
	next := state.Clone()
	switch {
	case value < models.MinRaceTo:
		next.RaceTo = models.DefaultRaceTo
	case value > next.MaxPoint:
		next.RaceTo = next.MaxPoint
	default:
		next.RaceTo = value
	}
	return next
}

// changeBestOf reclamps every game count to the new threshold and recomputes
// the winner. If both players qualify, array order decides. A winner decided
// this way still freezes the clock; clearing the winner leaves the clock
// as-is for a manual resume.
func changeBestOf(state models.MatchState, bestOf int, now int64) (models.MatchState, bool) {
	if !models.IsValidBestOf(bestOf) {
		return state, false
	}

	next := state.Clone()
	next.BestOf = bestOf
	needed := models.GamesNeeded(bestOf)

	next.MatchWinner = nil
	for i := range next.Players {
		if next.Players[i].Games > needed {
			next.Players[i].Games = needed
		}
		if next.MatchWinner == nil && next.Players[i].Games >= needed {
			winner := next.Players[i].ID
			next.MatchWinner = &winner
		}
	}

	if next.MatchWinner != nil && next.ClockRunning {
		freezeClock(&next, liveElapsedAt(state, now))
	}
	return next, true
}

// toggleWinByTwo takes effect on the next point evaluated, never
// retroactively.
func toggleWinByTwo(state models.MatchState, enabled bool) models.MatchState {
	next := state.Clone()
	next.WinByTwo = enabled
	return next
}

// clearHistory empties the completed-games log.
func clearHistory(state models.MatchState) models.MatchState {
	next := state.Clone()
	next.CompletedGames = []models.CompletedGame{}
	return next
}
