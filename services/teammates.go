// services/teammates.go
package services

import (
	"strings"

	"badminton-score-system/models"
)

// normalizeTeammates coerces a stored teammate list to exactly two entries,
// filling anything missing or malformed from the player's defaults.
func normalizeTeammates(playerID models.PlayerID, stored []models.TeammateState) []models.TeammateState {
	defaults := models.DefaultTeammates(playerID)
	if len(stored) == 0 {
		return defaults
	}

	normalized := make([]models.TeammateState, len(defaults))
	for i, fallback := range defaults {
		if i >= len(stored) {
			normalized[i] = fallback
			continue
		}

		mate := fallback
		if stored[i].ID != "" {
			mate.ID = stored[i].ID
		}
		if stored[i].Name != "" {
			mate.Name = stored[i].Name
		}
		normalized[i] = mate
	}
	return normalized
}

// normalizeTeammateServerMap keeps a stored right-court assignment only if it
// names one of that player's actual teammates; otherwise the first teammate
// takes the slot.
func normalizeTeammateServerMap(players []models.PlayerState, stored map[models.PlayerID]string) map[models.PlayerID]string {
	normalized := models.DefaultTeammateServerMap()

	for _, player := range players {
		storedID := stored[player.ID]
		hasStored := false
		if storedID != "" {
			for _, mate := range player.Teammates {
				if mate.ID == storedID {
					hasStored = true
					break
				}
			}
		}

		switch {
		case hasStored:
			normalized[player.ID] = storedID
		case len(player.Teammates) > 0:
			normalized[player.ID] = player.Teammates[0].ID
		}
	}
	return normalized
}

// rotateRightCourtTeammate swaps which partner occupies the right-court
// serving slot. Called on a serve-retaining point by the serving team.
func rotateRightCourtTeammate(player models.PlayerState, serverMap map[models.PlayerID]string) {
	if len(player.Teammates) < 2 {
		return
	}

	currentRightID, ok := serverMap[player.ID]
	if !ok {
		currentRightID = player.Teammates[0].ID
	}
	for _, mate := range player.Teammates {
		if mate.ID != currentRightID {
			serverMap[player.ID] = mate.ID
			return
		}
	}
	serverMap[player.ID] = player.Teammates[0].ID
}

// swapTeammatePositions manually flips a team's right-court partner. Reports
// false when the player is unknown or has fewer than two teammates.
func swapTeammatePositions(state models.MatchState, playerID models.PlayerID) (models.MatchState, bool) {
	index := state.PlayerIndex(playerID)
	if index < 0 || len(state.Players[index].Teammates) < 2 {
		return state, false
	}

	next := state.Clone()
	rotateRightCourtTeammate(next.Players[index], next.TeammateServerMap)
	return next, true
}

// setTeammateName trims and stores the name. Unlike player names, an empty
// teammate name stays empty.
func setTeammateName(state models.MatchState, playerID models.PlayerID, teammateID, rawName string) (models.MatchState, bool) {
	index := state.PlayerIndex(playerID)
	if index < 0 {
		return state, false
	}

	next := state.Clone()
	for i, mate := range next.Players[index].Teammates {
		if mate.ID == teammateID {
			next.Players[index].Teammates[i].Name = strings.TrimSpace(rawName)
			return next, true
		}
	}
	return state, false
}

// toggleDoublesMode flips the flag without resetting any teammate data.
func toggleDoublesMode(state models.MatchState, enabled bool) models.MatchState {
	next := state.Clone()
	next.DoublesMode = enabled
	return next
}
