// services/clock.go
package services

import "badminton-score-system/models"

// freshClock restarts the duration tracker: running, from now, zero offset.
func freshClock(state *models.MatchState, now int64) {
	startedAt := now
	state.ClockRunning = true
	state.ClockStartedAt = &startedAt
	state.ClockElapsedMs = 0
}

// liveElapsedAt is the wall-clock time the clock has been running: the frozen
// offset plus the current running stretch, if any.
func liveElapsedAt(state models.MatchState, now int64) int64 {
	if state.ClockRunning && state.ClockStartedAt != nil {
		return state.ClockElapsedMs + now - *state.ClockStartedAt
	}
	return state.ClockElapsedMs
}

// toggleClock pauses a running clock (capturing the live elapsed time as the
// new frozen offset) or resumes a paused one from now.
func toggleClock(state models.MatchState, now int64) models.MatchState {
	next := state.Clone()

	if state.ClockRunning {
		next.ClockElapsedMs = liveElapsedAt(state, now)
		next.ClockRunning = false
		next.ClockStartedAt = nil
		return next
	}

	startedAt := now
	next.ClockRunning = true
	next.ClockStartedAt = &startedAt
	return next
}

// freezeClock stops the clock at the given elapsed total. Used when a
// match-ending point lands, as part of the same transition.
func freezeClock(state *models.MatchState, elapsedMs int64) {
	state.ClockElapsedMs = elapsedMs
	state.ClockRunning = false
	state.ClockStartedAt = nil
}
