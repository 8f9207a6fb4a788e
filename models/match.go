// models/match.go
package models

import "time"

// PlayerID is a fixed identity; a match always has exactly playerA and playerB.
type PlayerID string

const (
	PlayerA PlayerID = "playerA"
	PlayerB PlayerID = "playerB"
)

const (
	// StorageKey is the single slot the whole match state lives under.
	StorageKey = "bst-score-state"

	HistoryLimit     = 25 // undo snapshots
	GameHistoryLimit = 25 // completed games kept
	SavedNamesLimit  = 8

	DefaultRaceTo   = 21
	DefaultMaxPoint = 30
	MinRaceTo       = 11
)

// BestOfOptions are the only accepted bestOf values.
var BestOfOptions = []int{1, 3, 5}

func IsValidBestOf(value int) bool {
	for _, option := range BestOfOptions {
		if option == value {
			return true
		}
	}
	return false
}

// GamesNeeded is how many game wins take the match for a given bestOf.
func GamesNeeded(bestOf int) int {
	return (bestOf + 1) / 2
}

type TeammateState struct {
	ID   string `json:"id"`
	Name string `json:"name"` // empty is allowed; display falls back to the team name
}

type PlayerState struct {
	ID        PlayerID        `json:"id"`
	Name      string          `json:"name"`
	Points    int             `json:"points"`
	Games     int             `json:"games"`
	Teammates []TeammateState `json:"teammates"`
}

// GameScore is the per-player line frozen into a CompletedGame.
type GameScore struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type CompletedGame struct {
	ID         string                 `json:"id"`
	Number     int                    `json:"number"`
	Timestamp  int64                  `json:"timestamp"` // unix millis
	WinnerID   PlayerID               `json:"winnerId"`
	WinnerName string                 `json:"winnerName"`
	DurationMs int64                  `json:"durationMs"`
	Scores     map[PlayerID]GameScore `json:"scores"`
}

// MatchState is the root aggregate. It is only ever replaced wholesale by the
// rules engine; nothing mutates a committed value in place.
type MatchState struct {
	Players           []PlayerState       `json:"players"`
	RaceTo            int                 `json:"raceTo"`
	MaxPoint          int                 `json:"maxPoint"`
	WinByTwo          bool                `json:"winByTwo"`
	BestOf            int                 `json:"bestOf"`
	Server            PlayerID            `json:"server"`
	LastUpdated       int64               `json:"lastUpdated"` // unix millis
	MatchWinner       *PlayerID           `json:"matchWinner"`
	CompletedGames    []CompletedGame     `json:"completedGames"` // newest first
	ClockRunning      bool                `json:"clockRunning"`
	ClockStartedAt    *int64              `json:"clockStartedAt"` // unix millis, nil while paused
	ClockElapsedMs    int64               `json:"clockElapsedMs"`
	SavedNames        []string            `json:"savedNames"` // most recently used first
	DoublesMode       bool                `json:"doublesMode"`
	TeammateServerMap map[PlayerID]string `json:"teammateServerMap"`
}

func NowMs() int64 {
	return time.Now().UnixMilli()
}

// DefaultName is the built-in display name a player reverts to when cleared.
func DefaultName(id PlayerID) string {
	if id == PlayerB {
		return "Player B"
	}
	return "Player A"
}

// DefaultTeammates returns the two stable partner slots for a team. Names
// start empty; display falls back to the team name until one is entered.
func DefaultTeammates(id PlayerID) []TeammateState {
	return []TeammateState{
		{ID: string(id) + "-mate-1"},
		{ID: string(id) + "-mate-2"},
	}
}

// DefaultTeammateServerMap puts each team's first partner in the right-court
// serving slot.
func DefaultTeammateServerMap() map[PlayerID]string {
	return map[PlayerID]string{
		PlayerA: DefaultTeammates(PlayerA)[0].ID,
		PlayerB: DefaultTeammates(PlayerB)[0].ID,
	}
}

// DefaultState builds a fresh match: zero scores, server playerA, clock
// running from now.
func DefaultState(now int64) MatchState {
	startedAt := now
	return MatchState{
		Players: []PlayerState{
			{ID: PlayerA, Name: DefaultName(PlayerA), Teammates: DefaultTeammates(PlayerA)},
			{ID: PlayerB, Name: DefaultName(PlayerB), Teammates: DefaultTeammates(PlayerB)},
		},
		RaceTo:            DefaultRaceTo,
		MaxPoint:          DefaultMaxPoint,
		WinByTwo:          true,
		BestOf:            3,
		Server:            PlayerA,
		LastUpdated:       now,
		CompletedGames:    []CompletedGame{},
		ClockRunning:      true,
		ClockStartedAt:    &startedAt,
		SavedNames:        []string{},
		TeammateServerMap: DefaultTeammateServerMap(),
	}
}

// Clone deep-copies the aggregate so transitions can build a new value
// without touching the committed one.
func (m MatchState) Clone() MatchState {
	next := m

	next.Players = make([]PlayerState, len(m.Players))
	for i, player := range m.Players {
		copied := player
		copied.Teammates = make([]TeammateState, len(player.Teammates))
		copy(copied.Teammates, player.Teammates)
		next.Players[i] = copied
	}

	next.CompletedGames = make([]CompletedGame, len(m.CompletedGames))
	for i, game := range m.CompletedGames {
		copied := game
		copied.Scores = make(map[PlayerID]GameScore, len(game.Scores))
		for id, score := range game.Scores {
			copied.Scores[id] = score
		}
		next.CompletedGames[i] = copied
	}

	next.SavedNames = make([]string, len(m.SavedNames))
	copy(next.SavedNames, m.SavedNames)

	next.TeammateServerMap = make(map[PlayerID]string, len(m.TeammateServerMap))
	for id, mateID := range m.TeammateServerMap {
		next.TeammateServerMap[id] = mateID
	}

	if m.MatchWinner != nil {
		winner := *m.MatchWinner
		next.MatchWinner = &winner
	}
	if m.ClockStartedAt != nil {
		startedAt := *m.ClockStartedAt
		next.ClockStartedAt = &startedAt
	}

	return next
}

// PlayerIndex returns the slice position of the given id, or -1.
func (m MatchState) PlayerIndex(id PlayerID) int {
	for i, player := range m.Players {
		if player.ID == id {
			return i
		}
	}
	return -1
}

// Opponent returns the other fixed id.
func Opponent(id PlayerID) PlayerID {
	if id == PlayerA {
		return PlayerB
	}
	return PlayerA
}
