// services/match_service.go
package services

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"badminton-score-system/models"
	"badminton-score-system/utils"
)

// MatchService owns the canonical match state and the undo stack. Every
// transition runs under the lock, standing in for the single-threaded event
// queue of the UI host: one intent at a time, run to completion, then the
// slot is written back best-effort.
type MatchService struct {
	DB *gorm.DB

	mu      sync.Mutex
	match   models.MatchState
	history []models.MatchState // pre-mutation snapshots, newest first
}

func NewMatchService(db *gorm.DB) *MatchService {
	s := &MatchService{DB: db}
	s.match = s.loadSlot()
	return s
}

// loadSlot reads the stored blob through the sanitizer. Any corruption, or a
// missing slot, yields a fresh default match; loading never fails.
func (s *MatchService) loadSlot() models.MatchState {
	now := models.NowMs()

	var slot models.StateSlot
	if err := s.DB.First(&slot, "key = ?", models.StorageKey).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ failed to read match slot, starting fresh: %v", err)
		}
		return models.DefaultState(now)
	}

	return decodeStoredState(slot.Data, now)
}

// persistLocked writes the current state into the slot. Failures are logged
// and swallowed: the in-memory match stays the source of truth.
func (s *MatchService) persistLocked() {
	data, err := encodeState(s.match)
	if err != nil {
		log.Printf("⚠️ failed to encode match state: %v", err)
		return
	}

	slot := models.StateSlot{Key: models.StorageKey, Data: data}
	if err := s.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&slot).Error; err != nil {
		log.Printf("⚠️ failed to persist match state: %v", err)
	}
}

// commitLocked pushes the pre-mutation state onto the bounded undo stack,
// stamps the new state and writes it through.
func (s *MatchService) commitLocked(next models.MatchState) {
	s.history = append([]models.MatchState{s.match}, s.history...)
	if len(s.history) > models.HistoryLimit {
		s.history = s.history[:models.HistoryLimit]
	}

	next.LastUpdated = models.NowMs()
	s.match = next
	s.persistLocked()
}

// Snapshot returns a deep copy of the current state.
func (s *MatchService) Snapshot() models.MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Clone()
}

// LastUpdatedMs implements the snapshot worker's state source.
func (s *MatchService) LastUpdatedMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.LastUpdated
}

// Flush rewrites the slot from the in-memory state.
func (s *MatchService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked()
}

// LiveElapsedMs is the clock reading right now.
func (s *MatchService) LiveElapsedMs() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return liveElapsedAt(s.match, models.NowMs())
}

func (s *MatchService) snapshotPayload(state models.MatchState) fiber.Map {
	elapsed := liveElapsedAt(state, models.NowMs())
	return fiber.Map{
		"match":           state,
		"gamesNeeded":     models.GamesNeeded(state.BestOf),
		"matchIsLive":     state.MatchWinner == nil,
		"liveElapsedMs":   elapsed,
		"elapsedDisplay":  utils.FormatDuration(elapsed),
		"lastUpdatedText": utils.FormatRelativeTime(state.LastUpdated),
	}
}

func parsePlayerID(c *fiber.Ctx) (models.PlayerID, error) {
	id := models.PlayerID(c.Params("id"))
	if id != models.PlayerA && id != models.PlayerB {
		return "", errors.New("unknown player id")
	}
	return id, nil
}

// GetMatch returns the full state snapshot plus derived fields.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(s.snapshotPayload(s.match))
}

// ChangePoints applies a +1/-1 point intent for a player.
func (s *MatchService) ChangePoints(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var input struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.Delta != 1 && input.Delta != -1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "delta must be +1 or -1"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome := applyPointDelta(s.match, playerID, input.Delta, models.NowMs())
	if outcome.Rejected {
		return c.JSON(fiber.Map{
			"notice": "match finished, start a new match to keep scoring",
			"match":  s.match,
		})
	}

	s.commitLocked(next)

	payload := s.snapshotPayload(s.match)
	switch {
	case outcome.MatchWon:
		payload["event"] = "match_won"
		log.Printf("🏆 %s wins the match", outcome.WinnerName)
	case outcome.Won:
		payload["event"] = "game_won"
		log.Printf("✅ %s wins the game", outcome.WinnerName)
	}
	return c.JSON(payload)
}

// Undo makes the most recent snapshot current again, verbatim.
func (s *MatchService) Undo(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return c.JSON(fiber.Map{"notice": "nothing to undo"})
	}

	s.match = s.history[0]
	s.history = s.history[1:]
	s.persistLocked()
	return c.JSON(s.snapshotPayload(s.match))
}

// ResetGame zeroes the points of the current game only.
func (s *MatchService) ResetGame(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(resetGame(s.match))
	return c.JSON(s.snapshotPayload(s.match))
}

// ResetMatch starts a fresh match, keeping game history and saved names.
func (s *MatchService) ResetMatch(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(resetMatch(s.match, models.NowMs()))
	return c.JSON(s.snapshotPayload(s.match))
}

// SwapEnds reverses which player renders on which side.
func (s *MatchService) SwapEnds(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(swapEnds(s.match))
	return c.JSON(s.snapshotPayload(s.match))
}

// ToggleServer flips the serve between the two players.
func (s *MatchService) ToggleServer(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(toggleServer(s.match))
	return c.JSON(s.snapshotPayload(s.match))
}

// SetServer assigns the serve to a specific player.
func (s *MatchService) SetServer(c *fiber.Ctx) error {
	var input struct {
		PlayerID string `json:"playerId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := setServer(s.match, models.PlayerID(input.PlayerID))
	if !ok {
		return c.JSON(fiber.Map{"notice": "unknown player id", "match": s.match})
	}
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// SetName renames a player; an empty name reverts to the default.
func (s *MatchService) SetName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, _ := setName(s.match, playerID, input.Name)
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// SetTeammateName renames a partner; empty stays empty (display falls back
// to the team name).
func (s *MatchService) SetTeammateName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := setTeammateName(s.match, playerID, c.Params("mateId"), input.Name)
	if !ok {
		return c.JSON(fiber.Map{"notice": "unknown teammate id", "match": s.match})
	}
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// SwapTeammates flips which partner holds the right-court slot.
func (s *MatchService) SwapTeammates(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := swapTeammatePositions(s.match, playerID)
	if !ok {
		return c.JSON(fiber.Map{"notice": "player has no teammates to swap", "match": s.match})
	}
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// SaveName stores the player's current name in the saved-names list.
func (s *MatchService) SaveName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.match.PlayerIndex(playerID)
	trimmed := strings.TrimSpace(s.match.Players[index].Name)
	if trimmed == "" {
		return c.JSON(fiber.Map{"notice": "cannot save empty name"})
	}

	next := s.match.Clone()
	next.SavedNames = upsertSavedName(next.SavedNames, trimmed)
	s.commitLocked(next)
	return c.JSON(fiber.Map{"saved": trimmed, "savedNames": s.match.SavedNames})
}

// SaveTeammateName stores a partner's current name in the saved-names list.
func (s *MatchService) SaveTeammateName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.match.PlayerIndex(playerID)
	mateID := c.Params("mateId")
	var trimmed string
	for _, mate := range s.match.Players[index].Teammates {
		if mate.ID == mateID {
			trimmed = strings.TrimSpace(mate.Name)
			break
		}
	}
	if trimmed == "" {
		return c.JSON(fiber.Map{"notice": "cannot save empty name"})
	}

	next := s.match.Clone()
	next.SavedNames = upsertSavedName(next.SavedNames, trimmed)
	s.commitLocked(next)
	return c.JSON(fiber.Map{"saved": trimmed, "savedNames": s.match.SavedNames})
}

// ApplySavedName writes a saved name onto a player without touching the list.
func (s *MatchService) ApplySavedName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	trimmed := strings.TrimSpace(input.Name)
	if trimmed == "" {
		return c.JSON(fiber.Map{"notice": "name is empty"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.match.Clone()
	next.Players[next.PlayerIndex(playerID)].Name = trimmed
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// ApplySavedTeammateName writes a saved name onto a partner slot.
func (s *MatchService) ApplySavedTeammateName(c *fiber.Ctx) error {
	playerID, err := parsePlayerID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	trimmed := strings.TrimSpace(input.Name)
	if trimmed == "" {
		return c.JSON(fiber.Map{"notice": "name is empty"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := setTeammateName(s.match, playerID, c.Params("mateId"), trimmed)
	if !ok {
		return c.JSON(fiber.Map{"notice": "unknown teammate id", "match": s.match})
	}
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// GetSavedNames lists the most-recently-used names.
func (s *MatchService) GetSavedNames(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(fiber.Map{"savedNames": s.match.SavedNames})
}

// ChangeRaceTo updates the points-to-win target.
func (s *MatchService) ChangeRaceTo(c *fiber.Ctx) error {
	var input struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(changeRaceTo(s.match, input.Value))
	return c.JSON(s.snapshotPayload(s.match))
}

// ChangeBestOf updates the match length and reclamps game counts.
func (s *MatchService) ChangeBestOf(c *fiber.Ctx) error {
	var input struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := changeBestOf(s.match, input.Value, models.NowMs())
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bestOf must be 1, 3 or 5"})
	}
	s.commitLocked(next)
	return c.JSON(s.snapshotPayload(s.match))
}

// ToggleWinByTwo flips the two-point-lead rule.
func (s *MatchService) ToggleWinByTwo(c *fiber.Ctx) error {
	var input struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(toggleWinByTwo(s.match, input.Enabled))
	return c.JSON(s.snapshotPayload(s.match))
}

// ToggleDoubles flips doubles mode without resetting teammate data.
func (s *MatchService) ToggleDoubles(c *fiber.Ctx) error {
	var input struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(toggleDoublesMode(s.match, input.Enabled))
	return c.JSON(s.snapshotPayload(s.match))
}

// ToggleClock pauses or resumes the match clock.
func (s *MatchService) ToggleClock(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitLocked(toggleClock(s.match, models.NowMs()))
	return c.JSON(s.snapshotPayload(s.match))
}

// GetClock reports the live clock reading.
func (s *MatchService) GetClock(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := liveElapsedAt(s.match, models.NowMs())
	return c.JSON(fiber.Map{
		"running":        s.match.ClockRunning,
		"elapsedMs":      elapsed,
		"elapsedDisplay": utils.FormatDuration(elapsed),
	})
}

// GetRotation returns the doubles serve/receive summary.
func (s *MatchService) GetRotation(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.match.DoublesMode {
		return c.JSON(fiber.Map{"notice": "doubles mode is off"})
	}
	return c.JSON(ResolveRotation(s.match.Players, s.match.Server, s.match.TeammateServerMap))
}

// GetHistory lists completed games, newest first.
func (s *MatchService) GetHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]fiber.Map, 0, len(s.match.CompletedGames))
	for _, game := range s.match.CompletedGames {
		games = append(games, fiber.Map{
			"game":            game,
			"durationDisplay": utils.FormatDuration(game.DurationMs),
			"playedText":      utils.FormatRelativeTime(game.Timestamp),
		})
	}
	return c.JSON(fiber.Map{"completedGames": games})
}

// ClearHistory erases the completed-games log.
func (s *MatchService) ClearHistory(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.match.CompletedGames) == 0 {
		return c.JSON(fiber.Map{"notice": "no games to erase"})
	}
	s.commitLocked(clearHistory(s.match))
	return c.JSON(s.snapshotPayload(s.match))
}
