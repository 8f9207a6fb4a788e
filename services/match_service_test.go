package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"badminton-score-system/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StateSlot{}, &models.PreferenceSlot{}))
	return db
}

func testApp(t *testing.T) (*fiber.App, *MatchService) {
	t.Helper()
	svc := NewMatchService(testDB(t))
	app := fiber.New()

	app.Get("/match", svc.GetMatch)
	app.Post("/match/players/:id/points", svc.ChangePoints)
	app.Post("/match/undo", svc.Undo)
	app.Post("/match/reset/match", svc.ResetMatch)
	app.Put("/match/settings/best-of", svc.ChangeBestOf)
	app.Delete("/match/history", svc.ClearHistory)
	app.Get("/match/rotation", svc.GetRotation)
	return app, svc
}

func postJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestNewMatchServiceStartsFresh(t *testing.T) {
	svc := NewMatchService(testDB(t))
	state := svc.Snapshot()

	assert.Equal(t, models.DefaultRaceTo, state.RaceTo)
	assert.Equal(t, models.PlayerA, state.Server)
	assert.Nil(t, state.MatchWinner)
}

func TestMatchServicePersistsAcrossRestart(t *testing.T) {
	db := testDB(t)

	svc := NewMatchService(db)
	app := fiber.New()
	app.Post("/match/players/:id/points", svc.ChangePoints)

	for i := 0; i < 3; i++ {
		code, _ := postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
		require.Equal(t, fiber.StatusOK, code)
	}

	// A second service over the same database picks the state back up.
	reloaded := NewMatchService(db).Snapshot()
	assert.Equal(t, 3, reloaded.Players[0].Points)
	assert.Equal(t, models.PlayerA, reloaded.Server)
}

func TestChangePointsValidation(t *testing.T) {
	app, _ := testApp(t)

	code, payload := postJSON(t, app, "POST", "/match/players/playerC/points", fiber.Map{"delta": 1})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, payload, "error")

	code, payload = postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 2})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, payload, "error")
}

func TestChangePointsGameWonEvent(t *testing.T) {
	app, svc := testApp(t)

	svc.mu.Lock()
	svc.match.Players[0].Points = 20
	svc.mu.Unlock()

	code, payload := postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "game_won", payload["event"])

	state := svc.Snapshot()
	assert.Equal(t, 1, state.Players[0].Games)
	assert.Len(t, state.CompletedGames, 1)
}

func TestChangePointsMatchWonThenRejected(t *testing.T) {
	app, svc := testApp(t)

	svc.mu.Lock()
	svc.match.Players[0].Games = 1
	svc.match.Players[0].Points = 20
	svc.mu.Unlock()

	code, payload := postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "match_won", payload["event"])

	// Further scoring attempts are refused with a notice, not an error.
	code, payload = postJSON(t, app, "POST", "/match/players/playerB/points", fiber.Map{"delta": 1})
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, payload, "notice")

	state := svc.Snapshot()
	assert.Equal(t, 0, state.Players[1].Points)
	require.NotNil(t, state.MatchWinner)
}

func TestUndoRestoresSnapshotVerbatim(t *testing.T) {
	app, svc := testApp(t)

	svc.mu.Lock()
	svc.match.Players[0].Points = 20
	svc.match.Players[1].Points = 15
	svc.mu.Unlock()
	before := svc.Snapshot()

	// The game-completing point zeroes scores and records a completed game.
	code, _ := postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, svc.Snapshot().CompletedGames, 1)

	// Undo brings back the pre-point state exactly, completed game included.
	code, _ = postJSON(t, app, "POST", "/match/undo", nil)
	require.Equal(t, fiber.StatusOK, code)

	after := svc.Snapshot()
	assert.Equal(t, before, after)
	assert.Empty(t, after.CompletedGames)
	assert.Equal(t, 20, after.Players[0].Points)
}

func TestUndoEmptyStack(t *testing.T) {
	app, _ := testApp(t)

	code, payload := postJSON(t, app, "POST", "/match/undo", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "nothing to undo", payload["notice"])
}

func TestUndoStackBounded(t *testing.T) {
	app, svc := testApp(t)

	for i := 0; i < models.HistoryLimit+5; i++ {
		code, _ := postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
		require.Equal(t, fiber.StatusOK, code)
	}

	svc.mu.Lock()
	depth := len(svc.history)
	svc.mu.Unlock()
	assert.Equal(t, models.HistoryLimit, depth)
}

func TestChangeBestOfEndpointRejectsInvalid(t *testing.T) {
	app, _ := testApp(t)

	code, payload := postJSON(t, app, "PUT", "/match/settings/best-of", fiber.Map{"value": 4})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, payload, "error")

	code, _ = postJSON(t, app, "PUT", "/match/settings/best-of", fiber.Map{"value": 5})
	assert.Equal(t, fiber.StatusOK, code)
}

func TestClearHistoryEndpoint(t *testing.T) {
	app, svc := testApp(t)

	code, payload := postJSON(t, app, "DELETE", "/match/history", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "no games to erase", payload["notice"])

	svc.mu.Lock()
	svc.match.Players[0].Points = 20
	svc.mu.Unlock()
	code, _ = postJSON(t, app, "POST", "/match/players/playerA/points", fiber.Map{"delta": 1})
	require.Equal(t, fiber.StatusOK, code)

	code, _ = postJSON(t, app, "DELETE", "/match/history", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, svc.Snapshot().CompletedGames)
}

func TestGetRotationRequiresDoubles(t *testing.T) {
	app, svc := testApp(t)

	code, payload := postJSON(t, app, "GET", "/match/rotation", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "doubles mode is off", payload["notice"])

	svc.mu.Lock()
	svc.match.DoublesMode = true
	svc.mu.Unlock()

	code, payload = postJSON(t, app, "GET", "/match/rotation", nil)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "playerA", payload["servingTeam"])
}

func TestCorruptSlotLoadsDefaults(t *testing.T) {
	db := testDB(t)
	slot := models.StateSlot{Key: models.StorageKey, Data: []byte("{{{ not json")}
	require.NoError(t, db.Create(&slot).Error)

	svc := NewMatchService(db)
	state := svc.Snapshot()
	assert.Equal(t, models.DefaultRaceTo, state.RaceTo)
	assert.Equal(t, 3, state.BestOf)
	assert.Nil(t, state.MatchWinner)
}

func TestFlushWritesSlot(t *testing.T) {
	db := testDB(t)
	svc := NewMatchService(db)
	svc.Flush()

	var slot models.StateSlot
	require.NoError(t, db.First(&slot, "key = ?", models.StorageKey).Error)
	assert.NotEmpty(t, slot.Data)

	decoded := decodeStoredState(slot.Data, models.NowMs())
	assert.Equal(t, models.DefaultRaceTo, decoded.RaceTo)
}
