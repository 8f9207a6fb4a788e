package services

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"badminton-score-system/models"
)

func testPrefApp(t *testing.T) (*fiber.App, *PreferenceService) {
	t.Helper()
	svc := NewPreferenceService(testDB(t))
	app := fiber.New()
	app.Get("/preferences", svc.GetPreferences)
	app.Put("/preferences/language", svc.SetLanguage)
	app.Put("/preferences/:flag", svc.SetFlag)
	return app, svc
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		raw   string
		want  string
		valid bool
	}{
		{"en", "en", true},
		{"fr", "fr", true},
		{"en-US", "en", true},
		{"fr-CA", "fr", true},
		{"  fr  ", "fr", true},
		{"zz-not-a-tag", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, valid := normalizeLanguage(tt.raw)
			assert.Equal(t, tt.valid, valid)
			if tt.valid {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestSetLanguageRoundTrip(t *testing.T) {
	app, svc := testPrefApp(t)

	code, payload := postJSON(t, app, "PUT", "/preferences/language", fiber.Map{"language": "fr-CA"})
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "fr", payload["language"])
	assert.Equal(t, "fr", svc.Language())

	code, payload = postJSON(t, app, "PUT", "/preferences/language", fiber.Map{"language": "zz-zz-zz"})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, payload, "error")
}

func TestSetFlag(t *testing.T) {
	app, svc := testPrefApp(t)

	code, _ := postJSON(t, app, "PUT", "/preferences/score-only", fiber.Map{"enabled": true})
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, svc.flag(models.ScoreOnlyKey))

	code, _ = postJSON(t, app, "PUT", "/preferences/score-only", fiber.Map{"enabled": false})
	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, svc.flag(models.ScoreOnlyKey))

	code, payload := postJSON(t, app, "PUT", "/preferences/bogus", fiber.Map{"enabled": true})
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, payload, "error")
}

func TestGetPreferencesDefaults(t *testing.T) {
	app, _ := testPrefApp(t)

	code, payload := postJSON(t, app, "GET", "/preferences", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, []any{"en", "fr"}, payload["language"])
	assert.Equal(t, false, payload["scoreOnly"])
	assert.Equal(t, false, payload["simpleScore"])
}

func TestCorruptStoredLanguageFallsBack(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Create(&models.PreferenceSlot{Key: models.LanguageKey, Value: "???"}).Error)

	svc := NewPreferenceService(db)
	assert.Contains(t, []string{"en", "fr"}, svc.Language())
}
