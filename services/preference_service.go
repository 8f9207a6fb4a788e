// services/preference_service.go
package services

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"badminton-score-system/models"
)

// PreferenceService manages the small independent preference slots: the UI
// language and the two display-mode flags. They live outside the match
// aggregate and the rules engine never reads them.
type PreferenceService struct {
	DB *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{DB: db}
}

var supportedLanguages = []language.Tag{
	language.English, // first entry is the fallback
	language.French,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// flagKeys whitelists the boolean preference slots.
var flagKeys = map[string]string{
	"score-only":   models.ScoreOnlyKey,
	"simple-score": models.SimpleScoreKey,
}

// defaultLanguage resolves the ambient locale (LC_ALL/LANG) against the
// supported set, falling back to English.
func defaultLanguage() string {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}

	tag, err := language.Parse(locale)
	if err != nil {
		return "en"
	}
	matched, _, _ := languageMatcher.Match(tag)
	base, _ := matched.Base()
	return base.String()
}

// normalizeLanguage validates a stored or submitted tag the same way.
func normalizeLanguage(raw string) (string, bool) {
	tag, err := language.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	_, index, confidence := languageMatcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	base, _ := supportedLanguages[index].Base()
	return base.String(), true
}

func (p *PreferenceService) readSlot(key string) (string, bool) {
	var slot models.PreferenceSlot
	if err := p.DB.First(&slot, "key = ?", key).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("⚠️ failed to read preference %s: %v", key, err)
		}
		return "", false
	}
	return slot.Value, true
}

func (p *PreferenceService) writeSlot(key, value string) {
	slot := models.PreferenceSlot{Key: key, Value: value}
	if err := p.DB.Clauses(clause.OnConflict{UpdateAll: true}).Create(&slot).Error; err != nil {
		log.Printf("⚠️ failed to persist preference %s: %v", key, err)
	}
}

// Language returns the stored language tag, defaulting from the host locale.
func (p *PreferenceService) Language() string {
	if stored, ok := p.readSlot(models.LanguageKey); ok {
		if normalized, valid := normalizeLanguage(stored); valid {
			return normalized
		}
	}
	return defaultLanguage()
}

func (p *PreferenceService) flag(key string) bool {
	value, ok := p.readSlot(key)
	return ok && value == "true"
}

// GetPreferences returns all preference slots, with defaults for any that
// are absent.
func (p *PreferenceService) GetPreferences(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"language":    p.Language(),
		"scoreOnly":   p.flag(models.ScoreOnlyKey),
		"simpleScore": p.flag(models.SimpleScoreKey),
	})
}

// SetLanguage stores a supported 2-letter language tag.
func (p *PreferenceService) SetLanguage(c *fiber.Ctx) error {
	var input struct {
		Language string `json:"language"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	normalized, valid := normalizeLanguage(input.Language)
	if !valid {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported language"})
	}

	p.writeSlot(models.LanguageKey, normalized)
	return c.JSON(fiber.Map{"language": normalized})
}

// SetFlag stores one of the boolean view-mode preferences.
func (p *PreferenceService) SetFlag(c *fiber.Ctx) error {
	key, ok := flagKeys[c.Params("flag")]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown preference flag"})
	}

	var input struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	value := "false"
	if input.Enabled {
		value = "true"
	}
	p.writeSlot(key, value)
	return c.JSON(fiber.Map{"flag": c.Params("flag"), "enabled": input.Enabled})
}
