// models/slot.go
package models

import "time"

// StateSlot is the single key-value row holding the serialized match state.
type StateSlot struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Data      []byte    `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Preference slot keys. These are independent of the match slot; the rules
// engine never reads them.
const (
	LanguageKey    = "bst-language"
	ScoreOnlyKey   = "bst-score-only"
	SimpleScoreKey = "bst-simple-score"
)

// PreferenceSlot stores one UI preference (language tag or view-mode flag).
type PreferenceSlot struct {
	Key       string    `json:"key" gorm:"primaryKey"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
