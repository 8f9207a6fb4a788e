package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"badminton-score-system/models"
)

func TestUpsertSavedName(t *testing.T) {
	t.Run("insert at front", func(t *testing.T) {
		got := upsertSavedName([]string{"Alice", "Bob"}, "Carol")
		assert.Equal(t, []string{"Carol", "Alice", "Bob"}, got)
	})

	t.Run("existing name moves to front", func(t *testing.T) {
		got := upsertSavedName([]string{"Alice", "Bob", "Carol"}, "Bob")
		assert.Equal(t, []string{"Bob", "Alice", "Carol"}, got)
	})

	t.Run("dedup is case insensitive", func(t *testing.T) {
		got := upsertSavedName([]string{"alice", "Bob"}, "ALICE")
		assert.Equal(t, []string{"ALICE", "Bob"}, got)
	})

	t.Run("accents fold into the same key", func(t *testing.T) {
		got := upsertSavedName([]string{"José"}, "Jose")
		assert.Equal(t, []string{"Jose"}, got)
	})

	t.Run("list capped at the limit", func(t *testing.T) {
		names := []string{"n1", "n2", "n3", "n4", "n5", "n6", "n7", "n8"}
		got := upsertSavedName(names, "n9")
		assert.Len(t, got, models.SavedNamesLimit)
		assert.Equal(t, "n9", got[0])
		assert.NotContains(t, got, "n8")
	})
}
