package workers

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"badminton-score-system/models"
)

type fakeSource struct {
	lastUpdated int64
	flushed     int
}

func (f *fakeSource) LastUpdatedMs() int64 { return f.lastUpdated }
func (f *fakeSource) Flush()               { f.flushed++ }

func workerDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StateSlot{}))
	return db
}

func TestSlotIsStaleWhenMissing(t *testing.T) {
	w := NewSnapshotWorker(workerDB(t), &fakeSource{}, time.Minute)
	assert.True(t, w.slotIsStale())
}

func TestSlotIsStaleComparesTimestamps(t *testing.T) {
	db := workerDB(t)
	source := &fakeSource{}
	w := NewSnapshotWorker(db, source, time.Minute)

	require.NoError(t, db.Create(&models.StateSlot{Key: models.StorageKey, Data: []byte("{}")}).Error)

	// Slot written just now, source not updated since: fresh.
	source.lastUpdated = time.Now().Add(-time.Hour).UnixMilli()
	assert.False(t, w.slotIsStale())

	// Source mutated after the slot write: stale.
	source.lastUpdated = time.Now().Add(time.Hour).UnixMilli()
	assert.True(t, w.slotIsStale())
}

func TestNewSnapshotWorkerDefaultsInterval(t *testing.T) {
	w := NewSnapshotWorker(workerDB(t), &fakeSource{}, 0)
	assert.Equal(t, 30*time.Second, w.interval)
}
