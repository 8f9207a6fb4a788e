// workers/snapshot_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"badminton-score-system/models"

	"gorm.io/gorm"
)

// StateSource is anything that owns live match state and can write it out on demand.
type StateSource interface {
	LastUpdatedMs() int64
	Flush()
}

// SnapshotWorker periodically checks whether the persisted state slot has fallen
// behind the in-memory state and flushes when it has. The slot row is the source
// of truth on restart, so a crash between flushes loses at most one interval.
type SnapshotWorker struct {
	db       *gorm.DB
	source   StateSource
	interval time.Duration
}

func NewSnapshotWorker(db *gorm.DB, source StateSource, interval time.Duration) *SnapshotWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SnapshotWorker{
		db:       db,
		source:   source,
		interval: interval,
	}
}

func (w *SnapshotWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Snapshot Worker (in-memory state → state slot)…")
	go w.run(ctx)
}

func (w *SnapshotWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if w.slotIsStale() {
				w.source.Flush()
			}
		case <-ctx.Done():
			log.Println("⏹️ Snapshot Worker stopped")
			return
		}
	}
}

// slotIsStale reports whether the persisted slot predates the live state.
func (w *SnapshotWorker) slotIsStale() bool {
	var slot models.StateSlot
	err := w.db.First(&slot, "key = ?", models.StorageKey).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("⚠️ Snapshot worker failed to read state slot: %v", err)
		}
		// Missing slot means nothing has been written yet.
		return true
	}
	return slot.UpdatedAt.UnixMilli() < w.source.LastUpdatedMs()
}
