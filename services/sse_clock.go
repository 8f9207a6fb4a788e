// services/sse_clock.go
package services

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"badminton-score-system/models"
	"badminton-score-system/utils"
)

// StreamClockSSE pushes the recomputed displayed elapsed time once a second.
// Read-only with respect to match state; the stream ends when the client
// disconnects.
func (s *MatchService) StreamClockSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		// Initial keepalive (comment event)
		w.WriteString(":\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		emit := func() bool {
			s.mu.Lock()
			elapsed := liveElapsedAt(s.match, models.NowMs())
			running := s.match.ClockRunning
			s.mu.Unlock()

			payload, _ := json.Marshal(fiber.Map{
				"elapsedMs":      elapsed,
				"elapsedDisplay": utils.FormatDuration(elapsed),
				"running":        running,
			})
			fmt.Fprintf(w, "event: clock\ndata: %s\n\n", payload)
			return w.Flush() == nil
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ticker.C:
				if !emit() {
					// Client disconnected
					return
				}
			case <-c.Context().Done():
				return
			}
		}
	})

	return nil
}
