// utils/format.go
package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders milliseconds as m:ss, or h:mm:ss past the hour mark.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	seconds := totalSeconds % 60
	minutes := (totalSeconds / 60) % 60
	hours := totalSeconds / 3600

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatRelativeTime renders an epoch-millis timestamp as a short "ago" label.
func FormatRelativeTime(ts int64) string {
	elapsed := time.Now().UnixMilli() - ts
	if elapsed < 0 {
		elapsed = 0
	}

	seconds := elapsed / 1000
	switch {
	case seconds < 5:
		return "just now"
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}
