// services/saved_names.go
package services

import (
	"github.com/gosimple/slug"

	"badminton-score-system/models"
)

// savedNameKey folds case, accents and punctuation so "José" and "jose"
// dedupe to the same entry.
func savedNameKey(name string) string {
	return slug.Make(name)
}

// upsertSavedName moves (or inserts) the name at the front of the
// most-recently-used list, dropping any duplicate and capping the length.
func upsertSavedName(names []string, name string) []string {
	key := savedNameKey(name)

	next := make([]string, 0, len(names)+1)
	next = append(next, name)
	for _, existing := range names {
		if savedNameKey(existing) == key {
			continue
		}
		next = append(next, existing)
	}

	if len(next) > models.SavedNamesLimit {
		next = next[:models.SavedNamesLimit]
	}
	return next
}
