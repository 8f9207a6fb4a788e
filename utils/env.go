// utils/env.go
package utils

import "os"

// Getenv returns the environment variable or the fallback when unset/empty.
func Getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
