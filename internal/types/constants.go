package types

import (
	"strings"
)

const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "request_id"

	RequestIDHeader = "X-Request-ID"
)

// AllowedOrigins merges the configured origins with the client URL,
// dropping blanks and duplicates.
func AllowedOrigins(configured []string, clientURL string) []string {
	origins := make([]string, 0, len(configured)+1)
	seen := make(map[string]bool, len(configured)+1)

	candidates := append(append([]string{}, configured...), clientURL)

	for _, origin := range candidates {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		origins = append(origins, trimmed)
	}

	return origins
}
