package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// completionPattern matches a completion keyword followed by an issue reference.
var completionPattern = regexp.MustCompile(`(?i)(closes|fixes|resolves|completes)\s*#(\d+)`)

// DetectFromMessage returns the completion signal carried by a commit message,
// or nil when there is none. Only the leftmost match is reported.
// Occurrences whose number is zero or does not fit an int are skipped.
func DetectFromMessage(message string) *CompletionEvent {
	for _, m := range completionPattern.FindAllStringSubmatch(message, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil || n <= 0 {
			continue
		}
		return &CompletionEvent{
			Keyword:     strings.ToLower(m[1]),
			IssueNumber: n,
		}
	}
	return nil
}

// ShortHash abbreviates a commit hash to seven characters.
func ShortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
