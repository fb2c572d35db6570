package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFromMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    *CompletionEvent
	}{
		{"closes", "closes #5", &CompletionEvent{Keyword: "closes", IssueNumber: 5}},
		{"fixes in subject", "feat: a fixes #201", &CompletionEvent{Keyword: "fixes", IssueNumber: 201}},
		{"resolves no space", "resolves#7", &CompletionEvent{Keyword: "resolves", IssueNumber: 7}},
		{"completes in body", "feat: parser\n\nCompletes #12 for the epic", &CompletionEvent{Keyword: "completes", IssueNumber: 12}},
		{"upper case", "CLOSES #5", &CompletionEvent{Keyword: "closes", IssueNumber: 5}},
		{"first match wins", "closes #1 and fixes #2", &CompletionEvent{Keyword: "closes", IssueNumber: 1}},
		{"zero skipped", "closes #0, fixes #3", &CompletionEvent{Keyword: "fixes", IssueNumber: 3}},
		{"no keyword", "feat: add widget", nil},
		{"bare reference", "see #42", nil},
		{"keyword without number", "fixes the build", nil},
		{"only zero", "closes #0", nil},
		{"overflow", "closes #99999999999999999999999", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFromMessage(tt.message))
		})
	}
}

func TestDetectFromMessage_Pure(t *testing.T) {
	msg := "chore: tidy up, resolves #77"
	first := DetectFromMessage(msg)
	second := DetectFromMessage(msg)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestDetectFromMessage_CaseInsensitive(t *testing.T) {
	assert.Equal(t, DetectFromMessage("closes #5"), DetectFromMessage("CLOSES #5"))
	assert.Equal(t, DetectFromMessage("fixes #9"), DetectFromMessage("FiXeS #9"))
}

func TestShortHash(t *testing.T) {
	tests := []struct {
		hash string
		want string
	}{
		{"abcdef0123456789", "abcdef0"},
		{"abcdef0", "abcdef0"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.hash, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortHash(tt.hash))
		})
	}
}
