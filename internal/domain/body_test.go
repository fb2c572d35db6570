package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenderIssueBody(t *testing.T) {
	ts := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	e := &Epic{
		LocalID:     "local-1",
		Description: "Build the parser.\n",
		SubIssues: []SubIssue{
			{Number: 43, Title: "Lexer", State: StateClosed},
			{Title: "Grammar", State: StateOpen},
		},
		Journey: []JourneyEntry{
			{Timestamp: ts, Event: EventTaskComplete, Message: "✅ Task 43 completed: Lexer", Agent: "agent-1"},
		},
	}

	body := RenderIssueBody(e)

	assert.True(t, strings.HasPrefix(body, "Build the parser.\n"))
	assert.Contains(t, body, "## Tasks\n\n- [x] #43 Lexer\n- [ ] Grammar\n")
	assert.Contains(t, body, "## Journey\n\n- 2026-10-19 09:30 UTC `task_complete` ✅ Task 43 completed: Lexer (agent-1)\n")
	assert.Contains(t, body, "<!-- git-epic:local-id=local-1 -->")
}

func TestRenderIssueBody_Empty(t *testing.T) {
	body := RenderIssueBody(&Epic{})
	assert.Empty(t, body)
}
