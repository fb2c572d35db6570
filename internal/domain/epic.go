// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"time"
)

// IssueState is the open/closed state shared by epics and sub-issues.
type IssueState string

// Issue states.
const (
	StateOpen   IssueState = "open"
	StateClosed IssueState = "closed"
)

// IsValid reports whether s is a known state.
func (s IssueState) IsValid() bool {
	return s == StateOpen || s == StateClosed
}

// Epic is a top-level unit of work mirrored to the remote tracker.
// Fields are ordered to minimize memory padding.
type Epic struct {
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	LocalID     string         `json:"localId"`               // Stable local key, assigned before any remote number exists
	Title       string         `json:"title"`                 // Title (required)
	Description string         `json:"description,omitempty"` // Free text, rendered into the issue body
	State       IssueState     `json:"state"`
	Labels      []string       `json:"labels,omitempty"`
	SubIssues   []SubIssue     `json:"subIssues"`
	Journey     []JourneyEntry `json:"journey"`
	Number      int            `json:"number,omitempty"` // Remote issue number (0 = not yet created)
	Dirty       bool           `json:"dirty"`            // Local state not yet confirmed remotely
}

// HasRemote returns true once the epic has been created on the remote tracker.
func (e *Epic) HasRemote() bool {
	return e.Number > 0
}

// Ref returns a short human-readable reference for reports and logs.
func (e *Epic) Ref() string {
	if e.HasRemote() {
		return fmt.Sprintf("#%d", e.Number)
	}
	id := e.LocalID
	if len(id) > 8 {
		id = id[:8]
	}
	return "local:" + id
}

// SubIssue returns the sub-issue with the given number, or nil.
func (e *Epic) SubIssue(number int) *SubIssue {
	for i := range e.SubIssues {
		if e.SubIssues[i].Number == number {
			return &e.SubIssues[i]
		}
	}
	return nil
}

// HasLabel reports whether the epic carries the label.
func (e *Epic) HasLabel(label string) bool {
	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// AddLabels merges labels into the epic's label set, keeping it duplicate-free.
func (e *Epic) AddLabels(labels ...string) {
	for _, l := range labels {
		if l != "" && !e.HasLabel(l) {
			e.Labels = append(e.Labels, l)
		}
	}
}

// Touch marks the epic as changed locally.
func (e *Epic) Touch(now time.Time) {
	e.Dirty = true
	e.UpdatedAt = now
}

// RecordJourney appends entry to the journey and marks the epic dirty.
func (e *Epic) RecordJourney(entry JourneyEntry, now time.Time) {
	e.Journey = append(e.Journey, entry)
	e.Touch(now)
}

// Clone returns a deep copy of the epic.
func (e *Epic) Clone() Epic {
	c := *e
	c.Labels = append([]string(nil), e.Labels...)
	c.SubIssues = make([]SubIssue, len(e.SubIssues))
	for i, s := range e.SubIssues {
		c.SubIssues[i] = s.clone()
	}
	c.Journey = make([]JourneyEntry, len(e.Journey))
	for i, j := range e.Journey {
		c.Journey[i] = j.clone()
	}
	return c
}

// SubIssue is a task owned by exactly one epic.
type SubIssue struct {
	Title  string     `json:"title"`
	State  IssueState `json:"state"`
	Labels []string   `json:"labels,omitempty"`
	Number int        `json:"number"`
}

func (s SubIssue) clone() SubIssue {
	s.Labels = append([]string(nil), s.Labels...)
	return s
}

// Journey event tags.
const (
	EventEpicCreated  = "epic_created"
	EventTaskStarted  = "task_started"
	EventTaskComplete = "task_complete"
	EventSkillInvoked = "skill_invoked"
	EventEpicClosed   = "epic_closed"
)

// JourneyEntry is an immutable event in an epic's history.
// Fields are ordered to minimize memory padding.
type JourneyEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	Message   string         `json:"message"`
	Agent     string         `json:"agent,omitempty"`
}

func (j JourneyEntry) clone() JourneyEntry {
	if j.Metadata != nil {
		m := make(map[string]any, len(j.Metadata))
		for k, v := range j.Metadata {
			m[k] = v
		}
		j.Metadata = m
	}
	return j
}

// AgentInfo identifies the actor that produced a journey entry.
type AgentInfo struct {
	Name string
	Type string
}

// CompletionEvent is a completion signal extracted from a single commit.
type CompletionEvent struct {
	Keyword     string // closes, fixes, resolves or completes
	CommitHash  string // Commit that carried the signal (empty when detected from a bare message)
	IssueNumber int
}

// Commit is a raw commit record produced by a CommitReader.
type Commit struct {
	Timestamp time.Time
	Hash      string
	Message   string
}
