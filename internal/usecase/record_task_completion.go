package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/git-epic/internal/domain"
)

// RecordTaskCompletionInput contains the parameters for recording a completed task.
type RecordTaskCompletionInput struct {
	Agent      domain.AgentInfo
	TaskTitle  string
	EpicNumber int
	TaskNumber int
}

// RecordTaskCompletion appends a task_complete entry to an epic's journey.
type RecordTaskCompletion struct {
	journey *AddJourneyEntry
}

// NewRecordTaskCompletion creates a new RecordTaskCompletion use case.
func NewRecordTaskCompletion(journey *AddJourneyEntry) *RecordTaskCompletion {
	return &RecordTaskCompletion{journey: journey}
}

// Execute records the completion.
func (uc *RecordTaskCompletion) Execute(ctx context.Context, in RecordTaskCompletionInput) (*AddJourneyEntryOutput, error) {
	entry := taskCompletionEntry(in.TaskNumber, in.TaskTitle, in.Agent)
	return uc.journey.Execute(ctx, AddJourneyEntryInput{
		EpicNumber: in.EpicNumber,
		Entry:      &entry,
	})
}

// taskCompletionEntry builds the journey entry for a completed task.
// ID and timestamp are left for the caller.
func taskCompletionEntry(taskNumber int, title string, agent domain.AgentInfo) domain.JourneyEntry {
	return domain.JourneyEntry{
		Event:   domain.EventTaskComplete,
		Message: fmt.Sprintf("✅ Task %d completed: %s", taskNumber, strings.TrimSpace(title)),
		Agent:   agent.Name,
		Metadata: map[string]any{
			"taskNumber": taskNumber,
		},
	}
}
