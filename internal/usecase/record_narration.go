package usecase

import (
	"context"
	"strings"

	"github.com/runoshun/git-epic/internal/domain"
)

// RecordNarrationInput contains the parameters for journaling agent narration.
type RecordNarrationInput struct {
	Agent      domain.AgentInfo
	Text       string // Free-form narration
	EpicNumber int
}

// RecordNarrationOutput contains the detection result.
type RecordNarrationOutput struct {
	Entry    *domain.JourneyEntry // Stored entry (nil when no skill was detected)
	Skill    string
	Detected bool
}

// RecordNarration records a skill_invoked entry when narration reveals a skill.
type RecordNarration struct {
	skills  *domain.SkillRegistry
	journey *AddJourneyEntry
}

// NewRecordNarration creates a new RecordNarration use case.
func NewRecordNarration(skills *domain.SkillRegistry, journey *AddJourneyEntry) *RecordNarration {
	return &RecordNarration{skills: skills, journey: journey}
}

// Execute detects a skill in the narration. Nothing is stored when no skill
// matches.
func (uc *RecordNarration) Execute(ctx context.Context, in RecordNarrationInput) (*RecordNarrationOutput, error) {
	if err := domain.ValidateEpicNumber(in.EpicNumber); err != nil {
		return nil, err
	}

	skill, ok := uc.skills.Detect(in.Text)
	if !ok {
		return &RecordNarrationOutput{}, nil
	}

	metadata := map[string]any{
		"skill":     skill,
		"narration": strings.TrimSpace(domain.SanitizeText(in.Text)),
	}
	if in.Agent.Type != "" {
		metadata["agentType"] = in.Agent.Type
	}
	res, err := uc.journey.Execute(ctx, AddJourneyEntryInput{
		EpicNumber: in.EpicNumber,
		Entry: &domain.JourneyEntry{
			Event:    domain.EventSkillInvoked,
			Message:  "Skill invoked: " + skill,
			Agent:    in.Agent.Name,
			Metadata: metadata,
		},
	})
	if err != nil {
		return nil, err
	}
	return &RecordNarrationOutput{Skill: skill, Detected: true, Entry: &res.Entry}, nil
}
