package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/git-epic/internal/domain"
)

// Plan is the YAML layout accepted by ImportPlan:
//
//	epics:
//	  - title: Parser
//	    description: Build the parser
//	    labels: [backend]
//	    tasks:
//	      - title: Tokenizer
//	        number: 12
type Plan struct {
	Epics []PlanEpic `yaml:"epics"`
}

// PlanEpic is one epic of a plan.
type PlanEpic struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Labels      []string   `yaml:"labels"`
	Tasks       []PlanTask `yaml:"tasks"`
	Number      int        `yaml:"number"` // Existing remote issue (optional)
}

// PlanTask is one sub-issue of a plan epic.
type PlanTask struct {
	Title  string `yaml:"title"`
	Number int    `yaml:"number"`
}

// ImportPlanInput contains the plan document.
type ImportPlanInput struct {
	Agent   string
	Content []byte
	DryRun  bool // Parse and validate without saving
}

// ImportPlanOutput lists the epics added by the import.
type ImportPlanOutput struct {
	Epics   []domain.Epic
	Skipped []int // Numbered epics that were already tracked
}

// ImportPlan is the use case for adding the epics of a YAML plan.
type ImportPlan struct {
	cache  domain.CacheStore
	clock  domain.Clock
	logger domain.Logger
	repo   domain.RepoRef
}

// NewImportPlan creates a new ImportPlan use case.
func NewImportPlan(cache domain.CacheStore, repo domain.RepoRef, clock domain.Clock, logger domain.Logger) *ImportPlan {
	return &ImportPlan{
		cache:  cache,
		clock:  clock,
		logger: logger,
		repo:   repo,
	}
}

// ParsePlan decodes and validates a plan document.
func ParsePlan(content []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: plan is empty", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: parse plan: %v", domain.ErrValidation, err)
	}
	if len(plan.Epics) == 0 {
		return nil, fmt.Errorf("%w: plan has no epics", domain.ErrValidation)
	}

	seen := make(map[int]bool)
	claim := func(n int, what string) error {
		if n < 0 {
			return fmt.Errorf("%w: %s has negative number %d", domain.ErrValidation, what, n)
		}
		if n == 0 {
			return nil
		}
		if seen[n] {
			return fmt.Errorf("%w: issue #%d appears twice in the plan", domain.ErrValidation, n)
		}
		seen[n] = true
		return nil
	}
	for i, e := range plan.Epics {
		if strings.TrimSpace(domain.SanitizeText(e.Title)) == "" {
			return nil, fmt.Errorf("%w: epic %d: %w", domain.ErrValidation, i+1, domain.ErrEmptyTitle)
		}
		if err := claim(e.Number, fmt.Sprintf("epic %q", e.Title)); err != nil {
			return nil, err
		}
		for j, task := range e.Tasks {
			if strings.TrimSpace(domain.SanitizeText(task.Title)) == "" {
				return nil, fmt.Errorf("%w: epic %q task %d: %w", domain.ErrValidation, e.Title, j+1, domain.ErrEmptyTitle)
			}
			if err := claim(task.Number, fmt.Sprintf("task %q", task.Title)); err != nil {
				return nil, err
			}
		}
	}
	return &plan, nil
}

// Execute adds every plan epic as a dirty epic. Validation covers the whole
// plan before anything is written; numbered epics already in the cache are
// skipped.
func (uc *ImportPlan) Execute(_ context.Context, in ImportPlanInput) (*ImportPlanOutput, error) {
	plan, err := ParsePlan(in.Content)
	if err != nil {
		return nil, err
	}

	cache, err := uc.cache.Load(uc.repo.Owner, uc.repo.Repo)
	if err != nil {
		return nil, fmt.Errorf("load cache: %w", err)
	}

	now := uc.clock.Now()
	agent := strings.TrimSpace(domain.SanitizeText(in.Agent))
	out := &ImportPlanOutput{Epics: []domain.Epic{}}

	for _, pe := range plan.Epics {
		if pe.Number > 0 {
			if ref, ok := cache.FindIssue(pe.Number); ok {
				if ref.Kind != domain.IssueKindEpic {
					return nil, fmt.Errorf("%w: #%d is already tracked as a task of epic #%d", domain.ErrValidation, pe.Number, ref.EpicNumber)
				}
				out.Skipped = append(out.Skipped, pe.Number)
				continue
			}
		}
		for _, task := range pe.Tasks {
			if task.Number == 0 {
				continue
			}
			if ref, ok := cache.FindIssue(task.Number); ok {
				return nil, fmt.Errorf("%w: task #%d is already tracked by epic #%d", domain.ErrValidation, task.Number, ref.EpicNumber)
			}
		}

		title := strings.TrimSpace(domain.SanitizeText(pe.Title))
		epic := newEpic(title, pe.Description, pe.Labels, now)
		epic.Number = pe.Number
		for _, task := range pe.Tasks {
			epic.SubIssues = append(epic.SubIssues, domain.SubIssue{
				Number: task.Number,
				Title:  strings.TrimSpace(domain.SanitizeText(task.Title)),
				State:  domain.StateOpen,
			})
		}
		epic.RecordJourney(domain.JourneyEntry{
			ID:        uuid.NewString(),
			Event:     domain.EventEpicCreated,
			Message:   "Epic imported from plan: " + title,
			Agent:     agent,
			Timestamp: now,
		}, now)

		cache = cache.AddEpic(epic)
		out.Epics = append(out.Epics, epic)
	}

	if in.DryRun || len(out.Epics) == 0 {
		return out, nil
	}
	if err := uc.cache.Save(uc.repo.Owner, uc.repo.Repo, cache); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}
	uc.logger.Info(0, "import", fmt.Sprintf("imported %d epic(s)", len(out.Epics)))
	return out, nil
}
