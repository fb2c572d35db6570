package domain

import (
	"fmt"
	"regexp"
)

// Skill is a known agent skill and the narration patterns that reveal it.
type Skill struct {
	ID       string   `yaml:"id"`
	Patterns []string `yaml:"patterns"`
}

type compiledSkill struct {
	id       string
	patterns []*regexp.Regexp
}

// SkillRegistry classifies free-form narration against a fixed list of skills.
// Matching is case-insensitive; registry order decides ties.
type SkillRegistry struct {
	skills []compiledSkill
	source []Skill
}

// DefaultSkills is the built-in registry.
var DefaultSkills = []Skill{
	{ID: "epic-planning", Patterns: []string{
		`\bplan(ning)?\s+(an?\s+|the\s+)?epic\b`,
		`\bbreak(ing)?\s+.*\s+into\s+(tasks|sub-?issues)\b`,
	}},
	{ID: "task-start", Patterns: []string{
		`\bstart(ing)?\s+(work\s+on\s+)?task\s*#?\d+`,
		`\bpicking\s+up\s+task\b`,
	}},
	{ID: "task-complete", Patterns: []string{
		`\btask\s*#?\d+\s+(is\s+)?(complete|completed|done|finished)\b`,
		`\b(completed|finished)\s+task\b`,
	}},
	{ID: "github-sync", Patterns: []string{
		`\bsync(ing)?\s+(the\s+)?(epics?\s+)?(to|with)\s+github\b`,
		`\bpush(ing)?\s+.*\s+to\s+github\b`,
	}},
	{ID: "code-review", Patterns: []string{
		`\breview(ing)?\s+(the\s+)?(pr|pull\s+request|changes|diff)\b`,
	}},
	{ID: "test-driven-development", Patterns: []string{
		`\bwrit(e|ing)\s+(a\s+)?failing\s+test\b`,
		`\btdd\b`,
	}},
	{ID: "systematic-debugging", Patterns: []string{
		`\bdebug(ging)?\b`,
		`\broot\s+cause\b`,
	}},
}

// NewSkillRegistry compiles the given skills.
func NewSkillRegistry(skills []Skill) (*SkillRegistry, error) {
	r := &SkillRegistry{source: skills}
	for _, s := range skills {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: skill without id", ErrValidation)
		}
		cs := compiledSkill{id: s.ID}
		for _, p := range s.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%w: skill %s pattern %q: %v", ErrValidation, s.ID, p, err)
			}
			cs.patterns = append(cs.patterns, re)
		}
		r.skills = append(r.skills, cs)
	}
	return r, nil
}

// DefaultSkillRegistry returns the registry built from DefaultSkills.
func DefaultSkillRegistry() *SkillRegistry {
	r, err := NewSkillRegistry(DefaultSkills)
	if err != nil {
		panic(err)
	}
	return r
}

// Detect returns the first skill whose pattern occurs in text.
func (r *SkillRegistry) Detect(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, s := range r.skills {
		for _, re := range s.patterns {
			if re.MatchString(text) {
				return s.id, true
			}
		}
	}
	return "", false
}

// Skills returns the registry contents in match order.
func (r *SkillRegistry) Skills() []Skill {
	return append([]Skill(nil), r.source...)
}
