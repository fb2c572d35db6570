package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CacheVersion is the schema version written into new cache documents.
const CacheVersion = 1

// IssueKind distinguishes epics from sub-issues in the flat issue index.
type IssueKind string

// Issue kinds.
const (
	IssueKindEpic IssueKind = "epic"
	IssueKindSub  IssueKind = "sub"
)

// IssueRef is an entry of the denormalized issue index.
type IssueRef struct {
	Kind       IssueKind  `json:"kind"`
	Title      string     `json:"title"`
	State      IssueState `json:"state"`
	Number     int        `json:"number"`
	EpicNumber int        `json:"epicNumber"`
}

// Cache is the persisted set of epics for one owner/repo pair.
//
// Methods that change the cache return a modified copy and leave the
// receiver untouched; callers re-assign the result.
// Fields are ordered to minimize memory padding.
type Cache struct {
	LastSync      time.Time   `json:"lastSync,omitzero"`
	LastReconcile time.Time   `json:"lastReconcile,omitzero"`
	index         map[int]int // issue number -> position in Issues
	Repository    string      `json:"repository"`
	Epics         []Epic      `json:"epics"`
	Issues        []IssueRef  `json:"issues"`
	Version       int         `json:"version"`
}

// NewCache returns an empty cache for "owner/repo".
func NewCache(repository string) *Cache {
	return &Cache{
		Repository: repository,
		Version:    CacheVersion,
		Epics:      []Epic{},
		Issues:     []IssueRef{},
	}
}

// Clone returns a deep copy of the cache.
func (c *Cache) Clone() *Cache {
	n := *c
	n.index = nil
	n.Epics = make([]Epic, len(c.Epics))
	for i := range c.Epics {
		n.Epics[i] = c.Epics[i].Clone()
	}
	n.Issues = append([]IssueRef{}, c.Issues...)
	return &n
}

// AddEpic inserts an epic, or replaces the existing record with the same
// number (or the same local ID when the epic has no number yet).
func (c *Cache) AddEpic(e Epic) *Cache {
	n := c.Clone()
	e = e.Clone()
	if e.State == "" {
		e.State = StateOpen
	}

	replaced := false
	for i := range n.Epics {
		cur := &n.Epics[i]
		if (e.Number > 0 && cur.Number == e.Number) || (e.LocalID != "" && cur.LocalID == e.LocalID) {
			if e.LocalID == "" {
				e.LocalID = cur.LocalID
			}
			n.Epics[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		if e.LocalID == "" {
			e.LocalID = uuid.NewString()
		}
		n.Epics = append(n.Epics, e)
	}
	n.ReindexIssues()
	return n
}

// AddSubIssue appends a sub-issue to the epic with the given number.
// A sub-issue with the same non-zero number is replaced in place.
func (c *Cache) AddSubIssue(epicNumber int, sub SubIssue) (*Cache, error) {
	if c.GetEpic(epicNumber) == nil {
		return nil, fmt.Errorf("epic #%d: %w", epicNumber, ErrEpicNotFound)
	}
	n := c.Clone()
	epic := n.GetEpic(epicNumber)
	sub = sub.clone()
	if sub.State == "" {
		sub.State = StateOpen
	}
	if existing := epic.SubIssue(sub.Number); sub.Number > 0 && existing != nil {
		*existing = sub
	} else {
		epic.SubIssues = append(epic.SubIssues, sub)
	}
	n.ReindexIssues()
	return n, nil
}

// GetEpic returns the epic with the given remote number, or nil.
func (c *Cache) GetEpic(number int) *Epic {
	if number <= 0 {
		return nil
	}
	for i := range c.Epics {
		if c.Epics[i].Number == number {
			return &c.Epics[i]
		}
	}
	return nil
}

// GetEpicByLocalID returns the epic with the given local ID, or nil.
func (c *Cache) GetEpicByLocalID(localID string) *Epic {
	for i := range c.Epics {
		if c.Epics[i].LocalID == localID {
			return &c.Epics[i]
		}
	}
	return nil
}

// ResolveEpic finds an epic by "#N", "N", "local:<prefix>" or a local ID
// prefix of at least four characters.
func (c *Cache) ResolveEpic(ref string) (*Epic, error) {
	ref = strings.TrimSpace(ref)
	if n, err := ParseEpicNumber(ref); err == nil {
		if e := c.GetEpic(n); e != nil {
			return e, nil
		}
		return nil, fmt.Errorf("epic #%d: %w", n, ErrEpicNotFound)
	}

	prefix := strings.TrimPrefix(ref, "local:")
	if len(prefix) < 4 {
		return nil, fmt.Errorf("%w: epic reference %q is neither a number nor a local ID", ErrValidation, ref)
	}
	var found *Epic
	for i := range c.Epics {
		if strings.HasPrefix(c.Epics[i].LocalID, prefix) {
			if found != nil {
				return nil, fmt.Errorf("%w: local ID prefix %q is ambiguous", ErrValidation, prefix)
			}
			found = &c.Epics[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("epic %s: %w", ref, ErrEpicNotFound)
	}
	return found, nil
}

// DirtyEpics returns pointers to every epic that owes a sync, in cache order.
func (c *Cache) DirtyEpics() []*Epic {
	var dirty []*Epic
	for i := range c.Epics {
		if c.Epics[i].Dirty {
			dirty = append(dirty, &c.Epics[i])
		}
	}
	return dirty
}

// FindIssue looks up an epic or sub-issue by its remote number.
func (c *Cache) FindIssue(number int) (IssueRef, bool) {
	if c.index == nil || len(c.index) != len(c.Issues) {
		c.buildIndex()
	}
	i, ok := c.index[number]
	if !ok {
		return IssueRef{}, false
	}
	return c.Issues[i], true
}

// ReindexIssues rebuilds the flat issue index from the epics.
// Only issues that already have a remote number are indexed.
func (c *Cache) ReindexIssues() {
	issues := make([]IssueRef, 0, len(c.Issues))
	for i := range c.Epics {
		e := &c.Epics[i]
		if !e.HasRemote() {
			continue
		}
		issues = append(issues, IssueRef{
			Kind:       IssueKindEpic,
			Title:      e.Title,
			State:      e.State,
			Number:     e.Number,
			EpicNumber: e.Number,
		})
		for _, s := range e.SubIssues {
			if s.Number <= 0 {
				continue
			}
			issues = append(issues, IssueRef{
				Kind:       IssueKindSub,
				Title:      s.Title,
				State:      s.State,
				Number:     s.Number,
				EpicNumber: e.Number,
			})
		}
	}
	c.Issues = issues
	c.buildIndex()
}

func (c *Cache) buildIndex() {
	c.index = make(map[int]int, len(c.Issues))
	for i, ref := range c.Issues {
		c.index[ref.Number] = i
	}
}

// Validate checks the structural rules a loaded document must satisfy.
func (c *Cache) Validate() error {
	numbers := make(map[int]bool, len(c.Epics))
	localIDs := make(map[string]bool, len(c.Epics))
	for i := range c.Epics {
		e := &c.Epics[i]
		if e.LocalID == "" && e.Number <= 0 {
			return fmt.Errorf("epic at index %d has neither number nor localId", i)
		}
		if e.Number < 0 {
			return fmt.Errorf("epic at index %d has negative number %d", i, e.Number)
		}
		if !e.State.IsValid() {
			return fmt.Errorf("epic %s has invalid state %q", e.Ref(), e.State)
		}
		if e.Number > 0 {
			if numbers[e.Number] {
				return fmt.Errorf("duplicate epic number #%d", e.Number)
			}
			numbers[e.Number] = true
		}
		if e.LocalID != "" {
			if localIDs[e.LocalID] {
				return fmt.Errorf("duplicate epic localId %q", e.LocalID)
			}
			localIDs[e.LocalID] = true
		}
		for j, entry := range e.Journey {
			if entry.Event == "" {
				return fmt.Errorf("epic %s journey entry %d has no event", e.Ref(), j)
			}
		}
	}
	return nil
}
