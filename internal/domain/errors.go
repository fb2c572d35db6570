package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrValidation        = errors.New("invalid input")
	ErrEpicNotFound      = errors.New("epic not found")
	ErrSubIssueNotFound  = errors.New("sub-issue not found")
	ErrCorruptCache      = errors.New("cache file is corrupt")
	ErrIO                = errors.New("cache write failed")
	ErrNotGitRepository  = errors.New("not a git repository (or any of the parent directories)")
	ErrNoRepository      = errors.New("repository owner/name unknown (set [github] owner and repo, or add an origin remote)")
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrConfigExists      = errors.New("config file already exists")
	ErrSyncIncomplete    = errors.New("one or more epics were not synced")
	ErrRemoteTransient   = errors.New("transient remote error")
	ErrRemoteRateLimited = errors.New("remote rate limit exceeded")
	ErrRemotePermanent   = errors.New("permanent remote error")
)

// RemoteErrorKind classifies a remote tracker failure.
type RemoteErrorKind string

// Remote error kinds.
const (
	RemoteTransient   RemoteErrorKind = "transient"
	RemoteRateLimited RemoteErrorKind = "rate_limited"
	RemotePermanent   RemoteErrorKind = "permanent"
)

// RemoteError is returned by RemoteTracker implementations.
type RemoteError struct {
	Err        error
	Kind       RemoteErrorKind
	Op         string // "create" or "update"
	StatusCode int    // HTTP status when known
}

// NewRemoteError wraps err with a classification.
func NewRemoteError(kind RemoteErrorKind, op string, err error) *RemoteError {
	return &RemoteError{Kind: kind, Op: op, Err: err}
}

func (e *RemoteError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s issue: %s (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s issue: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a RemoteError against the kind sentinels.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemoteTransient:
		return e.Kind == RemoteTransient
	case ErrRemoteRateLimited:
		return e.Kind == RemoteRateLimited
	case ErrRemotePermanent:
		return e.Kind == RemotePermanent
	}
	return false
}

// RemoteKindOf returns the classification of err.
// Unclassified errors are treated as permanent.
func RemoteKindOf(err error) RemoteErrorKind {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return RemotePermanent
}
