package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// IsGitRepo checks if the path is inside a git repository
func IsGitRepo(path string) bool {
	_, err := Open(path)
	return err == nil
}

// Open opens the repository containing path, walking up to find .git
func Open(path string) (*git.Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &OpenError{Path: abs, Err: err}
	}
	return repo, nil
}

// OpenError indicates the repository could not be opened
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open repository at %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// RefResolutionError indicates a revision could not be resolved
type RefResolutionError struct {
	// Role is "start_ref" or "end_ref"
	Role string
	Ref  string
	Err  error
}

func (e *RefResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s '%s': %v", e.Role, e.Ref, e.Err)
}

func (e *RefResolutionError) Unwrap() error { return e.Err }

// RefNotCommitError indicates a revision names an object that is not a commit
type RefNotCommitError struct {
	Role string
	Ref  string
	// Type is the git object type found (blob, tree)
	Type string
}

func (e *RefNotCommitError) Error() string {
	return fmt.Sprintf("%s '%s' does not point to a commit (found %s)", e.Role, e.Ref, e.Type)
}

// TraversalError indicates the history walk failed
type TraversalError struct {
	Ref string
	Err error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("error walking history from '%s': %v", e.Ref, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// CommitLookupError indicates a commit in the walk could not be loaded
type CommitLookupError struct {
	// Hash is empty when the walk did not say which commit was missing
	Hash string
	Err  error
}

func (e *CommitLookupError) Error() string {
	if e.Hash == "" {
		return fmt.Sprintf("failed to find commit: %v", e.Err)
	}
	return fmt.Sprintf("failed to find commit %s: %v", e.Hash, e.Err)
}

func (e *CommitLookupError) Unwrap() error { return e.Err }
