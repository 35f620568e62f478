package git

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// DefaultKeyPattern matches Jira-style ticket keys such as ABC-123.
// Lowercase project codes are not keys.
const DefaultKeyPattern = `[A-Z]+-[0-9]+`

var defaultKeyRegex = regexp.MustCompile(DefaultKeyPattern)

// ExtractKeys returns every ticket key in text, in order of appearance.
func ExtractKeys(text string) []string {
	return ExtractKeysWith(text, defaultKeyRegex)
}

// ExtractKeysWith extracts keys using the given compiled regex.
// Duplicates are kept; a nil regex falls back to DefaultKeyPattern.
func ExtractKeysWith(text string, keyRegex *regexp.Regexp) []string {
	if keyRegex == nil {
		keyRegex = defaultKeyRegex
	}
	return keyRegex.FindAllString(text, -1)
}

// ResolveRange gets the commits reachable from endRef but not from startRef,
// oldest first. startRef is an exclusive boundary: nothing it can reach is
// returned, even when endRef reaches it through another merge parent.
func ResolveRange(repo *git.Repository, startRef, endRef string) ([]models.CommitRecord, error) {
	startHash, err := resolveCommit(repo, "start_ref", startRef)
	if err != nil {
		return nil, err
	}

	endHash, err := resolveCommit(repo, "end_ref", endRef)
	if err != nil {
		return nil, err
	}

	// Build set of commits reachable from start.
	hidden := make(map[plumbing.Hash]bool)
	startIter, err := repo.Log(&git.LogOptions{From: startHash})
	if err != nil {
		return nil, &TraversalError{Ref: startRef, Err: err}
	}
	err = startIter.ForEach(func(c *object.Commit) error {
		hidden[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, walkError(startRef, err)
	}

	endCommit, err := repo.CommitObject(endHash)
	if err != nil {
		return nil, &CommitLookupError{Hash: endHash.String(), Err: err}
	}

	// Newest first by committer time; hidden commits are neither emitted
	// nor descended through.
	iter := object.NewCommitIterCTime(endCommit, hidden, nil)
	defer iter.Close()

	var commits []models.CommitRecord
	err = iter.ForEach(func(c *object.Commit) error {
		commits = append(commits, models.NewCommitRecord(shortID(c.Hash), summaryLine(c.Message)))
		return nil
	})
	if err != nil {
		return nil, walkError(endRef, err)
	}

	slices.Reverse(commits)
	return commits, nil
}

// resolveCommit resolves ref to a commit hash, distinguishing refs that do
// not exist from refs that name some other kind of object.
func resolveCommit(repo *git.Repository, role, ref string) (plumbing.Hash, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(ref))
	if err == nil {
		return *hash, nil
	}

	// ResolveRevision peels a single tag level; chains of tags end up here.
	if obj, ok := lookupObject(repo, ref); ok {
		if c, isCommit := obj.(*object.Commit); isCommit {
			return c.Hash, nil
		}
		return plumbing.ZeroHash, &RefNotCommitError{Role: role, Ref: ref, Type: obj.Type().String()}
	}

	return plumbing.ZeroHash, &RefResolutionError{Role: role, Ref: ref, Err: err}
}

// lookupObject finds the object ref points at, peeling annotated tags.
// ref may be a full or abbreviated hash or any reference name.
func lookupObject(repo *git.Repository, ref string) (object.Object, bool) {
	var candidates []plumbing.Hash

	if h := plumbing.NewHash(ref); h.String() == strings.ToLower(ref) {
		candidates = append(candidates, h)
	} else if h, ok := hashPrefix(repo, ref); ok {
		candidates = append(candidates, h)
	}

	for _, rule := range plumbing.RefRevParseRules {
		r, err := storer.ResolveReference(repo.Storer, plumbing.ReferenceName(fmt.Sprintf(rule, ref)))
		if err == nil {
			candidates = append(candidates, r.Hash())
			break
		}
	}

	for _, h := range candidates {
		obj, err := repo.Object(plumbing.AnyObject, h)
		if err != nil {
			continue
		}
		for {
			tag, isTag := obj.(*object.Tag)
			if !isTag {
				break
			}
			obj, err = tag.Object()
			if err != nil {
				return nil, false
			}
		}
		return obj, true
	}

	return nil, false
}

// walkError classifies a failure raised while iterating history.
func walkError(ref string, err error) error {
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return &CommitLookupError{Err: err}
	}
	return &TraversalError{Ref: ref, Err: err}
}

// hashPrefix finds the single object whose hash starts with prefix.
// Ambiguous or non-hex prefixes match nothing.
func hashPrefix(repo *git.Repository, prefix string) (plumbing.Hash, bool) {
	if len(prefix) < minHashPrefix || len(prefix) >= 40 || !isHex(prefix) {
		return plumbing.ZeroHash, false
	}
	prefix = strings.ToLower(prefix)

	iter, err := repo.Storer.IterEncodedObjects(plumbing.AnyObject)
	if err != nil {
		return plumbing.ZeroHash, false
	}
	defer iter.Close()

	var matches []plumbing.Hash
	_ = iter.ForEach(func(o plumbing.EncodedObject) error {
		if strings.HasPrefix(o.Hash().String(), prefix) {
			matches = append(matches, o.Hash())
		}
		if len(matches) > 1 {
			return storer.ErrStop
		}
		return nil
	})
	if len(matches) != 1 {
		return plumbing.ZeroHash, false
	}
	return matches[0], true
}

// minHashPrefix is the shortest abbreviation git accepts.
const minHashPrefix = 4

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func shortID(h plumbing.Hash) string {
	return h.String()[:7]
}

// summaryLine returns the first non-blank line of a commit message.
func summaryLine(message string) string {
	message = strings.TrimLeft(message, " \t\r\n")
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}
