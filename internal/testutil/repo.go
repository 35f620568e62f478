// Package testutil provides repositories and a fake tracker for tests.
package testutil

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Repo builds commit graphs with deterministic, strictly increasing
// commit times so history order is stable.
type Repo struct {
	t     *testing.T
	Repo  *git.Repository
	tree  plumbing.Hash
	clock time.Time
	head  plumbing.Hash
}

// NewRepo creates an empty in-memory repository
func NewRepo(t *testing.T) *Repo {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	return newRepo(t, repo)
}

// NewRepoAt creates a repository on disk at dir
func NewRepoAt(t *testing.T, dir string) *Repo {
	t.Helper()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo at %s: %v", dir, err)
	}
	return newRepo(t, repo)
}

func newRepo(t *testing.T, repo *git.Repository) *Repo {
	r := &Repo{
		t:     t,
		Repo:  repo,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	r.tree = r.store(&object.Tree{})
	return r
}

type encoder interface {
	Encode(plumbing.EncodedObject) error
}

func (r *Repo) store(o encoder) plumbing.Hash {
	r.t.Helper()

	obj := r.Repo.Storer.NewEncodedObject()
	if err := o.Encode(obj); err != nil {
		r.t.Fatalf("failed to encode object: %v", err)
	}
	h, err := r.Repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("failed to store object: %v", err)
	}
	return h
}

func (r *Repo) signature() *object.Signature {
	r.clock = r.clock.Add(time.Minute)
	return &object.Signature{Name: "Test", Email: "test@example.com", When: r.clock}
}

// Commit writes a commit with the given parents without moving any ref
func (r *Repo) Commit(message string, parents ...plumbing.Hash) plumbing.Hash {
	r.t.Helper()

	sig := r.signature()
	return r.store(&object.Commit{
		Author:       *sig,
		Committer:    *sig,
		Message:      message,
		TreeHash:     r.tree,
		ParentHashes: parents,
	})
}

// Linear appends one commit per message on top of the current branch tip
// and points the default branch at the last one
func (r *Repo) Linear(messages ...string) []plumbing.Hash {
	r.t.Helper()

	hashes := make([]plumbing.Hash, 0, len(messages))
	for _, msg := range messages {
		var parents []plumbing.Hash
		if !r.head.IsZero() {
			parents = append(parents, r.head)
		}
		r.head = r.Commit(msg, parents...)
		hashes = append(hashes, r.head)
	}
	r.Branch("master", r.head)
	return hashes
}

// Branch points refs/heads/name at h
func (r *Repo) Branch(name string, h plumbing.Hash) {
	r.t.Helper()
	r.setRef(plumbing.NewBranchReferenceName(name), h)
}

// Tag creates a lightweight tag pointing at any object
func (r *Repo) Tag(name string, h plumbing.Hash) {
	r.t.Helper()
	r.setRef(plumbing.NewTagReferenceName(name), h)
}

// AnnotatedTag creates a tag object for target and a ref to it
func (r *Repo) AnnotatedTag(name string, target plumbing.Hash, targetType plumbing.ObjectType) plumbing.Hash {
	r.t.Helper()

	h := r.store(&object.Tag{
		Name:       name,
		Tagger:     *r.signature(),
		Message:    "tag " + name,
		TargetType: targetType,
		Target:     target,
	})
	r.setRef(plumbing.NewTagReferenceName(name), h)
	return h
}

// Blob stores a blob and returns its hash
func (r *Repo) Blob(content string) plumbing.Hash {
	r.t.Helper()

	obj := r.Repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		r.t.Fatalf("failed to open blob writer: %v", err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		r.t.Fatalf("failed to write blob: %v", err)
	}
	if err := w.Close(); err != nil {
		r.t.Fatalf("failed to close blob writer: %v", err)
	}
	h, err := r.Repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("failed to store blob: %v", err)
	}
	return h
}

// Short returns the 7-character id the resolver reports for h
func Short(h plumbing.Hash) string {
	return h.String()[:7]
}

func (r *Repo) setRef(name plumbing.ReferenceName, h plumbing.Hash) {
	if err := r.Repo.Storer.SetReference(plumbing.NewHashReference(name, h)); err != nil {
		r.t.Fatalf("failed to set %s: %v", name, err)
	}
}
