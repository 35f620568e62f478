// Package validate runs the ticket check for every commit of a range and
// aggregates the outcome.
package validate

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/git"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
)

// ReasonNoKeys is the reason recorded for a summary without ticket keys
const ReasonNoKeys = "no keys found in commit summary"

// Checker looks up a single ticket key
type Checker interface {
	IssueExists(ctx context.Context, key string) models.LookupResult
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context, key string) models.LookupResult

// IssueExists calls f
func (f CheckerFunc) IssueExists(ctx context.Context, key string) models.LookupResult {
	return f(ctx, key)
}

// ProgressFunc receives each record as soon as it and every earlier record
// are done, so calls arrive in input order
type ProgressFunc func(index, total int, record models.ValidationRecord)

// Validator validates commits against a Checker
type Validator struct {
	checker     Checker
	keyRegex    *regexp.Regexp
	concurrency int
	logger      *zap.SugaredLogger
	progress    ProgressFunc
}

// Option configures a Validator
type Option func(*Validator)

// WithKeyRegex overrides the ticket key pattern
func WithKeyRegex(re *regexp.Regexp) Option {
	return func(v *Validator) { v.keyRegex = re }
}

// WithConcurrency sets how many lookups may be in flight; values below 1 mean 1
func WithConcurrency(n int) Option {
	return func(v *Validator) { v.concurrency = n }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithProgress registers a per-record callback
func WithProgress(fn ProgressFunc) Option {
	return func(v *Validator) { v.progress = fn }
}

// New creates a Validator. By default lookups are strictly sequential.
func New(checker Checker, opts ...Option) *Validator {
	v := &Validator{
		checker:     checker,
		concurrency: 1,
		logger:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.concurrency < 1 {
		v.concurrency = 1
	}
	return v
}

// ValidateCommit produces the record for one commit. Only the first key
// found is checked; later keys are recorded as-is.
func (v *Validator) ValidateCommit(ctx context.Context, commit models.CommitRecord) models.ValidationRecord {
	keys := git.ExtractKeysWith(commit.Summary, v.keyRegex)
	if len(keys) == 0 {
		v.logger.Debugw("no ticket key", "commit", commit.ID)
		return models.NewInvalidRecord(commit, keys, ReasonNoKeys)
	}

	key := keys[0]
	result := v.checker.IssueExists(ctx, key)

	var record models.ValidationRecord
	switch {
	case models.IsExists(result):
		record = models.NewValidRecord(commit, keys)
	case models.IsNotFound(result):
		record = models.NewInvalidRecord(commit, keys, fmt.Sprintf("ticket %s not found in tracker (404)", key))
	default:
		record = models.NewInvalidRecord(commit, keys, "lookup error: "+models.LookupDetail(result))
	}

	v.logger.Debugw("validated commit", "commit", commit.ID, "key", key, "verdict", record.Verdict.String())
	return record
}

// Run validates every commit and returns the records in input order with
// their summary. It never stops early: an invalid commit does not prevent
// the rest from being checked.
func (v *Validator) Run(ctx context.Context, commits []models.CommitRecord) ([]models.ValidationRecord, models.Summary) {
	records := make([]models.ValidationRecord, len(commits))
	emit := newOrderedEmitter(len(commits), v.progress)

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, commit := range commits {
		g.Go(func() error {
			records[i] = v.ValidateCommit(ctx, commit)
			emit.done(i, records[i])
			return nil
		})
	}
	_ = g.Wait()

	summary := models.Summarize(records)
	v.logger.Infow("validation finished",
		"total", summary.Total,
		"valid", summary.Valid,
		"invalid", summary.Invalid,
	)
	return records, summary
}

// orderedEmitter releases completed records to fn in index order
type orderedEmitter struct {
	mu      sync.Mutex
	fn      ProgressFunc
	total   int
	next    int
	pending map[int]models.ValidationRecord
}

func newOrderedEmitter(total int, fn ProgressFunc) *orderedEmitter {
	return &orderedEmitter{
		fn:      fn,
		total:   total,
		pending: make(map[int]models.ValidationRecord),
	}
}

func (e *orderedEmitter) done(index int, record models.ValidationRecord) {
	if e.fn == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[index] = record
	for {
		r, ok := e.pending[e.next]
		if !ok {
			return
		}
		delete(e.pending, e.next)
		e.fn(e.next, e.total, r)
		e.next++
	}
}
