// Package cmd wires configuration, the repository, the tracker client and
// the report into the jiracheck command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/app"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/config"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/git"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/jira"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/logger"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/report"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/ui"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/validate"
)

// ErrValidationFailed is returned when at least one commit is invalid.
// The report has already said why, so nothing else is printed.
var ErrValidationFailed = errors.New("validation failed")

// reportedError has already been written to stderr
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

type rootOptions struct {
	configPath string
	tui        bool
}

// NewRootCmd builds the jiracheck command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "jiracheck",
		Short: "Check that every commit in a range references an existing Jira issue",
		Long: `Check that every commit in a git range references an existing Jira issue.

The range holds the commits reachable from --end-ref but not from --start-ref.
Each commit summary must contain a ticket key (e.g. PROJ-123) and the first
key found must exist in Jira. The exit status is 0 when every commit is valid.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := root.Flags()
	f.String("jira-url", "", "Jira base URL (env JIRA_URL)")
	f.String("username", "", "Jira username (env JIRA_USERNAME)")
	f.String("api-token", "", "Jira API token (env JIRA_API_TOKEN)")
	f.String("start-ref", "", "exclusive lower bound of the range")
	f.String("end-ref", "", "inclusive upper bound of the range")
	f.String("repo", ".", "path inside the git repository")
	f.String("key-pattern", "", "ticket key regular expression")
	f.Int("concurrency", 1, "number of Jira lookups in flight")
	f.Duration("timeout", 0, "per-lookup timeout (0 waits indefinitely)")
	f.String("format", config.FormatText, "report format: text, json or yaml")
	f.String("output", "", "file for the json/yaml report (default stdout)")
	f.Bool("no-color", false, "disable coloured output")
	f.String("log-level", "warn", "log level: debug, info, warn or error")
	f.StringVar(&opts.configPath, "config", "", "config file (default "+config.DefaultFileName+")")
	f.BoolVar(&opts.tui, "tui", false, "show interactive progress while validating")

	root.AddCommand(newConfigCmd())
	return root
}

// Execute runs the command line with args and returns the exit status
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *reportedError
	if !errors.Is(err, ErrValidationFailed) && !errors.As(err, &reported) {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := config.Load(config.LoadOptions{
		Path:     opts.configPath,
		EnvFiles: []string{".env"},
		Flags:    cmd.Flags(),
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = log.With("run_id", runID)

	ui.ConfigureColor(stdout, cfg.Output.NoColor)

	textOut, tuiOut := reportWriters(cfg, stdout, stderr)
	printer := report.NewPrinter(textOut)

	header := report.Header{
		JiraURL:  cfg.Jira.URL,
		Username: cfg.Jira.Username,
		StartRef: cfg.Range.StartRef,
		EndRef:   cfg.Range.EndRef,
	}
	printer.Header(header)

	commits, err := resolve(cfg, log)
	if err != nil {
		fmt.Fprintf(stderr, "Error fetching commit information from Git: %v\n", err)
		return &reportedError{err: err}
	}
	printer.CommitsFound(len(commits), header)

	client := jira.NewClient(cfg.Jira.URL,
		jira.Credentials{Username: cfg.Jira.Username, Token: cfg.Jira.APIToken},
		jira.WithTimeout(cfg.Jira.Timeout),
		jira.WithLogger(log),
	)

	validatorOpts := []validate.Option{
		validate.WithKeyRegex(cfg.KeyRegex()),
		validate.WithConcurrency(cfg.Validation.Concurrency),
		validate.WithLogger(log),
	}

	var (
		records []models.ValidationRecord
		summary models.Summary
	)
	if opts.tui && len(commits) > 0 {
		runFn := func(ctx context.Context, progress validate.ProgressFunc) ([]models.ValidationRecord, models.Summary) {
			v := validate.New(client, append(validatorOpts, validate.WithProgress(progress))...)
			return v.Run(ctx, commits)
		}
		records, summary, err = app.Run(ctx, runFn, cfg.Range.StartRef, cfg.Range.EndRef, len(commits),
			tea.WithOutput(tuiOut))
		if err != nil {
			return err
		}
	} else {
		v := validate.New(client, append(validatorOpts, validate.WithProgress(printer.Progress))...)
		records, summary = v.Run(ctx, commits)
	}

	printer.Summary(records, summary)

	if cfg.Output.Format != config.FormatText {
		doc := report.NewDocument(runID, cfg.Range.StartRef, cfg.Range.EndRef, records, summary)
		if err := writeDocument(doc, cfg.Output.Format, cfg.Output.File, stdout); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if !summary.Success() {
		return ErrValidationFailed
	}
	return nil
}

// reportWriters picks where the text report and the progress program go.
// A machine-readable document on stdout replaces the text report and moves
// the progress program to stderr.
func reportWriters(cfg *config.Config, stdout, stderr io.Writer) (text, tui io.Writer) {
	if cfg.Output.Format != config.FormatText && cfg.Output.File == "" {
		return io.Discard, stderr
	}
	return stdout, stdout
}

func resolve(cfg *config.Config, log *zap.SugaredLogger) ([]models.CommitRecord, error) {
	repo, err := git.Open(cfg.Range.RepoPath)
	if err != nil {
		return nil, err
	}

	commits, err := git.ResolveRange(repo, cfg.Range.StartRef, cfg.Range.EndRef)
	if err != nil {
		return nil, err
	}

	log.Debugw("resolved range",
		"start_ref", cfg.Range.StartRef,
		"end_ref", cfg.Range.EndRef,
		"commits", len(commits),
	)
	return commits, nil
}

func writeDocument(doc report.Document, format, path string, stdout io.Writer) error {
	if path == "" {
		return doc.Write(stdout, format)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := doc.Write(f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
