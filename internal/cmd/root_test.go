package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/require"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/config"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/report"
	"github.com/tooky/check-all-commits-have-jira-issue/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// setupRepo creates an on-disk repository and moves into an empty
// working directory so no stray config or .env file is picked up
func setupRepo(t *testing.T, messages ...string) string {
	t.Helper()

	dir := t.TempDir()
	testutil.NewRepoAt(t, dir).Linear(messages...)
	t.Chdir(t.TempDir())
	return dir
}

func execute(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func baseArgs(jiraURL, repo, start, end string) []string {
	return []string{
		"--jira-url", jiraURL,
		"--username", testutil.JiraUser,
		"--api-token", testutil.JiraToken,
		"--repo", repo,
		"--start-ref", start,
		"--end-ref", end,
	}
}

func TestAllCommitsValid(t *testing.T) {
	repo := setupRepo(t,
		"chore: initial",
		"feat: PROJ-123 Implement feature X",
		"fix: PROJ-124 Address bug Y",
	)
	jira := testutil.NewFakeJira(t).Existing("PROJ-123", "PROJ-124")

	res := execute(t, baseArgs(jira.URL, repo, "HEAD~2", "HEAD")...)

	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Jira URL: "+jira.URL)
	require.Contains(t, res.stdout, "Username: "+testutil.JiraUser)
	require.NotContains(t, res.stdout, testutil.JiraToken)
	require.Contains(t, res.stdout, "Found 2 commits to validate.")
	require.Contains(t, res.stdout, "(1/2) Validating commit")
	require.Contains(t, res.stdout, "VALID (Jira Key: PROJ-123)")
	require.Contains(t, res.stdout, "VALID (Jira Key: PROJ-124)")
	require.Contains(t, res.stdout, "Total commits scanned: 2")
	require.Contains(t, res.stdout, ">>> Final Result: Validation SUCCESSFUL.")
	require.Equal(t, []string{"/rest/api/2/issue/PROJ-123", "/rest/api/2/issue/PROJ-124"}, jira.Requests())
}

func TestMissingIssueFails(t *testing.T) {
	repo := setupRepo(t,
		"chore: initial",
		"feat: PROJ-123 Implement feature X",
		"fix: PROJ-404 Resolve issue",
	)
	jira := testutil.NewFakeJira(t).Existing("PROJ-123")

	res := execute(t, baseArgs(jira.URL, repo, "HEAD~2", "HEAD")...)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stdout, "INVALID - Error: ticket PROJ-404 not found in tracker (404)")
	require.Contains(t, res.stdout, "Invalid commits: 1")
	require.Contains(t, res.stdout, "PROJ-404")
	require.Contains(t, res.stdout, ">>> Final Result: Validation FAILED.")
	require.Empty(t, res.stderr)
}

func TestCommitWithoutKeyFails(t *testing.T) {
	repo := setupRepo(t,
		"chore: initial",
		"feat: PROJ-123 Implement feature X",
		"chore: Update dependencies",
	)
	jira := testutil.NewFakeJira(t).Existing("PROJ-123")

	res := execute(t, baseArgs(jira.URL, repo, "HEAD~2", "HEAD")...)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stdout, "INVALID - Error: no keys found in commit summary")
	require.Contains(t, res.stdout, "None")
	require.Equal(t, []string{"/rest/api/2/issue/PROJ-123"}, jira.Requests())
}

func TestUnknownStartRef(t *testing.T) {
	repo := setupRepo(t, "chore: initial", "feat: PROJ-1 thing")
	jira := testutil.NewFakeJira(t)

	res := execute(t, baseArgs(jira.URL, repo, "nonexistent-branch", "HEAD")...)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "Error fetching commit information from Git: ")
	require.Contains(t, res.stderr, "failed to resolve start_ref 'nonexistent-branch'")
	require.NotContains(t, res.stdout, "Final Result")
	require.Empty(t, jira.Requests())
}

func TestMissingParentCommit(t *testing.T) {
	dir := t.TempDir()
	r := testutil.NewRepoAt(t, dir)
	base := r.Commit("base")
	broken := r.Commit("PROJ-1 broken", plumbing.NewHash("0123456789abcdef0123456789abcdef01234567"))
	tip := r.Commit("PROJ-2 tip", broken)
	r.Branch("base", base)
	r.Branch("master", tip)
	t.Chdir(t.TempDir())
	jira := testutil.NewFakeJira(t).Existing("PROJ-1", "PROJ-2")

	res := execute(t, baseArgs(jira.URL, dir, "base", "master")...)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "Error fetching commit information from Git: failed to find commit")
	require.NotContains(t, res.stdout, "Final Result")
	require.Empty(t, jira.Requests())
}

func TestAuthenticationFailure(t *testing.T) {
	repo := setupRepo(t, "chore: initial", "feat: PROJ-123 Implement feature X")
	jira := testutil.NewFakeJira(t).Existing("PROJ-123")

	args := baseArgs(jira.URL, repo, "HEAD~1", "HEAD")
	args = append(args, "--api-token", "wrong")
	res := execute(t, args...)

	require.Equal(t, 1, res.code)
	require.Contains(t, res.stdout, "INVALID - Error: lookup error: Unauthorized (401)")
	require.Contains(t, res.stdout, ">>> Final Result: Validation FAILED.")
}

func TestEmptyRange(t *testing.T) {
	repo := setupRepo(t, "chore: initial", "feat: PROJ-1 thing")
	jira := testutil.NewFakeJira(t)

	res := execute(t, baseArgs(jira.URL, repo, "HEAD", "HEAD")...)

	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "No commits found in the specified range (HEAD..HEAD).")
	require.Contains(t, res.stdout, ">>> Final Result: Validation SUCCESSFUL (No commits to validate).")
	require.Empty(t, jira.Requests())
}

func TestParallelLookupsKeepOrder(t *testing.T) {
	repo := setupRepo(t, "base", "PROJ-1 a", "PROJ-2 b", "PROJ-3 c", "PROJ-4 d")
	jira := testutil.NewFakeJira(t).Existing("PROJ-1", "PROJ-2", "PROJ-3", "PROJ-4")

	args := append(baseArgs(jira.URL, repo, "HEAD~4", "HEAD"), "--concurrency", "4", "--format", "json")
	res := execute(t, args...)
	require.Equal(t, 0, res.code, res.stderr)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &doc))
	require.Equal(t, 4, doc.Summary.Total)
	require.True(t, doc.Summary.Success)
	for i, c := range doc.Commits {
		require.Equal(t, []string{"PROJ-" + string(rune('1'+i))}, c.TicketKeys)
	}
}

func TestJSONReportToFile(t *testing.T) {
	repo := setupRepo(t, "base", "PROJ-1 ok", "no ticket here")
	jira := testutil.NewFakeJira(t).Existing("PROJ-1")
	out := filepath.Join(t.TempDir(), "report.json")

	args := append(baseArgs(jira.URL, repo, "HEAD~2", "HEAD"), "--format", "json", "--output", out)
	res := execute(t, args...)
	require.Equal(t, 1, res.code)

	// the text report still goes to stdout
	require.Contains(t, res.stdout, ">>> Final Result: Validation FAILED.")

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	require.NotEmpty(t, doc.RunID)
	require.Equal(t, "HEAD~2", doc.StartRef)
	require.Equal(t, report.DocumentSummary{Total: 2, Valid: 1, Invalid: 1}, doc.Summary)
	require.Equal(t, "VALID", doc.Commits[0].Verdict)
	require.Equal(t, "INVALID", doc.Commits[1].Verdict)
	require.Equal(t, "no keys found in commit summary", doc.Commits[1].Reason)
}

func TestConfigFileAndEnv(t *testing.T) {
	repo := setupRepo(t, "base", "PROJ-7 from config")
	jira := testutil.NewFakeJira(t).Existing("PROJ-7")

	require.NoError(t, os.WriteFile(".jiracheck.toml", []byte(`
[jira]
url = "`+jira.URL+`"

[range]
repo_path = "`+filepath.ToSlash(repo)+`"
start_ref = "HEAD~1"
end_ref = "HEAD"
`), 0644))
	t.Setenv("JIRA_USERNAME", testutil.JiraUser)
	t.Setenv("JIRA_API_TOKEN", testutil.JiraToken)

	res := execute(t)
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "VALID (Jira Key: PROJ-7)")
}

func TestMissingCredentials(t *testing.T) {
	repo := setupRepo(t, "base", "PROJ-1 a")
	t.Setenv("JIRA_USERNAME", "")
	t.Setenv("JIRA_API_TOKEN", "")

	res := execute(t, "--jira-url", "http://127.0.0.1:1", "--repo", repo, "--start-ref", "HEAD~1", "--end-ref", "HEAD")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "jira username is required")
}

func TestConfigInit(t *testing.T) {
	t.Chdir(t.TempDir())

	res := execute(t, "config", "init")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "Created config file: .jiracheck.toml")

	data, err := os.ReadFile(".jiracheck.toml")
	require.NoError(t, err)
	require.Contains(t, string(data), "[tickets]")

	res = execute(t, "config", "init")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "failed to create config")
}

func TestReportWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer

	tests := []struct {
		name     string
		format   string
		file     string
		wantText *bytes.Buffer
		wantTUI  *bytes.Buffer
	}{
		{"text", config.FormatText, "", &stdout, &stdout},
		{"json to stdout", config.FormatJSON, "", nil, &stderr},
		{"yaml to stdout", config.FormatYAML, "", nil, &stderr},
		{"json to file", config.FormatJSON, "report.json", &stdout, &stdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Output.Format = tt.format
			cfg.Output.File = tt.file

			text, tui := reportWriters(cfg, &stdout, &stderr)
			if tt.wantText == nil {
				require.Equal(t, io.Discard, text)
			} else {
				require.Same(t, tt.wantText, text)
			}
			require.Same(t, tt.wantTUI, tui)
		})
	}
}
