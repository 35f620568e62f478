package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tooky/check-all-commits-have-jira-issue/internal/models"
)

// Document is the machine-readable report of a run
type Document struct {
	RunID    string           `json:"run_id" yaml:"run_id"`
	StartRef string           `json:"start_ref" yaml:"start_ref"`
	EndRef   string           `json:"end_ref" yaml:"end_ref"`
	Summary  DocumentSummary  `json:"summary" yaml:"summary"`
	Commits  []DocumentCommit `json:"commits" yaml:"commits"`
}

type DocumentSummary struct {
	Total   int  `json:"total" yaml:"total"`
	Valid   int  `json:"valid" yaml:"valid"`
	Invalid int  `json:"invalid" yaml:"invalid"`
	Success bool `json:"success" yaml:"success"`
}

type DocumentCommit struct {
	ID         string   `json:"id" yaml:"id"`
	Summary    string   `json:"summary" yaml:"summary"`
	TicketKeys []string `json:"ticket_keys" yaml:"ticket_keys"`
	Verdict    string   `json:"verdict" yaml:"verdict"`
	Reason     string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewDocument builds a Document; commits keep the order of records
func NewDocument(runID, startRef, endRef string, records []models.ValidationRecord, s models.Summary) Document {
	commits := make([]DocumentCommit, 0, len(records))
	for _, r := range records {
		keys := r.TicketKeys
		if keys == nil {
			keys = []string{}
		}
		commits = append(commits, DocumentCommit{
			ID:         r.Commit.ID,
			Summary:    r.Commit.Summary,
			TicketKeys: keys,
			Verdict:    r.Verdict.String(),
			Reason:     r.Reason,
		})
	}

	return Document{
		RunID:    runID,
		StartRef: startRef,
		EndRef:   endRef,
		Summary: DocumentSummary{
			Total:   s.Total,
			Valid:   s.Valid,
			Invalid: s.Invalid,
			Success: s.Success(),
		},
		Commits: commits,
	}
}

// Write encodes d in the given format ("json" or "yaml")
func (d Document) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}
