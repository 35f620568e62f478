package models

// CommitRecord identifies one commit of a resolved range
type CommitRecord struct {
	// ID is the short commit hash (7 characters)
	ID string
	// Summary is the first line of the commit message (may be empty)
	Summary string
}

// NewCommitRecord creates a new CommitRecord
func NewCommitRecord(id, summary string) CommitRecord {
	return CommitRecord{
		ID:      id,
		Summary: summary,
	}
}
