package models

// Verdict is the per-commit validation outcome
type Verdict int

const (
	// Invalid means the commit lacks a key or its first key could not be confirmed
	Invalid Verdict = iota
	// Valid means the first key of the summary exists in the tracker
	Valid
)

// String returns the report label for the verdict
func (v Verdict) String() string {
	switch v {
	case Valid:
		return "VALID"
	default:
		return "INVALID"
	}
}

// MarshalText renders the verdict as its report label
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ValidationRecord is the validation result for a single commit
type ValidationRecord struct {
	// Commit is the commit this record covers
	Commit CommitRecord
	// TicketKeys are all keys found in the summary, in order of appearance
	TicketKeys []string
	// Verdict of the validation
	Verdict Verdict
	// Reason explains an Invalid verdict; empty when Valid
	Reason string
}

// NewValidRecord creates a Valid record
func NewValidRecord(commit CommitRecord, keys []string) ValidationRecord {
	return ValidationRecord{
		Commit:     commit,
		TicketKeys: keys,
		Verdict:    Valid,
	}
}

// NewInvalidRecord creates an Invalid record with the given reason
func NewInvalidRecord(commit CommitRecord, keys []string, reason string) ValidationRecord {
	return ValidationRecord{
		Commit:     commit,
		TicketKeys: keys,
		Verdict:    Invalid,
		Reason:     reason,
	}
}

// IsValid returns true if the record's verdict is Valid
func (r ValidationRecord) IsValid() bool {
	return r.Verdict == Valid
}

// CheckedKey returns the key that was sent to the tracker, if any
func (r ValidationRecord) CheckedKey() string {
	if len(r.TicketKeys) == 0 {
		return ""
	}
	return r.TicketKeys[0]
}
