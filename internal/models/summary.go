package models

// Summary aggregates the records of a validation run
type Summary struct {
	Total   int
	Valid   int
	Invalid int
}

// Summarize counts records by verdict
func Summarize(records []ValidationRecord) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.IsValid() {
			s.Valid++
		}
	}
	s.Invalid = s.Total - s.Valid
	return s
}

// Success returns true if no record is invalid (an empty run succeeds)
func (s Summary) Success() bool {
	return s.Invalid == 0
}
