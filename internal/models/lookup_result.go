package models

// LookupResult is the outcome of checking one ticket key against the tracker
type LookupResult interface {
	isLookupResult()
}

type lookupExists struct{}
type lookupNotFound struct{}
type lookupFailed struct{ Detail string }

func (lookupExists) isLookupResult()   {}
func (lookupNotFound) isLookupResult() {}
func (lookupFailed) isLookupResult()   {}

// LookupResult variants
var (
	// Exists indicates the tracker returned the ticket
	Exists LookupResult = lookupExists{}
	// NotFound indicates the tracker answered 404 for the ticket
	NotFound LookupResult = lookupNotFound{}
)

// LookupFailed creates a LookupResult for a lookup that could not be answered
func LookupFailed(detail string) LookupResult {
	return lookupFailed{Detail: detail}
}

// IsExists returns true if r is Exists
func IsExists(r LookupResult) bool {
	_, ok := r.(lookupExists)
	return ok
}

// IsNotFound returns true if r is NotFound
func IsNotFound(r LookupResult) bool {
	_, ok := r.(lookupNotFound)
	return ok
}

// IsLookupFailed returns true if r is LookupFailed
func IsLookupFailed(r LookupResult) bool {
	_, ok := r.(lookupFailed)
	return ok
}

// LookupDetail returns the failure detail for LookupFailed results
func LookupDetail(r LookupResult) string {
	if failed, ok := r.(lookupFailed); ok {
		return failed.Detail
	}
	return ""
}
