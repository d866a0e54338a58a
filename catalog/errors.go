package catalog

import "fmt"

// FetchError reports a failed catalog download: a transport error, a
// timeout, or a non-2xx HTTP status.
type FetchError struct {
	URL    string
	Status int // 0 when the request never produced a response
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError reports a download that succeeded at the HTTP level but
// yielded too few well-formed element records to be trusted.
type ValidationError struct {
	URL   string
	Count int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog %s: only %d records parsed (minimum %d)", e.URL, e.Count, MinRecords)
}
