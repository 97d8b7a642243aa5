package feed

import "fmt"

// FetchError indicates the feed host answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch %s: unexpected status %s", e.URL, e.Status)
}

// FormatError indicates the response body could not be turned into items.
type FormatError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("feed format %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("feed format %s: %s", e.URL, e.Reason)
}

func (e *FormatError) Unwrap() error { return e.Err }
