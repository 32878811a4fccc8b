package gtfsrt

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch matches any failure to retrieve a feed: transport errors,
	// timeouts and non-2xx responses.
	ErrFetch = errors.New("feed fetch failed")
	// ErrDecode matches payloads that are not a valid GTFS-RT FeedMessage.
	ErrDecode = errors.New("feed decode failed")
)

// Error kinds reported to API clients.
const (
	KindFetch   = "fetch"
	KindDecode  = "decode"
	KindUnknown = "unknown"
)

// FetchError describes a failed feed request.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// DecodeError describes a payload that could not be unmarshaled.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode feed from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Kind classifies err as one of KindFetch, KindDecode or KindUnknown.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrFetch):
		return KindFetch
	case errors.Is(err, ErrDecode):
		return KindDecode
	default:
		return KindUnknown
	}
}
