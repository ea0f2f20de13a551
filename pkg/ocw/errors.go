package ocw

import (
	"context"
	"errors"
	"fmt"
)

// FetchError reports a page or asset that could not be retrieved: either the
// transport failed (Err set) or the server answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Permanent reports whether retrying the request cannot succeed.
func (e *FetchError) Permanent() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// MalformedURLError reports a listing url whose path does not carry the expected segments.
type MalformedURLError struct {
	URL    string
	Reason string
	Err    error
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("malformed url %q: %s", e.URL, e.Reason)
}

func (e *MalformedURLError) Unwrap() error { return e.Err }

// FilesystemError reports a directory or file that could not be created or written.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

const (
	KindFetch        = "fetch"
	KindMalformedURL = "malformed_url"
	KindFilesystem   = "filesystem"
	KindCanceled     = "canceled"
	KindOther        = "other"
)

// Kind classifies err by the error types of this package.
func Kind(err error) string {
	var (
		fetchErr *FetchError
		urlErr   *MalformedURLError
		fsErr    *FilesystemError
	)
	switch {
	case errors.As(err, &urlErr):
		return KindMalformedURL
	case errors.As(err, &fetchErr):
		return KindFetch
	case errors.As(err, &fsErr):
		return KindFilesystem
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindOther
	}
}
