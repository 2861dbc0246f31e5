package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest indicates that neither or both of file URL and inline
// content were supplied. Fatal to the request; nothing is cached.
var ErrInvalidRequest = errors.New("exactly one of file_url or content must be provided")

// DownloadError reports a download that failed after the retry budget was
// exhausted, carrying the last underlying cause.
type DownloadError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// AnalysisFailure reports that local CSV profiling could not produce a
// profile. Recoverable: the orchestrator falls back to the model path.
type AnalysisFailure struct {
	Detail string
}

func (e *AnalysisFailure) Error() string {
	return fmt.Sprintf("csv analysis failed: %s", e.Detail)
}
