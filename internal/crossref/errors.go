package crossref

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork indicates Crossref could not be reached.
	ErrNetwork = errors.New("network error communicating with Crossref")

	// ErrNoMatch indicates the reply held no usable work.
	ErrNoMatch = errors.New("no data was found for the work")
)

// APIError is a non-success HTTP reply from Crossref.
type APIError struct {
	StatusCode int
	DOI        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Crossref request for %s failed: %d %s", e.DOI, e.StatusCode, http.StatusText(e.StatusCode))
}

// IsNotFound reports whether err means Crossref does not know the DOI.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsRateLimited reports whether Crossref rejected the request for exceeding
// its rate limit.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

func checkHTTPErrors(resp *http.Response, doi string) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, DOI: doi}
	}
	return nil
}
