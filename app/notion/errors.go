package notion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/FACorreiaa/notion-city-proxy/internal/types"
)

// A failed query returns exactly one of ErrUpstreamTimeout (matched with
// errors.Is), *HTTPError or *TransportError. Anything else is a decoding or
// programming error.
var ErrUpstreamTimeout = errors.New("notion: request timed out")

// HTTPError is returned when Notion answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("notion: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("notion: status %d", e.StatusCode)
}

// Status returns the upstream status, or 500 when none was recorded.
func (e *HTTPError) Status() int {
	if e.StatusCode < 100 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// TransportError wraps failures where no response was received at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("notion: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newHTTPError(status int, body []byte) *HTTPError {
	he := &HTTPError{
		StatusCode: status,
		Body:       strings.TrimSpace(string(body)),
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		he.Code = er.Code
		he.Message = strings.TrimSpace(er.Message)
	}
	return he
}
