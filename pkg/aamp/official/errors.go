package official

import "fmt"

// RequestError represents a non-success response from the official API.
type RequestError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("official api %s failed: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("official api %s failed: http %d: %s", e.Op, e.StatusCode, e.Body)
}

// InvalidPriorityError reports a playback priority outside HIGH, MEDIUM
// and LOW. It is raised before any request is sent.
type InvalidPriorityError struct {
	Priority Priority
}

func (e *InvalidPriorityError) Error() string {
	return fmt.Sprintf("invalid playback priority %q", string(e.Priority))
}
