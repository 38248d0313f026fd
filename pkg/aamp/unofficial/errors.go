package unofficial

import "fmt"

// RequestError represents a non-success response from the web API where
// the call does not define a boolean or absent result instead.
type RequestError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *RequestError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("webapi %s failed: http %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("webapi %s failed: http %d: %s", e.Op, e.StatusCode, e.Body)
}

// AuthenticationError indicates the password-grant token exchange
// failed. The request that triggered the exchange does not proceed.
type AuthenticationError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("webapi token exchange failed: %v", e.Err)
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("webapi token exchange failed: http %d", e.StatusCode)
	}
	return fmt.Sprintf("webapi token exchange failed: http %d: %s", e.StatusCode, e.Body)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}
