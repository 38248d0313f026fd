package unofficial

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// The token endpoint authenticates the exchange itself with a fixed
// client pair baked into the stock web interface.
const (
	oauthClientID     = "client"
	oauthClientSecret = "secret"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ensureToken returns a bearer token for the next request. The session
// moves between two states: no token held, and a token held with a hard
// expiry. A request finding the session without a token, or at or past
// the expiry time, performs one password-grant exchange before
// proceeding. The mutex is held across the exchange so a burst of
// expiring requests refreshes exactly once.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	token, expiresIn, err := c.exchangeCredentials(ctx)
	if err != nil {
		return "", err
	}
	c.accessToken = token
	c.expiresAt = c.now().Add(time.Duration(expiresIn) * time.Second)
	c.logger.Printf("webapi token acquired, valid for %ds", expiresIn)
	return token, nil
}

// exchangeCredentials performs the password-grant exchange. Any failure
// is fatal for the request that needed the token.
func (c *Client) exchangeCredentials(ctx context.Context) (string, int64, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("grant_type", "password")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.SetBasicAuth(oauthClientID, oauthClientSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, &AuthenticationError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, &AuthenticationError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, &AuthenticationError{StatusCode: resp.StatusCode, Body: body}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0, &AuthenticationError{Err: err}
	}
	return payload.AccessToken, payload.ExpiresIn, nil
}
