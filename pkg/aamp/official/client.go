// Package official is a client for the documented Audio Manager Pro
// HTTP API (api/v1.1), authenticated with HTTP digest credentials.
package official

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/icholy/digest"
)

const basePath = "api/v1.1"

const defaultTimeout = 15 * time.Second

// Priority controls how a one-shot session competes with other audio
// playing on the same target.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Options tune client construction.
type Options struct {
	// VerifyTLS enables server certificate verification. The appliance
	// ships with a self-signed certificate, so this is off by default.
	VerifyTLS bool

	// Timeout bounds every request. Zero selects the default.
	Timeout time.Duration

	Logger *log.Logger
}

// Client talks to the documented API. Digest authentication is applied
// per request; the client holds no session state.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// NewClient creates a client for the official API rooted at baseURL.
// Uses connection pooling for better performance when making multiple requests.
func NewClient(baseURL, username, password string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	transport := &http.Transport{
		DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: !opts.VerifyTLS},
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &digest.Transport{
				Username:  username,
				Password:  password,
				Transport: transport,
			},
		},
		logger: logger,
	}
}

// ListTargets retrieves every audio target configured on the server.
func (c *Client) ListTargets(ctx context.Context) ([]TargetRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, basePath+"/targets", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RequestError{Op: "list targets", StatusCode: status, Body: body}
	}
	return decodeTargetRecords(body)
}

// GetTarget retrieves a single target by id. A target the server does
// not know yields (nil, nil).
func (c *Client) GetTarget(ctx context.Context, id string) (*TargetRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, basePath+"/targets/"+id, nil)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		var rec TargetRecord
		if err := json.Unmarshal(body, &rec); err != nil {
			return nil, err
		}
		rec.Raw = json.RawMessage(body)
		return &rec, nil
	case http.StatusNotFound:
		return nil, nil
	default:
		return nil, &RequestError{Op: "get target", StatusCode: status, Body: body}
	}
}

// ListAudioFiles retrieves the audio files stored on the server.
func (c *Client) ListAudioFiles(ctx context.Context) ([]FileRecord, error) {
	status, body, err := c.do(ctx, http.MethodGet, basePath+"/audioFiles", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RequestError{Op: "list audio files", StatusCode: status, Body: body}
	}
	var files []FileRecord
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// PlayFiles creates a one-shot session playing fileIDs on targetIDs.
// The priority is validated before anything is sent. Empty target or
// file lists are a deliberate no-op returning (nil, nil): the server
// rejects empty sessions but callers treat them as nothing to do.
func (c *Client) PlayFiles(ctx context.Context, targetIDs, fileIDs []string, repeat int, priority Priority) (*PlaySession, error) {
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return nil, &InvalidPriorityError{Priority: priority}
	}
	if len(targetIDs) == 0 || len(fileIDs) == 0 {
		return nil, nil
	}
	if repeat < 1 {
		repeat = 1
	}

	payload := playRequest{
		FileIDs: fileIDs,
		Prio:    string(priority),
		Repeat:  repeat,
		Targets: targetIDs,
	}
	status, body, err := c.do(ctx, http.MethodPost, basePath+"/audioSessions/oneshotPlayAudioFiles", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RequestError{Op: "play audio files", StatusCode: status, Body: body}
	}
	var session PlaySession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// do executes one API request and returns the status and body.
// Transport errors are returned as-is; status handling is the caller's.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Printf("official api %s %s [%s] failed: http %d", method, path, shortRequestID(), resp.StatusCode)
	}

	return resp.StatusCode, body, nil
}

// shortRequestID tags server-error log lines so retried invocations can
// be told apart when reading interleaved logs.
func shortRequestID() string {
	return uuid.NewString()[:8]
}

func decodeTargetRecords(body []byte) ([]TargetRecord, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}
	records := make([]TargetRecord, 0, len(raws))
	for _, raw := range raws {
		var rec TargetRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, err
		}
		rec.Raw = raw
		records = append(records, rec)
	}
	return records, nil
}
