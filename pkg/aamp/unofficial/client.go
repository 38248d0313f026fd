// Package unofficial is a client for the Audio Manager Pro web client
// API (webapi/v1). The surface is reverse engineered from the stock web
// interface and is not covered by the documented API contract.
package unofficial

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const basePath = "webapi/v1"

const defaultTimeout = 15 * time.Second

// maxPageSize asks the devices endpoint for everything in one page,
// matching the web client's own listing request.
const maxPageSize = 2147483647

// defaultToneLength is the test tone duration in seconds when the
// caller does not pick one.
const defaultToneLength = 2

// Options tune client construction.
type Options struct {
	// VerifyTLS enables server certificate verification; off by default
	// because the appliance ships with a self-signed certificate.
	VerifyTLS bool

	// Timeout bounds every request. Zero selects the default.
	Timeout time.Duration

	Logger *log.Logger
}

// Client talks to the web API with a bearer token obtained through the
// oauth password grant. The token is cached and re-acquired on expiry;
// see token.go for the session state machine.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *log.Logger

	tokenMu     sync.Mutex
	accessToken string
	expiresAt   time.Time
	now         func() time.Time
}

// NewClient creates a client for the web API rooted at baseURL using
// the web interface credentials.
func NewClient(baseURL, username, password string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: !opts.VerifyTLS},
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

// VolumeCalibration retrieves the per-category calibration entries for
// a zone or site. The id is the scope-relative numeric id.
func (c *Client) VolumeCalibration(ctx context.Context, scope Scope, id string) (map[Category]Volume, error) {
	path := fmt.Sprintf("%s/%s/%s/volumes", basePath, scope, id)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &RequestError{Op: "get volume calibration", StatusCode: status, Body: body}
	}

	volumes := gjson.GetBytes(body, "data.volumes")
	if !volumes.Exists() {
		return nil, fmt.Errorf("volume calibration response has no data.volumes")
	}
	out := make(map[Category]Volume)
	if err := json.Unmarshal([]byte(volumes.Raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetVolumeCalibration sets one category's gain offset on a zone or
// site. The server acknowledges with 204; any other status means the
// change was not applied and is reported as false, not as an error.
func (c *Client) SetVolumeCalibration(ctx context.Context, scope Scope, id string, category Category, offset int) (bool, error) {
	path := fmt.Sprintf("%s/%s/%s/volumes/%s", basePath, scope, id, category)
	status, _, err := c.do(ctx, http.MethodPut, path, volumeUpdate{DefaultGainOffset: offset})
	if err != nil {
		return false, err
	}
	return status == http.StatusNoContent, nil
}

// AssignDeviceToZone moves a device (by scope-relative sink id) into a
// zone (by scope-relative zone id). Success requires a 200 response
// that lists the sink id among successfulIds.
func (c *Client) AssignDeviceToZone(ctx context.Context, zoneID, deviceID string) (bool, error) {
	sinkID, err := strconv.ParseInt(deviceID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("device id %q is not numeric: %w", deviceID, err)
	}

	path := fmt.Sprintf("%s/zones/%s/sinksAssignment", basePath, zoneID)
	status, body, err := c.do(ctx, http.MethodPost, path, assignRequest{SinkIDs: []int64{sinkID}})
	if err != nil {
		return false, err
	}
	if status != http.StatusOK {
		return false, nil
	}
	for _, id := range gjson.GetBytes(body, "successfulIds").Array() {
		if id.Int() == sinkID {
			return true, nil
		}
	}
	return false, nil
}

// StartTestTone plays the hardware test tone on a device for length
// seconds. Non-positive lengths select the default of two seconds.
func (c *Client) StartTestTone(ctx context.Context, deviceID string, length int) (bool, error) {
	sinkID, err := strconv.ParseInt(deviceID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("device id %q is not numeric: %w", deviceID, err)
	}
	if length <= 0 {
		length = defaultToneLength
	}

	status, _, err := c.do(ctx, http.MethodPost, basePath+"/testTone", testToneRequest{SinkID: sinkID, ToneLength: length})
	if err != nil {
		return false, err
	}
	return status == http.StatusCreated, nil
}

// ListDevices retrieves the hardware device listing. A non-200 response
// yields (nil, nil): hardware info is best-effort and callers must
// treat an absent listing as "no hardware info available".
func (c *Client) ListDevices(ctx context.Context) ([]DeviceRecord, error) {
	path := fmt.Sprintf("%s/devices?size=%d", basePath, maxPageSize)
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, nil
	}
	var records []DeviceRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// do executes one web API request with a valid bearer token, acquiring
// or refreshing the token first when needed.
func (c *Client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return 0, nil, err
	}

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
	req.Header.Set("Authorization", "Bearer "+token)
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
		c.logger.Printf("webapi %s %s [%s] failed: http %d", method, path, uuid.NewString()[:8], resp.StatusCode)
	}

	return resp.StatusCode, body, nil
}
