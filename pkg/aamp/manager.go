package aamp

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/strefethen/aamp-go/pkg/aamp/official"
	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// Config holds the construction parameters for a Manager. There is no
// config file or environment lookup in the library; callers pass
// everything explicitly.
type Config struct {
	// BaseURL is the root of the Audio Manager Pro server, for example
	// "https://audiomanager.local".
	BaseURL string

	// APIUsername and APIPassword authenticate against the documented
	// API and are required.
	APIUsername string
	APIPassword string

	// WebUsername and WebPassword are the web interface credentials.
	// Supplying both enables the unofficial web API features.
	WebUsername string
	WebPassword string

	// VerifyTLS enables server certificate verification. Off by
	// default to match the appliance's self-signed certificate; turn
	// it on when the server carries a trusted one.
	VerifyTLS bool

	// Timeout bounds every HTTP call. Zero selects the transport
	// default.
	Timeout time.Duration

	Logger *log.Logger
}

// Manager is the single entry point to the library. It owns both
// transport clients and the hardware device cache.
type Manager struct {
	official   *official.Client
	unofficial *unofficial.Client
	logger     *log.Logger

	devices *deviceCache
	refresh singleflight.Group
}

// New creates a Manager from cfg.
func New(cfg Config) (*Manager, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("aamp: base url is required")
	}
	if cfg.APIUsername == "" || cfg.APIPassword == "" {
		return nil, errors.New("aamp: official api credentials are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	m := &Manager{
		official: official.NewClient(baseURL, cfg.APIUsername, cfg.APIPassword, official.Options{
			VerifyTLS: cfg.VerifyTLS,
			Timeout:   cfg.Timeout,
			Logger:    logger,
		}),
		logger:  logger,
		devices: newDeviceCache(),
	}
	if cfg.WebUsername != "" && cfg.WebPassword != "" {
		m.unofficial = unofficial.NewClient(baseURL, cfg.WebUsername, cfg.WebPassword, unofficial.Options{
			VerifyTLS: cfg.VerifyTLS,
			Timeout:   cfg.Timeout,
			Logger:    logger,
		})
	}
	return m, nil
}

// UnofficialFeaturesEnabled reports whether web credentials were
// supplied at construction.
func (m *Manager) UnofficialFeaturesEnabled() bool {
	return m.unofficial != nil
}

// Official exposes the underlying documented-API client.
func (m *Manager) Official() *official.Client {
	return m.official
}

// Unofficial exposes the web-API client, or nil when unofficial
// features are disabled.
func (m *Manager) Unofficial() *unofficial.Client {
	return m.unofficial
}

// AudioTargets retrieves every configured audio target as a typed view.
// Records without a type field cannot be classified and are dropped;
// records with an unrecognized type are kept as generic targets.
func (m *Manager) AudioTargets(ctx context.Context) ([]Target, error) {
	records, err := m.official.ListTargets(ctx)
	if err != nil {
		return nil, err
	}

	targets := make([]Target, 0, len(records))
	for _, rec := range records {
		if !gjson.GetBytes(rec.Raw, "type").Exists() {
			continue
		}
		targets = append(targets, m.classify(rec))
	}
	return targets, nil
}

// AudioZones retrieves the configured physical zones.
func (m *Manager) AudioZones(ctx context.Context) ([]*PhysicalZone, error) {
	targets, err := m.AudioTargets(ctx)
	if err != nil {
		return nil, err
	}
	var zones []*PhysicalZone
	for _, target := range targets {
		if zone, ok := target.(*PhysicalZone); ok {
			zones = append(zones, zone)
		}
	}
	return zones, nil
}

// AudioDevices retrieves the configured audio devices.
func (m *Manager) AudioDevices(ctx context.Context) ([]*Device, error) {
	targets, err := m.AudioTargets(ctx)
	if err != nil {
		return nil, err
	}
	var devices []*Device
	for _, target := range targets {
		if device, ok := target.(*Device); ok {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

// Devices returns the cached hardware device listing, populating it on
// first access. Without web credentials the listing is always empty
// and no request is made.
func (m *Manager) Devices(ctx context.Context) ([]unofficial.DeviceRecord, error) {
	if !m.UnofficialFeaturesEnabled() {
		return nil, nil
	}
	if records, ok := m.devices.Get(); ok {
		return records, nil
	}
	if err := m.RefreshDevices(ctx); err != nil {
		return nil, err
	}
	records, _ := m.devices.Get()
	return records, nil
}

// RefreshDevices re-fetches the hardware device cache. The cache never
// invalidates itself; call this after a topology change such as a zone
// assignment. Concurrent refreshes share a single fetch.
func (m *Manager) RefreshDevices(ctx context.Context) error {
	if !m.UnofficialFeaturesEnabled() {
		m.devices.Clear()
		return nil
	}
	_, err, _ := m.refresh.Do("devices", func() (any, error) {
		records, err := m.unofficial.ListDevices(ctx)
		if err != nil {
			return nil, err
		}
		m.devices.Set(records)
		return nil, nil
	})
	return err
}
