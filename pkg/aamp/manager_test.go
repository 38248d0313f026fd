package aamp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixture fakes both server surfaces behind one httptest server, the
// way the real appliance serves api/v1.1 and webapi/v1 from one host.
type fixture struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	tokenCalls    int
	webHits       int
	deviceFetches int
	volumePuts    []string
	assignPath    string
	assignBody    map[string][]int64
	testToneBody  map[string]any

	targetsJSON     string
	targetByID      map[string]string
	devicesJSON     string
	devicesStatus   int
	volumesJSON     string
	volumePutStatus map[string]int
	assignStatus    int
	assignResponse  string
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		t: t,
		targetsJSON: `[
			{"id":"zon_5","type":"physicalZone","enabled":true,"status":"ok","niceName":"Lobby","children":["dev_10"]},
			{"id":"sit_2","type":"site","enabled":true,"status":"ok","niceName":"HQ"},
			{"id":"dev_10","type":"device","enabled":true,"status":"ok","niceName":"Lobby Speaker"},
			{"id":"grp_1","type":"virtualZone","enabled":false,"status":"ok","niceName":"All"},
			{"id":"mys_1","enabled":false,"status":"?"}
		]`,
		targetByID: map[string]string{
			"zon_5":  `{"id":"zon_5","type":"physicalZone","enabled":true,"status":"ok","niceName":"Lobby","children":["dev_10"]}`,
			"zon_6":  `{"id":"zon_6","type":"physicalZone","enabled":true,"status":"ok","niceName":"Cafe"}`,
			"sit_2":  `{"id":"sit_2","type":"site","enabled":true,"status":"ok","niceName":"HQ"}`,
			"dev_10": `{"id":"dev_10","type":"device","enabled":true,"status":"ok","niceName":"Lobby Speaker"}`,
		},
		devicesJSON: `[{
			"id":1,"name":"Speaker","mac":"AC:CC:8E:00:00:01","ipAddress":"10.0.0.20",
			"productName":"AXIS C1004-E","type":"C1004","fwVersion":"11.9.60",
			"sinks":[{"id":10,"zones":[{"id":5,"name":"Lobby"}]}]
		},{
			"id":2,"name":"Horn","mac":"AC:CC:8E:00:00:02","ipAddress":"10.0.0.21",
			"productName":"AXIS C3003-E","type":"C3003","fwVersion":"11.9.60",
			"sinks":[{"id":11,"zones":[{"id":6,"name":"Cafe"}]}]
		}]`,
		devicesStatus: http.StatusOK,
		volumesJSON: `{"data":{"volumes":{
			"MUSIC":{"defaultGainOffset":-500},
			"ANNOUNCEMENT":{"defaultGainOffset":100},
			"PAGING":{"defaultGainOffset":0}
		}}}`,
		volumePutStatus: map[string]int{},
		assignStatus:    http.StatusOK,
		assignResponse:  `{"successfulIds":[10]}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", f.handleToken)
	mux.HandleFunc("/api/v1.1/targets", f.handleListTargets)
	mux.HandleFunc("/api/v1.1/targets/", f.handleGetTarget)
	mux.HandleFunc("/webapi/v1/", f.handleWebAPI)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tokenCalls++
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
}

func (f *fixture) handleListTargets(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	body := f.targetsJSON
	f.mu.Unlock()
	w.Write([]byte(body))
}

func (f *fixture) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1.1/targets/")
	f.mu.Lock()
	body, ok := f.targetByID[id]
	f.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write([]byte(body))
}

func (f *fixture) handleWebAPI(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.webHits++
	f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/webapi/v1/devices":
		f.mu.Lock()
		f.deviceFetches++
		status, body := f.devicesStatus, f.devicesJSON
		f.mu.Unlock()
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(body))

	case r.Method == http.MethodPut && strings.Contains(path, "/volumes/"):
		category := path[strings.LastIndex(path, "/")+1:]
		f.mu.Lock()
		f.volumePuts = append(f.volumePuts, path)
		status, overridden := f.volumePutStatus[category]
		f.mu.Unlock()
		if overridden {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case strings.HasSuffix(path, "/volumes"):
		f.mu.Lock()
		body := f.volumesJSON
		f.mu.Unlock()
		w.Write([]byte(body))

	case strings.HasSuffix(path, "/sinksAssignment"):
		f.mu.Lock()
		f.assignPath = path
		json.NewDecoder(r.Body).Decode(&f.assignBody)
		status, body := f.assignStatus, f.assignResponse
		f.mu.Unlock()
		w.WriteHeader(status)
		w.Write([]byte(body))

	case path == "/webapi/v1/testTone":
		f.mu.Lock()
		json.NewDecoder(r.Body).Decode(&f.testToneBody)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fixture) manager(web bool) *Manager {
	f.t.Helper()
	cfg := Config{
		BaseURL:     f.server.URL,
		APIUsername: "api",
		APIPassword: "secret",
	}
	if web {
		cfg.WebUsername = "admin"
		cfg.WebPassword = "hunter2"
	}
	mgr, err := New(cfg)
	require.NoError(f.t, err)
	return mgr
}

func (f *fixture) webTraffic() (tokenCalls, webHits, deviceFetches int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls, f.webHits, f.deviceFetches
}

func (f *fixture) puts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.volumePuts...)
}

func (f *fixture) clearPuts() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volumePuts = nil
}

func (f *fixture) assignment() (string, map[string][]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.assignPath, f.assignBody
}

func (f *fixture) testTone() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.testToneBody
}

func TestNewValidation(t *testing.T) {
	t.Run("base url required", func(t *testing.T) {
		_, err := New(Config{APIUsername: "api", APIPassword: "secret"})
		require.Error(t, err)
	})

	t.Run("official credentials required", func(t *testing.T) {
		_, err := New(Config{BaseURL: "https://aamp.local"})
		require.Error(t, err)
	})

	t.Run("web credentials optional", func(t *testing.T) {
		mgr, err := New(Config{BaseURL: "https://aamp.local", APIUsername: "api", APIPassword: "secret"})
		require.NoError(t, err)
		require.False(t, mgr.UnofficialFeaturesEnabled())
		require.Nil(t, mgr.Unofficial())
	})

	t.Run("web credentials enable unofficial features", func(t *testing.T) {
		mgr, err := New(Config{
			BaseURL:     "https://aamp.local",
			APIUsername: "api", APIPassword: "secret",
			WebUsername: "admin", WebPassword: "hunter2",
		})
		require.NoError(t, err)
		require.True(t, mgr.UnofficialFeaturesEnabled())
	})
}

func TestAudioTargetsClassification(t *testing.T) {
	f := newFixture(t)
	mgr := f.manager(true)

	targets, err := mgr.AudioTargets(context.Background())
	require.NoError(t, err)
	// The untyped record is dropped; the unrecognized type is kept.
	require.Len(t, targets, 4)

	require.IsType(t, &PhysicalZone{}, targets[0])
	require.IsType(t, &Site{}, targets[1])
	require.IsType(t, &Device{}, targets[2])
	require.IsType(t, &AudioTarget{}, targets[3])

	require.Equal(t, "zon_5", targets[0].ID())
	require.Equal(t, "Lobby", targets[0].Name())
	require.Equal(t, "virtualZone", targets[3].TargetType())
}

func TestAudioZonesTouchesOnlyTheOfficialAPI(t *testing.T) {
	f := newFixture(t)
	mgr := f.manager(false)

	zones, err := mgr.AudioZones(context.Background())
	require.NoError(t, err)
	require.Len(t, zones, 1)
	require.Equal(t, "zon_5", zones[0].ID())

	tokenCalls, webHits, _ := f.webTraffic()
	require.Zero(t, tokenCalls)
	require.Zero(t, webHits)
}

func TestAudioDevicesFilter(t *testing.T) {
	f := newFixture(t)
	mgr := f.manager(true)

	devices, err := mgr.AudioDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	require.Equal(t, "dev_10", devices[0].ID())
}

func TestDevicesDisabledIsEmptyWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	mgr := f.manager(false)

	records, err := mgr.Devices(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)

	require.NoError(t, mgr.RefreshDevices(context.Background()))

	_, webHits, _ := f.webTraffic()
	require.Zero(t, webHits)
}

func TestDevicesCachedUntilExplicitRefresh(t *testing.T) {
	f := newFixture(t)
	mgr := f.manager(true)
	ctx := context.Background()

	records, err := mgr.Devices(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	_, err = mgr.Devices(ctx)
	require.NoError(t, err)
	_, _, fetches := f.webTraffic()
	require.Equal(t, 1, fetches)

	require.NoError(t, mgr.RefreshDevices(ctx))
	_, _, fetches = f.webTraffic()
	require.Equal(t, 2, fetches)
}

func TestDevicesAbsentListingIsRetriedNextAccess(t *testing.T) {
	f := newFixture(t)
	f.devicesStatus = http.StatusForbidden
	mgr := f.manager(true)
	ctx := context.Background()

	records, err := mgr.Devices(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	_, err = mgr.Devices(ctx)
	require.NoError(t, err)

	// An absent listing never populates the cache, so each access
	// tries the server again.
	_, _, fetches := f.webTraffic()
	require.Equal(t, 2, fetches)
}
