package aamp

import (
	"context"
	"strconv"
	"strings"

	"github.com/strefethen/aamp-go/pkg/aamp/official"
)

// Target type strings served by the official API.
const (
	TypePhysicalZone = "physicalZone"
	TypeSite         = "site"
	TypeDevice       = "device"
)

// Target is any addressable playback destination or grouping known to
// the server. Concrete views are *PhysicalZone, *Site, *Device and the
// generic *AudioTarget for types the library does not recognize.
type Target interface {
	ID() string
	TargetType() string
	Name() string
	Enabled() bool
	Status() string
	Children(ctx context.Context) ([]Target, error)
	PlayAudioFile(ctx context.Context, fileID string) (string, error)
	PlayAudioFiles(ctx context.Context, fileIDs []string, repeat int, priority official.Priority) (string, error)
}

// classify wraps a raw record in the view matching its type string.
// Unrecognized types stay generic: they can still play audio and
// enumerate children. A view's type never changes; fresh data means a
// fresh view.
func (m *Manager) classify(rec official.TargetRecord) Target {
	base := AudioTarget{mgr: m, rec: rec}
	switch rec.Type {
	case TypePhysicalZone:
		return &PhysicalZone{volumeTarget{base}}
	case TypeSite:
		return &Site{volumeTarget{base}}
	case TypeDevice:
		return &Device{AudioTarget: base}
	default:
		return &base
	}
}

// AudioTarget is the generic audio target view. Specialized kinds embed
// it for the shared accessors and playback.
type AudioTarget struct {
	mgr *Manager
	rec official.TargetRecord
}

// ID returns the server-assigned target id, e.g. "zon_5".
func (t *AudioTarget) ID() string {
	return t.rec.ID
}

// TargetType returns the server's type string for this target.
func (t *AudioTarget) TargetType() string {
	return t.rec.Type
}

// Name returns the target's nice name, or "Unknown" when the server
// did not supply one.
func (t *AudioTarget) Name() string {
	if t.rec.NiceName == "" {
		return "Unknown"
	}
	return t.rec.NiceName
}

// Enabled reports whether the target currently plays audio.
func (t *AudioTarget) Enabled() bool {
	return t.rec.Enabled
}

// Status returns the target's detailed status string.
func (t *AudioTarget) Status() string {
	return t.rec.Status
}

// Record returns the raw record this view was built from.
func (t *AudioTarget) Record() official.TargetRecord {
	return t.rec
}

// Children resolves the record's child ids into typed views. Each
// child is one full lookup against the official API; there is no batch
// fetch. Ids the server no longer knows are skipped. Children does not
// recurse, so cyclic zone graphs cost at most one round trip per edge.
func (t *AudioTarget) Children(ctx context.Context) ([]Target, error) {
	if len(t.rec.Children) == 0 {
		return nil, nil
	}

	children := make([]Target, 0, len(t.rec.Children))
	for _, id := range t.rec.Children {
		rec, err := t.mgr.official.GetTarget(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		children = append(children, t.mgr.classify(*rec))
	}
	return children, nil
}

// ChildrenZones filters Children down to physical zones.
func (t *AudioTarget) ChildrenZones(ctx context.Context) ([]*PhysicalZone, error) {
	children, err := t.Children(ctx)
	if err != nil {
		return nil, err
	}
	var zones []*PhysicalZone
	for _, child := range children {
		if zone, ok := child.(*PhysicalZone); ok {
			zones = append(zones, zone)
		}
	}
	return zones, nil
}

// ChildrenDevices filters Children down to devices.
func (t *AudioTarget) ChildrenDevices(ctx context.Context) ([]*Device, error) {
	children, err := t.Children(ctx)
	if err != nil {
		return nil, err
	}
	var devices []*Device
	for _, child := range children {
		if device, ok := child.(*Device); ok {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

// PlayAudioFile plays one file once at high priority on this target
// and returns the session id.
func (t *AudioTarget) PlayAudioFile(ctx context.Context, fileID string) (string, error) {
	return t.PlayAudioFiles(ctx, []string{fileID}, 1, official.PriorityHigh)
}

// PlayAudioFiles creates a one-shot session playing fileIDs on this
// target and returns the session id. An empty file list is a no-op
// returning an empty id.
func (t *AudioTarget) PlayAudioFiles(ctx context.Context, fileIDs []string, repeat int, priority official.Priority) (string, error) {
	session, err := t.mgr.official.PlayFiles(ctx, []string{t.rec.ID}, fileIDs, repeat, priority)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.ID, nil
}

// relativeID strips the kind prefix from a target id: "zon_5" becomes
// "5". Bare numeric ids pass through unchanged.
func relativeID(id string) (string, error) {
	if _, rest, ok := strings.Cut(id, "_"); ok && rest != "" {
		return rest, nil
	}
	if _, err := strconv.ParseInt(id, 10, 64); err == nil {
		return id, nil
	}
	return "", &MalformedIDError{ID: id}
}
