package aamp

import (
	"context"
	"fmt"
	"strconv"

	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// Device is a single hardware audio endpoint. Beyond the generic
// target surface it exposes hardware metadata resolved from the web
// API's device listing, zone assignment and the test tone.
type Device struct {
	AudioTarget
	hw *unofficial.DeviceRecord
}

// HardwareInfo returns the hardware record for this device, resolved
// from the shared device cache by matching the device's sink id. The
// record is held on the instance and reused until a zone assignment
// forces a reload.
func (d *Device) HardwareInfo(ctx context.Context) (*unofficial.DeviceRecord, error) {
	if d.hw != nil {
		return d.hw, nil
	}
	if err := d.loadHardwareInfo(ctx); err != nil {
		return nil, err
	}
	return d.hw, nil
}

func (d *Device) loadHardwareInfo(ctx context.Context) error {
	if !d.mgr.UnofficialFeaturesEnabled() {
		return ErrUnofficialDisabled
	}

	rel, err := relativeID(d.rec.ID)
	if err != nil {
		return err
	}
	sinkID, err := strconv.ParseInt(rel, 10, 64)
	if err != nil {
		return &MalformedIDError{ID: d.rec.ID}
	}

	records, err := d.mgr.Devices(ctx)
	if err != nil {
		return err
	}

	// Sink ids are assumed unique across devices but the server does
	// not enforce it; the first match in cache order wins.
	for i := range records {
		for _, sink := range records[i].Sinks {
			if sink.ID == sinkID {
				d.hw = &records[i]
				return nil
			}
		}
	}
	return &HardwareNotFoundError{ID: d.rec.ID}
}

// MACAddress returns the device's ethernet MAC address.
func (d *Device) MACAddress(ctx context.Context) (string, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return "", err
	}
	return hw.MAC, nil
}

// IPAddress returns the device's IP address.
func (d *Device) IPAddress(ctx context.Context) (string, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return "", err
	}
	return hw.IPAddress, nil
}

// ModelName returns the device's hardware model name.
func (d *Device) ModelName(ctx context.Context) (string, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return "", err
	}
	return hw.ProductName, nil
}

// ModelID returns the device's hardware model type code.
func (d *Device) ModelID(ctx context.Context) (string, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return "", err
	}
	return hw.Type, nil
}

// FirmwareVersion returns the device's current firmware version.
func (d *Device) FirmwareVersion(ctx context.Context) (string, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return "", err
	}
	return hw.FWVersion, nil
}

// ParentZone resolves the zone fed by this device's first sink and
// loads it from the official API before returning.
func (d *Device) ParentZone(ctx context.Context) (*PhysicalZone, error) {
	hw, err := d.HardwareInfo(ctx)
	if err != nil {
		return nil, err
	}
	if len(hw.Sinks) == 0 || len(hw.Sinks[0].Zones) == 0 {
		return nil, fmt.Errorf("device %s has no zone assignment", d.rec.ID)
	}

	zoneID := fmt.Sprintf("zon_%d", hw.Sinks[0].Zones[0].ID)
	rec, err := d.mgr.official.GetTarget(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("parent zone %s not found", zoneID)
	}
	zone, ok := d.mgr.classify(*rec).(*PhysicalZone)
	if !ok {
		return nil, fmt.Errorf("target %s is not a physical zone", zoneID)
	}
	return zone, nil
}

// AssignToZone moves this device into the given zone and reports
// whether the server accepted the move.
func (d *Device) AssignToZone(ctx context.Context, zone *PhysicalZone) (bool, error) {
	return d.AssignToZoneID(ctx, zone.ID())
}

// AssignToZoneID is AssignToZone for a raw zone id; both "zon_5" and
// "5" are accepted. The device's hardware record is re-resolved from
// the cache afterwards regardless of the outcome. The shared cache
// itself is not refreshed here; call Manager.RefreshDevices to observe
// the new topology.
func (d *Device) AssignToZoneID(ctx context.Context, zoneID string) (bool, error) {
	if !d.mgr.UnofficialFeaturesEnabled() {
		return false, ErrUnofficialDisabled
	}

	zoneRel, err := relativeID(zoneID)
	if err != nil {
		return false, err
	}
	deviceRel, err := relativeID(d.rec.ID)
	if err != nil {
		return false, err
	}

	ok, assignErr := d.mgr.unofficial.AssignDeviceToZone(ctx, zoneRel, deviceRel)

	d.hw = nil
	_ = d.loadHardwareInfo(ctx)

	return ok, assignErr
}

// Ding plays the hardware test tone on this device for length seconds.
// Non-positive lengths select the two second default.
func (d *Device) Ding(ctx context.Context, length int) (bool, error) {
	if !d.mgr.UnofficialFeaturesEnabled() {
		return false, ErrUnofficialDisabled
	}
	rel, err := relativeID(d.rec.ID)
	if err != nil {
		return false, err
	}
	return d.mgr.unofficial.StartTestTone(ctx, rel, length)
}
