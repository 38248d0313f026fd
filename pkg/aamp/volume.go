package aamp

import (
	"context"

	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// allCategories in blanket-apply order. The order matches the web
// client: paging first, announcements, then music.
var allCategories = [...]unofficial.Category{
	unofficial.CategoryPaging,
	unofficial.CategoryAnnouncement,
	unofficial.CategoryMusic,
}

// volumeTarget adds volume calibration to the zone and site views.
// Calibration lives on the unofficial API, so every method here is
// gated on web credentials.
type volumeTarget struct {
	AudioTarget
}

func (t *volumeTarget) scope() unofficial.Scope {
	if t.rec.Type == TypePhysicalZone {
		return unofficial.ScopeZones
	}
	return unofficial.ScopeSites
}

// VolumeCalibration retrieves the calibration entries for every
// category.
func (t *volumeTarget) VolumeCalibration(ctx context.Context) (map[unofficial.Category]unofficial.Volume, error) {
	if !t.mgr.UnofficialFeaturesEnabled() {
		return nil, ErrUnofficialDisabled
	}
	id, err := relativeID(t.rec.ID)
	if err != nil {
		return nil, err
	}
	return t.mgr.unofficial.VolumeCalibration(ctx, t.scope(), id)
}

// VolumeCalibrationFor retrieves the calibration entry for one
// category.
func (t *volumeTarget) VolumeCalibrationFor(ctx context.Context, category unofficial.Category) (unofficial.Volume, error) {
	if !t.mgr.UnofficialFeaturesEnabled() {
		return unofficial.Volume{}, ErrUnofficialDisabled
	}
	if !validCategory(category) {
		return unofficial.Volume{}, &InvalidCategoryError{Category: category}
	}
	volumes, err := t.VolumeCalibration(ctx)
	if err != nil {
		return unofficial.Volume{}, err
	}
	return volumes[category], nil
}

// SetVolumeCalibration applies one gain offset to every category. All
// three calls are issued even after a failure; the result is true only
// when all of them succeeded. Partially applied categories are not
// rolled back.
func (t *volumeTarget) SetVolumeCalibration(ctx context.Context, offset int) (bool, error) {
	if !t.mgr.UnofficialFeaturesEnabled() {
		return false, ErrUnofficialDisabled
	}
	id, err := relativeID(t.rec.ID)
	if err != nil {
		return false, err
	}

	applied := true
	var firstErr error
	for _, category := range allCategories {
		ok, err := t.mgr.unofficial.SetVolumeCalibration(ctx, t.scope(), id, category, offset)
		if err != nil {
			applied = false
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			applied = false
		}
	}
	if firstErr != nil {
		return false, firstErr
	}
	return applied, nil
}

// SetVolumeCalibrationFor applies a gain offset to one category.
func (t *volumeTarget) SetVolumeCalibrationFor(ctx context.Context, category unofficial.Category, offset int) (bool, error) {
	if !t.mgr.UnofficialFeaturesEnabled() {
		return false, ErrUnofficialDisabled
	}
	if !validCategory(category) {
		return false, &InvalidCategoryError{Category: category}
	}
	id, err := relativeID(t.rec.ID)
	if err != nil {
		return false, err
	}
	return t.mgr.unofficial.SetVolumeCalibration(ctx, t.scope(), id, category, offset)
}

func validCategory(category unofficial.Category) bool {
	switch category {
	case unofficial.CategoryMusic, unofficial.CategoryAnnouncement, unofficial.CategoryPaging:
		return true
	}
	return false
}

// PhysicalZone is a named grouping of devices played and calibrated as
// a single unit.
type PhysicalZone struct {
	volumeTarget
}

// Site is a higher-level grouping of zones, also volume-calibratable.
type Site struct {
	volumeTarget
}
