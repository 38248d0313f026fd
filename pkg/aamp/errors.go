package aamp

import (
	"errors"
	"fmt"

	"github.com/strefethen/aamp-go/pkg/aamp/unofficial"
)

// ErrUnofficialDisabled is returned by operations that need the web API
// when the Manager was built without web credentials.
var ErrUnofficialDisabled = errors.New("aamp: unofficial features are disabled")

// InvalidCategoryError reports a volume category outside MUSIC,
// ANNOUNCEMENT and PAGING.
type InvalidCategoryError struct {
	Category unofficial.Category
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid volume category %q", string(e.Category))
}

// MalformedIDError reports a target id without the expected
// <prefix>_<number> shape.
type MalformedIDError struct {
	ID string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("target id %q has no numeric suffix", e.ID)
}

// HardwareNotFoundError reports that no record in the hardware device
// cache carries a sink matching the device's id.
type HardwareNotFoundError struct {
	ID string
}

func (e *HardwareNotFoundError) Error() string {
	return fmt.Sprintf("no hardware record found for device %q", e.ID)
}
