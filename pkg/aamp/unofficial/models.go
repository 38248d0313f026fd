package unofficial

// Scope selects which resource family a volume call addresses.
type Scope string

const (
	ScopeZones Scope = "zones"
	ScopeSites Scope = "sites"
)

// Category is a volume calibration category.
type Category string

const (
	CategoryMusic        Category = "MUSIC"
	CategoryAnnouncement Category = "ANNOUNCEMENT"
	CategoryPaging       Category = "PAGING"
)

// Volume is the calibration entry for one category. Gain offsets range
// from -100000 to 100000.
type Volume struct {
	DefaultGainOffset int `json:"defaultGainOffset"`
}

// DeviceRecord is one hardware device row from the devices listing.
type DeviceRecord struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	MAC         string       `json:"mac"`
	IPAddress   string       `json:"ipAddress"`
	ProductName string       `json:"productName"`
	Type        string       `json:"type"`
	FWVersion   string       `json:"fwVersion"`
	Sinks       []SinkRecord `json:"sinks"`
}

// SinkRecord is one audio output channel of a device. A sink's id is
// what target ids of kind device refer to.
type SinkRecord struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Zones []ZoneRef `json:"zones"`
}

// ZoneRef is a zone membership entry on a sink.
type ZoneRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type volumeUpdate struct {
	DefaultGainOffset int `json:"defaultGainOffset"`
}

type assignRequest struct {
	SinkIDs []int64 `json:"sinkIds"`
}

type testToneRequest struct {
	SinkID     int64 `json:"sinkId"`
	ToneLength int   `json:"toneLength"`
}
