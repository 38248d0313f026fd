package official

import "encoding/json"

// TargetRecord is one audio target as served by the official API.
// Zones and devices reference each other through Children ids; the
// record itself owns nothing.
type TargetRecord struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Enabled  bool     `json:"enabled"`
	Status   string   `json:"status"`
	NiceName string   `json:"niceName"`
	Children []string `json:"children"`

	// Raw retains the record exactly as served, including fields this
	// struct does not model.
	Raw json.RawMessage `json:"-"`
}

// FileRecord is one stored audio file.
type FileRecord struct {
	ID       string `json:"id"`
	NiceName string `json:"niceName"`
	Size     int64  `json:"size"`
}

// PlaySession identifies a one-shot playback session.
type PlaySession struct {
	ID string `json:"id"`
}

type playRequest struct {
	FileIDs []string `json:"fileIds"`
	Prio    string   `json:"prio"`
	Repeat  int      `json:"repeat"`
	Targets []string `json:"targets"`
}
