package warehouse

import "encoding/json"

// Direction is the movement direction of a scan.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionIn || d == DirectionOut
}

// BundleMode selects how a bundle tag is booked.
type BundleMode string

const (
	BundleModeNone    BundleMode = ""
	BundleModeExplode BundleMode = "explode"
	BundleModeBookAll BundleMode = "book_all"
)

// Valid reports whether m is a selectable bundle mode.
func (m BundleMode) Valid() bool {
	return m == BundleModeExplode || m == BundleModeBookAll
}

// ScanRequest is the body of POST /api/v1/warehouse/scan. BundleMode is
// serialized as null when unset.
type ScanRequest struct {
	TagValue   string      `json:"tag_value"`
	Direction  Direction   `json:"direction"`
	ProjectID  int64       `json:"project_id"`
	Quantity   int         `json:"qty"`
	BundleMode *BundleMode `json:"bundle_mode"`
}

// TagComponent is one member of a bundle.
type TagComponent struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// TagPayload is the body of GET /api/v1/warehouse/tags/{tag}.
type TagPayload struct {
	Kind       string          `json:"kind"`
	ItemID     int64           `json:"item_id,omitempty"`
	BundleID   int64           `json:"bundle_id,omitempty"`
	Components []TagComponent  `json:"components,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// ProjectDates is the body of PUT /api/v1/projects/{id}/dates.
type ProjectDates struct {
	Name       string `json:"name"`
	ClientName string `json:"client_name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Notes      string `json:"notes"`
}
