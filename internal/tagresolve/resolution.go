package tagresolve

import (
	"encoding/json"
	"fmt"
	"strings"

	"stockscan/internal/warehouse"
)

// Resolution is one of ItemResolution, BundleResolution, UnknownResolution or
// OtherResolution.
type Resolution interface {
	Kind() string
	resolution()
}

// Component is one item carried by a bundle.
type Component struct {
	ItemID   int64
	Quantity int
}

// ItemResolution is a tag bound to a single inventory item.
type ItemResolution struct {
	ItemID int64
}

// BundleResolution is a tag bound to a bundle of items.
type BundleResolution struct {
	BundleID   int64
	Components []Component
}

// UnknownResolution is a tag the backend knows about but cannot classify.
type UnknownResolution struct{}

// OtherResolution carries a kind this client does not understand yet.
type OtherResolution struct {
	RawKind string
	Raw     json.RawMessage
}

func (ItemResolution) Kind() string    { return "item" }
func (BundleResolution) Kind() string  { return "bundle" }
func (UnknownResolution) Kind() string { return "unknown" }
func (r OtherResolution) Kind() string { return r.RawKind }
func (ItemResolution) resolution()     {}
func (BundleResolution) resolution()   {}
func (UnknownResolution) resolution()  {}
func (OtherResolution) resolution()    {}

// IsBundle reports whether r requires a bundle mode before submission.
func IsBundle(r Resolution) bool {
	_, ok := r.(BundleResolution)
	return ok
}

// FromPayload maps the lookup response onto a Resolution.
func FromPayload(payload warehouse.TagPayload) Resolution {
	switch strings.ToLower(strings.TrimSpace(payload.Kind)) {
	case "item":
		return ItemResolution{ItemID: payload.ItemID}
	case "bundle":
		components := make([]Component, 0, len(payload.Components))
		for _, c := range payload.Components {
			components = append(components, Component{ItemID: c.ItemID, Quantity: c.Quantity})
		}
		return BundleResolution{BundleID: payload.BundleID, Components: components}
	case "unknown", "":
		return UnknownResolution{}
	default:
		return OtherResolution{RawKind: payload.Kind, Raw: payload.Raw}
	}
}

// Describe renders r for the status line.
func Describe(r Resolution) string {
	switch v := r.(type) {
	case ItemResolution:
		return fmt.Sprintf("item #%d", v.ItemID)
	case BundleResolution:
		if len(v.Components) == 0 {
			return fmt.Sprintf("bundle #%d: bundle has no known components", v.BundleID)
		}
		total := 0
		for _, c := range v.Components {
			total += c.Quantity
		}
		noun := "components"
		if len(v.Components) == 1 {
			noun = "component"
		}
		return fmt.Sprintf("bundle #%d: %d %s, %d units", v.BundleID, len(v.Components), noun, total)
	case UnknownResolution:
		return "unknown tag; submission will likely be rejected"
	case OtherResolution:
		return fmt.Sprintf("unrecognized tag kind %q", v.RawKind)
	default:
		return ""
	}
}
