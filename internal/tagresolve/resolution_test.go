package tagresolve

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"stockscan/internal/warehouse"
)

func TestFromPayload(t *testing.T) {
	cases := []struct {
		name    string
		payload warehouse.TagPayload
		want    Resolution
	}{
		{"item", warehouse.TagPayload{Kind: "item", ItemID: 9}, ItemResolution{ItemID: 9}},
		{"bundle", warehouse.TagPayload{Kind: "Bundle", BundleID: 4, Components: []warehouse.TagComponent{{ItemID: 1, Quantity: 2}}},
			BundleResolution{BundleID: 4, Components: []Component{{ItemID: 1, Quantity: 2}}}},
		{"empty bundle", warehouse.TagPayload{Kind: "bundle", BundleID: 5}, BundleResolution{BundleID: 5, Components: []Component{}}},
		{"unknown", warehouse.TagPayload{Kind: "unknown"}, UnknownResolution{}},
		{"missing kind", warehouse.TagPayload{}, UnknownResolution{}},
		{"future kind", warehouse.TagPayload{Kind: "kit", Raw: json.RawMessage(`{"kind":"kit"}`)},
			OtherResolution{RawKind: "kit", Raw: json.RawMessage(`{"kind":"kit"}`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, FromPayload(tc.payload)); diff != "" {
				t.Fatalf("resolution mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(BundleResolution{BundleID: 3}); !strings.Contains(got, "bundle has no known components") {
		t.Fatalf("empty bundle description = %q", got)
	}
	if got := Describe(BundleResolution{BundleID: 3, Components: []Component{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}}}); got != "bundle #3: 2 components, 3 units" {
		t.Fatalf("bundle description = %q", got)
	}
	if got := Describe(ItemResolution{ItemID: 7}); got != "item #7" {
		t.Fatalf("item description = %q", got)
	}
	if got := Describe(OtherResolution{RawKind: "kit"}); !strings.Contains(got, "kit") {
		t.Fatalf("other description = %q", got)
	}
	if !IsBundle(BundleResolution{}) || IsBundle(ItemResolution{}) || IsBundle(nil) {
		t.Fatal("IsBundle misclassified")
	}
}
