package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestMergeOverwriteFromFixture(t *testing.T) {
	fx := loadMergeFixture(t, "merge_overwrite.json")

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			base := FromMap(tc.Base)
			if base == nil {
				base = Map{}
			}
			overlay := FromMap(tc.Overlay)
			before := overlay.Clone()

			MergeOverwrite(base, overlay, tc.Prune)

			want := FromMap(tc.Expect)
			if !EqualMaps(want, base) {
				t.Errorf("merged layer mismatch:\nwant: %s\n got: %s", MapOf(want), MapOf(base))
			}
			if !EqualMaps(before, overlay) {
				t.Errorf("overlay mutated:\nwant: %s\n got: %s", MapOf(before), MapOf(overlay))
			}
		})
	}
}

func TestMergeOverwriteDetachesOverlayValues(t *testing.T) {
	shared := Map{"nested": MapOf(Map{"v": Number(1)})}
	base := Map{"items": ListOf(MapOf(Map{"id": Number(1)}), MapOf(Map{"id": Number(2)}))}
	overlay := Map{"items[*]": MapOf(shared)}

	MergeOverwrite(base, overlay, false)

	items, _ := base["items"].AsList()
	first, _ := items[0].AsMap()
	nested, _ := first["nested"].AsMap()
	nested["v"] = Number(99)

	second, _ := items[1].AsMap()
	secondNested, _ := second["nested"].AsMap()
	if got, _ := secondNested["v"].AsNumber(); got != 1 {
		t.Fatalf("expected elements to receive independent copies, got %v", got)
	}
	if got, _ := shared["nested"].AsMap(); !Equal(got["v"], Number(1)) {
		t.Fatalf("expected overlay payload untouched, got %s", MapOf(got))
	}
}

func TestMergeLayersStrongestFirst(t *testing.T) {
	strong := Map{"a": Number(1), "nested": MapOf(Map{"x": String("strong")})}
	middle := Map{"b": Number(2), "nested": MapOf(Map{"y": String("middle")})}
	weak := Map{"a": Number(0), "c": Number(3), "nested": MapOf(Map{"x": String("weak"), "z": Null()})}

	got := MergeLayers(true, strong, middle, weak)

	want := Map{
		"a":      Number(1),
		"b":      Number(2),
		"c":      Number(3),
		"nested": MapOf(Map{"x": String("strong"), "y": String("middle")}),
	}
	if !EqualMaps(want, got) {
		t.Fatalf("merged layers mismatch:\nwant: %s\n got: %s", MapOf(want), MapOf(got))
	}
	if _, ok := weak["nested"].AsMap(); !ok {
		t.Fatalf("expected weak layer to keep its nested map")
	}
	if nested, _ := weak["nested"].AsMap(); len(nested) != 2 {
		t.Fatalf("expected weak layer untouched, got %s", MapOf(nested))
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	got := MergeLayers(false)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}

type mergeFixture struct {
	Description string             `json:"description"`
	Cases       []mergeFixtureCase `json:"cases"`
}

type mergeFixtureCase struct {
	Name    string         `json:"name"`
	Base    map[string]any `json:"base"`
	Overlay map[string]any `json:"overlay"`
	Prune   bool           `json:"prune"`
	Expect  map[string]any `json:"expect"`
}

func loadMergeFixture(t *testing.T, name string) mergeFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read merge fixture %q: %v", name, err)
	}
	var fx mergeFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal merge fixture %q: %v", name, err)
	}
	return fx
}
