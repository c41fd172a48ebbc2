package layering

import (
	"encoding/json"
	"testing"
)

func TestFromAnyNormalisesGoValues(t *testing.T) {
	raw := map[string]any{
		"int":    7,
		"int64":  int64(8),
		"float":  1.5,
		"bool":   true,
		"nil":    nil,
		"string": "s",
		"list":   []any{"a", 1},
		"typed":  []map[string]any{{"k": "v"}},
		"names":  []string{"x", "y"},
		"nested": map[string]any{"deep": map[string]any{"v": "w"}},
		"weird":  struct{}{},
	}

	m := FromMap(raw)

	if n, ok := m["int"].AsNumber(); !ok || n != 7 {
		t.Fatalf("expected int to become number 7, got %s", m["int"])
	}
	if n, ok := m["int64"].AsNumber(); !ok || n != 8 {
		t.Fatalf("expected int64 to become number 8, got %s", m["int64"])
	}
	if !m["nil"].IsNull() {
		t.Fatalf("expected nil to become null")
	}
	if !m["weird"].IsNull() {
		t.Fatalf("expected unsupported type to collapse to null, got %s", m["weird"].Kind())
	}
	if list, ok := m["typed"].AsList(); !ok || len(list) != 1 || list[0].Kind() != KindMap {
		t.Fatalf("expected typed list of maps, got %s", m["typed"])
	}
	if list, ok := m["names"].AsList(); !ok || len(list) != 2 {
		t.Fatalf("expected string list, got %s", m["names"])
	}
	if v, ok := m.Lookup("nested", "deep", "v"); !ok || !Equal(v, String("w")) {
		t.Fatalf("expected nested lookup to resolve, got %s (%v)", v, ok)
	}
}

func TestLookupTreatsSegmentsLiterally(t *testing.T) {
	m := Map{
		"experienceCloud.org": String("org"),
		"experienceCloud":     MapOf(Map{"org": String("nested")}),
	}

	if v, ok := m.Lookup("experienceCloud.org"); !ok || !Equal(v, String("org")) {
		t.Fatalf("expected dotted key lookup, got %s", v)
	}
	if v, ok := m.Lookup("experienceCloud", "org"); !ok || !Equal(v, String("nested")) {
		t.Fatalf("expected nested lookup, got %s", v)
	}
	if _, ok := m.Lookup("experienceCloud.org", "more"); ok {
		t.Fatalf("expected lookup through scalar to fail")
	}
	if _, ok := m.Lookup("missing"); ok {
		t.Fatalf("expected missing key lookup to fail")
	}
}

func TestValueJSONIsDeterministic(t *testing.T) {
	v := MapOf(Map{
		"b": Number(2),
		"a": ListOf(String("x"), Null(), Bool(false)),
		"c": MapOf(Map{"z": Number(1), "y": Number(0)}),
	})

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"a":["x",null,false],"b":2,"c":{"y":0,"z":1}}`
	if string(data) != want {
		t.Fatalf("unexpected encoding:\nwant: %s\n got: %s", want, data)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !Equal(v, decoded) {
		t.Fatalf("decoded value mismatch: %s", decoded)
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := Map{"nested": MapOf(Map{"list": ListOf(MapOf(Map{"k": String("v")}))})}
	clone := original.Clone()

	nested, _ := clone["nested"].AsMap()
	list, _ := nested["list"].AsList()
	item, _ := list[0].AsMap()
	item["k"] = String("changed")

	origNested, _ := original["nested"].AsMap()
	origList, _ := origNested["list"].AsList()
	origItem, _ := origList[0].AsMap()
	if !Equal(origItem["k"], String("v")) {
		t.Fatalf("expected original untouched, got %s", origItem["k"])
	}
}
