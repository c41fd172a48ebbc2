package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestParseYAMLDefaultsEngine(t *testing.T) {
	spec, err := ParseYAML([]byte(`
kind: " devices "
groups:
  - field: devices
    rules:
      - namespace: module.lifecycle
        path: [devices]
        each: true
        expr: value
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if spec.Kind != "devices" || spec.Engine != EngineExpr {
		t.Fatalf("unexpected spec %+v", spec)
	}
	rule := spec.Groups[0].Rules[0]
	if !rule.Each || len(rule.Path) != 1 || rule.Path[0] != "devices" {
		t.Fatalf("unexpected rule %+v", rule)
	}
}

func TestParseYAMLErrors(t *testing.T) {
	cases := []struct {
		name    string
		doc     string
		invalid bool
		message string
	}{
		{name: "empty document", doc: ``, invalid: true},
		{name: "malformed yaml", doc: "kind: [", message: "parse yaml"},
		{name: "unknown field", doc: "kind: a\ngroup: []", message: "unknown field"},
		{name: "missing kind", doc: "groups: []", invalid: true},
		{name: "unknown engine", doc: "kind: a\nengine: lua\ngroups: []", invalid: true},
		{name: "no groups", doc: "kind: a", invalid: true},
		{
			name:    "duplicate field",
			doc:     "kind: a\ngroups:\n  - field: x\n    rules: [{namespace: n, expr: value}]\n  - field: x\n    rules: [{namespace: n, expr: value}]",
			invalid: true,
		},
		{name: "attach suffix in field", doc: "kind: a\ngroups:\n  - field: 'x[*]'\n    rules: [{namespace: n, expr: value}]", invalid: true},
		{name: "rule without expr", doc: "kind: a\ngroups:\n  - field: x\n    rules: [{namespace: n}]", invalid: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tc.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tc.invalid && !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
			if tc.message != "" && !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("expected %q in error, got %v", tc.message, err)
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	if _, err := ParseFile("testdata/missing.yaml"); err == nil {
		t.Fatalf("expected read error")
	}
}
