package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-states/internal/hydrate"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidSpec wraps every validation failure of a rule set file.
	ErrInvalidSpec = errors.New("rules: invalid rule set")
	// ErrEngineUnavailable is returned for engines not compiled into the binary.
	ErrEngineUnavailable = errors.New("rules: engine unavailable")
)

// Engines accepted in Spec.Engine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Spec declares one aggregation kind.
//
//	kind: devices
//	engine: expr
//	groups:
//	  - field: devices
//	    attach: {source: sdk}
//	    rules:
//	      - namespace: module.lifecycle
//	        path: [devicename]
//	        expr: '{"name": value}'
type Spec struct {
	Kind   string      `json:"kind"`
	Engine string      `json:"engine,omitempty"`
	Groups []GroupSpec `json:"groups"`
}

// GroupSpec produces one list field of the result.
type GroupSpec struct {
	Field  string         `json:"field"`
	Rules  []RuleSpec     `json:"rules"`
	Attach map[string]any `json:"attach,omitempty"`
}

// RuleSpec maps onto states.ExpressionRule.
type RuleSpec struct {
	Namespace string   `json:"namespace"`
	Path      []string `json:"path,omitempty"`
	Each      bool     `json:"each,omitempty"`
	Expr      string   `json:"expr"`
}

var specDecoder = hydrate.NewDecoder[Spec](
	hydrate.WithDisallowUnknownFields[Spec](),
	hydrate.WithPostHook[Spec](validateSpec),
)

// ParseYAML decodes and validates a rule set document.
func ParseYAML(data []byte) (Spec, error) {
	return parseYAML("", data)
}

// ParseFile reads and parses the rule set at path.
func ParseFile(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return parseYAML(path, data)
}

func parseYAML(source string, data []byte) (Spec, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Spec{}, fmt.Errorf("rules: parse yaml: %w", err)
	}
	if raw == nil {
		return Spec{}, fmt.Errorf("%w: empty document", ErrInvalidSpec)
	}
	return specDecoder.Decode(hydrate.Context{Source: source, Kind: "ruleset"}, raw)
}

func validateSpec(_ hydrate.Context, spec *Spec) error {
	spec.Kind = strings.TrimSpace(spec.Kind)
	if spec.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidSpec)
	}
	spec.Engine = strings.ToLower(strings.TrimSpace(spec.Engine))
	switch spec.Engine {
	case "":
		spec.Engine = EngineExpr
	case EngineExpr, EngineCEL, EngineJS:
	default:
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidSpec, spec.Engine)
	}
	if len(spec.Groups) == 0 {
		return fmt.Errorf("%w: at least one group is required", ErrInvalidSpec)
	}
	seen := make(map[string]struct{}, len(spec.Groups))
	for i, group := range spec.Groups {
		if group.Field == "" || strings.HasSuffix(group.Field, "[*]") {
			return fmt.Errorf("%w: group %d: invalid field %q", ErrInvalidSpec, i, group.Field)
		}
		if _, dup := seen[group.Field]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSpec, group.Field)
		}
		seen[group.Field] = struct{}{}
		if len(group.Rules) == 0 {
			return fmt.Errorf("%w: group %q has no rules", ErrInvalidSpec, group.Field)
		}
		for j, rule := range group.Rules {
			if rule.Namespace == "" || rule.Expr == "" {
				return fmt.Errorf("%w: group %q rule %d needs namespace and expr", ErrInvalidSpec, group.Field, j)
			}
		}
	}
	return nil
}
