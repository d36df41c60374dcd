package widgets

import (
	"fmt"
	"sort"
	"strings"

	"datadigest/internal/errors"
)

// PropKind is the JSON shape a widget prop accepts
type PropKind string

const (
	PropString         PropKind = "string"
	PropNumber         PropKind = "number"
	PropBoolean        PropKind = "boolean"
	PropStringOrNumber PropKind = "string|number"
	PropAny            PropKind = "any"
)

// PropSpec describes one prop of a widget
type PropSpec struct {
	Name     string   `json:"name"`
	Kind     PropKind `json:"kind"`
	Required bool     `json:"required"`
	Enum     []string `json:"enum,omitempty"`
}

// Spec describes a renderable widget
type Spec struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Props       []PropSpec `json:"props"`
}

// Instruction asks the client to render one widget with the given props
type Instruction struct {
	Name  string                 `json:"name"`
	Props map[string]interface{} `json:"props"`
}

// Registry maps widget names to their specs. It is built once and never
// modified afterwards.
type Registry struct {
	specs map[string]Spec
	names []string
}

// NewRegistry builds a registry from specs. Names must be unique and non-empty.
func NewRegistry(specs ...Spec) (*Registry, error) {
	r := &Registry{specs: make(map[string]Spec, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, errors.InvalidInput("widget spec without a name")
		}
		if _, dup := r.specs[spec.Name]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate widget %q", spec.Name))
		}
		r.specs[spec.Name] = spec
		r.names = append(r.names, spec.Name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Lookup returns the spec registered under name
func (r *Registry) Lookup(name string) (Spec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Names returns the registered widget names, sorted
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Specs returns every spec in name order
func (r *Registry) Specs() []Spec {
	out := make([]Spec, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.specs[name])
	}
	return out
}

// Validate checks an instruction against its widget spec: the widget must be
// registered, required props present, and every known prop of the right kind
func (r *Registry) Validate(in Instruction) error {
	spec, ok := r.specs[in.Name]
	if !ok {
		return errors.InvalidInput(fmt.Sprintf("unknown widget %q", in.Name))
	}

	var problems []string
	for _, prop := range spec.Props {
		v, present := in.Props[prop.Name]
		if !present || v == nil {
			if prop.Required {
				problems = append(problems, fmt.Sprintf("missing required prop %q", prop.Name))
			}
			continue
		}
		if !kindMatches(prop.Kind, v) {
			problems = append(problems, fmt.Sprintf("prop %q must be %s", prop.Name, prop.Kind))
			continue
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, fmt.Sprint(v)) {
			problems = append(problems, fmt.Sprintf("prop %q must be one of %s", prop.Name, strings.Join(prop.Enum, ", ")))
		}
	}
	if len(problems) > 0 {
		return errors.InvalidInput(fmt.Sprintf("widget %s: %s", in.Name, strings.Join(problems, "; ")))
	}
	return nil
}

func kindMatches(kind PropKind, v interface{}) bool {
	switch kind {
	case PropString:
		_, ok := v.(string)
		return ok
	case PropNumber:
		return isNumber(v)
	case PropBoolean:
		_, ok := v.(bool)
		return ok
	case PropStringOrNumber:
		_, ok := v.(string)
		return ok || isNumber(v)
	default:
		return true
	}
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func required(name string, kind PropKind) PropSpec {
	return PropSpec{Name: name, Kind: kind, Required: true}
}

func optional(name string, kind PropKind, enum ...string) PropSpec {
	return PropSpec{Name: name, Kind: kind, Enum: enum}
}

// DefaultSpecs lists the dashboard widgets the client knows how to render
func DefaultSpecs() []Spec {
	return []Spec{
		{
			Name:        "KPICard",
			Description: "Display a key performance indicator with value and trend",
			Props: []PropSpec{
				required("title", PropString),
				required("value", PropStringOrNumber),
				optional("trend", PropString),
				optional("icon", PropString, "DollarSign", "Users", "TrendingUp", "Star"),
				optional("color", PropString, "blue", "green", "purple", "orange", "red"),
				optional("isPositive", PropBoolean),
			},
		},
		{
			Name:        "LineChart",
			Description: "Display time-series data with a line chart",
			Props: []PropSpec{
				required("title", PropString),
				optional("data", PropAny),
				required("xAxis", PropString),
				required("yAxis", PropString),
				optional("color", PropString),
				optional("height", PropNumber),
			},
		},
		{
			Name:        "BarChart",
			Description: "Display categorical data comparison with bars",
			Props: []PropSpec{
				required("title", PropString),
				optional("data", PropAny),
				required("xAxis", PropString),
				required("yAxis", PropString),
				optional("color", PropString),
				optional("height", PropNumber),
			},
		},
		{
			Name:        "PieChart",
			Description: "Display proportional data with a pie chart",
			Props: []PropSpec{
				required("title", PropString),
				optional("data", PropAny),
				optional("height", PropNumber),
			},
		},
		{
			Name:        "DataTable",
			Description: "Display tabular data with sorting capabilities",
			Props: []PropSpec{
				required("title", PropString),
				optional("columns", PropAny),
				optional("data", PropAny),
				optional("sortable", PropBoolean),
			},
		},
		{
			Name:        "ScatterPlot",
			Description: "Display correlation between two variables",
			Props: []PropSpec{
				required("title", PropString),
				optional("data", PropAny),
				optional("xLabel", PropString),
				optional("yLabel", PropString),
				optional("color", PropString),
				optional("height", PropNumber),
			},
		},
		{
			Name:        "StatCard",
			Description: "Display a simple statistic with optional change indicator",
			Props: []PropSpec{
				required("label", PropString),
				required("value", PropStringOrNumber),
				optional("change", PropString),
				optional("isPositive", PropBoolean),
			},
		},
		{
			Name:        "TextBlock",
			Description: "Display informational text and insights",
			Props: []PropSpec{
				required("title", PropString),
				required("content", PropString),
			},
		},
	}
}

var defaultRegistry = mustRegistry(DefaultSpecs()...)

func mustRegistry(specs ...Spec) *Registry {
	r, err := NewRegistry(specs...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultRegistry returns the shared registry of built-in widgets
func DefaultRegistry() *Registry {
	return defaultRegistry
}
