// Package catalog holds the valve product catalog: categories, products and
// the lookups the site and the 3D viewer resolve URLs against.
//
// A Catalog is built once from source records and never mutated afterwards.
// Reloading produces a new Catalog that replaces the old one as a whole
// (see Holder).
package catalog

import "fmt"

// Category is a named group of products. Slug is derived from Title once at
// build time; category order is display order.
type Category struct {
	Key         string
	Title       string
	Slug        string
	Description string
	Products    []Product
}

// Product is a single catalog item. ID is unique within its category only.
type Product struct {
	ID                  string
	Name                string
	Description         string
	DetailedDescription string
	ImageURL            string
	// Model3D is the GLB asset path. Empty means the product has no 3D view
	// and the viewer shows ImageURL permanently.
	Model3D        string
	Specifications SpecMap
	Applications   []string
	FAQs           []FAQ
}

// HasModel reports whether the product carries a 3D asset.
func (p *Product) HasModel() bool {
	return p.Model3D != ""
}

// FAQ is a question/answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SpecKey names one optional specification field.
type SpecKey string

// Specification keys in display-priority order.
const (
	SpecPressureRating   SpecKey = "pressure_rating"
	SpecTemperatureRange SpecKey = "temperature_range"
	SpecMaterial         SpecKey = "material"
	SpecSizeRange        SpecKey = "size_range"
	SpecConnectionType   SpecKey = "connection_type"
	SpecStandards        SpecKey = "standards"
	SpecFinish           SpecKey = "finish"
	SpecInputSignal      SpecKey = "input_signal"
	SpecSupplyPressure   SpecKey = "supply_pressure"
	SpecAccuracy         SpecKey = "accuracy"
	SpecJacketPressure   SpecKey = "jacket_pressure"
	SpecFlowCapacity     SpecKey = "flow_capacity"
	SpecVoltageRating    SpecKey = "voltage_rating"
	SpecControlAccuracy  SpecKey = "control_accuracy"
	SpecSwitchType       SpecKey = "switch_type"
	SpecPressureRange    SpecKey = "pressure_range"
	SpecProtection       SpecKey = "protection"
)

// specOrder is the fixed iteration order of SpecMap.Entries.
var specOrder = []SpecKey{
	SpecPressureRating,
	SpecTemperatureRange,
	SpecMaterial,
	SpecSizeRange,
	SpecConnectionType,
	SpecStandards,
	SpecFinish,
	SpecInputSignal,
	SpecSupplyPressure,
	SpecAccuracy,
	SpecJacketPressure,
	SpecFlowCapacity,
	SpecVoltageRating,
	SpecControlAccuracy,
	SpecSwitchType,
	SpecPressureRange,
	SpecProtection,
}

var specLabels = map[SpecKey]string{
	SpecPressureRating:   "Pressure Rating",
	SpecTemperatureRange: "Temperature Range",
	SpecMaterial:         "Material",
	SpecSizeRange:        "Size Range",
	SpecConnectionType:   "Connection Type",
	SpecStandards:        "Standards",
	SpecFinish:           "Finish",
	SpecInputSignal:      "Input Signal",
	SpecSupplyPressure:   "Supply Pressure",
	SpecAccuracy:         "Accuracy",
	SpecJacketPressure:   "Jacket Pressure",
	SpecFlowCapacity:     "Flow Capacity",
	SpecVoltageRating:    "Voltage Rating",
	SpecControlAccuracy:  "Control Accuracy",
	SpecSwitchType:       "Switch Type",
	SpecPressureRange:    "Pressure Range",
	SpecProtection:       "Protection",
}

// SpecKeys returns every known key in display order.
func SpecKeys() []SpecKey {
	out := make([]SpecKey, len(specOrder))
	copy(out, specOrder)
	return out
}

// Label returns the human-readable name of the key.
func (k SpecKey) Label() string {
	if l, ok := specLabels[k]; ok {
		return l
	}
	return string(k)
}

// Valid reports whether k is one of the enumerated keys.
func (k SpecKey) Valid() bool {
	_, ok := specLabels[k]
	return ok
}

// SpecMap is a sparse set of specification values. A key that is not
// present means "not applicable"; present values are never empty.
type SpecMap struct {
	values map[SpecKey]string
}

// SpecEntry is one present specification in display order.
type SpecEntry struct {
	Key   SpecKey `json:"key"`
	Label string  `json:"label"`
	Value string  `json:"value"`
}

// NewSpecMap validates raw key/value pairs.
func NewSpecMap(raw map[string]string) (SpecMap, error) {
	if len(raw) == 0 {
		return SpecMap{}, nil
	}
	values := make(map[SpecKey]string, len(raw))
	for k, v := range raw {
		key := SpecKey(k)
		if !key.Valid() {
			return SpecMap{}, fmt.Errorf("unknown specification key %q", k)
		}
		if v == "" {
			return SpecMap{}, fmt.Errorf("specification %q has an empty value", k)
		}
		values[key] = v
	}
	return SpecMap{values: values}, nil
}

// Get returns the value for key and whether it is present.
func (m SpecMap) Get(key SpecKey) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of present specifications.
func (m SpecMap) Len() int {
	return len(m.values)
}

// Entries returns the present specifications in display-priority order.
func (m SpecMap) Entries() []SpecEntry {
	out := make([]SpecEntry, 0, len(m.values))
	for _, k := range specOrder {
		if v, ok := m.values[k]; ok {
			out = append(out, SpecEntry{Key: k, Label: k.Label(), Value: v})
		}
	}
	return out
}
