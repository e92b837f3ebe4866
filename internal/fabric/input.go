// Package fabric computes how much fabric a window treatment needs and what
// it costs to make, for both blind-like (area priced) and curtain-like
// (orientation dependent) treatments.
package fabric

import (
	"fmt"
	"strings"

	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Orientation is the direction the fabric runs on the finished treatment.
type Orientation string

const (
	// Vertical runs the fabric top to bottom (drop-wise), standard for narrow fabric.
	Vertical Orientation = "vertical"
	// Horizontal runs the fabric sideways (railroaded), standard for wide fabric.
	Horizontal Orientation = "horizontal"
	// AreaBased marks blind-like results priced by square meter.
	AreaBased Orientation = "sqm"
)

// Other returns the opposite curtain orientation.
func (o Orientation) Other() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// ParseOrientation canonicalizes a user or catalog supplied orientation.
func ParseOrientation(value string) (Orientation, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "vertical", "standard", "drop":
		return Vertical, true
	case "horizontal", "railroaded", "railroad", "rotated":
		return Horizontal, true
	}
	return "", false
}

// FormData is the raw, possibly incomplete, measurement form of one treatment.
// Pointer fields distinguish an entered zero from a value that was never entered.
type FormData struct {
	RailWidth   *float64 `mapstructure:"railWidth" yaml:"railWidth,omitempty" json:"railWidth,omitempty"`
	Drop        *float64 `mapstructure:"drop" yaml:"drop,omitempty" json:"drop,omitempty"`
	FabricWidth *float64 `mapstructure:"fabricWidth" yaml:"fabricWidth,omitempty" json:"fabricWidth,omitempty"`

	HeadingFullness *float64 `mapstructure:"headingFullness" yaml:"headingFullness,omitempty" json:"headingFullness,omitempty"`
	Quantity        *int     `mapstructure:"quantity" yaml:"quantity,omitempty" json:"quantity,omitempty"`
	CurtainType     string   `mapstructure:"curtainType" yaml:"curtainType,omitempty" json:"curtainType,omitempty"`

	Pooling   *float64 `mapstructure:"pooling" yaml:"pooling,omitempty" json:"pooling,omitempty"`
	HeaderHem *float64 `mapstructure:"headerHem" yaml:"headerHem,omitempty" json:"headerHem,omitempty"`
	BottomHem *float64 `mapstructure:"bottomHem" yaml:"bottomHem,omitempty" json:"bottomHem,omitempty"`
	SideHem   *float64 `mapstructure:"sideHem" yaml:"sideHem,omitempty" json:"sideHem,omitempty"`
	SeamHem   *float64 `mapstructure:"seamHem" yaml:"seamHem,omitempty" json:"seamHem,omitempty"`

	VerticalPatternRepeat   *float64 `mapstructure:"verticalPatternRepeat" yaml:"verticalPatternRepeat,omitempty" json:"verticalPatternRepeat,omitempty"`
	HorizontalPatternRepeat *float64 `mapstructure:"horizontalPatternRepeat" yaml:"horizontalPatternRepeat,omitempty" json:"horizontalPatternRepeat,omitempty"`
	ReturnLeft              *float64 `mapstructure:"returnLeft" yaml:"returnLeft,omitempty" json:"returnLeft,omitempty"`
	ReturnRight             *float64 `mapstructure:"returnRight" yaml:"returnRight,omitempty" json:"returnRight,omitempty"`
	Overlap                 *float64 `mapstructure:"overlap" yaml:"overlap,omitempty" json:"overlap,omitempty"`

	FabricOrientation string `mapstructure:"fabricOrientation" yaml:"fabricOrientation,omitempty" json:"fabricOrientation,omitempty"`
	ManualRotation    bool   `mapstructure:"manualRotation" yaml:"manualRotation,omitempty" json:"manualRotation,omitempty"`

	FabricCostPerYard *float64 `mapstructure:"fabricCostPerYard" yaml:"fabricCostPerYard,omitempty" json:"fabricCostPerYard,omitempty"`
	LaborRate         *float64 `mapstructure:"laborRate" yaml:"laborRate,omitempty" json:"laborRate,omitempty"`

	SelectedOptions []string `mapstructure:"selectedOptions" yaml:"selectedOptions,omitempty" json:"selectedOptions,omitempty"`
}

// Template is a treatment template as stored by the backend. Attributes holds
// the free-form fields whose names vary between templates.
type Template struct {
	ID                string                 `mapstructure:"id" yaml:"id" json:"id"`
	Name              string                 `mapstructure:"name" yaml:"name" json:"name"`
	TreatmentCategory string                 `mapstructure:"treatmentCategory" yaml:"treatmentCategory" json:"treatmentCategory"`
	WindowCoveringID  string                 `mapstructure:"windowCoveringId" yaml:"windowCoveringId,omitempty" json:"windowCoveringId,omitempty"`
	MakingCostID      string                 `mapstructure:"makingCostId" yaml:"makingCostId,omitempty" json:"makingCostId,omitempty"`
	Attributes        map[string]interface{} `mapstructure:",remain" yaml:",inline" json:"attributes,omitempty"`
}

// Float returns the first of keys present in the template's attributes.
func (t Template) Float(keys ...string) (float64, bool) {
	value, _, ok := lookupFloat(t.Attributes, keys...)
	return value, ok
}

// Heading is a curtain heading style carrying its fullness ratio.
type Heading struct {
	ID            string                 `mapstructure:"id" yaml:"id" json:"id"`
	Name          string                 `mapstructure:"name" yaml:"name" json:"name"`
	FullnessRatio float64                `mapstructure:"fullnessRatio" yaml:"fullnessRatio" json:"fullnessRatio"`
	Attributes    map[string]interface{} `mapstructure:",remain" yaml:",inline" json:"attributes,omitempty"`
}

// FabricItem is a fabric from inventory.
type FabricItem struct {
	ID                      string  `mapstructure:"id" yaml:"id" json:"id"`
	Name                    string  `mapstructure:"name" yaml:"name" json:"name"`
	FabricWidth             float64 `mapstructure:"fabricWidth" yaml:"fabricWidth" json:"fabricWidth"`
	CostPerYard             float64 `mapstructure:"costPerYard" yaml:"costPerYard,omitempty" json:"costPerYard,omitempty"`
	CostPerMeter            float64 `mapstructure:"costPerMeter" yaml:"costPerMeter,omitempty" json:"costPerMeter,omitempty"`
	PricePerSqm             float64 `mapstructure:"pricePerSqm" yaml:"pricePerSqm,omitempty" json:"pricePerSqm,omitempty"`
	VerticalPatternRepeat   float64 `mapstructure:"verticalPatternRepeat" yaml:"verticalPatternRepeat,omitempty" json:"verticalPatternRepeat,omitempty"`
	HorizontalPatternRepeat float64 `mapstructure:"horizontalPatternRepeat" yaml:"horizontalPatternRepeat,omitempty" json:"horizontalPatternRepeat,omitempty"`
	RollDirection           string  `mapstructure:"rollDirection" yaml:"rollDirection,omitempty" json:"rollDirection,omitempty"`
	NoSeams                 bool    `mapstructure:"noSeams" yaml:"noSeams,omitempty" json:"noSeams,omitempty"`
}

// PricePerYard returns the fabric price normalized to one linear yard.
func (f FabricItem) PricePerYard() float64 {
	if f.CostPerYard > 0 {
		return f.CostPerYard
	}
	if f.CostPerMeter > 0 {
		return f.CostPerMeter / constants.YardsPerMeter
	}
	return 0
}

// CalculationInput is the fully resolved parameter set of one calculation.
// All lengths are centimeters.
type CalculationInput struct {
	TemplateID string `json:"templateId,omitempty"`
	Category   string `json:"category,omitempty"`

	RailWidth   float64 `json:"railWidth"`
	Drop        float64 `json:"drop"`
	FabricWidth float64 `json:"fabricWidth"`

	Fullness         float64 `json:"fullness"`
	FullnessResolved bool    `json:"fullnessResolved"`
	Quantity         int     `json:"quantity"`

	Pooling   float64 `json:"pooling"`
	HeaderHem float64 `json:"headerHem"`
	BottomHem float64 `json:"bottomHem"`
	SideHem   float64 `json:"sideHem"`
	SeamHem   float64 `json:"seamHem"`

	VerticalPatternRepeatCm   float64 `json:"verticalPatternRepeatCm"`
	HorizontalPatternRepeatCm float64 `json:"horizontalPatternRepeatCm"`
	ReturnLeft                float64 `json:"returnLeft"`
	ReturnRight               float64 `json:"returnRight"`
	Overlap                   float64 `json:"overlap"`

	RollDirection  Orientation `json:"rollDirection"`
	ManualRotation bool        `json:"manualRotation"`
	AllowSeams     bool        `json:"allowSeams"`
}

// Patterned reports whether either pattern repeat is set.
func (in CalculationInput) Patterned() bool {
	return in.VerticalPatternRepeatCm > 0 || in.HorizontalPatternRepeatCm > 0
}

// PanelCount returns the quantity, never less than one.
func (in CalculationInput) PanelCount() int {
	if in.Quantity < 1 {
		return 1
	}
	return in.Quantity
}

// Resolution is the outcome of resolving a form against its catalog records.
type Resolution struct {
	Input CalculationInput
	// Missing names required fields that could not be resolved.
	Missing []string
	// Defaulted names template-configured fields that fell back to zero.
	Defaulted []string
	Warnings  []string
}

// Complete reports whether every required field was resolved.
func (r Resolution) Complete() bool {
	return len(r.Missing) == 0
}

// SetCategory overrides the treatment category. Blind categories never need
// a fullness, so it is dropped from Missing.
func (r *Resolution) SetCategory(category string) {
	r.Input.Category = category
	if !IsBlindCategory(category) {
		return
	}
	kept := r.Missing[:0]
	for _, field := range r.Missing {
		if field != "fullness" {
			kept = append(kept, field)
		}
	}
	if len(kept) == 0 {
		kept = nil
	}
	r.Missing = kept
}

// Synonymous template field names, tried in order.
var (
	poolingKeys   = []string{"pooling", "pooling_cm", "pooling_amount"}
	headerHemKeys = []string{"header_allowance", "header_hem", "header_hem_cm"}
	bottomHemKeys = []string{"bottom_allowance", "bottom_hem", "bottom_hem_cm"}
	sideHemKeys   = []string{"side_allowance", "side_hem", "side_hem_cm"}
	seamHemKeys   = []string{"seam_allowance", "seam_hem", "seam_hem_cm"}
	allowSeamKeys = []string{"allow_seams", "seaming_allowed"}
)

// attrSource is one link of a field priority chain.
type attrSource struct {
	name  string
	attrs map[string]interface{}
}

// lookupFloat finds the first key present in attrs. A present zero is a value.
func lookupFloat(attrs map[string]interface{}, keys ...string) (float64, string, bool) {
	for _, key := range keys {
		raw, ok := lookupKey(attrs, key)
		if !ok {
			continue
		}
		value, err := cast.ToFloat64E(raw)
		if err != nil {
			continue
		}
		return value, key, true
	}
	return 0, "", false
}

func lookupBool(attrs map[string]interface{}, keys ...string) (bool, bool) {
	for _, key := range keys {
		raw, ok := lookupKey(attrs, key)
		if !ok {
			continue
		}
		value, err := cast.ToBoolE(raw)
		if err != nil {
			continue
		}
		return value, true
	}
	return false, false
}

func lookupKey(attrs map[string]interface{}, key string) (interface{}, bool) {
	if attrs == nil {
		return nil, false
	}
	raw, ok := attrs[key]
	if !ok {
		for k, v := range attrs {
			if strings.EqualFold(k, key) {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok || raw == nil {
		return nil, false
	}
	if s, isString := raw.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return raw, true
}

// Resolve turns raw form state plus the selected template, heading and fabric
// item into a CalculationInput. It never guesses a nonzero value.
func Resolve(logger *zap.Logger, form FormData, tmpl *Template, heading *Heading, item *FabricItem) Resolution {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Resolution
	in := &res.Input

	chain := make([]attrSource, 0, 2)
	if heading != nil {
		chain = append(chain, attrSource{name: "heading " + heading.ID, attrs: heading.Attributes})
	}
	if tmpl != nil {
		in.TemplateID = tmpl.ID
		in.Category = tmpl.TreatmentCategory
		chain = append(chain, attrSource{name: "template " + tmpl.ID, attrs: tmpl.Attributes})
	}

	in.RailWidth = deref(form.RailWidth)
	in.Drop = deref(form.Drop)
	if item != nil && item.FabricWidth > 0 {
		in.FabricWidth = item.FabricWidth
	} else {
		in.FabricWidth = deref(form.FabricWidth)
	}

	if in.RailWidth <= 0 {
		res.Missing = append(res.Missing, "railWidth")
	}
	if in.Drop <= 0 {
		res.Missing = append(res.Missing, "drop")
	}
	if in.FabricWidth <= 0 {
		res.Missing = append(res.Missing, "fabricWidth")
	}

	switch {
	case form.HeadingFullness != nil && *form.HeadingFullness > 0:
		in.Fullness = *form.HeadingFullness
		in.FullnessResolved = true
	case heading != nil && heading.FullnessRatio > 0:
		in.Fullness = heading.FullnessRatio
		in.FullnessResolved = true
	case !IsBlindCategory(in.Category):
		res.Missing = append(res.Missing, "fullness")
	}

	switch {
	case strings.EqualFold(strings.TrimSpace(form.CurtainType), "pair"):
		in.Quantity = constants.PairPanelCount
	case form.Quantity != nil && *form.Quantity > 0:
		in.Quantity = *form.Quantity
	default:
		in.Quantity = 1
	}

	resolve := func(field string, formValue *float64, keys []string) float64 {
		if formValue != nil {
			return *formValue
		}
		for _, src := range chain {
			if value, key, ok := lookupFloat(src.attrs, keys...); ok {
				logger.Debug("resolved allowance from catalog",
					zap.String("op", "fabric.Resolve"),
					zap.String("field", field),
					zap.String("source", src.name),
					zap.String("key", key),
					zap.Float64("value", value),
				)
				return value
			}
		}
		if tmpl != nil {
			res.Defaulted = append(res.Defaulted, field)
			logger.Warn(fmt.Sprintf("template %s has no %s configured, using 0", tmpl.ID, field),
				zap.String("op", "fabric.Resolve"),
				zap.Strings("keys", keys),
			)
		}
		return 0
	}

	in.Pooling = nonNegative(resolve("pooling", form.Pooling, poolingKeys))
	in.HeaderHem = nonNegative(resolve("headerHem", form.HeaderHem, headerHemKeys))
	in.BottomHem = nonNegative(resolve("bottomHem", form.BottomHem, bottomHemKeys))
	in.SideHem = nonNegative(resolve("sideHem", form.SideHem, sideHemKeys))
	in.SeamHem = nonNegative(resolve("seamHem", form.SeamHem, seamHemKeys))

	in.VerticalPatternRepeatCm = nonNegative(firstSet(form.VerticalPatternRepeat, itemValue(item, func(f *FabricItem) float64 { return f.VerticalPatternRepeat })))
	in.HorizontalPatternRepeatCm = nonNegative(firstSet(form.HorizontalPatternRepeat, itemValue(item, func(f *FabricItem) float64 { return f.HorizontalPatternRepeat })))
	in.ReturnLeft = nonNegative(deref(form.ReturnLeft))
	in.ReturnRight = nonNegative(deref(form.ReturnRight))
	in.Overlap = nonNegative(deref(form.Overlap))

	in.ManualRotation = form.ManualRotation
	in.RollDirection = resolveRollDirection(form, item, in.FabricWidth)

	in.AllowSeams = true
	if item != nil && item.NoSeams {
		in.AllowSeams = false
	} else if tmpl != nil {
		if allowed, ok := lookupBool(tmpl.Attributes, allowSeamKeys...); ok {
			in.AllowSeams = allowed
		}
	}

	res.Warnings = CheckUnits(*in)
	return res
}

func resolveRollDirection(form FormData, item *FabricItem, fabricWidth float64) Orientation {
	if o, ok := ParseOrientation(form.FabricOrientation); ok {
		return o
	}
	if item != nil {
		if o, ok := ParseOrientation(item.RollDirection); ok {
			return o
		}
	}
	if fabricWidth > constants.WideFabricThresholdCm {
		return Horizontal
	}
	return Vertical
}

// CheckUnits returns non-fatal cautions for values that look like they were
// entered in the wrong unit.
func CheckUnits(in CalculationInput) []string {
	var warnings []string
	check := func(label string, value, lo, hi float64) {
		if value <= 0 {
			return
		}
		if value < lo {
			warnings = append(warnings, fmt.Sprintf("%s of %.1fcm is unusually small, check the unit is centimeters", label, value))
		} else if value > hi {
			warnings = append(warnings, fmt.Sprintf("%s of %.1fcm is unusually large, check the unit is centimeters", label, value))
		}
	}
	check("Rail width", in.RailWidth, constants.MinPlausibleDimensionCm, constants.MaxPlausibleDimensionCm)
	check("Drop", in.Drop, constants.MinPlausibleDimensionCm, constants.MaxPlausibleDimensionCm)
	check("Fabric width", in.FabricWidth, constants.MinPlausibleFabricWidthCm, constants.MaxPlausibleFabricWidthCm)
	return warnings
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func firstSet(v *float64, fallback float64) float64 {
	if v != nil {
		return *v
	}
	return fallback
}

func itemValue(item *FabricItem, get func(*FabricItem) float64) float64 {
	if item == nil {
		return 0
	}
	return get(item)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
