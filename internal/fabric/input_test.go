package fabric

import (
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func baseForm() FormData {
	return FormData{
		RailWidth:   floatPtr(300),
		Drop:        floatPtr(250),
		FabricWidth: floatPtr(137),
	}
}

func TestResolveHemPriority(t *testing.T) {
	tmpl := &Template{
		ID: "eyelet",
		Attributes: map[string]interface{}{
			"header_hem":       20,
			"header_allowance": 15,
			"bottom_hem_cm":    "10",
			"side_hem":         5,
			"seam_allowance":   3,
		},
	}
	heading := &Heading{
		ID:            "wave",
		FullnessRatio: 2.2,
		Attributes:    map[string]interface{}{"bottom_hem": 12},
	}

	form := baseForm()
	form.SideHem = floatPtr(0)

	res := Resolve(zap.NewNop(), form, tmpl, heading, nil)
	in := res.Input

	if in.HeaderHem != 15 {
		t.Errorf("HeaderHem = %v, expected 15 from the first synonym", in.HeaderHem)
	}
	if in.BottomHem != 12 {
		t.Errorf("BottomHem = %v, expected heading value 12 ahead of template", in.BottomHem)
	}
	if in.SideHem != 0 {
		t.Errorf("SideHem = %v, expected explicit form zero to win", in.SideHem)
	}
	if in.SeamHem != 3 {
		t.Errorf("SeamHem = %v, expected 3", in.SeamHem)
	}
	if !reflect.DeepEqual(res.Defaulted, []string{"pooling"}) {
		t.Errorf("Defaulted = %v, expected [pooling]", res.Defaulted)
	}
	if !res.Complete() {
		t.Errorf("expected complete resolution, missing %v", res.Missing)
	}
}

func TestResolveTemplateZeroIsAValue(t *testing.T) {
	tmpl := &Template{
		ID:         "sheer",
		Attributes: map[string]interface{}{"header_allowance": 0, "header_hem": 25},
	}

	res := Resolve(zap.NewNop(), baseForm(), tmpl, &Heading{FullnessRatio: 2}, nil)

	if res.Input.HeaderHem != 0 {
		t.Errorf("HeaderHem = %v, expected configured zero", res.Input.HeaderHem)
	}
	for _, field := range res.Defaulted {
		if field == "headerHem" {
			t.Errorf("headerHem was configured and must not be reported as defaulted")
		}
	}
}

func TestResolveFullness(t *testing.T) {
	tests := []struct {
		name         string
		formFullness *float64
		heading      *Heading
		expected     float64
		resolved     bool
	}{
		{"Form value wins", floatPtr(3), &Heading{FullnessRatio: 2}, 3, true},
		{"Heading ratio", nil, &Heading{FullnessRatio: 2.5}, 2.5, true},
		{"No heading", nil, nil, 0, false},
		{"Heading without ratio", nil, &Heading{ID: "plain"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := baseForm()
			form.HeadingFullness = tt.formFullness
			res := Resolve(zap.NewNop(), form, nil, tt.heading, nil)

			if res.Input.Fullness != tt.expected {
				t.Errorf("Fullness = %v, expected %v", res.Input.Fullness, tt.expected)
			}
			if res.Input.FullnessResolved != tt.resolved {
				t.Errorf("FullnessResolved = %v, expected %v", res.Input.FullnessResolved, tt.resolved)
			}
			if !tt.resolved && res.Complete() {
				t.Errorf("expected fullness to be reported missing")
			}
		})
	}
}

func TestResolveQuantity(t *testing.T) {
	tests := []struct {
		name        string
		curtainType string
		quantity    *int
		expected    int
	}{
		{"Pair", "pair", intPtr(5), 2},
		{"Explicit", "single", intPtr(3), 3},
		{"Default", "", nil, 1},
		{"Zero falls back", "", intPtr(0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := baseForm()
			form.CurtainType = tt.curtainType
			form.Quantity = tt.quantity
			res := Resolve(zap.NewNop(), form, nil, nil, nil)
			if res.Input.Quantity != tt.expected {
				t.Errorf("Quantity = %d, expected %d", res.Input.Quantity, tt.expected)
			}
		})
	}
}

func TestResolveFabricItem(t *testing.T) {
	item := &FabricItem{
		ID:                    "linen",
		FabricWidth:           280,
		VerticalPatternRepeat: 30,
		NoSeams:               true,
	}
	form := baseForm()
	form.HorizontalPatternRepeat = floatPtr(12)

	res := Resolve(zap.NewNop(), form, nil, &Heading{FullnessRatio: 2}, item)
	in := res.Input

	if in.FabricWidth != 280 {
		t.Errorf("FabricWidth = %v, expected item width 280", in.FabricWidth)
	}
	if in.VerticalPatternRepeatCm != 30 || in.HorizontalPatternRepeatCm != 12 {
		t.Errorf("repeats = %v/%v, expected 30/12", in.VerticalPatternRepeatCm, in.HorizontalPatternRepeatCm)
	}
	if in.RollDirection != Horizontal {
		t.Errorf("RollDirection = %s, expected horizontal for wide fabric", in.RollDirection)
	}
	if in.AllowSeams {
		t.Errorf("expected seams to be disallowed by the fabric item")
	}
}

func TestResolveRollDirection(t *testing.T) {
	tests := []struct {
		name     string
		form     string
		item     *FabricItem
		width    float64
		expected Orientation
	}{
		{"Narrow auto", "", nil, 137, Vertical},
		{"Boundary auto", "", nil, 200, Vertical},
		{"Wide auto", "", nil, 300, Horizontal},
		{"Form wins", "vertical", &FabricItem{RollDirection: "horizontal"}, 300, Vertical},
		{"Item roll direction", "", &FabricItem{RollDirection: "railroaded"}, 137, Horizontal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := FormData{FabricOrientation: tt.form}
			if got := resolveRollDirection(form, tt.item, tt.width); got != tt.expected {
				t.Errorf("resolveRollDirection() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestResolveMissingDimensions(t *testing.T) {
	res := Resolve(zap.NewNop(), FormData{Drop: floatPtr(200)}, nil, &Heading{FullnessRatio: 2}, nil)

	expected := []string{"railWidth", "fabricWidth"}
	if !reflect.DeepEqual(res.Missing, expected) {
		t.Errorf("Missing = %v, expected %v", res.Missing, expected)
	}
}

func TestResolveBlindDoesNotNeedFullness(t *testing.T) {
	blind := &Template{ID: "roller", TreatmentCategory: "roller_blinds"}
	res := Resolve(zap.NewNop(), baseForm(), blind, nil, nil)
	if !res.Complete() {
		t.Errorf("expected a complete blind resolution, missing %v", res.Missing)
	}

	curtain := &Template{ID: "eyelet", TreatmentCategory: "curtains"}
	res = Resolve(zap.NewNop(), baseForm(), curtain, nil, nil)
	if !reflect.DeepEqual(res.Missing, []string{"fullness"}) {
		t.Errorf("Missing = %v, expected [fullness]", res.Missing)
	}
}

func TestResolutionSetCategory(t *testing.T) {
	tests := []struct {
		category string
		expected []string
	}{
		{"venetian_blind", []string{"drop"}},
		{"awning", []string{"drop"}},
		{"curtains", []string{"drop", "fullness"}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			res := Resolve(zap.NewNop(), FormData{RailWidth: floatPtr(120), FabricWidth: floatPtr(200)}, nil, nil, nil)
			res.SetCategory(tt.category)

			if res.Input.Category != tt.category {
				t.Errorf("Category = %q, expected %q", res.Input.Category, tt.category)
			}
			if !reflect.DeepEqual(res.Missing, tt.expected) {
				t.Errorf("Missing = %v, expected %v", res.Missing, tt.expected)
			}
		})
	}
}

func TestResolveTemplateDisallowsSeams(t *testing.T) {
	tmpl := &Template{ID: "sheer", Attributes: map[string]interface{}{"allow_seams": "false"}}
	res := Resolve(zap.NewNop(), baseForm(), tmpl, nil, nil)
	if res.Input.AllowSeams {
		t.Errorf("expected template to disallow seams")
	}
}

func TestCheckUnits(t *testing.T) {
	if w := CheckUnits(CalculationInput{RailWidth: 300, Drop: 250, FabricWidth: 137}); len(w) != 0 {
		t.Errorf("expected no cautions, got %v", w)
	}
	w := CheckUnits(CalculationInput{RailWidth: 3, Drop: 25000, FabricWidth: 1.37})
	if len(w) != 3 {
		t.Errorf("expected three cautions, got %v", w)
	}
}
