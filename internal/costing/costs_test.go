package costing

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/internal/makingcost"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func scenarioForm() fabric.FormData {
	return fabric.FormData{
		RailWidth:         floatPtr(300),
		Drop:              floatPtr(250),
		FabricWidth:       floatPtr(137),
		HeadingFullness:   floatPtr(2.5),
		Quantity:          intPtr(2),
		Pooling:           floatPtr(0),
		HeaderHem:         floatPtr(15),
		BottomHem:         floatPtr(10),
		SideHem:           floatPtr(5),
		SeamHem:           floatPtr(3),
		FabricOrientation: "vertical",
		FabricCostPerYard: floatPtr(20),
		LaborRate:         floatPtr(50),
	}
}

func scenarioTemplates() []fabric.Template {
	return []fabric.Template{
		{ID: "eyelet", Name: "Eyelet curtain", TreatmentCategory: "curtains"},
		{ID: "eyelet-linked", Name: "Eyelet curtain (workroom)", TreatmentCategory: "curtains", WindowCoveringID: "wc-1", MakingCostID: "mc-eyelet"},
	}
}

type fakeIntegration struct {
	resp  *makingcost.Response
	err   error
	calls int
	last  makingcost.Request
}

func (f *fakeIntegration) Calculate(_ context.Context, req makingcost.Request) (*makingcost.Response, error) {
	f.calls++
	f.last = req
	return f.resp, f.err
}

func hasWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}
	return false
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		fabric    float64
		options   float64
		labor     float64
		quantity  int
		wantTotal string
		wantUnit  string
	}{
		{"Single", 100, 25.50, 50, 1, "175.50", "175.50"},
		{"Pair", 100, 25.50, 50, 2, "175.50", "87.75"},
		{"ZeroQuantity", 10, 0, 0, 0, "10.00", "10.00"},
		{"RoundsComponents", 10.004, 0.333, 0.333, 1, "10.66", "10.66"},
		{"AllZero", 0, 0, 0, 1, "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.fabric, tt.options, tt.labor, tt.quantity)
			if got.TotalCost != tt.wantTotal {
				t.Errorf("TotalCost = %s, expected %s", got.TotalCost, tt.wantTotal)
			}
			if got.UnitPrice != tt.wantUnit {
				t.Errorf("UnitPrice = %s, expected %s", got.UnitPrice, tt.wantUnit)
			}
			if got.OptionBreakdown == nil {
				t.Errorf("expected a non-nil option breakdown")
			}
		})
	}
}

func TestSummarizeComponents(t *testing.T) {
	got := Summarize(100, 25.5, 50, 1)
	if got.FabricCost != "100.00" || got.OptionsCost != "25.50" || got.LaborCost != "50.00" {
		t.Errorf("unexpected components %s / %s / %s", got.FabricCost, got.OptionsCost, got.LaborCost)
	}
	if got.Quantity != 1 {
		t.Errorf("Quantity = %d, expected 1", got.Quantity)
	}
}

func TestCalculateCostsLocal(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{})
	form := scenarioForm()
	form.SelectedOptions = []string{"lining", "tiebacks"}

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet",
		Options: []Option{
			{ID: "lining", Name: "Lining", PricingMethod: "per_meter", Price: 10},
			{ID: "tiebacks", Name: "Tiebacks", PricingMethod: "fixed", Price: 25.5},
		},
	})

	if summary.Source != SourceLocal {
		t.Errorf("Source = %s, expected %s", summary.Source, SourceLocal)
	}
	if summary.FabricCost != "368.00" {
		t.Errorf("FabricCost = %s, expected 368.00", summary.FabricCost)
	}
	if summary.LaborCost != "600.00" {
		t.Errorf("LaborCost = %s, expected 600.00", summary.LaborCost)
	}
	if summary.OptionsCost != "55.50" {
		t.Errorf("OptionsCost = %s, expected 55.50", summary.OptionsCost)
	}
	if summary.TotalCost != "1023.50" {
		t.Errorf("TotalCost = %s, expected 1023.50", summary.TotalCost)
	}
	if summary.UnitPrice != "511.75" {
		t.Errorf("UnitPrice = %s, expected 511.75", summary.UnitPrice)
	}
	if len(summary.OptionBreakdown) != 2 {
		t.Errorf("expected 2 option lines, got %d", len(summary.OptionBreakdown))
	}
	if summary.Usage.WidthsRequired != 6 {
		t.Errorf("WidthsRequired = %d, expected 6", summary.Usage.WidthsRequired)
	}
}

func TestCalculateCostsUnknownOption(t *testing.T) {
	estimator := NewEstimator(nil, nil, Defaults{})
	form := scenarioForm()
	form.SelectedOptions = []string{"missing"}

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet",
	})

	if summary.OptionsCost != "0.00" {
		t.Errorf("OptionsCost = %s, expected 0.00", summary.OptionsCost)
	}
	if !hasWarning(summary.Warnings, "Unknown option missing") {
		t.Errorf("expected an unknown option warning, got %v", summary.Warnings)
	}
}

func TestCalculateCostsMissingDimensions(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{})
	form := scenarioForm()
	form.RailWidth = nil

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet",
	})

	if summary.TotalCost != "0.00" {
		t.Errorf("TotalCost = %s, expected 0.00", summary.TotalCost)
	}
	if !summary.Usage.Blocked {
		t.Errorf("expected a blocked usage result")
	}
	if !hasWarning(summary.Warnings, fabric.WarnMissingRailWidth) {
		t.Errorf("expected a missing rail width warning, got %v", summary.Warnings)
	}
	if len(summary.Missing) == 0 || summary.Missing[0] != "railWidth" {
		t.Errorf("Missing = %v, expected railWidth first", summary.Missing)
	}
}

func TestCalculateCostsBlindReportsNoFullness(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{LaborRate: 40})

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form: fabric.FormData{
			RailWidth:         floatPtr(120),
			Drop:              floatPtr(150),
			FabricWidth:       floatPtr(137),
			FabricCostPerYard: floatPtr(20),
		},
		TreatmentType: "roller_blinds",
	})

	if len(summary.Missing) != 0 {
		t.Errorf("Missing = %v, expected none for a blind", summary.Missing)
	}
	if summary.Usage.Blocked || summary.Usage.FabricOrientation != fabric.AreaBased {
		t.Errorf("expected an area based blind result, got %+v", summary.Usage)
	}
}

func TestCalculateCostsDefaultLaborRate(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{LaborRate: 50})
	form := scenarioForm()
	form.LaborRate = nil

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet",
	})
	if summary.LaborCost != "600.00" {
		t.Errorf("LaborCost = %s, expected 600.00 from the default rate", summary.LaborCost)
	}
}

func TestCalculateCostsTemplateLaborRate(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{LaborRate: 10})
	form := scenarioForm()
	form.LaborRate = nil
	templates := []fabric.Template{
		{ID: "eyelet", TreatmentCategory: "curtains", Attributes: map[string]interface{}{"labour_rate": "50"}},
	}

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     templates,
		TreatmentType: "curtains",
	})
	if summary.LaborCost != "600.00" {
		t.Errorf("LaborCost = %s, expected 600.00 from the template rate", summary.LaborCost)
	}
}

func TestCalculateCostsIntegration(t *testing.T) {
	integration := &fakeIntegration{resp: &makingcost.Response{
		FabricUsage: makingcost.FabricUsage{Yards: 12, Meters: 11, Orientation: "horizontal", WidthsRequired: 2, SeamsRequired: 1},
		Costs:       makingcost.Costs{FabricCost: 240, LaborCost: 100, MakingCost: 80, AdditionalOptionsCost: 30},
		Breakdown:   []makingcost.BreakdownItem{{ID: "lining", Name: "Lining", Cost: 30}},
	}}
	estimator := NewEstimator(zap.NewNop(), integration, Defaults{})
	form := scenarioForm()
	form.SelectedOptions = []string{"lining"}
	form.Overlap = floatPtr(8)
	form.ReturnLeft = floatPtr(6)

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          form,
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet-linked",
	})

	if integration.calls != 1 {
		t.Fatalf("expected one integration call, got %d", integration.calls)
	}
	if integration.last.MakingCostID != "mc-eyelet" || integration.last.WindowCoveringID != "wc-1" {
		t.Errorf("unexpected integration ids %+v", integration.last)
	}
	if integration.last.Measurements.RailWidth != 300 || integration.last.Measurements.Quantity != 2 {
		t.Errorf("unexpected measurements %+v", integration.last.Measurements)
	}
	if integration.last.Measurements.Overlap != 8 || integration.last.Measurements.ReturnLeft != 6 {
		t.Errorf("expected overlap and returns to be forwarded, got %+v", integration.last.Measurements)
	}
	if summary.Source != SourceMakingCost {
		t.Errorf("Source = %s, expected %s", summary.Source, SourceMakingCost)
	}
	if summary.LaborCost != "180.00" {
		t.Errorf("LaborCost = %s, expected labor plus making cost 180.00", summary.LaborCost)
	}
	if summary.TotalCost != "450.00" {
		t.Errorf("TotalCost = %s, expected 450.00", summary.TotalCost)
	}
	if summary.Usage.FabricOrientation != fabric.Horizontal {
		t.Errorf("FabricOrientation = %s, expected horizontal", summary.Usage.FabricOrientation)
	}
	if len(summary.OptionBreakdown) != 1 || summary.OptionBreakdown[0].Method != SourceMakingCost {
		t.Errorf("unexpected breakdown %+v", summary.OptionBreakdown)
	}
}

func TestCalculateCostsIntegrationFallback(t *testing.T) {
	integration := &fakeIntegration{err: errors.New("connection refused")}
	estimator := NewEstimator(zap.NewNop(), integration, Defaults{})

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          scenarioForm(),
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet-linked",
	})

	if integration.calls != 1 {
		t.Errorf("expected one integration call, got %d", integration.calls)
	}
	if summary.Source != SourceLocal {
		t.Errorf("Source = %s, expected fallback to %s", summary.Source, SourceLocal)
	}
	if len(summary.Warnings) == 0 || summary.Warnings[0] != WarnIntegrationFallback {
		t.Errorf("expected the fallback warning first, got %v", summary.Warnings)
	}
	if summary.TotalCost != "968.00" {
		t.Errorf("TotalCost = %s, expected 968.00", summary.TotalCost)
	}
}

func TestCalculateCostsSkipsIntegrationWithoutMakingCost(t *testing.T) {
	integration := &fakeIntegration{err: errors.New("should not be called")}
	estimator := NewEstimator(zap.NewNop(), integration, Defaults{})

	summary := estimator.CalculateCosts(context.Background(), Request{
		Form:          scenarioForm(),
		Templates:     scenarioTemplates(),
		TreatmentType: "eyelet",
	})
	if integration.calls != 0 {
		t.Errorf("expected no integration calls, got %d", integration.calls)
	}
	if summary.Source != SourceLocal {
		t.Errorf("Source = %s, expected %s", summary.Source, SourceLocal)
	}
}

func TestCalculateCostsIdempotent(t *testing.T) {
	estimator := NewEstimator(zap.NewNop(), nil, Defaults{})
	req := Request{Form: scenarioForm(), Templates: scenarioTemplates(), TreatmentType: "eyelet"}

	first := estimator.CalculateCosts(context.Background(), req)
	second := estimator.CalculateCosts(context.Background(), req)
	if first.TotalCost != second.TotalCost || first.Usage.Yards != second.Usage.Yards {
		t.Errorf("repeated calculation differs: %s vs %s", first.TotalCost, second.TotalCost)
	}
}

func TestFindTemplateByCategory(t *testing.T) {
	templates := scenarioTemplates()
	if got := findTemplate(templates, "Curtains"); got == nil || got.ID != "eyelet" {
		t.Errorf("expected the first curtains template, got %+v", got)
	}
	if got := findTemplate(templates, "eyelet-linked"); got == nil || got.ID != "eyelet-linked" {
		t.Errorf("expected an id match, got %+v", got)
	}
	if got := findTemplate(templates, ""); got != nil {
		t.Errorf("expected nil for an empty treatment type, got %+v", got)
	}
}

func TestCalculateUsageAndOrientation(t *testing.T) {
	integration := &fakeIntegration{err: errors.New("should not be called")}
	estimator := NewEstimator(zap.NewNop(), integration, Defaults{})
	req := Request{Form: scenarioForm(), Templates: scenarioTemplates(), TreatmentType: "eyelet-linked"}

	usage, missing := estimator.CalculateUsage(req)
	if len(missing) != 0 {
		t.Errorf("Missing = %v, expected none", missing)
	}
	if math.Abs(usage.TotalCost-968) > 1e-6 || usage.Yards != 18.4 {
		t.Errorf("unexpected usage: total %v, yards %v", usage.TotalCost, usage.Yards)
	}

	horizontal, _ := estimator.CalculateOrientation(req, fabric.Horizontal)
	if horizontal.Orientation != fabric.Horizontal || math.Abs(horizontal.TotalCost-724) > 1e-6 {
		t.Errorf("unexpected horizontal result %+v", horizontal)
	}
	if integration.calls != 0 {
		t.Errorf("expected the integration to be bypassed, got %d calls", integration.calls)
	}
}
