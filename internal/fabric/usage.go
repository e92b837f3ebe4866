package fabric

import (
	"fmt"
	"math"

	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/iwvelando/fabric-estimator/pkg/format"
	"github.com/iwvelando/fabric-estimator/pkg/mathutil"
	"go.uber.org/zap"
)

// Warning texts that callers match on.
const (
	WarnMissingRailWidth   = "Missing rail width"
	WarnMissingDrop        = "Missing drop"
	WarnMissingFabricWidth = "Missing fabric width"
	WarnSelectHeading      = "Select a heading to set fullness"
)

// CostComparison contrasts the two orientations when both are feasible.
type CostComparison struct {
	VerticalCost   float64     `json:"verticalCost"`
	HorizontalCost float64     `json:"horizontalCost"`
	Recommended    Orientation `json:"recommended"`
	Savings        float64     `json:"savings"`
}

// UsageResult is the fabric usage and cost of the chosen orientation.
type UsageResult struct {
	Yards  float64 `json:"yards"`
	Meters float64 `json:"meters"`
	Sqm    float64 `json:"sqm,omitempty"`

	TotalLengthCm  float64 `json:"totalLengthCm"`
	WidthsRequired int     `json:"widthsRequired"`
	SeamsRequired  int     `json:"seamsRequired"`
	SeamLaborHours float64 `json:"seamLaborHours"`
	LaborHours     float64 `json:"laborHours"`

	FabricOrientation Orientation `json:"fabricOrientation,omitempty"`
	Feasible          bool        `json:"feasible"`
	// Blocked is set when the calculation could not run at all.
	Blocked bool `json:"blocked,omitempty"`

	FabricCost float64 `json:"fabricCost"`
	LaborCost  float64 `json:"laborCost"`
	TotalCost  float64 `json:"totalCost"`

	CostComparison         *CostComparison `json:"costComparison,omitempty"`
	HorizontalPiecesNeeded int             `json:"horizontalPiecesNeeded,omitempty"`
	LeftoverFromLastPiece  float64         `json:"leftoverFromLastPiece,omitempty"`

	Vertical   *OrientationResult `json:"vertical,omitempty"`
	Horizontal *OrientationResult `json:"horizontal,omitempty"`
	Blind      *BlindResult       `json:"blind,omitempty"`

	Warnings []string `json:"warnings"`
}

// Pricing carries the monetary rates of a usage calculation.
type Pricing struct {
	FabricCostPerYard float64
	LaborRate         float64
}

// FindTemplate returns the template with the given id, or nil.
func FindTemplate(templates []Template, id string) *Template {
	if id == "" {
		return nil
	}
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i]
		}
	}
	return nil
}

// CalculateFabricUsage selects the blind or curtain path for the input's
// treatment category and returns the usage of the chosen orientation.
// Insufficient input yields a Blocked result with warnings, never an error.
func CalculateFabricUsage(logger *zap.Logger, in CalculationInput, templates []Template, item *FabricItem, pricing Pricing) UsageResult {
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl := FindTemplate(templates, in.TemplateID)
	category := in.Category
	if category == "" && tmpl != nil {
		category = tmpl.TreatmentCategory
	}
	blind := IsBlindCategory(category)

	var missing []string
	if in.RailWidth <= 0 {
		missing = append(missing, WarnMissingRailWidth)
	}
	if in.Drop <= 0 {
		missing = append(missing, WarnMissingDrop)
	}
	if in.FabricWidth <= 0 {
		missing = append(missing, WarnMissingFabricWidth)
	}
	if len(missing) > 0 {
		logger.Debug("fabric usage blocked by missing dimensions",
			zap.String("op", "fabric.CalculateFabricUsage"),
			zap.Strings("missing", missing),
		)
		return UsageResult{Blocked: true, Warnings: missing}
	}

	if blind {
		return blindUsage(in, tmpl, item, pricing)
	}

	if !in.FullnessResolved || in.Fullness <= 0 {
		logger.Debug("fabric usage blocked by unresolved fullness",
			zap.String("op", "fabric.CalculateFabricUsage"),
			zap.String("template", in.TemplateID),
		)
		return UsageResult{Blocked: true, Warnings: []string{WarnSelectHeading}}
	}

	return curtainUsage(logger, in, pricing)
}

func blindUsage(in CalculationInput, tmpl *Template, item *FabricItem, pricing Pricing) UsageResult {
	b := CalculateBlindUsage(in, BlindAllowancesFor(tmpl), item, pricing.FabricCostPerYard, pricing.LaborRate)
	return UsageResult{
		Yards:             b.Yards,
		Meters:            b.Sqm,
		Sqm:               b.Sqm,
		WidthsRequired:    1,
		LaborHours:        b.LaborHours,
		FabricOrientation: AreaBased,
		Feasible:          true,
		FabricCost:        b.FabricCost,
		LaborCost:         b.LaborCost,
		TotalCost:         b.TotalCost,
		Blind:             &b,
		Warnings:          CheckUnits(in),
	}
}

func curtainUsage(logger *zap.Logger, in CalculationInput, pricing Pricing) UsageResult {
	vertical := CalculateOrientation(Vertical, in, pricing.FabricCostPerYard, pricing.LaborRate)
	horizontal := CalculateOrientation(Horizontal, in, pricing.FabricCostPerYard, pricing.LaborRate)

	results := map[Orientation]*OrientationResult{Vertical: &vertical, Horizontal: &horizontal}

	var warnings []string
	chosen := in.RollDirection
	if in.ManualRotation {
		chosen = Horizontal
	}
	if chosen != Horizontal {
		chosen = Vertical
	}

	if !results[chosen].Feasible && results[chosen.Other()].Feasible {
		warnings = append(warnings, fmt.Sprintf("%s orientation is not feasible, using %s", title(chosen), chosen.Other()))
		chosen = chosen.Other()
	} else if !results[chosen].Feasible {
		warnings = append(warnings, "Neither orientation is feasible for this fabric")
	}

	var comparison *CostComparison
	if vertical.Feasible && horizontal.Feasible {
		comparison = &CostComparison{
			VerticalCost:   vertical.TotalCost,
			HorizontalCost: horizontal.TotalCost,
			Recommended:    Vertical,
			Savings:        math.Abs(vertical.TotalCost - horizontal.TotalCost),
		}
		if horizontal.TotalCost < vertical.TotalCost {
			comparison.Recommended = Horizontal
		}
	}

	picked := results[chosen]
	warnings = append(warnings, picked.Warnings...)

	if chosen == Horizontal && in.Patterned() {
		warnings = append(warnings, "Pattern matching required: patterned fabric is railroaded, check repeat alignment across seams")
	}
	if chosen == Vertical && !in.Patterned() && in.FabricWidth <= constants.WideFabricThresholdCm &&
		in.Drop < in.FabricWidth && comparison != nil && comparison.Recommended == Horizontal &&
		!mathutil.IsZero(comparison.Savings) {
		warnings = append(warnings, fmt.Sprintf("Plain fabric with a drop under the fabric width could be rotated horizontally to save %s",
			format.Currency(comparison.Savings)))
	}
	warnings = append(warnings, CheckUnits(in)...)

	logger.Debug("fabric usage computed",
		zap.String("op", "fabric.CalculateFabricUsage"),
		zap.String("orientation", string(chosen)),
		zap.Float64("yards", picked.TotalYards),
		zap.Int("widths", picked.WidthsRequired),
		zap.Int("seams", picked.SeamsRequired),
		zap.Bool("feasible", picked.Feasible),
	)

	return UsageResult{
		Yards:                  picked.TotalYards,
		Meters:                 picked.TotalMeters,
		TotalLengthCm:          picked.TotalLengthCm,
		WidthsRequired:         picked.WidthsRequired,
		SeamsRequired:          picked.SeamsRequired,
		SeamLaborHours:         picked.SeamLaborHours,
		LaborHours:             picked.LaborHours,
		FabricOrientation:      chosen,
		Feasible:               picked.Feasible,
		FabricCost:             picked.FabricCost,
		LaborCost:              picked.LaborCost,
		TotalCost:              picked.TotalCost,
		CostComparison:         comparison,
		HorizontalPiecesNeeded: picked.HorizontalPiecesNeeded,
		LeftoverFromLastPiece:  picked.LeftoverFromLastPiece,
		Vertical:               &vertical,
		Horizontal:             &horizontal,
		Warnings:               warnings,
	}
}

func title(o Orientation) string {
	if o == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}
