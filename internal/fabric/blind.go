package fabric

import (
	"strings"

	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/iwvelando/fabric-estimator/pkg/mathutil"
)

var (
	blindSideHemKeys   = []string{"blind_side_hem_cm", "side_hem", "side_allowance"}
	blindHeaderHemKeys = []string{"blind_header_hem_cm", "header_allowance", "header_hem"}
	blindBottomHemKeys = []string{"blind_bottom_hem_cm", "bottom_hem", "bottom_allowance"}
	blindWasteKeys     = []string{"waste_percent", "blind_waste_percent"}
)

// IsBlindCategory reports whether a treatment category is priced by area.
func IsBlindCategory(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	if c == "" {
		return false
	}
	return strings.Contains(c, "blind") || strings.Contains(c, "drape") || c == "awning" || c == "panel_glide"
}

// BlindAllowances are the template allowances applied to blind-like treatments.
type BlindAllowances struct {
	SideHem      float64 `json:"sideHem"`
	HeaderHem    float64 `json:"headerHem"`
	BottomHem    float64 `json:"bottomHem"`
	WastePercent float64 `json:"wastePercent"`
}

// BlindAllowancesFor reads blind allowances from a template; absent fields are 0.
func BlindAllowancesFor(tmpl *Template) BlindAllowances {
	if tmpl == nil {
		return BlindAllowances{}
	}
	side, _, _ := lookupFloat(tmpl.Attributes, blindSideHemKeys...)
	header, _, _ := lookupFloat(tmpl.Attributes, blindHeaderHemKeys...)
	bottom, _, _ := lookupFloat(tmpl.Attributes, blindBottomHemKeys...)
	waste, _, _ := lookupFloat(tmpl.Attributes, blindWasteKeys...)
	return BlindAllowances{
		SideHem:      nonNegative(side),
		HeaderHem:    nonNegative(header),
		BottomHem:    nonNegative(bottom),
		WastePercent: nonNegative(waste),
	}
}

// BlindResult is the area based usage of a blind-like treatment.
type BlindResult struct {
	EffectiveWidth  float64 `json:"effectiveWidth"`
	EffectiveHeight float64 `json:"effectiveHeight"`
	Sqm             float64 `json:"sqm"`
	Yards           float64 `json:"yards"`
	LaborHours      float64 `json:"laborHours"`
	FabricCost      float64 `json:"fabricCost"`
	LaborCost       float64 `json:"laborCost"`
	TotalCost       float64 `json:"totalCost"`
}

// CalculateBlindUsage computes the fabric area of a blind-like treatment.
// Orientation does not apply: the whole piece is priced by area.
func CalculateBlindUsage(in CalculationInput, allowances BlindAllowances, item *FabricItem, fabricCostPerYard, laborRate float64) BlindResult {
	var res BlindResult
	res.EffectiveWidth = in.RailWidth + 2*allowances.SideHem
	height := in.Drop + allowances.HeaderHem + allowances.BottomHem
	res.EffectiveHeight = height + mathutil.ApplyPercentage(height, allowances.WastePercent)

	res.Sqm = res.EffectiveWidth * res.EffectiveHeight / constants.SqCmPerSqMeter
	res.Yards = res.Sqm * constants.SqYardsPerSqMeter

	if item != nil && item.PricePerSqm > 0 {
		res.FabricCost = res.Sqm * item.PricePerSqm
	} else {
		res.FabricCost = res.Yards * fabricCostPerYard
	}

	res.LaborHours = BaseLaborHours(in.RailWidth, in.Drop, 1)
	res.LaborCost = res.LaborHours * laborRate
	res.TotalCost = res.FabricCost + res.LaborCost
	return res
}
