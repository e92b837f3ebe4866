package fabric

import (
	"fmt"
	"math"

	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/iwvelando/fabric-estimator/pkg/mathutil"
)

// OrientationResult is the geometry and cost of making a treatment with the
// fabric in one orientation.
type OrientationResult struct {
	Orientation Orientation `json:"orientation"`
	Feasible    bool        `json:"feasible"`

	// PanelLength is the cut length of one piece along the bolt.
	PanelLength float64 `json:"panelLength"`
	// PanelWidth is the finished flat width of one panel, or for horizontal
	// orientation the height across the bolt.
	PanelWidth    float64 `json:"panelWidth"`
	TotalLengthCm float64 `json:"totalLengthCm"`
	TotalYards    float64 `json:"totalYards"`
	TotalMeters   float64 `json:"totalMeters"`

	WidthsRequired int `json:"widthsRequired"`
	WidthsPerPanel int `json:"widthsPerPanel,omitempty"`
	DropsPerWidth  int `json:"dropsPerWidth,omitempty"`

	SeamsRequired  int     `json:"seamsRequired"`
	SeamLaborHours float64 `json:"seamLaborHours"`
	BaseLaborHours float64 `json:"baseLaborHours"`
	LaborHours     float64 `json:"laborHours"`

	HorizontalPiecesNeeded int     `json:"horizontalPiecesNeeded,omitempty"`
	LeftoverFromLastPiece  float64 `json:"leftoverFromLastPiece,omitempty"`

	FabricCost float64 `json:"fabricCost"`
	LaborCost  float64 `json:"laborCost"`
	TotalCost  float64 `json:"totalCost"`

	Warnings []string `json:"warnings,omitempty"`
}

// CalculateOrientation computes fabric usage and cost for a single orientation.
// fabricCostPerYard prices one linear yard and laborRate one hour of sewing.
func CalculateOrientation(orientation Orientation, in CalculationInput, fabricCostPerYard, laborRate float64) OrientationResult {
	var res OrientationResult
	if orientation == Horizontal {
		res = horizontalGeometry(in)
	} else {
		res = verticalGeometry(in)
	}

	res.TotalYards = mathutil.CeilToTenth(res.TotalLengthCm / constants.CmPerYard)
	res.TotalMeters = mathutil.CeilToTenth(res.TotalLengthCm / constants.CmPerMeter)

	res.SeamLaborHours = float64(res.SeamsRequired) * constants.SeamLaborHours
	res.BaseLaborHours = BaseLaborHours(in.RailWidth, in.Drop, in.Fullness)
	res.LaborHours = res.BaseLaborHours + res.SeamLaborHours
	res.LaborCost = res.LaborHours * laborRate
	res.FabricCost = res.TotalYards * fabricCostPerYard
	res.TotalCost = res.FabricCost + res.LaborCost

	return res
}

// BaseLaborHours is the make-up time before seams are counted.
func BaseLaborHours(railWidth, drop, fullness float64) float64 {
	return constants.BaseLaborHours + (railWidth*drop*fullness)/constants.LaborAreaDivisor
}

// lengthAllowance is the drop plus everything added to it before cutting.
func lengthAllowance(in CalculationInput) float64 {
	return in.Drop + in.Pooling + in.HeaderHem + in.BottomHem
}

// panelFlatWidth is the flat width of one panel including side hems.
func panelFlatWidth(in CalculationInput) float64 {
	curtainWidth := in.RailWidth*in.Fullness + in.ReturnLeft + in.ReturnRight
	return curtainWidth/float64(in.PanelCount()) + 2*in.SideHem
}

func verticalGeometry(in CalculationInput) OrientationResult {
	res := OrientationResult{Orientation: Vertical, Feasible: true}
	panels := in.PanelCount()

	res.PanelLength = mathutil.RoundUpToMultiple(lengthAllowance(in), in.VerticalPatternRepeatCm)
	res.PanelWidth = mathutil.RoundUpToMultiple(panelFlatWidth(in), in.HorizontalPatternRepeatCm)

	if res.PanelWidth <= 0 || in.FabricWidth <= 0 {
		res.Feasible = false
		res.Warnings = append(res.Warnings, "Vertical orientation has no usable panel width")
		return res
	}

	if res.PanelWidth > in.FabricWidth {
		res.WidthsPerPanel = mathutil.CeilDiv(res.PanelWidth, in.FabricWidth)
		res.WidthsRequired = res.WidthsPerPanel * panels
		if !in.AllowSeams {
			res.Feasible = false
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Panel width %.1fcm exceeds fabric width %.1fcm and this fabric cannot be seamed",
				res.PanelWidth, in.FabricWidth))
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Panel width %.1fcm exceeds fabric width %.1fcm: %d widths seamed per panel (%d total)",
				res.PanelWidth, in.FabricWidth, res.WidthsPerPanel, res.WidthsRequired))
		}
	} else {
		res.WidthsPerPanel = 1
		res.DropsPerWidth = int(math.Floor(in.FabricWidth / res.PanelWidth))
		res.WidthsRequired = int(math.Ceil(float64(panels) / float64(res.DropsPerWidth)))
	}

	res.SeamsRequired = max(0, res.WidthsRequired-1)
	res.TotalLengthCm = float64(res.WidthsRequired)*res.PanelLength + seamAllowance(res.SeamsRequired, in.SeamHem)
	return res
}

func horizontalGeometry(in CalculationInput) OrientationResult {
	res := OrientationResult{Orientation: Horizontal, Feasible: true}
	panels := in.PanelCount()

	// Railroaded: the run along the bolt follows the curtain width, not the drop,
	// and the pattern repeats swap axes with the fabric.
	res.PanelLength = mathutil.RoundUpToMultiple(panelFlatWidth(in), in.VerticalPatternRepeatCm)
	res.PanelWidth = mathutil.RoundUpToMultiple(lengthAllowance(in), in.HorizontalPatternRepeatCm)

	if res.PanelLength <= 0 || in.FabricWidth <= 0 {
		res.Feasible = false
		res.Warnings = append(res.Warnings, "Horizontal orientation has no usable curtain width")
		return res
	}

	// Each panel is one lengthwise run; stacking strips for height adds seams only.
	res.WidthsRequired = panels
	horizontalSeams := 0
	if res.PanelWidth > in.FabricWidth {
		res.HorizontalPiecesNeeded = mathutil.CeilDiv(res.PanelWidth, in.FabricWidth)
		horizontalSeams = res.HorizontalPiecesNeeded - 1
		if rem := math.Mod(res.PanelWidth, in.FabricWidth); rem > 0 {
			res.LeftoverFromLastPiece = in.FabricWidth - rem
		}
		if !in.AllowSeams {
			res.Feasible = false
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Drop %.1fcm exceeds fabric width %.1fcm and this fabric cannot be seamed horizontally",
				res.PanelWidth, in.FabricWidth))
		} else {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Drop %.1fcm exceeds fabric width %.1fcm: %d horizontal pieces required (%d horizontal seams, %.1fcm leftover from last piece)",
				res.PanelWidth, in.FabricWidth, res.HorizontalPiecesNeeded, horizontalSeams, res.LeftoverFromLastPiece))
		}
	}

	res.SeamsRequired = max(0, res.WidthsRequired-1) + horizontalSeams
	res.TotalLengthCm = float64(res.WidthsRequired)*res.PanelLength + seamAllowance(res.SeamsRequired, in.SeamHem)
	return res
}

func seamAllowance(seams int, seamHem float64) float64 {
	return float64(seams) * seamHem * 2
}
