package costing

import (
	"context"
	"fmt"

	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/internal/makingcost"
	"go.uber.org/zap"
)

// estimate is the outcome of a usage strategy before display rounding.
type estimate struct {
	usage       fabric.UsageResult
	fabricCost  float64
	optionsCost float64
	laborCost   float64
	breakdown   []OptionCost
	warnings    []string
	source      string
}

// usageStrategy computes fabric usage and cost for a prepared job.
type usageStrategy interface {
	estimate(ctx context.Context, logger *zap.Logger, j job) (estimate, error)
}

// localStrategy uses the geometric calculators of package fabric.
type localStrategy struct{}

func (localStrategy) estimate(_ context.Context, logger *zap.Logger, j job) (estimate, error) {
	usage := fabric.CalculateFabricUsage(logger, j.input, j.request.Templates, j.request.Fabric, j.pricing)

	est := estimate{
		usage:      usage,
		fabricCost: usage.FabricCost,
		laborCost:  usage.LaborCost,
		source:     SourceLocal,
		warnings:   append([]string(nil), usage.Warnings...),
	}

	m := MeasurementContext{
		RailWidth:         j.input.RailWidth,
		Drop:              j.input.Drop,
		Fullness:          j.input.Fullness,
		FabricWidth:       j.input.FabricWidth,
		FabricCostPerYard: j.pricing.FabricCostPerYard,
		FabricCost:        usage.FabricCost,
		Yards:             usage.Yards,
		Meters:            usage.Meters,
		Sqm:               usage.Sqm,
		Quantity:          j.input.PanelCount(),
	}
	est.breakdown, est.optionsCost, est.warnings = priceOptions(logger, j, m, est.warnings)
	return est, nil
}

func priceOptions(logger *zap.Logger, j job, m MeasurementContext, warnings []string) ([]OptionCost, float64, []string) {
	byID := make(map[string]Option, len(j.request.Options))
	for _, opt := range j.request.Options {
		byID[opt.ID] = opt
	}

	breakdown := make([]OptionCost, 0, len(j.request.Form.SelectedOptions))
	total := 0.0
	for _, id := range j.request.Form.SelectedOptions {
		opt, ok := byID[id]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Unknown option %s ignored", id))
			continue
		}
		line, err := EvaluateOption(opt, m, j.request.Categories, j.template)
		if err != nil {
			logger.Warn("failed to price option",
				zap.String("op", "costing.priceOptions"),
				zap.String("option", id),
				zap.Error(err),
			)
			warnings = append(warnings, fmt.Sprintf("Option %s could not be priced", optionLabel(opt)))
			continue
		}
		breakdown = append(breakdown, line)
		total += line.Cost
	}
	return breakdown, total, warnings
}

func optionLabel(opt Option) string {
	if opt.Name != "" {
		return opt.Name
	}
	return opt.ID
}

// integrationStrategy delegates the whole calculation to the making-cost integration.
type integrationStrategy struct {
	integration MakingCostIntegration
}

func (s integrationStrategy) estimate(ctx context.Context, _ *zap.Logger, j job) (estimate, error) {
	req := makingcost.Request{
		WindowCoveringID: j.template.WindowCoveringID,
		MakingCostID:     j.template.MakingCostID,
		Measurements: makingcost.Measurements{
			RailWidth:   j.input.RailWidth,
			Drop:        j.input.Drop,
			FabricWidth: j.input.FabricWidth,
			Fullness:    j.input.Fullness,
			Quantity:    j.input.PanelCount(),
			Pooling:     j.input.Pooling,
			HeaderHem:   j.input.HeaderHem,
			BottomHem:   j.input.BottomHem,
			SideHem:     j.input.SideHem,
			SeamHem:     j.input.SeamHem,
			ReturnLeft:  j.input.ReturnLeft,
			ReturnRight: j.input.ReturnRight,
			Overlap:     j.input.Overlap,
			Orientation: string(j.input.RollDirection),
		},
		SelectedOptions: append([]string{}, j.request.Form.SelectedOptions...),
	}
	if item := j.request.Fabric; item != nil {
		req.FabricDetails = &makingcost.FabricDetails{
			ID:                      item.ID,
			Name:                    item.Name,
			FabricWidth:             item.FabricWidth,
			CostPerYard:             j.pricing.FabricCostPerYard,
			VerticalPatternRepeat:   item.VerticalPatternRepeat,
			HorizontalPatternRepeat: item.HorizontalPatternRepeat,
		}
	}

	resp, err := s.integration.Calculate(ctx, req)
	if err != nil {
		return estimate{}, err
	}
	if resp == nil {
		return estimate{}, fmt.Errorf("making-cost %s returned no result", req.MakingCostID)
	}

	// Making cost is the integration's sewing charge, so it is reported as labor.
	labor := resp.Costs.LaborCost + resp.Costs.MakingCost
	orientation := fabric.Vertical
	if o, ok := fabric.ParseOrientation(resp.FabricUsage.Orientation); ok {
		orientation = o
	} else if resp.FabricUsage.Orientation == string(fabric.AreaBased) {
		orientation = fabric.AreaBased
	}

	breakdown := make([]OptionCost, 0, len(resp.Breakdown))
	for _, item := range resp.Breakdown {
		breakdown = append(breakdown, OptionCost{ID: item.ID, Name: item.Name, Method: SourceMakingCost, Cost: item.Cost})
	}

	warnings := append([]string(nil), resp.Warnings...)
	return estimate{
		usage: fabric.UsageResult{
			Yards:             resp.FabricUsage.Yards,
			Meters:            resp.FabricUsage.Meters,
			WidthsRequired:    resp.FabricUsage.WidthsRequired,
			SeamsRequired:     resp.FabricUsage.SeamsRequired,
			SeamLaborHours:    resp.FabricUsage.SeamLaborHours,
			FabricOrientation: orientation,
			Feasible:          true,
			FabricCost:        resp.Costs.FabricCost,
			LaborCost:         labor,
			TotalCost:         resp.Costs.FabricCost + labor,
			Warnings:          warnings,
		},
		fabricCost:  resp.Costs.FabricCost,
		optionsCost: resp.Costs.AdditionalOptionsCost,
		laborCost:   labor,
		breakdown:   breakdown,
		warnings:    warnings,
		source:      SourceMakingCost,
	}, nil
}
