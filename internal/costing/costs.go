// Package costing aggregates fabric, add-on option and labor costs into the
// price of a treatment.
package costing

import (
	"context"
	"strings"

	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/internal/makingcost"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sources of a cost summary.
const (
	SourceLocal      = "local"
	SourceMakingCost = "making_cost"
)

// WarnIntegrationFallback is added when the making-cost integration failed.
const WarnIntegrationFallback = "Making cost integration unavailable, using standard calculation"

var (
	laborRateKeys  = []string{"labor_rate", "labour_rate", "hourly_rate"}
	fabricCostKeys = []string{"fabric_cost_per_yard", "fabric_price_per_yard"}
)

// MakingCostIntegration prices a treatment outside this service.
type MakingCostIntegration interface {
	Calculate(ctx context.Context, req makingcost.Request) (*makingcost.Response, error)
}

// Request is everything needed to price one treatment.
type Request struct {
	Form      fabric.FormData
	Options   []Option
	Templates []fabric.Template
	// TreatmentType is a template id or, failing that, a treatment category.
	TreatmentType string
	Categories    []OptionCategory
	Fabric        *fabric.FabricItem
	Heading       *fabric.Heading
}

// CostSummary is the display-ready price of a treatment.
type CostSummary struct {
	FabricCost      string             `json:"fabricCost"`
	OptionsCost     string             `json:"optionsCost"`
	LaborCost       string             `json:"laborCost"`
	TotalCost       string             `json:"totalCost"`
	UnitPrice       string             `json:"unitPrice"`
	Quantity        int                `json:"quantity"`
	OptionBreakdown []OptionCost       `json:"optionBreakdown"`
	Usage           fabric.UsageResult `json:"usage"`
	Source          string             `json:"source"`
	Warnings        []string           `json:"warnings,omitempty"`
	Missing         []string           `json:"missing,omitempty"`
}

// Defaults are rates used when neither the form nor the template sets one.
type Defaults struct {
	LaborRate float64 `mapstructure:"laborRate" yaml:"laborRate,omitempty"`
}

// Estimator prices treatments, delegating to the making-cost integration when
// a template links one.
type Estimator struct {
	logger      *zap.Logger
	integration MakingCostIntegration
	defaults    Defaults
}

// NewEstimator builds an Estimator. integration may be nil.
func NewEstimator(logger *zap.Logger, integration MakingCostIntegration, defaults Defaults) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{logger: logger, integration: integration, defaults: defaults}
}

// CalculateCosts prices one treatment. It never fails: integration errors fall
// back to the local calculation and insufficient input surfaces as warnings.
func (e *Estimator) CalculateCosts(ctx context.Context, req Request) CostSummary {
	job := e.prepare(req)

	local := localStrategy{}
	var strategy usageStrategy = local
	if job.template != nil && job.template.MakingCostID != "" && e.integration != nil {
		strategy = integrationStrategy{integration: e.integration}
	}

	est, err := strategy.estimate(ctx, e.logger, job)
	if err != nil {
		e.logger.Warn("making-cost integration failed, falling back to local calculation",
			zap.String("op", "costing.CalculateCosts"),
			zap.String("template", job.template.ID),
			zap.String("makingCostId", job.template.MakingCostID),
			zap.Error(err),
		)
		est, _ = local.estimate(ctx, e.logger, job)
		est.warnings = append([]string{WarnIntegrationFallback}, est.warnings...)
	}

	summary := Summarize(est.fabricCost, est.optionsCost, est.laborCost, job.input.PanelCount())
	summary.OptionBreakdown = est.breakdown
	summary.Usage = est.usage
	summary.Source = est.source
	summary.Warnings = est.warnings
	summary.Missing = job.missing

	e.logger.Debug("treatment costed",
		zap.String("op", "costing.CalculateCosts"),
		zap.String("treatmentType", req.TreatmentType),
		zap.String("source", summary.Source),
		zap.String("total", summary.TotalCost),
	)
	return summary
}

// CalculateUsage resolves req and runs the local fabric usage calculation. The
// making-cost integration is never consulted. The second result names
// required fields that could not be resolved.
func (e *Estimator) CalculateUsage(req Request) (fabric.UsageResult, []string) {
	job := e.prepare(req)
	return fabric.CalculateFabricUsage(e.logger, job.input, req.Templates, req.Fabric, job.pricing), job.missing
}

// CalculateOrientation resolves req and prices a single orientation.
func (e *Estimator) CalculateOrientation(req Request, orientation fabric.Orientation) (fabric.OrientationResult, []string) {
	job := e.prepare(req)
	return fabric.CalculateOrientation(orientation, job.input, job.pricing.FabricCostPerYard, job.pricing.LaborRate), job.missing
}

// Summarize rounds each component to cents and derives the total and unit price.
func Summarize(fabricCost, optionsCost, laborCost float64, quantity int) CostSummary {
	if quantity < 1 {
		quantity = 1
	}
	fabricD := decimal.NewFromFloat(fabricCost).Round(2)
	optionsD := decimal.NewFromFloat(optionsCost).Round(2)
	laborD := decimal.NewFromFloat(laborCost).Round(2)
	total := fabricD.Add(optionsD).Add(laborD)
	unit := total.Div(decimal.NewFromInt(int64(quantity))).Round(2)

	return CostSummary{
		FabricCost:      fabricD.StringFixed(2),
		OptionsCost:     optionsD.StringFixed(2),
		LaborCost:       laborD.StringFixed(2),
		TotalCost:       total.StringFixed(2),
		UnitPrice:       unit.StringFixed(2),
		Quantity:        quantity,
		OptionBreakdown: []OptionCost{},
	}
}

// job is a request with its catalog records and rates resolved.
type job struct {
	request  Request
	template *fabric.Template
	input    fabric.CalculationInput
	missing  []string
	pricing  fabric.Pricing
}

func (e *Estimator) prepare(req Request) job {
	tmpl := findTemplate(req.Templates, req.TreatmentType)
	res := fabric.Resolve(e.logger, req.Form, tmpl, req.Heading, req.Fabric)
	if tmpl == nil && req.TreatmentType != "" {
		res.SetCategory(req.TreatmentType)
	}

	return job{
		request:  req,
		template: tmpl,
		input:    res.Input,
		missing:  res.Missing,
		pricing: fabric.Pricing{
			FabricCostPerYard: e.fabricCostPerYard(req, tmpl),
			LaborRate:         e.laborRate(req, tmpl),
		},
	}
}

func findTemplate(templates []fabric.Template, treatmentType string) *fabric.Template {
	if tmpl := fabric.FindTemplate(templates, treatmentType); tmpl != nil {
		return tmpl
	}
	for i := range templates {
		if treatmentType != "" && strings.EqualFold(templates[i].TreatmentCategory, treatmentType) {
			return &templates[i]
		}
	}
	return nil
}

func (e *Estimator) laborRate(req Request, tmpl *fabric.Template) float64 {
	if req.Form.LaborRate != nil {
		return *req.Form.LaborRate
	}
	if tmpl != nil {
		if rate, ok := tmpl.Float(laborRateKeys...); ok {
			return rate
		}
	}
	return e.defaults.LaborRate
}

func (e *Estimator) fabricCostPerYard(req Request, tmpl *fabric.Template) float64 {
	if req.Form.FabricCostPerYard != nil {
		return *req.Form.FabricCostPerYard
	}
	if req.Fabric != nil {
		if price := req.Fabric.PricePerYard(); price > 0 {
			return price
		}
	}
	if tmpl != nil {
		if price, ok := tmpl.Float(fabricCostKeys...); ok {
			return price
		}
	}
	return 0
}
