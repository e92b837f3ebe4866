package costing

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/iwvelando/fabric-estimator/pkg/mathutil"
	"github.com/spf13/cast"
)

// Pricing methods of an add-on option.
const (
	PricingFixed      = "fixed"
	PricingPerMeter   = "per_meter"
	PricingPerSqm     = "per_sqm"
	PricingPerYard    = "per_yard"
	PricingPerPanel   = "per_panel"
	PricingPercentage = "percentage"
	PricingFormula    = "formula"
	PricingInherit    = "inherit"
)

// CanonicalPricingMethod returns the canonical identifier for a pricing method.
// An empty method means the option inherits from its category.
func CanonicalPricingMethod(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	switch trimmed {
	case "":
		return PricingInherit
	case "fixed", "flat", "flat_rate", "fixed_amount":
		return PricingFixed
	case "per_meter", "per-meter", "per_metre", "per-metre", "per_linear_meter", "per_running_meter":
		return PricingPerMeter
	case "per_sqm", "per-sqm", "per_square_meter", "per_m2":
		return PricingPerSqm
	case "per_yard", "per-yard", "per_fabric_yard":
		return PricingPerYard
	case "per_panel", "per-panel", "per_unit", "per-unit", "per_drop":
		return PricingPerPanel
	case "percentage", "percent", "percent_of_fabric":
		return PricingPercentage
	case "formula", "expression":
		return PricingFormula
	case "inherit", "inherited", "parent":
		return PricingInherit
	default:
		return trimmed
	}
}

// IsKnownPricingMethod reports whether a canonical method can be evaluated.
func IsKnownPricingMethod(method string) bool {
	switch method {
	case PricingFixed, PricingPerMeter, PricingPerSqm, PricingPerYard, PricingPerPanel,
		PricingPercentage, PricingFormula, PricingInherit:
		return true
	}
	return false
}

// Option is a selectable add-on such as lining, tiebacks or motorization.
type Option struct {
	ID            string  `mapstructure:"id" yaml:"id" json:"id"`
	Name          string  `mapstructure:"name" yaml:"name" json:"name"`
	CategoryID    string  `mapstructure:"categoryId" yaml:"categoryId,omitempty" json:"categoryId,omitempty"`
	PricingMethod string  `mapstructure:"pricingMethod" yaml:"pricingMethod,omitempty" json:"pricingMethod,omitempty"`
	Price         float64 `mapstructure:"price" yaml:"price,omitempty" json:"price,omitempty"`
	Formula       string  `mapstructure:"formula" yaml:"formula,omitempty" json:"formula,omitempty"`
}

// OptionCategory groups options and supplies pricing they inherit. Categories
// can nest through ParentID.
type OptionCategory struct {
	ID            string  `mapstructure:"id" yaml:"id" json:"id"`
	Name          string  `mapstructure:"name" yaml:"name" json:"name"`
	ParentID      string  `mapstructure:"parentId" yaml:"parentId,omitempty" json:"parentId,omitempty"`
	PricingMethod string  `mapstructure:"pricingMethod" yaml:"pricingMethod,omitempty" json:"pricingMethod,omitempty"`
	Price         float64 `mapstructure:"price" yaml:"price,omitempty" json:"price,omitempty"`
	Formula       string  `mapstructure:"formula" yaml:"formula,omitempty" json:"formula,omitempty"`
}

// OptionCost is one line of the option breakdown.
type OptionCost struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Method string  `json:"method"`
	Cost   float64 `json:"cost"`
}

// MeasurementContext is what option prices are evaluated against.
type MeasurementContext struct {
	RailWidth         float64
	Drop              float64
	Fullness          float64
	FabricWidth       float64
	FabricCostPerYard float64
	FabricCost        float64
	Yards             float64
	Meters            float64
	Sqm               float64
	Quantity          int
}

func (m MeasurementContext) env(price float64) map[string]interface{} {
	return map[string]interface{}{
		"rail_width":           m.RailWidth,
		"drop":                 m.Drop,
		"fullness":             m.Fullness,
		"fabric_width":         m.FabricWidth,
		"fabric_cost_per_yard": m.FabricCostPerYard,
		"fabric_cost":          m.FabricCost,
		"yards":                m.Yards,
		"meters":               m.Meters,
		"sqm":                  m.Sqm,
		"quantity":             float64(m.Quantity),
		"price":                price,
	}
}

// pricing is an option's effective pricing after inheritance.
type pricing struct {
	method  string
	price   float64
	formula string
}

// resolvePricing walks option -> category chain -> template until a concrete
// method is found. Missing prices and formulas are inherited along the way.
func resolvePricing(opt Option, categories []OptionCategory, tmpl *fabric.Template) pricing {
	p := pricing{method: CanonicalPricingMethod(opt.PricingMethod), price: opt.Price, formula: opt.Formula}

	byID := make(map[string]OptionCategory, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	seen := make(map[string]bool)
	next := opt.CategoryID
	for p.method == PricingInherit && next != "" && !seen[next] {
		seen[next] = true
		category, ok := byID[next]
		if !ok {
			break
		}
		p.method = CanonicalPricingMethod(category.PricingMethod)
		if p.price == 0 {
			p.price = category.Price
		}
		if p.formula == "" {
			p.formula = category.Formula
		}
		next = category.ParentID
	}

	if p.method == PricingInherit && tmpl != nil {
		if raw, ok := tmpl.Attributes["option_pricing_method"]; ok {
			p.method = CanonicalPricingMethod(cast.ToString(raw))
		}
	}
	if p.method == PricingInherit {
		p.method = PricingFixed
	}
	return p
}

// EvaluateOption prices one option against the measurement context.
func EvaluateOption(opt Option, m MeasurementContext, categories []OptionCategory, tmpl *fabric.Template) (OptionCost, error) {
	p := resolvePricing(opt, categories, tmpl)
	line := OptionCost{ID: opt.ID, Name: opt.Name, Method: p.method}

	switch p.method {
	case PricingFixed:
		line.Cost = p.price
	case PricingPerMeter:
		line.Cost = p.price * m.RailWidth / constants.CmPerMeter
	case PricingPerSqm:
		line.Cost = p.price * m.RailWidth * m.Drop / constants.SqCmPerSqMeter
	case PricingPerYard:
		line.Cost = p.price * m.Yards
	case PricingPerPanel:
		line.Cost = p.price * float64(max(1, m.Quantity))
	case PricingPercentage:
		line.Cost = mathutil.ApplyPercentage(m.FabricCost, p.price)
	case PricingFormula:
		cost, err := evaluateFormula(p.formula, m.env(p.price))
		if err != nil {
			return line, fmt.Errorf("option %s: %w", opt.ID, err)
		}
		line.Cost = cost
	default:
		return line, fmt.Errorf("option %s: pricing method %q is not supported", opt.ID, p.method)
	}
	return line, nil
}

func evaluateFormula(formula string, env map[string]interface{}) (float64, error) {
	if strings.TrimSpace(formula) == "" {
		return 0, fmt.Errorf("formula pricing requires a formula")
	}
	program, err := expr.Compile(formula, expr.Env(env))
	if err != nil {
		return 0, fmt.Errorf("invalid formula %q: %w", formula, err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("formula %q failed: %w", formula, err)
	}
	value, err := cast.ToFloat64E(out)
	if err != nil {
		return 0, fmt.Errorf("formula %q did not produce a number: %w", formula, err)
	}
	return value, nil
}
