// Package output provides utilities for formatting and displaying estimate results.
package output

import (
	"fmt"
	"strings"

	"github.com/iwvelando/fabric-estimator/internal/estimate"
	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/pkg/format"
	"github.com/spf13/cast"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []estimate.Estimate) {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		s := result.Summary
		u := s.Usage
		fmt.Printf("--- Estimate for job %s (%s) ---\n", result.Name, result.TreatmentType)
		fmt.Printf("Orientation | Yards | Meters | Widths | Seams\n")
		fmt.Printf("___________ | _____ | ______ | ______ | _____\n")
		_, _ = p.Printf("%s | %.1f | %.1f | %d | %d\n", orientationLabel(u.FabricOrientation), u.Yards, u.Meters, u.WidthsRequired, u.SeamsRequired)
		if u.TotalLengthCm > 0 {
			fmt.Printf("Cut length | %s\n", format.Length(u.TotalLengthCm))
		}
		if u.CostComparison != nil {
			fmt.Printf("Vertical %s vs horizontal %s, %s saves %s\n",
				format.Currency(u.CostComparison.VerticalCost), format.Currency(u.CostComparison.HorizontalCost),
				u.CostComparison.Recommended, format.Currency(u.CostComparison.Savings))
		}
		fmt.Printf("Fabric     | %s\n", money(s.FabricCost))
		fmt.Printf("Options    | %s\n", money(s.OptionsCost))
		for _, line := range s.OptionBreakdown {
			fmt.Printf("  %s (%s) | %s\n", line.Name, line.Method, format.Currency(line.Cost))
		}
		fmt.Printf("Labor      | %s\n", money(s.LaborCost))
		fmt.Printf("Total      | %s\n", money(s.TotalCost))
		fmt.Printf("Unit price | %s x %d\n", money(s.UnitPrice), s.Quantity)
		if len(s.Warnings) > 0 {
			fmt.Printf("Warnings   | %s\n", strings.Join(s.Warnings, "; "))
		}
		if len(results) > 1 {
			fmt.Printf("\n")
		}
	}
}

// money renders a decimal summary amount such as "1023.50" for display.
func money(amount string) string {
	return format.Currency(cast.ToFloat64(amount))
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []estimate.Estimate) {
	fmt.Print(CsvString(results))
}

// CsvString renders results as comma-separated values, one row per job.
func CsvString(results []estimate.Estimate) string {
	var b strings.Builder
	b.WriteString(`"job","treatment","orientation","yards","meters","widths","seams","fabric cost","options cost","labor cost","total cost","unit price","quantity","source","warnings"`)
	b.WriteString("\n")
	for _, result := range results {
		s := result.Summary
		u := s.Usage
		fmt.Fprintf(&b, `"%s","%s","%s","%.1f","%.1f","%d","%d","%s","%s","%s","%s","%s","%d","%s","%s"`,
			quote(result.Name), quote(result.TreatmentType), orientationLabel(u.FabricOrientation),
			u.Yards, u.Meters, u.WidthsRequired, u.SeamsRequired,
			s.FabricCost, s.OptionsCost, s.LaborCost, s.TotalCost, s.UnitPrice, s.Quantity,
			s.Source, quote(strings.Join(s.Warnings, "; ")))
		b.WriteString("\n")
	}
	return b.String()
}

func orientationLabel(o fabric.Orientation) string {
	switch o {
	case "":
		return "n/a"
	case fabric.AreaBased:
		return "area"
	}
	return string(o)
}

func quote(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}
