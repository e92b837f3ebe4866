package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/fabric-estimator/internal/costing"
	"github.com/iwvelando/fabric-estimator/pkg/configprocessor"
)

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	catalog := configprocessor.CatalogInfo{}
	for _, tmpl := range c.Catalog.Templates {
		catalog.TemplateIDs = append(catalog.TemplateIDs, tmpl.ID)
		if tmpl.TreatmentCategory != "" {
			catalog.TreatmentTypes = append(catalog.TreatmentTypes, tmpl.TreatmentCategory)
		}
	}
	for _, heading := range c.Catalog.Headings {
		catalog.HeadingIDs = append(catalog.HeadingIDs, heading.ID)
	}
	for _, item := range c.Catalog.Fabrics {
		catalog.FabricIDs = append(catalog.FabricIDs, item.ID)
	}
	for _, opt := range c.Catalog.Options {
		catalog.OptionIDs = append(catalog.OptionIDs, opt.ID)
		catalog.UnknownOptionRules = append(catalog.UnknownOptionRules, optionRuleProblems(opt)...)
	}

	jobs := make([]configprocessor.JobInfo, 0, len(c.Jobs))
	for _, job := range c.Jobs {
		jobs = append(jobs, configprocessor.JobInfo{
			Name:            job.Name,
			Active:          job.Active,
			TreatmentType:   job.TreatmentType,
			HeadingID:       job.HeadingID,
			FabricID:        job.FabricID,
			SelectedOptions: job.Form.SelectedOptions,
			Missing:         missingDimensions(job),
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(catalog, jobs)
}

func optionRuleProblems(opt costing.Option) []string {
	method := costing.CanonicalPricingMethod(opt.PricingMethod)
	switch {
	case !costing.IsKnownPricingMethod(method):
		return []string{fmt.Sprintf("'%s' uses unsupported pricing method '%s'", opt.ID, opt.PricingMethod)}
	case method == costing.PricingFormula && strings.TrimSpace(opt.Formula) == "":
		return []string{fmt.Sprintf("'%s' uses formula pricing without a formula", opt.ID)}
	}
	return nil
}

func missingDimensions(job Job) []string {
	var missing []string
	if job.Form.RailWidth == nil || *job.Form.RailWidth <= 0 {
		missing = append(missing, "railWidth")
	}
	if job.Form.Drop == nil || *job.Form.Drop <= 0 {
		missing = append(missing, "drop")
	}
	return missing
}
