// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import (
	"fmt"
	"strings"
)

// CatalogInfo holds the identifiers a job may refer to.
type CatalogInfo struct {
	TemplateIDs        []string
	TreatmentTypes     []string
	HeadingIDs         []string
	FabricIDs          []string
	OptionIDs          []string
	UnknownOptionRules []string
}

// JobInfo represents job configuration information
type JobInfo struct {
	Name            string
	Active          bool
	TreatmentType   string
	HeadingID       string
	FabricID        string
	SelectedOptions []string
	// Missing names dimensions the job's form leaves unset.
	Missing []string
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration cross-checks jobs against the catalog and returns
// warnings. Inactive jobs are not checked.
func (p *Processor) ValidateConfiguration(catalog CatalogInfo, jobs []JobInfo) []string {
	var warnings []string

	for _, rule := range catalog.UnknownOptionRules {
		warnings = append(warnings, "Option "+rule)
	}

	templates := toSet(catalog.TemplateIDs, false)
	treatmentTypes := toSet(catalog.TreatmentTypes, true)
	headings := toSet(catalog.HeadingIDs, false)
	fabrics := toSet(catalog.FabricIDs, false)
	options := toSet(catalog.OptionIDs, false)

	names := make(map[string]bool)
	active := 0
	for _, job := range jobs {
		if !job.Active {
			continue
		}
		active++

		if names[job.Name] {
			warnings = append(warnings, fmt.Sprintf("Job '%s' is defined more than once", job.Name))
		}
		names[job.Name] = true

		switch {
		case job.TreatmentType == "":
			warnings = append(warnings, fmt.Sprintf("Job '%s' has no treatment type", job.Name))
		case !templates[job.TreatmentType] && !treatmentTypes[strings.ToLower(job.TreatmentType)]:
			warnings = append(warnings, fmt.Sprintf("Job '%s' references unknown treatment type '%s'", job.Name, job.TreatmentType))
		}
		if job.HeadingID != "" && !headings[job.HeadingID] {
			warnings = append(warnings, fmt.Sprintf("Job '%s' references unknown heading '%s'", job.Name, job.HeadingID))
		}
		if job.FabricID != "" && !fabrics[job.FabricID] {
			warnings = append(warnings, fmt.Sprintf("Job '%s' references unknown fabric '%s'", job.Name, job.FabricID))
		}
		for _, id := range job.SelectedOptions {
			if !options[id] {
				warnings = append(warnings, fmt.Sprintf("Job '%s' selects unknown option '%s'", job.Name, id))
			}
		}
		if len(job.Missing) > 0 {
			warnings = append(warnings, fmt.Sprintf("Job '%s' is missing %s", job.Name, strings.Join(job.Missing, ", ")))
		}
	}

	if len(jobs) > 0 && active == 0 {
		warnings = append(warnings, "No active jobs configured")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

func toSet(values []string, fold bool) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if fold {
			v = strings.ToLower(v)
		}
		set[v] = true
	}
	return set
}
