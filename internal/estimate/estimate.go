// Package estimate defines the data structures related to a batch of
// treatment estimates and includes functions for computing them.
package estimate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iwvelando/fabric-estimator/internal/config"
	"github.com/iwvelando/fabric-estimator/internal/costing"
	"github.com/iwvelando/fabric-estimator/internal/makingcost"
	"go.uber.org/zap"
)

// Estimate holds the costed result of one job.
type Estimate struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	TreatmentType string              `json:"treatmentType"`
	Summary       costing.CostSummary `json:"summary"`
}

// NewIntegration builds the making-cost client when one is configured. It
// returns nil, nil when no base URL is set.
func NewIntegration(logger *zap.Logger, cfg makingcost.Config) (costing.MakingCostIntegration, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, nil
	}
	client, err := makingcost.NewClient(logger, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetEstimates prices every active job in the configuration.
func GetEstimates(ctx context.Context, logger *zap.Logger, conf config.Configuration, integration costing.MakingCostIntegration) ([]Estimate, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	estimator := costing.NewEstimator(logger, integration, conf.Pricing)

	var results []Estimate
	for _, job := range conf.Jobs {
		if !job.Active {
			logger.Debug(fmt.Sprintf("skipping job %s because it is inactive", job.Name),
				zap.String("op", "estimate.GetEstimates"),
			)
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		summary := estimator.CalculateCosts(ctx, conf.CostRequest(job))
		for _, warning := range summary.Warnings {
			logger.Debug(fmt.Sprintf("job %s: %s", job.Name, warning),
				zap.String("op", "estimate.GetEstimates"),
			)
		}

		results = append(results, Estimate{
			ID:            uuid.NewString(),
			Name:          job.Name,
			TreatmentType: job.TreatmentType,
			Summary:       summary,
		})
	}

	return results, nil
}
