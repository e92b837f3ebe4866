// Package makingcost is a client for the external making-cost integration,
// which prices a treatment from a template-specific formula held outside
// this service.
package makingcost

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const calculatePath = "/v1/making-cost/calculate"

// Measurements are the resolved dimensions sent to the integration, in cm.
type Measurements struct {
	RailWidth   float64 `json:"railWidth"`
	Drop        float64 `json:"drop"`
	FabricWidth float64 `json:"fabricWidth"`
	Fullness    float64 `json:"fullness,omitempty"`
	Quantity    int     `json:"quantity"`
	Pooling     float64 `json:"pooling,omitempty"`
	HeaderHem   float64 `json:"headerHem,omitempty"`
	BottomHem   float64 `json:"bottomHem,omitempty"`
	SideHem     float64 `json:"sideHem,omitempty"`
	SeamHem     float64 `json:"seamHem,omitempty"`
	ReturnLeft  float64 `json:"returnLeft,omitempty"`
	ReturnRight float64 `json:"returnRight,omitempty"`
	Overlap     float64 `json:"overlap,omitempty"`
	Orientation string  `json:"orientation,omitempty"`
}

// FabricDetails describes the selected fabric.
type FabricDetails struct {
	ID                      string  `json:"id,omitempty"`
	Name                    string  `json:"name,omitempty"`
	FabricWidth             float64 `json:"fabricWidth"`
	CostPerYard             float64 `json:"costPerYard"`
	VerticalPatternRepeat   float64 `json:"verticalPatternRepeat,omitempty"`
	HorizontalPatternRepeat float64 `json:"horizontalPatternRepeat,omitempty"`
}

// Request asks the integration to price one treatment.
type Request struct {
	WindowCoveringID string         `json:"windowCoveringId"`
	MakingCostID     string         `json:"makingCostId"`
	Measurements     Measurements   `json:"measurements"`
	SelectedOptions  []string       `json:"selectedOptions"`
	FabricDetails    *FabricDetails `json:"fabricDetails,omitempty"`
}

// FabricUsage is the integration's view of fabric consumption.
type FabricUsage struct {
	Yards          float64 `json:"yards"`
	Meters         float64 `json:"meters"`
	Orientation    string  `json:"orientation"`
	SeamsRequired  int     `json:"seamsRequired"`
	SeamLaborHours float64 `json:"seamLaborHours"`
	WidthsRequired int     `json:"widthsRequired"`
}

// Costs are the monetary results of the integration.
type Costs struct {
	FabricCost            float64 `json:"fabricCost"`
	LaborCost             float64 `json:"laborCost"`
	MakingCost            float64 `json:"makingCost"`
	AdditionalOptionsCost float64 `json:"additionalOptionsCost"`
	TotalCost             float64 `json:"totalCost"`
}

// BreakdownItem is one itemized line of the integration's costing.
type BreakdownItem struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// Response is the integration's answer.
type Response struct {
	FabricUsage FabricUsage     `json:"fabricUsage"`
	Costs       Costs           `json:"costs"`
	Breakdown   []BreakdownItem `json:"breakdown"`
	Warnings    []string        `json:"warnings"`
}

// StatusError is returned when the integration answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("making-cost integration returned %d: %s", e.StatusCode, e.Body)
}

// Config holds connection settings for the integration.
type Config struct {
	BaseURL string        `mapstructure:"baseUrl" yaml:"baseUrl,omitempty"`
	APIKey  string        `mapstructure:"apiKey" yaml:"apiKey,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Retries uint64        `mapstructure:"retries" yaml:"retries,omitempty"`
}

// Client talks to the making-cost integration over HTTP.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	endpoint   string
	apiKey     string
	retries    uint64
	backoff    time.Duration
}

// NewClient validates cfg and builds a Client.
func NewClient(logger *zap.Logger, cfg Config) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("making-cost base URL cannot be empty")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid making-cost base URL %q: %w", cfg.BaseURL, err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultMakingCostTimeoutSeconds * time.Second
	}

	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   base + calculatePath,
		apiKey:     cfg.APIKey,
		retries:    cfg.Retries,
		backoff:    200 * time.Millisecond,
	}, nil
}

// Calculate prices one treatment. Transport errors and 5xx answers are retried.
func (c *Client) Calculate(ctx context.Context, req Request) (*Response, error) {
	if req.MakingCostID == "" {
		return nil, fmt.Errorf("making-cost id cannot be empty")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode making-cost request: %w", err)
	}

	requestID := uuid.NewString()
	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))

	var result *Response
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		resp, err := c.do(ctx, requestID, payload)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.StatusCode < http.StatusInternalServerError {
				return err
			}
			c.logger.Debug("making-cost attempt failed",
				zap.String("op", "makingcost.Calculate"),
				zap.String("requestId", requestID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		result = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("making-cost %s: %w", req.MakingCostID, err)
	}

	c.logger.Debug("making-cost calculated",
		zap.String("op", "makingcost.Calculate"),
		zap.String("requestId", requestID),
		zap.String("makingCostId", req.MakingCostID),
		zap.Float64("totalCost", result.Costs.TotalCost),
	)
	return result, nil
}

func (c *Client) do(ctx context.Context, requestID string, payload []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read making-cost response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode making-cost response: %w", err)
	}
	return &out, nil
}
