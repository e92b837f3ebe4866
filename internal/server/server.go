package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/fabric-estimator/internal/config"
	"github.com/iwvelando/fabric-estimator/internal/costing"
	"github.com/iwvelando/fabric-estimator/internal/estimate"
	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/iwvelando/fabric-estimator/pkg/output"
	"github.com/iwvelando/fabric-estimator/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options configure the API handler.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Catalog supplies templates, headings, fabrics, options and pricing
	// defaults for requests that do not carry their own. May be nil.
	Catalog *config.Configuration
	// Integration prices templates linked to a making cost. May be nil.
	Integration costing.MakingCostIntegration
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	catalog       config.Configuration
	integration   costing.MakingCostIntegration
	estimator     *costing.Estimator
}

// NewHandler constructs the HTTP handler that serves the estimation API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		integration:   opts.Integration,
	}
	if opts.Catalog != nil {
		h.catalog = *opts.Catalog
	}
	h.estimator = costing.NewEstimator(logger, opts.Integration, h.catalog.Pricing)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/usage", h.handleUsage)
		r.Post("/orientation", h.handleOrientation)
		r.Post("/costs", h.handleCosts)
		r.Post("/estimate", h.handleEstimate)
		r.Get("/version", h.handleVersion)
	})

	return r
}

// treatmentRequest is the JSON body shared by the single-treatment endpoints.
// Catalog records may be referenced by id or supplied inline.
type treatmentRequest struct {
	TreatmentType string                   `json:"treatmentType"`
	Form          fabric.FormData          `json:"form"`
	HeadingID     string                   `json:"headingId,omitempty"`
	FabricID      string                   `json:"fabricId,omitempty"`
	Heading       *fabric.Heading          `json:"heading,omitempty"`
	Fabric        *fabric.FabricItem       `json:"fabric,omitempty"`
	Templates     []fabric.Template        `json:"templates,omitempty"`
	Options       []costing.Option         `json:"options,omitempty"`
	Categories    []costing.OptionCategory `json:"optionCategories,omitempty"`
	Orientation   string                   `json:"orientation,omitempty"`
}

type usageResponse struct {
	Usage   fabric.UsageResult `json:"usage"`
	Missing []string           `json:"missing,omitempty"`
}

type orientationResponse struct {
	Result  fabric.OrientationResult `json:"result"`
	Missing []string                 `json:"missing,omitempty"`
}

type estimateResponse struct {
	Estimates []estimate.Estimate `json:"estimates"`
	CSV       string              `json:"csv"`
	Warnings  []string            `json:"warnings,omitempty"`
	Duration  string              `json:"duration"`
}

func (h *handler) handleUsage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUsage"
	req, ok := h.decodeTreatment(w, r, op)
	if !ok {
		return
	}

	usage, missing := h.estimator.CalculateUsage(req)
	h.writeJSON(w, http.StatusOK, usageResponse{Usage: usage, Missing: missing})
}

func (h *handler) handleOrientation(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOrientation"
	var body treatmentRequest
	if !h.decodeJSON(w, r, &body, op) {
		return
	}

	orientation, ok := fabric.ParseOrientation(body.Orientation)
	if !ok {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("orientation must be vertical or horizontal, got %q", body.Orientation), op)
		return
	}
	req, err := h.buildRequest(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, missing := h.estimator.CalculateOrientation(req, orientation)
	h.writeJSON(w, http.StatusOK, orientationResponse{Result: result, Missing: missing})
}

func (h *handler) handleCosts(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCosts"
	req, ok := h.decodeTreatment(w, r, op)
	if !ok {
		return
	}

	summary := h.estimator.CalculateCosts(r.Context(), req)
	h.logger.Info("treatment costed",
		zap.String("op", op),
		zap.String("requestId", middleware.GetReqID(r.Context())),
		zap.String("treatmentType", req.TreatmentType),
		zap.String("source", summary.Source),
		zap.String("total", summary.TotalCost),
	)
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEstimate"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing job file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read job file: %v", err), op)
		return
	}
	if _, err := decodeYAMLToMap(buf.Bytes()); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading job file, %v", err), op)
		return
	}

	conf, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.mergeCatalog(conf)

	warnings := conf.ValidateConfiguration()
	results, err := estimate.GetEstimates(r.Context(), h.logger, *conf, h.integration)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to compute estimates: %v", err), op)
		return
	}
	if results == nil {
		results = []estimate.Estimate{}
	}

	elapsed := time.Since(start)
	h.logger.Info("estimates computed",
		zap.String("op", op),
		zap.String("requestId", middleware.GetReqID(r.Context())),
		zap.Int("jobs", len(results)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, estimateResponse{
		Estimates: results,
		CSV:       output.CsvString(results),
		Warnings:  warnings,
		Duration:  elapsed.String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// mergeCatalog fills the parts of an uploaded job file's catalog that it
// leaves empty from the server catalog. Making-cost connection settings are
// never taken from uploads.
func (h *handler) mergeCatalog(conf *config.Configuration) {
	if len(conf.Catalog.Templates) == 0 {
		conf.Catalog.Templates = h.catalog.Catalog.Templates
	}
	if len(conf.Catalog.Headings) == 0 {
		conf.Catalog.Headings = h.catalog.Catalog.Headings
	}
	if len(conf.Catalog.Fabrics) == 0 {
		conf.Catalog.Fabrics = h.catalog.Catalog.Fabrics
	}
	if len(conf.Catalog.Options) == 0 {
		conf.Catalog.Options = h.catalog.Catalog.Options
	}
	if len(conf.Catalog.OptionCategories) == 0 {
		conf.Catalog.OptionCategories = h.catalog.Catalog.OptionCategories
	}
	if conf.Pricing.LaborRate == 0 {
		conf.Pricing = h.catalog.Pricing
	}
}

func (h *handler) decodeTreatment(w http.ResponseWriter, r *http.Request, op string) (costing.Request, bool) {
	var body treatmentRequest
	if !h.decodeJSON(w, r, &body, op) {
		return costing.Request{}, false
	}
	req, err := h.buildRequest(body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return costing.Request{}, false
	}
	return req, true
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

// buildRequest validates the form and resolves catalog references.
func (h *handler) buildRequest(body treatmentRequest) (costing.Request, error) {
	form := body.Form
	if err := validation.ValidateMeasurements(
		validation.Measurement{Name: "railWidth", Value: form.RailWidth},
		validation.Measurement{Name: "drop", Value: form.Drop},
		validation.Measurement{Name: "fabricWidth", Value: form.FabricWidth},
		validation.Measurement{Name: "headingFullness", Value: form.HeadingFullness},
		validation.Measurement{Name: "pooling", Value: form.Pooling},
		validation.Measurement{Name: "headerHem", Value: form.HeaderHem},
		validation.Measurement{Name: "bottomHem", Value: form.BottomHem},
		validation.Measurement{Name: "sideHem", Value: form.SideHem},
		validation.Measurement{Name: "seamHem", Value: form.SeamHem},
		validation.Measurement{Name: "fabricCostPerYard", Value: form.FabricCostPerYard},
		validation.Measurement{Name: "laborRate", Value: form.LaborRate},
	); err != nil {
		return costing.Request{}, err
	}
	if err := validation.ValidateQuantity(form.Quantity); err != nil {
		return costing.Request{}, err
	}

	req := costing.Request{
		Form:          form,
		TreatmentType: body.TreatmentType,
		Templates:     body.Templates,
		Options:       body.Options,
		Categories:    body.Categories,
		Heading:       body.Heading,
		Fabric:        body.Fabric,
	}
	if len(req.Templates) == 0 {
		req.Templates = h.catalog.Catalog.Templates
	}
	if len(req.Options) == 0 {
		req.Options = h.catalog.Catalog.Options
	}
	if len(req.Categories) == 0 {
		req.Categories = h.catalog.Catalog.OptionCategories
	}
	if req.Heading == nil && body.HeadingID != "" {
		if req.Heading = h.catalog.FindHeading(body.HeadingID); req.Heading == nil {
			return costing.Request{}, fmt.Errorf("unknown heading %q", body.HeadingID)
		}
	}
	if req.Fabric == nil && body.FabricID != "" {
		if req.Fabric = h.catalog.FindFabric(body.FabricID); req.Fabric == nil {
			return costing.Request{}, fmt.Errorf("unknown fabric %q", body.FabricID)
		}
	}
	return req, nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
