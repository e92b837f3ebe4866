// Package constants provides shared constants for the fabric-estimator application.
package constants

// Unit conversions
const (
	// CmPerYard is the number of centimeters in one yard.
	CmPerYard = 91.44

	// CmPerMeter is the number of centimeters in one meter.
	CmPerMeter = 100.0

	// SqCmPerSqMeter converts cm² to m².
	SqCmPerSqMeter = 10000.0

	// SqYardsPerSqMeter converts m² to square yards.
	SqYardsPerSqMeter = 1.19599

	// YardsPerMeter converts a per-meter price into a per-yard price.
	YardsPerMeter = CmPerMeter / CmPerYard
)

// Fabric and labor constants
const (
	// OrderGranularity is the step that ordered yards and meters are rounded up to.
	OrderGranularity = 0.1

	// SeamLaborHours is the sewing time charged per seam.
	SeamLaborHours = 0.5

	// BaseLaborHours is the fixed make-up time of every treatment.
	BaseLaborHours = 2.0

	// LaborAreaDivisor scales rail width × drop × fullness into extra labor hours.
	LaborAreaDivisor = 25000.0

	// WideFabricThresholdCm is the widest fabric still treated as a vertical (drop-wise) roll.
	WideFabricThresholdCm = 200.0

	// PairPanelCount is the panel count implied by a pair curtain.
	PairPanelCount = 2
)

// Plausible centimeter ranges used for unit-mismatch cautions.
const (
	MinPlausibleDimensionCm   = 10.0
	MaxPlausibleDimensionCm   = 5000.0
	MinPlausibleFabricWidthCm = 50.0
	MaxPlausibleFabricWidthCm = 600.0
)

// Financial constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "jobs.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML job files (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)

// Making-cost integration defaults
const (
	// DefaultMakingCostTimeoutSeconds bounds a single integration request.
	DefaultMakingCostTimeoutSeconds = 10

	// DefaultMakingCostRetries is the number of retries after the first attempt.
	DefaultMakingCostRetries = 2
)
