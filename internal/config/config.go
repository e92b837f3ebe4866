// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/fabric-estimator/internal/costing"
	"github.com/iwvelando/fabric-estimator/internal/fabric"
	"github.com/iwvelando/fabric-estimator/internal/makingcost"
	"github.com/iwvelando/fabric-estimator/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for fabric-estimator.
type Configuration struct {
	Logging    LoggingConfig     `yaml:"logging,omitempty"`
	Output     OutputConfig      `yaml:"output,omitempty"`
	Pricing    costing.Defaults  `yaml:"pricing,omitempty"`
	MakingCost makingcost.Config `yaml:"makingCost,omitempty"`
	Catalog    Catalog           `yaml:"catalog"`
	Jobs       []Job             `yaml:"jobs"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Catalog holds the records jobs refer to by id.
type Catalog struct {
	Templates        []fabric.Template        `yaml:"templates"`
	Headings         []fabric.Heading         `yaml:"headings,omitempty"`
	Fabrics          []fabric.FabricItem      `yaml:"fabrics,omitempty"`
	Options          []costing.Option         `yaml:"options,omitempty"`
	OptionCategories []costing.OptionCategory `mapstructure:"optionCategories" yaml:"optionCategories,omitempty"`
}

// Job is one treatment to estimate.
type Job struct {
	Name          string
	Active        bool
	TreatmentType string          `mapstructure:"treatmentType" yaml:"treatmentType"`
	HeadingID     string          `mapstructure:"headingId" yaml:"headingId,omitempty"`
	FabricID      string          `mapstructure:"fabricId" yaml:"fabricId,omitempty"`
	Form          fabric.FormData `yaml:"form"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	v.SetDefault("makingCost.timeout", constants.DefaultMakingCostTimeoutSeconds*time.Second)
	v.SetDefault("makingCost.retries", constants.DefaultMakingCostRetries)

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.Normalize()
	return &configuration, nil
}

// Normalize canonicalizes free-form identifiers in place.
func (c *Configuration) Normalize() {
	for i := range c.Catalog.Options {
		c.Catalog.Options[i].PricingMethod = costing.CanonicalPricingMethod(c.Catalog.Options[i].PricingMethod)
	}
	for i := range c.Catalog.OptionCategories {
		c.Catalog.OptionCategories[i].PricingMethod = costing.CanonicalPricingMethod(c.Catalog.OptionCategories[i].PricingMethod)
	}
	for i := range c.Catalog.Fabrics {
		if o, ok := fabric.ParseOrientation(c.Catalog.Fabrics[i].RollDirection); ok {
			c.Catalog.Fabrics[i].RollDirection = string(o)
		}
	}
	for i := range c.Jobs {
		if o, ok := fabric.ParseOrientation(c.Jobs[i].Form.FabricOrientation); ok {
			c.Jobs[i].Form.FabricOrientation = string(o)
		}
	}
}

// FindHeading returns the heading with the given id, or nil.
func (c *Configuration) FindHeading(id string) *fabric.Heading {
	if id == "" {
		return nil
	}
	for i := range c.Catalog.Headings {
		if c.Catalog.Headings[i].ID == id {
			return &c.Catalog.Headings[i]
		}
	}
	return nil
}

// FindFabric returns the fabric item with the given id, or nil.
func (c *Configuration) FindFabric(id string) *fabric.FabricItem {
	if id == "" {
		return nil
	}
	for i := range c.Catalog.Fabrics {
		if c.Catalog.Fabrics[i].ID == id {
			return &c.Catalog.Fabrics[i]
		}
	}
	return nil
}

// CostRequest builds the costing request of one job.
func (c *Configuration) CostRequest(job Job) costing.Request {
	return costing.Request{
		Form:          job.Form,
		Options:       c.Catalog.Options,
		Templates:     c.Catalog.Templates,
		TreatmentType: job.TreatmentType,
		Categories:    c.Catalog.OptionCategories,
		Fabric:        c.FindFabric(job.FabricID),
		Heading:       c.FindHeading(job.HeadingID),
	}
}
