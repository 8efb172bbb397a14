package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/zedigen/internal/anomaly"
	"github.com/gyeh/zedigen/internal/model"
)

const (
	DefaultClaimCount  = 1000
	DefaultAnomalyRate = 0.01
	DefaultFormat      = "x12"
)

// Config holds all runtime configuration for a generation run. The fields
// with yaml tags round-trip through LoadFromFile and SaveToFile; the rest
// only come from flags and the environment. An empty DataDir resolves
// through refdata.DataDir.
type Config struct {
	Seed             *uint64            `yaml:"seed,omitempty"`
	ClaimCount       int                `yaml:"claim_count" validate:"gte=1"`
	AnomalyRate      float64            `yaml:"anomaly_rate" validate:"gte=0,lte=1"`
	OutputPath       string             `yaml:"output_path,omitempty"`
	Format           string             `yaml:"format" validate:"oneof=x12 json json-pretty parquet"`
	DataDir          string             `yaml:"data_dir,omitempty"`
	AnomalyTypeRates map[string]float64 `yaml:"anomaly_type_rates,omitempty" validate:"dive,keys,anomaly_type,endkeys,gte=0,lte=1"`
	LogAnomalies     bool               `yaml:"log_anomalies"`

	DSN       string `yaml:"-"`
	LogFormat string `yaml:"-" validate:"omitempty,oneof=text json"`
	Progress  bool   `yaml:"-"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ClaimCount:  DefaultClaimCount,
		AnomalyRate: DefaultAnomalyRate,
		Format:      DefaultFormat,
		LogFormat:   "text",
	}
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Keys absent from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// SaveToFile writes the persistent fields of c as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	v.RegisterValidation("anomaly_type", func(fl validator.FieldLevel) bool {
		_, ok := model.AnomalyTypeByName(fl.Field().String())
		return ok
	})
	return v
}

// Validate checks value ranges, the output format and anomaly type names.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "anomaly_type":
		return fmt.Sprintf("unknown anomaly type %q", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// AnomalyConfig builds the injector configuration. Type rates given in the
// config override the defaults for those types only.
func (c *Config) AnomalyConfig() (anomaly.Config, error) {
	overrides, err := anomaly.ParseTypeRates(c.AnomalyTypeRates)
	if err != nil {
		return anomaly.Config{}, err
	}
	ac := anomaly.DefaultConfig()
	ac.BaseRate = c.AnomalyRate
	ac.LogAnomalies = c.LogAnomalies
	for t, r := range overrides {
		ac.TypeRates[t] = r
	}
	return ac, nil
}

// ValidateWithDSN checks the config and that a database DSN is set.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or ZEDI_GEN_DB_URL is required")
	}
	return nil
}
