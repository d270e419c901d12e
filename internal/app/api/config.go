package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/pet-crate-sizer/internal/domains/crates/domain"
)

// Config carries the settings shared by the API and worker processes.
type Config struct {
	Port              string
	PostgresDSN       string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
	Audit             AuditConfig
	Formula           domain.Formula
}

// AuditConfig configures the advisory crate auditor and its rate limit.
type AuditConfig struct {
	URL     string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// Enabled reports whether an audit endpoint is configured.
func (c AuditConfig) Enabled() bool {
	return c.URL != ""
}

var configKeys = map[string]string{
	"port":                "PORT",
	"postgres_dsn":        "POSTGRES_DSN",
	"temporal_address":    "TEMPORAL_ADDRESS",
	"temporal_namespace":  "TEMPORAL_NAMESPACE",
	"temporal_disabled":   "TEMPORAL_DISABLED",
	"crate_audit_url":     "CRATE_AUDIT_URL",
	"crate_audit_timeout": "CRATE_AUDIT_TIMEOUT_SECONDS",
	"crate_audit_rps":     "CRATE_AUDIT_RPS",
	"crate_audit_burst":   "CRATE_AUDIT_BURST",
	"crate_formula":       "CRATE_FORMULA",
}

// LoadConfig reads config.yaml from the working directory when present, overlays
// environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	return loadConfig(viper.New(), ".")
}

func loadConfig(v *viper.Viper, searchPaths ...string) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range searchPaths {
		v.AddConfigPath(path)
	}
	setDefaults(v)
	for key, env := range configKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := Config{
		Port:              strings.TrimSpace(v.GetString("port")),
		PostgresDSN:       strings.TrimSpace(v.GetString("postgres_dsn")),
		TemporalAddress:   strings.TrimSpace(v.GetString("temporal_address")),
		TemporalNamespace: strings.TrimSpace(v.GetString("temporal_namespace")),
		TemporalDisabled:  isTruthy(v.GetString("temporal_disabled")),
		Audit: AuditConfig{
			URL:   strings.TrimSpace(v.GetString("crate_audit_url")),
			RPS:   v.GetFloat64("crate_audit_rps"),
			Burst: v.GetInt("crate_audit_burst"),
		},
	}
	if cfg.Port == "" {
		return Config{}, errors.New("PORT must not be empty")
	}
	seconds := v.GetInt("crate_audit_timeout")
	if seconds <= 0 {
		return Config{}, errors.New("CRATE_AUDIT_TIMEOUT_SECONDS must be a positive integer")
	}
	cfg.Audit.Timeout = time.Duration(seconds) * time.Second
	if cfg.Audit.RPS <= 0 || cfg.Audit.Burst <= 0 {
		return Config{}, errors.New("CRATE_AUDIT_RPS and CRATE_AUDIT_BURST must be positive")
	}
	formula, err := domain.ParseFormula(v.GetString("crate_formula"))
	if err != nil {
		return Config{}, fmt.Errorf("CRATE_FORMULA: %w", err)
	}
	cfg.Formula = formula
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("temporal_address", client.DefaultHostPort)
	v.SetDefault("temporal_namespace", client.DefaultNamespace)
	v.SetDefault("temporal_disabled", "false")
	v.SetDefault("crate_audit_timeout", 20)
	v.SetDefault("crate_audit_rps", 1.0)
	v.SetDefault("crate_audit_burst", 5)
	v.SetDefault("crate_formula", string(domain.FormulaHeadClearance))
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
