package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"

	"github.com/luandatrans/backoffice/internal/reconcile"
)

const configFilePath = "config.json"

// Config represents the application's configuration structure. Values come
// from config.json with environment-variable overrides.
type Config struct {
	Port            string   `json:"port" mapstructure:"port"`
	GCSBucket       string   `json:"gcs-bucket" mapstructure:"gcs-bucket"`
	BigQueryProject string   `json:"bigquery-project" mapstructure:"bigquery-project"`
	BigQueryDataset string   `json:"bigquery-dataset" mapstructure:"bigquery-dataset"`
	OCRModel        string   `json:"ocr-model" mapstructure:"ocr-model"`
	Tolerance       float64  `json:"tolerance" mapstructure:"tolerance"`
	AgasekePlates   []string `json:"agaseke-plates" mapstructure:"agaseke-plates"`
}

// Load reads configuration from config.json and environment variables.
// Environment variables take precedence over the config file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configFilePath)
	v.SetConfigType("json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("port", "8080")
	v.SetDefault("bigquery-dataset", "fleet")
	v.SetDefault("tolerance", reconcile.DefaultTolerance)

	for _, field := range []string{"port", "gcs-bucket", "bigquery-project", "bigquery-dataset", "ocr-model", "tolerance", "agaseke-plates"} {
		v.BindEnv(field)
	}

	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; everything can come from env vars.
		// A file that exists but fails to parse is still a hard error.
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	// AGASEKE_PLATES as a comma-separated env var.
	if s := v.GetString("agaseke-plates"); s != "" && strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		v.Set("agaseke-plates", parts)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}

	if cfg.Tolerance <= 0 {
		cfg.Tolerance = reconcile.DefaultTolerance
	}

	return &cfg, nil
}
