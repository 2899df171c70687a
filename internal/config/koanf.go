// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"shoprec.yaml",
	"shoprec.yml",
	"/etc/shoprec/config.yaml",
	"/etc/shoprec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping.
const envPrefix = "SHOPREC_"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	rec := recommend.DefaultConfig()
	return &Config{
		Data: DataConfig{
			Dir: "ВходныеДанные",
			// Filtered selection exports win over the full exports.
			Orders:       []string{"ЗаказыОтбор.csv", "ЗаказыОригинал.csv"},
			Views:        []string{"ПросмотрыОтбор.csv", "ПросмотрыОригинал.csv"},
			Favorites:    []string{"ИзбранноеОтбор.csv", "ИзбранноеОригинал.csv"},
			Items:        "Номенклатура.csv",
			Delimiter:    "|",
			ViewItemType: "Номенклатура",
			Columns: ColumnsConfig{
				User:      "MindboxID",
				Item:      "КодНоменклатуры",
				Timestamp: "Дата",
				Quantity:  "Количество",
				ItemType:  "ТипТовара",
				ItemName:  "НазваниеНаСайте",
			},
			DuckDB: DuckDBConfig{
				MaxMemory: "",
				Threads:   0,
			},
		},
		Training: TrainingConfig{
			WeightView:          rec.Weights.View,
			WeightFavorite:      rec.Weights.Favorite,
			WeightPurchase:      rec.Weights.Purchase,
			Dim:                 rec.BPR.Dim,
			Epochs:              rec.BPR.Epochs,
			BatchSize:           rec.BPR.BatchSize,
			LearningRate:        rec.BPR.LearningRate,
			WeightDecay:         rec.BPR.WeightDecay,
			BPRReg:              rec.BPR.Reg,
			NegativeRetries:     rec.BPR.NegativeRetries,
			InitStd:             rec.BPR.InitStd,
			Seed:                rec.Seed,
			TopK:                rec.Eval.TopK,
			MinEvalInteractions: rec.Eval.MinUserInteractions,
			EASELambda:          rec.EASE.Lambda,
			EASEMaxItems:        rec.EASE.MaxItems,
		},
		Artifacts: ArtifactsConfig{
			Backend:  storage.BackendFile,
			Path:     "artifacts",
			KeepRuns: storage.DefaultKeepRuns,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			TextfilePath: "",
		},
	}
}

// Load loads configuration using Koanf with layered sources.
//
// Configuration sources (in order of precedence, later overrides earlier):
//  1. Built-in defaults (from defaultConfig())
//  2. Config file: path, else CONFIG_PATH, else the first of DefaultConfigPaths
//  3. Environment variables with the SHOPREC_ prefix
//
// An explicit path that does not exist is an error; a missing search-path
// file is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file if present
	configPath := path
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	} else {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma-separated env values for list fields
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default locations.
// Returns empty string if no config file is found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that should be treated as comma-separated slices.
var sliceConfigPaths = []string{
	"data.orders",
	"data.views",
	"data.favorites",
}

// processSliceFields converts comma-separated string values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps SHOPREC_-stripped, lower-cased variable names to config paths.
var envMappings = map[string]string{
	"data_dir":            "data.dir",
	"orders":              "data.orders",
	"views":               "data.views",
	"favorites":           "data.favorites",
	"items":               "data.items",
	"delimiter":           "data.delimiter",
	"view_item_type":      "data.view_item_type",
	"duckdb_max_memory":   "data.duckdb.max_memory",
	"duckdb_threads":      "data.duckdb.threads",
	"column_user":         "data.columns.user",
	"column_item":         "data.columns.item",
	"column_timestamp":    "data.columns.timestamp",
	"column_quantity":     "data.columns.quantity",
	"column_item_type":    "data.columns.item_type",
	"column_item_name":    "data.columns.item_name",
	"weight_view":         "training.weight_view",
	"weight_favorite":     "training.weight_favorite",
	"weight_purchase":     "training.weight_purchase",
	"dim":                 "training.dim",
	"epochs":              "training.epochs",
	"batch_size":          "training.batch_size",
	"learning_rate":       "training.learning_rate",
	"lr":                  "training.learning_rate",
	"weight_decay":        "training.weight_decay",
	"bpr_reg":             "training.bpr_reg",
	"negative_retries":    "training.negative_retries",
	"init_std":            "training.init_std",
	"seed":                "training.seed",
	"top_k":               "training.top_k",
	"min_eval":            "training.min_eval_interactions",
	"ease_lambda":         "training.ease_lambda",
	"ease_max_items":      "training.ease_max_items",
	"artifacts_backend":   "artifacts.backend",
	"artifacts_path":      "artifacts.path",
	"artifacts_keep_runs": "artifacts.keep_runs",
	"log_level":           "logging.level",
	"log_format":          "logging.format",
	"log_caller":          "logging.caller",
	"metrics_textfile":    "metrics.textfile_path",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	if path, ok := envMappings[key]; ok {
		return path
	}
	return ""
}
