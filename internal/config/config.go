// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
	"github.com/tomtom215/shoprec/internal/validation"
)

// Config holds all application configuration
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Training  TrainingConfig  `koanf:"training"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DataConfig describes the pipe-delimited event exports.
//
// Each table lists candidate file names relative to Dir; the first that
// exists is read. This lets a filtered "selection" export take precedence
// over the full export when both are present.
type DataConfig struct {
	Dir       string   `koanf:"dir" validate:"required"`
	Orders    []string `koanf:"orders" validate:"min=1,dive,required"`
	Views     []string `koanf:"views" validate:"min=1,dive,required"`
	Favorites []string `koanf:"favorites" validate:"min=1,dive,required"`

	// Items is the optional catalog used to print item names.
	Items string `koanf:"items"`

	Delimiter string `koanf:"delimiter" validate:"len=1"`

	// ViewItemType is the item-type column value that marks item page views.
	// Empty accepts every view row.
	ViewItemType string `koanf:"view_item_type"`

	Columns ColumnsConfig `koanf:"columns"`
	DuckDB  DuckDBConfig  `koanf:"duckdb"`
}

// ColumnsConfig names the columns shared by the exports.
type ColumnsConfig struct {
	User      string `koanf:"user" validate:"required"`
	Item      string `koanf:"item" validate:"required"`
	Timestamp string `koanf:"timestamp" validate:"required"`
	Quantity  string `koanf:"quantity" validate:"required"`
	ItemType  string `koanf:"item_type" validate:"required"`
	ItemName  string `koanf:"item_name" validate:"required"`
}

// DuckDBConfig tunes the in-process reader.
type DuckDBConfig struct {
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"gte=0"` // 0 = DuckDB default
}

// TrainingConfig holds every scalar of the training job.
type TrainingConfig struct {
	WeightView     float64 `koanf:"weight_view" validate:"gte=0,finite"`
	WeightFavorite float64 `koanf:"weight_favorite" validate:"gte=0,finite"`
	WeightPurchase float64 `koanf:"weight_purchase" validate:"gte=0,finite"`

	Dim             int     `koanf:"dim" validate:"min=1"`
	Epochs          int     `koanf:"epochs" validate:"min=1"`
	BatchSize       int     `koanf:"batch_size" validate:"min=1"`
	LearningRate    float64 `koanf:"learning_rate" validate:"gt=0,finite"`
	WeightDecay     float64 `koanf:"weight_decay" validate:"gte=0,finite"`
	BPRReg          float64 `koanf:"bpr_reg" validate:"gte=0,finite"`
	NegativeRetries int     `koanf:"negative_retries" validate:"gte=0"`
	InitStd         float64 `koanf:"init_std" validate:"gt=0,finite"`
	Seed            int64   `koanf:"seed"`

	TopK                int `koanf:"top_k" validate:"min=1"`
	MinEvalInteractions int `koanf:"min_eval_interactions" validate:"min=1"`

	EASELambda   float64 `koanf:"ease_lambda" validate:"gte=0,finite"`
	EASEMaxItems int     `koanf:"ease_max_items" validate:"min=1"`
}

// ArtifactsConfig selects where trained models are kept.
type ArtifactsConfig struct {
	Backend  string `koanf:"backend" validate:"oneof=file badger"`
	Path     string `koanf:"path" validate:"required"`
	KeepRuns int    `koanf:"keep_runs" validate:"min=1"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig holds metrics exposition settings.
type MetricsConfig struct {
	// TextfilePath, when set, receives the metrics after every command.
	TextfilePath string `koanf:"textfile_path"`
}

// Validate checks struct tags and then the derived training configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %s", recommend.ErrInvalidConfig, err.Error())
	}
	return c.Recommend().Validate()
}

// Recommend converts the training section into the engine configuration.
func (c *Config) Recommend() *recommend.Config {
	t := c.Training
	return &recommend.Config{
		Weights: recommend.EventWeights{
			View:     t.WeightView,
			Favorite: t.WeightFavorite,
			Purchase: t.WeightPurchase,
		},
		ViewItemType: c.Data.ViewItemType,
		BPR: recommend.BPRConfig{
			Dim:             t.Dim,
			Epochs:          t.Epochs,
			BatchSize:       t.BatchSize,
			LearningRate:    t.LearningRate,
			WeightDecay:     t.WeightDecay,
			Reg:             t.BPRReg,
			NegativeRetries: t.NegativeRetries,
			InitStd:         t.InitStd,
		},
		EASE: recommend.EASEConfig{
			Lambda:   t.EASELambda,
			MaxItems: t.EASEMaxItems,
		},
		Eval: recommend.EvalConfig{
			TopK:                t.TopK,
			MinUserInteractions: t.MinEvalInteractions,
		},
		Seed: t.Seed,
	}
}

// StorageOptions returns the artifact store settings.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:  c.Artifacts.Backend,
		Path:     c.Artifacts.Path,
		KeepRuns: c.Artifacts.KeepRuns,
	}
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// ResolveFile returns the first candidate that exists under Dir, or "" when
// none does.
func (d *DataConfig) ResolveFile(candidates []string) string {
	for _, name := range candidates {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.Dir, name)
		}
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
