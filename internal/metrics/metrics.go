// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/shoprec/internal/recommend"
)

var (
	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_training_runs_total",
			Help: "Total number of training runs by final status",
		},
		[]string{"status"}, // "success", "failed"
	)

	TrainingStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_training_stage_duration_seconds",
			Help:    "Duration of each training stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.25, 1, 5, 15, 60, 300, 900, 3600},
		},
		[]string{"stage"}, // "load", "aggregate", "split", "bprmf", "ease", "save"
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoprec_training_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	EventRowsLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoprec_event_rows_loaded",
			Help: "Raw event rows loaded in the last training run",
		},
		[]string{"source"}, // "order", "favorite", "view"
	)

	UniverseSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoprec_universe_size",
			Help: "Number of indexed users and items in the last training run",
		},
		[]string{"kind"}, // "users", "items"
	)

	SplitPairs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoprec_split_pairs",
			Help: "Training cells and held-out evaluation pairs in the last split",
		},
		[]string{"set"}, // "train", "eval"
	)

	// BPR-MF Metrics
	BPREpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shoprec_bprmf_epochs_total",
			Help: "Total number of completed BPR-MF epochs",
		},
	)

	BPREpochLoss = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoprec_bprmf_epoch_loss",
			Help: "Mean batch loss of the most recent BPR-MF epoch",
		},
	)

	BPRBestEpoch = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoprec_bprmf_best_epoch",
			Help: "Epoch whose parameters were kept in the last training run",
		},
	)

	// Evaluation Metrics
	EvalRecall = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoprec_eval_recall",
			Help: "Recall@K of the persisted model on the held-out set",
		},
		[]string{"model"},
	)

	EvalNDCG = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoprec_eval_ndcg",
			Help: "NDCG@K of the persisted model on the held-out set",
		},
		[]string{"model"},
	)

	// EASE Metrics
	EASEOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_ease_outcomes_total",
			Help: "EASE solve outcomes",
		},
		[]string{"outcome"}, // "success", "guardrail", "error"
	)

	// Inference Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprec_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"model", "outcome"}, // outcome: "success", "user_not_found", "no_profile", "unavailable", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprec_recommend_duration_seconds",
			Help:    "Duration of recommendation scoring in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"model"},
	)
)

// RecordStage records the duration of one training stage
func RecordStage(stage string, duration time.Duration) {
	TrainingStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordTrainingRun records the outcome of a training run
func RecordTrainingRun(err error) {
	if err != nil {
		TrainingRuns.WithLabelValues("failed").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEventRows records the raw row count per source
func RecordEventRows(orders, favorites, views int) {
	EventRowsLoaded.WithLabelValues(recommend.SourceOrder.String()).Set(float64(orders))
	EventRowsLoaded.WithLabelValues(recommend.SourceFavorite.String()).Set(float64(favorites))
	EventRowsLoaded.WithLabelValues(recommend.SourceView.String()).Set(float64(views))
}

// RecordUniverse records the index and split sizes
func RecordUniverse(users, items, trainPairs, evalPairs int) {
	UniverseSize.WithLabelValues("users").Set(float64(users))
	UniverseSize.WithLabelValues("items").Set(float64(items))
	SplitPairs.WithLabelValues("train").Set(float64(trainPairs))
	SplitPairs.WithLabelValues("eval").Set(float64(evalPairs))
}

// RecordEpoch records one completed BPR-MF epoch
func RecordEpoch(loss float64) {
	BPREpochs.Inc()
	BPREpochLoss.Set(loss)
}

// RecordEvaluation records the held-out metrics of a model
func RecordEvaluation(model string, recall, ndcg float64) {
	EvalRecall.WithLabelValues(model).Set(recall)
	EvalNDCG.WithLabelValues(model).Set(ndcg)
}

// RecordEASEOutcome classifies an EASE solve result
func RecordEASEOutcome(err error) {
	EASEOutcomes.WithLabelValues(easeOutcome(err)).Inc()
}

func easeOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrResourceLimit):
		return "guardrail"
	default:
		return "error"
	}
}

// RecordRecommend records one recommendation request
func RecordRecommend(model recommend.ModelKind, duration time.Duration, err error) {
	RecommendRequests.WithLabelValues(string(model), recommendOutcome(err)).Inc()
	RecommendDuration.WithLabelValues(string(model)).Observe(duration.Seconds())
}

func recommendOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, recommend.ErrNoProfile):
		return "no_profile"
	case errors.Is(err, recommend.ErrEASEUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// WriteTextfile writes every metric in the default gatherer to path in the
// text exposition format, for pickup by the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
