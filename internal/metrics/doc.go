// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

/*
Package metrics provides Prometheus instrumentation for training and inference.

All collectors are registered with the default registry through promauto.
Training is a batch job, so instead of serving /metrics the CLI writes the
default gatherer to a node-exporter textfile when a path is configured:

	if path := cfg.Metrics.TextfilePath; path != "" {
	    if err := metrics.WriteTextfile(path); err != nil {
	        logging.Warn().Err(err).Msg("Failed to write metrics textfile")
	    }
	}

# Training

  - shoprec_training_runs_total{status}
  - shoprec_training_stage_duration_seconds{stage}
  - shoprec_training_last_success_timestamp_seconds
  - shoprec_event_rows_loaded{source}
  - shoprec_universe_size{kind}
  - shoprec_split_pairs{set}
  - shoprec_bprmf_epochs_total, shoprec_bprmf_epoch_loss, shoprec_bprmf_best_epoch
  - shoprec_eval_recall{model}, shoprec_eval_ndcg{model}
  - shoprec_ease_outcomes_total{outcome}

# Inference

  - shoprec_recommend_requests_total{model,outcome}
  - shoprec_recommend_duration_seconds{model}

Label values are fixed sets; raw user and item ids are never used as labels.
*/
package metrics
