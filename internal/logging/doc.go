// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

// Package logging provides centralized zerolog-based structured logging for shoprec.
//
// A single global logger is configured once at startup and shared by the
// trainer, the scorer and the CLI. JSON is the default output format; the
// console format is meant for interactive runs.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logging.Info().Int("users", n).Msg("Universe size")
//
// # Training Runs
//
// Each training run gets a run ID that is attached to every log line the
// run produces:
//
//	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())
//	logging.Ctx(ctx).Info().Float64("loss", loss).Msg("BPR-MF epoch")
//
// Always terminate log chains with .Msg() or .Send().
package logging
