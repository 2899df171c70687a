// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shoprec/internal/config"
	"github.com/tomtom215/shoprec/internal/database"
	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/engine"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

// trainSummary is the -json form of a training run.
type trainSummary struct {
	RunID      string                `json:"run_id"`
	Users      int                   `json:"users"`
	Items      int                   `json:"items"`
	TrainPairs int                   `json:"train_pairs"`
	EvalPairs  int                   `json:"eval_pairs"`
	BestEpoch  int                   `json:"best_epoch"`
	BPR        recommend.EvalResult  `json:"bprmf"`
	EASE       *recommend.EvalResult `json:"ease,omitempty"`
	EASEError  string                `json:"ease_error,omitempty"`
	Seconds    float64               `json:"seconds"`
}

func newTrainSummary(res *engine.TrainResult) trainSummary {
	s := trainSummary{
		RunID:      res.RunID,
		Users:      res.Users,
		Items:      res.Items,
		TrainPairs: res.TrainPairs,
		EvalPairs:  res.EvalPairs,
		BestEpoch:  res.BestEpoch,
		BPR:        res.BPR,
		EASE:       res.EASE,
		Seconds:    res.Duration.Seconds(),
	}
	if res.EASEErr != nil {
		s.EASEError = res.EASEErr.Error()
	}
	return s
}

func runTrain(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "print the run summary as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	db, err := database.New(&cfg.Data)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "event reader")

	store, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer closeWithLog(store, "artifact store")

	trainer, err := engine.NewTrainer(cfg.Recommend(), db, store, logging.WithComponent("trainer"))
	if err != nil {
		return err
	}

	res, err := trainer.Run(ctx)
	if err != nil {
		return err
	}
	return writeTrainSummary(stdout, newTrainSummary(res), *asJSON)
}

func writeTrainSummary(w io.Writer, s trainSummary, asJSON bool) error {
	if asJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "run %s: %d users, %d items, %d train pairs, %d eval pairs (%.1fs)\n",
		s.RunID, s.Users, s.Items, s.TrainPairs, s.EvalPairs, s.Seconds)
	fmt.Fprintf(w, "BPR-MF best: epoch=%d recall@%d=%.4f ndcg@%d=%.4f\n",
		s.BestEpoch, s.BPR.K, s.BPR.Recall, s.BPR.K, s.BPR.NDCG)
	switch {
	case s.EASE != nil:
		fmt.Fprintf(w, "EASE: recall@%d=%.4f ndcg@%d=%.4f\n",
			s.EASE.K, s.EASE.Recall, s.EASE.K, s.EASE.NDCG)
	case s.EASEError != "":
		fmt.Fprintf(w, "EASE: skipped (%s)\n", s.EASEError)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func closeWithLog(c io.Closer, resource string) {
	if err := c.Close(); err != nil {
		logging.Warn().Err(err).Str("type", resource).Msg("Failed to close resource")
	}
}
