// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/shoprec/internal/config"
	"github.com/tomtom215/shoprec/internal/database"
	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/engine"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

// recommendation is one printed result.
type recommendation struct {
	Rank   int     `json:"rank"`
	ItemID string  `json:"item_id"`
	Name   string  `json:"name,omitempty"`
	Score  float64 `json:"score"`
}

// recommendOutput is the -json form of a recommend call.
type recommendOutput struct {
	UserID string              `json:"user_id"`
	Model  recommend.ModelKind `json:"model"`
	K      int                 `json:"k"`
	Items  []recommendation    `json:"items"`
}

func runRecommend(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	userID := fs.String("user", "", "raw user id (required)")
	k := fs.Int("k", cfg.Training.TopK, "number of items to return")
	modelName := fs.String("model", string(recommend.ModelEASE), "scoring model: ease or bprmf")
	diversity := fs.Float64("diversity", 1, "MMR lambda in [0,1]; 1 disables diversity reranking")
	asJSON := fs.Bool("json", false, "print results as JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	user := strings.TrimSpace(*userID)
	if user == "" {
		fmt.Fprintln(stderr, "recommend: -user is required")
		fs.Usage()
		return errUsage
	}
	model, ok := recommend.ParseModelKind(*modelName)
	if !ok {
		fmt.Fprintf(stderr, "recommend: unknown model %q (want ease or bprmf)\n", *modelName)
		return errUsage
	}

	ctx = logging.ContextWithLogger(ctx, logging.WithComponent("recommend"))

	store, err := storage.Open(cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer closeWithLog(store, "artifact store")

	scorer, err := engine.LoadScorer(ctx, store)
	if err != nil {
		return err
	}

	db, err := database.New(&cfg.Data)
	if err != nil {
		return err
	}
	defer closeWithLog(db, "event reader")

	tables, err := db.LoadEvents(ctx)
	if err != nil {
		return err
	}

	// Profiles are weighted the way the model was trained.
	recCfg := cfg.Recommend()
	if trained := scorer.Manifest().Config; trained != nil {
		recCfg = trained
	}
	profile := recommend.BuildProfile(tables, scorer.Index(), recCfg, user)

	items, err := scorer.RecommendDiverse(ctx, user, model, *k, profile, *diversity)
	if err != nil {
		return describeRecommendError(err, user, model)
	}

	names, err := db.LoadItemNames(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Item names unavailable")
		names = nil
	}

	out := recommendOutput{UserID: user, Model: model, K: *k, Items: make([]recommendation, len(items))}
	for i, it := range items {
		out.Items[i] = recommendation{Rank: i + 1, ItemID: it.ItemID, Name: names[it.ItemID], Score: it.Score}
	}

	if *asJSON {
		return writeJSON(stdout, out)
	}
	writeRecommendations(stdout, &out)
	return nil
}

// describeRecommendError adds the user and model to the expected failures.
func describeRecommendError(err error, user string, model recommend.ModelKind) error {
	switch {
	case errors.Is(err, recommend.ErrUserNotFound):
		return fmt.Errorf("user %s is not in the trained index: %w", user, err)
	case errors.Is(err, recommend.ErrNoProfile):
		return fmt.Errorf("user %s has no known items for %s: %w", user, model, err)
	case errors.Is(err, recommend.ErrEASEUnavailable):
		return fmt.Errorf("%w; use -model bprmf or retrain", err)
	}
	return err
}

func writeRecommendations(w io.Writer, out *recommendOutput) {
	label := "BPR-MF"
	if out.Model == recommend.ModelEASE {
		label = "EASE"
	}
	fmt.Fprintf(w, "Recommendations (%s) for %s top%d:\n", label, out.UserID, out.K)
	for _, it := range out.Items {
		if it.Name != "" {
			fmt.Fprintf(w, "%02d. %s | %s | score=%.4f\n", it.Rank, it.ItemID, it.Name, it.Score)
			continue
		}
		fmt.Fprintf(w, "%02d. %s | score=%.4f\n", it.Rank, it.ItemID, it.Score)
	}
}
