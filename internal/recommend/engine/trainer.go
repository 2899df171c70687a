// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/shoprec/internal/logging"
	"github.com/tomtom215/shoprec/internal/metrics"
	"github.com/tomtom215/shoprec/internal/recommend"
	"github.com/tomtom215/shoprec/internal/recommend/algorithms"
	"github.com/tomtom215/shoprec/internal/recommend/storage"
)

// TrainResult summarizes a training run.
type TrainResult struct {
	RunID      string
	Users      int
	Items      int
	TrainPairs int
	EvalPairs  int

	// BestEpoch is the 1-based BPR-MF epoch that was persisted.
	BestEpoch int
	BPR       recommend.EvalResult
	History   []algorithms.EpochStats

	// EASE is nil when EASEErr is set.
	EASE    *recommend.EvalResult
	EASEErr error

	Duration time.Duration
}

// Trainer runs the offline training job.
type Trainer struct {
	cfg    *recommend.Config
	loader recommend.EventLoader
	store  storage.Store
	logger zerolog.Logger
}

// NewTrainer creates a trainer. cfg is copied.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg *recommend.Config, loader recommend.EventLoader, store storage.Store, logger zerolog.Logger) (*Trainer, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, errors.New("event loader is required")
	}
	if store == nil {
		return nil, errors.New("artifact store is required")
	}
	return &Trainer{
		cfg:    cfg.Clone(),
		loader: loader,
		store:  store,
		logger: logger,
	}, nil
}

// Run loads events, trains both models and replaces the stored artifact set.
func (t *Trainer) Run(ctx context.Context) (*TrainResult, error) {
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.ContextWithRunID(ctx, runID)
	}
	// The loader and store log through ctx.
	ctx = logging.ContextWithLogger(ctx, t.logger)
	logger := *logging.Ctx(ctx)

	result, err := t.run(ctx, logger)
	metrics.RecordTrainingRun(err)
	if err != nil {
		logger.Error().Err(err).Msg("Training failed")
		return nil, err
	}
	return result, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (t *Trainer) run(ctx context.Context, logger zerolog.Logger) (*TrainResult, error) {
	start := time.Now()

	stageStart := time.Now()
	tables, err := t.loader.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	metrics.RecordStage("load", time.Since(stageStart))
	metrics.RecordEventRows(len(tables.Orders), len(tables.Favorites), len(tables.Views))
	logger.Info().
		Int("orders", len(tables.Orders)).
		Int("favorites", len(tables.Favorites)).
		Int("views", len(tables.Views)).
		Msg("Loaded event rows")

	arts, result, err := Fit(ctx, tables, t.cfg, logger)
	if err != nil {
		return nil, err
	}

	stageStart = time.Now()
	if err := t.store.Save(ctx, arts); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}
	metrics.RecordStage("save", time.Since(stageStart))
	if arts.EASE == nil && result.EASE != nil {
		result.EASE = nil
		result.EASEErr = errors.New(arts.Manifest.EASEError)
	}

	result.Duration = time.Since(start)
	logger.Info().
		Bool("ease", arts.EASE != nil).
		Dur("duration", result.Duration).
		Msg("Artifacts saved")

	return result, nil
}

// Fit trains on already-loaded tables and returns the artifact set without
// persisting it. The run id is taken from ctx, or generated.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Fit(ctx context.Context, tables *recommend.EventTables, cfg *recommend.Config, logger zerolog.Logger) (*storage.Artifacts, *TrainResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	runID := logging.RunIDFromContext(ctx)
	if runID == "" {
		runID = logging.NewRunID()
	}
	trainedAt := time.Now().UTC()

	stageStart := time.Now()
	idx := recommend.BuildIndex(tables, cfg.ViewItemType)
	logger.Info().
		Int("users", idx.NumUsers()).
		Int("items", idx.NumItems()).
		Msg("Universe sizes")

	events, err := recommend.Aggregate(tables, idx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("aggregate events: %w", err)
	}
	metrics.RecordStage("aggregate", time.Since(stageStart))

	stageStart = time.Now()
	split, err := recommend.SplitEvents(events, idx.NumUsers(), idx.NumItems(), cfg.Eval.MinUserInteractions)
	if err != nil {
		return nil, nil, fmt.Errorf("split events: %w", err)
	}
	metrics.RecordStage("split", time.Since(stageStart))
	metrics.RecordUniverse(idx.NumUsers(), idx.NumItems(), len(split.Train), len(split.Eval))
	logger.Info().
		Int("events", len(events)).
		Int("train_pairs", len(split.Train)).
		Int("eval_pairs", len(split.Eval)).
		Msg("Temporal split built")

	var (
		bprRes    *algorithms.BPRResult
		easeModel *algorithms.EASEModel
		easeEval  recommend.EvalResult
		easeErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stageStart := time.Now()
		trainer := algorithms.NewBPRTrainer(cfg.BPR, cfg.Eval.TopK, cfg.Seed, logger)
		trainer.OnEpoch(func(s algorithms.EpochStats) { metrics.RecordEpoch(s.Loss) })
		res, err := trainer.Train(gctx, split)
		if err != nil {
			return fmt.Errorf("train bprmf: %w", err)
		}
		bprRes = res
		metrics.RecordStage(algorithms.NameBPR, time.Since(stageStart))
		return nil
	})

	// EASE errors are kept aside so they never cancel BPR-MF.
	g.Go(func() error {
		stageStart := time.Now()
		model, err := algorithms.TrainEASE(gctx, split, cfg.EASE)
		if err != nil {
			easeErr = err
			return nil
		}
		eval, err := recommend.Evaluate(gctx, model.ForSplit(split), split, cfg.Eval.TopK)
		if err != nil {
			easeErr = fmt.Errorf("evaluate ease: %w", err)
			return nil
		}
		easeModel, easeEval = model, eval
		metrics.RecordStage(algorithms.NameEASE, time.Since(stageStart))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	metrics.RecordEASEOutcome(easeErr)
	metrics.RecordEvaluation(algorithms.NameBPR, bprRes.Best.Recall, bprRes.Best.NDCG)
	metrics.BPRBestEpoch.Set(float64(bprRes.BestEpoch))

	result := &TrainResult{
		RunID:      runID,
		Users:      idx.NumUsers(),
		Items:      idx.NumItems(),
		TrainPairs: len(split.Train),
		EvalPairs:  len(split.Eval),
		BestEpoch:  bprRes.BestEpoch,
		BPR:        bprRes.Best,
		History:    bprRes.History,
		EASEErr:    easeErr,
	}

	arts := &storage.Artifacts{
		Manifest: storage.Manifest{
			RunID:      runID,
			TrainedAt:  trainedAt,
			Config:     cfg.Clone(),
			Users:      idx.NumUsers(),
			Items:      idx.NumItems(),
			TrainPairs: len(split.Train),
			EvalPairs:  len(split.Eval),
			BestEpoch:  bprRes.BestEpoch,
			BPR:        storage.ModelMetrics{Recall: bprRes.Best.Recall, NDCG: bprRes.Best.NDCG, K: cfg.Eval.TopK},
		},
		Mappings: storage.Mappings{
			Idx2User: idx.Users(),
			Idx2Item: idx.Items(),
		},
		BPR: &storage.BPRState{
			Config:    cfg.BPR,
			NumUsers:  idx.NumUsers(),
			NumItems:  idx.NumItems(),
			UserEmb:   bprRes.Model.UserEmbeddings(),
			ItemEmb:   bprRes.Model.ItemEmbeddings(),
			BestEpoch: bprRes.BestEpoch,
			Recall:    bprRes.Best.Recall,
			NDCG:      bprRes.Best.NDCG,
		},
	}

	if easeErr != nil {
		arts.Manifest.EASEError = easeErr.Error()
		logger.Warn().Err(easeErr).Int("items", idx.NumItems()).Msg("EASE failed (non-fatal)")
	} else {
		result.EASE = &easeEval
		arts.Manifest.EASE = &storage.ModelMetrics{Recall: easeEval.Recall, NDCG: easeEval.NDCG, K: cfg.Eval.TopK}
		arts.EASE = &storage.EASEState{
			NumItems: easeModel.NumItems(),
			Lambda:   cfg.EASE.Lambda,
			B:        easeModel.Weights(),
		}
		metrics.RecordEvaluation(algorithms.NameEASE, easeEval.Recall, easeEval.NDCG)
		logger.Info().
			Float64("recall", easeEval.Recall).
			Float64("ndcg", easeEval.NDCG).
			Int("k", cfg.Eval.TopK).
			Msg("EASE trained")
	}

	return arts, result, nil
}
