// Shoprec - Implicit-Feedback Item Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shoprec

package algorithms

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/shoprec/internal/recommend"
)

// BPRModel holds trained BPR-MF embeddings.
// It is immutable and safe for concurrent scoring.
type BPRModel struct {
	users *mat.Dense // numUsers x dim
	items *mat.Dense // numItems x dim
}

// NewBPRModel wraps row-major embedding data, e.g. loaded from artifacts.
// The slices are copied.
func NewBPRModel(dim, numUsers, numItems int, userEmb, itemEmb []float64) (*BPRModel, error) {
	if dim < 1 || numUsers < 1 || numItems < 1 {
		return nil, fmt.Errorf("bpr model: invalid shape dim=%d users=%d items=%d: %w",
			dim, numUsers, numItems, recommend.ErrDegenerateInput)
	}
	if len(userEmb) != numUsers*dim {
		return nil, fmt.Errorf("bpr model: user embeddings have %d values, want %d", len(userEmb), numUsers*dim)
	}
	if len(itemEmb) != numItems*dim {
		return nil, fmt.Errorf("bpr model: item embeddings have %d values, want %d", len(itemEmb), numItems*dim)
	}
	return &BPRModel{
		users: mat.NewDense(numUsers, dim, append([]float64(nil), userEmb...)),
		items: mat.NewDense(numItems, dim, append([]float64(nil), itemEmb...)),
	}, nil
}

// Name returns the model identifier.
func (m *BPRModel) Name() string { return NameBPR }

// Dim returns the embedding dimensionality.
func (m *BPRModel) Dim() int {
	_, d := m.users.Dims()
	return d
}

// NumUsers returns the number of user rows.
func (m *BPRModel) NumUsers() int {
	r, _ := m.users.Dims()
	return r
}

// NumItems returns the number of item rows.
func (m *BPRModel) NumItems() int {
	r, _ := m.items.Dims()
	return r
}

// Score returns e_u · e_i.
func (m *BPRModel) Score(user, item int) float64 {
	return floats.Dot(m.users.RawRowView(user), m.items.RawRowView(item))
}

// ScoreUser writes e_u · e_i for every item into dst.
func (m *BPRModel) ScoreUser(user int, dst []float64) {
	out := mat.NewVecDense(len(dst), dst)
	out.MulVec(m.items, m.users.RowView(user))
}

// ItemSimilarity returns the cosine similarity of two item embeddings,
// or 0 when either is the zero vector.
func (m *BPRModel) ItemSimilarity(a, b int) float64 {
	va, vb := m.items.RawRowView(a), m.items.RawRowView(b)
	na, nb := floats.Norm(va, 2), floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (na * nb)
}

// UserEmbeddings returns a row-major copy of the user embeddings.
func (m *BPRModel) UserEmbeddings() []float64 {
	return append([]float64(nil), m.users.RawMatrix().Data...)
}

// ItemEmbeddings returns a row-major copy of the item embeddings.
func (m *BPRModel) ItemEmbeddings() []float64 {
	return append([]float64(nil), m.items.RawMatrix().Data...)
}

// EpochStats is the outcome of one training epoch.
type EpochStats struct {
	Epoch int
	Loss  float64
	Eval  recommend.EvalResult
}

// BPRResult is the outcome of a training run.
type BPRResult struct {
	// Model holds the parameters of the best epoch.
	Model *BPRModel

	// BestEpoch is the 1-based epoch whose parameters were kept.
	BestEpoch int

	// Best is the evaluation of the kept parameters.
	Best recommend.EvalResult

	// History holds one entry per epoch.
	History []EpochStats
}

// BPRTrainer trains BPR-MF on a split. A trainer is single-use.
type BPRTrainer struct {
	config  recommend.BPRConfig
	topK    int
	rng     *rand.Rand
	logger  zerolog.Logger
	onEpoch func(EpochStats)
}

// NewBPRTrainer creates a trainer. All randomness in initialization and
// sampling is drawn from one generator seeded with seed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBPRTrainer(cfg recommend.BPRConfig, topK int, seed int64, logger zerolog.Logger) *BPRTrainer {
	return &BPRTrainer{
		config: cfg,
		topK:   topK,
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for sampling
		logger: logger.With().Str("model", NameBPR).Logger(),
	}
}

// OnEpoch registers a callback invoked after every evaluated epoch.
func (t *BPRTrainer) OnEpoch(fn func(EpochStats)) {
	t.onEpoch = fn
}

// snapshot is a deep copy of the parameters at one epoch.
type snapshot struct {
	epoch  int
	eval   recommend.EvalResult
	users  []float64
	items  []float64
	recall float64
}

// Train runs all epochs and returns the parameters of the epoch with the
// highest Recall@K. Ties keep the earlier epoch. The context is checked
// between epochs only.
func (t *BPRTrainer) Train(ctx context.Context, split *recommend.Split) (*BPRResult, error) {
	numUsers, numItems := split.NumUsers(), split.NumItems()
	if numUsers < 1 || numItems < 1 {
		return nil, recommend.ErrDegenerateInput
	}
	cfg := t.config
	if cfg.NegativeRetries < 0 {
		cfg.NegativeRetries = 0
	}
	d := cfg.Dim

	userData := make([]float64, numUsers*d)
	itemData := make([]float64, numItems*d)
	for k := range userData {
		userData[k] = t.rng.NormFloat64() * cfg.InitStd
	}
	for k := range itemData {
		itemData[k] = t.rng.NormFloat64() * cfg.InitStd
	}

	live := &BPRModel{
		users: mat.NewDense(numUsers, d, userData),
		items: mat.NewDense(numItems, d, itemData),
	}
	opt := newAdam(cfg.LearningRate, cfg.WeightDecay, userData, itemData)
	sampler := newPairSampler(split.Train)

	steps := (len(split.Train) + cfg.BatchSize - 1) / cfg.BatchSize
	if steps < 1 {
		steps = 1
	}

	t.logger.Info().
		Int("users", numUsers).
		Int("items", numItems).
		Int("pairs", len(split.Train)).
		Int("steps_per_epoch", steps).
		Int("dim", d).
		Msg("BPR-MF training started")

	best := snapshot{recall: -1}
	result := &BPRResult{History: make([]EpochStats, 0, cfg.Epochs)}

	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		var total float64
		for s := 0; s < steps; s++ {
			batch := sampler.sample(t.rng, cfg.BatchSize)
			total += t.step(split, batch, live, opt)
		}

		eval, err := recommend.Evaluate(ctx, live, split, t.topK)
		if err != nil {
			return nil, fmt.Errorf("evaluate epoch %d: %w", epoch, err)
		}

		stats := EpochStats{Epoch: epoch, Loss: total / float64(steps), Eval: eval}
		result.History = append(result.History, stats)

		t.logger.Info().
			Int("epoch", epoch).
			Int("epochs", cfg.Epochs).
			Float64("loss", stats.Loss).
			Float64("recall", eval.Recall).
			Float64("ndcg", eval.NDCG).
			Int("k", t.topK).
			Msg("BPR-MF epoch")

		if t.onEpoch != nil {
			t.onEpoch(stats)
		}

		if eval.Recall > best.recall {
			best = snapshot{
				epoch:  epoch,
				eval:   eval,
				recall: eval.Recall,
				users:  append([]float64(nil), userData...),
				items:  append([]float64(nil), itemData...),
			}
		}
	}

	if best.users != nil {
		result.Model = &BPRModel{
			users: mat.NewDense(numUsers, d, best.users),
			items: mat.NewDense(numItems, d, best.items),
		}
		result.BestEpoch = best.epoch
		result.Best = best.eval
	} else {
		result.Model = live
		last := result.History[len(result.History)-1]
		result.BestEpoch = last.Epoch
		result.Best = last.Eval
	}

	t.logger.Info().
		Int("best_epoch", result.BestEpoch).
		Float64("recall", result.Best.Recall).
		Float64("ndcg", result.Best.NDCG).
		Int("k", t.topK).
		Msg("BPR-MF best")

	return result, nil
}

// step accumulates gradients for one batch, applies one Adam update and
// returns the batch loss. An empty batch is a no-op.
func (t *BPRTrainer) step(split *recommend.Split, batch []int, m *BPRModel, opt *adam) float64 {
	n := len(batch)
	if n == 0 {
		return 0
	}
	d := t.config.Dim
	numItems := split.NumItems()
	inv := 1 / float64(n)
	regScale := 2 * t.config.Reg * inv

	gUsers, gItems := opt.grad(0), opt.grad(1)
	var logLoss, regSum float64

	for _, at := range batch {
		pair := split.Train[at]
		neg := sampleNegative(t.rng, numItems, split.TrainedItems(pair.User), t.config.NegativeRetries)

		eu := m.users.RawRowView(pair.User)
		ep := m.items.RawRowView(pair.Item)
		en := m.items.RawRowView(neg)

		x := floats.Dot(eu, ep) - floats.Dot(eu, en)
		logLoss += softplus(-x)
		regSum += floats.Dot(eu, eu) + floats.Dot(ep, ep) + floats.Dot(en, en)

		// d(-log σ(x))/dx = -σ(-x), averaged over the batch.
		c := -sigmoid(-x) * inv

		gu := gUsers[pair.User*d : (pair.User+1)*d]
		gp := gItems[pair.Item*d : (pair.Item+1)*d]
		gn := gItems[neg*d : (neg+1)*d]
		for k := 0; k < d; k++ {
			gu[k] += c*(ep[k]-en[k]) + regScale*eu[k]
			gp[k] += c*eu[k] + regScale*ep[k]
			gn[k] += -c*eu[k] + regScale*en[k]
		}
	}

	opt.step()
	return (logLoss + t.config.Reg*regSum) * inv
}
