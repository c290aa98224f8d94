package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
)

const (
	experimentRetention = 100
	winnersRetention    = 50

	// Winner reward applied per axis:option component, capped so one hot
	// option can never fully starve the others.
	winnerWeightStep = 0.5
	maxWeight        = 5.0
)

// ExperimentLedger records which variation produced which post and promotes
// operator-marked winners into higher future selection weight.
type ExperimentLedger struct {
	store store.Store
	now   func() time.Time
}

func NewExperimentLedger(s store.Store) *ExperimentLedger {
	return &ExperimentLedger{store: s, now: time.Now}
}

// SetClock overrides the time source for tests.
func (el *ExperimentLedger) SetClock(now func() time.Time) { el.now = now }

// Log stores a new experiment and evicts the oldest entries beyond
// retention: both the index position and the record key are removed, so an
// evicted post id becomes unknown to every other operation.
func (el *ExperimentLedger) Log(ctx context.Context, postID, variationID, url, postTextPreview string) error {
	exp := models.Experiment{
		PostID:          postID,
		VariationID:     variationID,
		URL:             url,
		PostTextPreview: postTextPreview,
		CreatedAt:       el.now().UTC(),
	}
	raw, err := json.Marshal(exp)
	if err != nil {
		return err
	}
	if err := el.store.Set(ctx, experimentKey(postID), string(raw), 0); err != nil {
		return err
	}
	if err := el.store.LPush(ctx, experimentsIndexKey, postID); err != nil {
		return err
	}

	evicted, err := el.store.LRange(ctx, experimentsIndexKey, experimentRetention, -1)
	if err != nil {
		return err
	}
	if len(evicted) > 0 {
		keys := make([]string, len(evicted))
		for i, id := range evicted {
			keys[i] = experimentKey(id)
		}
		if err := el.store.Del(ctx, keys...); err != nil {
			return err
		}
	}
	return el.store.LTrim(ctx, experimentsIndexKey, 0, experimentRetention-1)
}

// MarkWinner flags the post as a winner, appends it to the bounded winners
// list and rewards each of its four axis:option components with +0.5
// weight (capped). Returns false for unknown post ids, leaving weights
// untouched.
func (el *ExperimentLedger) MarkWinner(ctx context.Context, postID string) (bool, error) {
	raw, err := el.store.Get(ctx, experimentKey(postID))
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var exp models.Experiment
	if err := json.Unmarshal([]byte(raw), &exp); err != nil {
		return false, nil
	}

	wonAt := el.now().UTC()
	exp.IsWinner = true
	exp.WonAt = &wonAt

	updated, err := json.Marshal(exp)
	if err != nil {
		return false, err
	}
	if err := el.store.Set(ctx, experimentKey(postID), string(updated), 0); err != nil {
		return false, err
	}

	if err := el.store.LPush(ctx, winnersKey, string(updated)); err != nil {
		return false, err
	}
	if err := el.store.LTrim(ctx, winnersKey, 0, winnersRetention-1); err != nil {
		return false, err
	}

	// Reward every axis choice the winning post used, never the composite.
	components := SplitVariationID(exp.VariationID)
	if components == nil {
		logger.Warn("winner has malformed variation id, weights unchanged", "post_id", postID, "variation", exp.VariationID)
		return true, nil
	}

	weights, err := el.GetWeights(ctx)
	if err != nil {
		return false, err
	}
	for _, component := range components {
		w, ok := weights[component]
		if !ok {
			w = 1.0
		}
		w += winnerWeightStep
		if w > maxWeight {
			w = maxWeight
		}
		weights[component] = w
	}
	return true, el.saveWeights(ctx, weights)
}

// GetWeights returns the stored axis:option weight map. Missing state
// yields an empty map (every option at its implicit 1.0).
func (el *ExperimentLedger) GetWeights(ctx context.Context) (map[string]float64, error) {
	raw, err := el.store.Get(ctx, weightsKey)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, err
	}
	var weights map[string]float64
	if err := json.Unmarshal([]byte(raw), &weights); err != nil {
		logger.Warn("weights blob is malformed, resetting", "error", err.Error())
		return map[string]float64{}, nil
	}
	if weights == nil {
		weights = map[string]float64{}
	}
	return weights, nil
}

func (el *ExperimentLedger) saveWeights(ctx context.Context, weights map[string]float64) error {
	raw, err := json.Marshal(weights)
	if err != nil {
		return err
	}
	return el.store.Set(ctx, weightsKey, string(raw), 0)
}

// Get returns a stored experiment by post id.
func (el *ExperimentLedger) Get(ctx context.Context, postID string) (models.Experiment, bool, error) {
	raw, err := el.store.Get(ctx, experimentKey(postID))
	if errors.Is(err, store.ErrNotFound) {
		return models.Experiment{}, false, nil
	}
	if err != nil {
		return models.Experiment{}, false, err
	}
	var exp models.Experiment
	if err := json.Unmarshal([]byte(raw), &exp); err != nil {
		return models.Experiment{}, false, nil
	}
	return exp, true, nil
}

// GetStats aggregates over every retained experiment. Malformed or missing
// records are skipped rather than failing the whole scan.
func (el *ExperimentLedger) GetStats(ctx context.Context) (models.ExperimentStats, error) {
	stats := models.ExperimentStats{
		VariationCounts:  map[string]int{},
		VariationWinners: map[string]int{},
	}

	weights, err := el.GetWeights(ctx)
	if err != nil {
		return stats, err
	}
	stats.Weights = weights

	ids, err := el.store.LRange(ctx, experimentsIndexKey, 0, experimentRetention-1)
	if err != nil {
		return stats, err
	}

	for _, id := range ids {
		raw, err := el.store.Get(ctx, experimentKey(id))
		if err != nil {
			continue
		}
		var exp models.Experiment
		if err := json.Unmarshal([]byte(raw), &exp); err != nil || exp.VariationID == "" {
			continue
		}
		stats.TotalExperiments++
		stats.VariationCounts[exp.VariationID]++
		if exp.IsWinner {
			stats.TotalWinners++
			stats.VariationWinners[exp.VariationID]++
		}
	}
	return stats, nil
}
