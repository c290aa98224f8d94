package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"linkedin-content-platform/internal/store"
)

const testVariationID = "bold_claim|bullets_bold|bottom_line|save_this"

func TestLogAndGetExperiment(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, el.Log(ctx, "post1", testVariationID, "https://youtu.be/abc", "preview text"))

	exp, ok, err := el.Get(ctx, "post1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, testVariationID, exp.VariationID)
	require.False(t, exp.IsWinner)
	require.Nil(t, exp.WonAt)

	_, ok, err = el.Get(ctx, "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMarkWinnerUnknownPostLeavesWeightsUntouched(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	marked, err := el.MarkWinner(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, marked)

	weights, err := el.GetWeights(ctx)
	require.NoError(t, err)
	require.Empty(t, weights)
}

func TestMarkWinnerRewardsEachComponent(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, el.Log(ctx, "post1", testVariationID, "url", "preview"))

	marked, err := el.MarkWinner(ctx, "post1")
	require.NoError(t, err)
	require.True(t, marked)

	weights, err := el.GetWeights(ctx)
	require.NoError(t, err)
	require.InDelta(t, 1.5, weights["hook:bold_claim"], 1e-9)
	require.InDelta(t, 1.5, weights["structure:bullets_bold"], 1e-9)
	require.InDelta(t, 1.5, weights["closer:bottom_line"], 1e-9)
	require.InDelta(t, 1.5, weights["cta:save_this"], 1e-9)

	exp, ok, err := el.Get(ctx, "post1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, exp.IsWinner)
	require.NotNil(t, exp.WonAt)
}

func TestWinnerWeightIsCapped(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		postID := fmt.Sprintf("post%d", i)
		require.NoError(t, el.Log(ctx, postID, testVariationID, "url", "preview"))
		marked, err := el.MarkWinner(ctx, postID)
		require.NoError(t, err)
		require.True(t, marked)
	}

	weights, err := el.GetWeights(ctx)
	require.NoError(t, err)
	for _, key := range []string{"hook:bold_claim", "structure:bullets_bold", "closer:bottom_line", "cta:save_this"} {
		require.InDelta(t, maxWeight, weights[key], 1e-9)
	}
}

func TestExperimentRetention(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < experimentRetention+10; i++ {
		require.NoError(t, el.Log(ctx, fmt.Sprintf("post%d", i), testVariationID, "url", "preview"))
	}

	stats, err := el.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, experimentRetention, stats.TotalExperiments)
}

func TestEvictedExperimentIsFullyForgotten(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i <= experimentRetention; i++ {
		require.NoError(t, el.Log(ctx, fmt.Sprintf("post%d", i), testVariationID, "url", "preview"))
	}

	// post0 fell off the retention window: its record key is deleted, not
	// just its index slot.
	_, ok, err := el.Get(ctx, "post0")
	require.NoError(t, err)
	require.False(t, ok)

	marked, err := el.MarkWinner(ctx, "post0")
	require.NoError(t, err)
	require.False(t, marked)

	weights, err := el.GetWeights(ctx)
	require.NoError(t, err)
	require.Empty(t, weights)

	// The newest entry is still fully addressable.
	_, ok, err = el.Get(ctx, fmt.Sprintf("post%d", experimentRetention))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGetStatsAggregates(t *testing.T) {
	el := NewExperimentLedger(store.NewMemoryStore())
	ctx := context.Background()

	other := "question_hook|numbered_steps|real_talk|hot_take"
	require.NoError(t, el.Log(ctx, "p1", testVariationID, "url", "preview"))
	require.NoError(t, el.Log(ctx, "p2", testVariationID, "url", "preview"))
	require.NoError(t, el.Log(ctx, "p3", other, "url", "preview"))

	marked, err := el.MarkWinner(ctx, "p2")
	require.NoError(t, err)
	require.True(t, marked)

	stats, err := el.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalExperiments)
	require.Equal(t, 1, stats.TotalWinners)
	require.Equal(t, 2, stats.VariationCounts[testVariationID])
	require.Equal(t, 1, stats.VariationCounts[other])
	require.Equal(t, 1, stats.VariationWinners[testVariationID])
	require.InDelta(t, 1.5, stats.Weights["hook:bold_claim"], 1e-9)
}

func TestGetWeightsMalformedBlobResets(t *testing.T) {
	s := store.NewMemoryStore()
	el := NewExperimentLedger(s)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, weightsKey, "{broken", 0))

	weights, err := el.GetWeights(ctx)
	require.NoError(t, err)
	require.Empty(t, weights)
}
