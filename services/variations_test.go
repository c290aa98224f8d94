package services

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectIsDeterministicForFixedSeed(t *testing.T) {
	a := NewVariationSelector(rand.New(rand.NewSource(42)))
	b := NewVariationSelector(rand.New(rand.NewSource(42)))

	for i := 0; i < 10; i++ {
		require.Equal(t, a.Select(nil).ID, b.Select(nil).ID)
	}
}

func TestSelectProducesValidVariation(t *testing.T) {
	vs := NewVariationSelector(rand.New(rand.NewSource(7)))

	v := vs.Select(map[string]float64{})
	parts := strings.Split(v.ID, "|")
	require.Len(t, parts, 4)

	require.NotNil(t, SplitVariationID(v.ID))
	require.NotEmpty(t, v.HookPrompt)
	require.NotEmpty(t, v.StructurePrompt)
	require.NotEmpty(t, v.CloserPrompt)
	require.NotEmpty(t, v.CTAPrompt)
}

func TestSelectFollowsWeightSkew(t *testing.T) {
	vs := NewVariationSelector(rand.New(rand.NewSource(99)))
	weights := map[string]float64{"hook:numbers_first": 100.0}

	hits := 0
	const draws = 300
	for i := 0; i < draws; i++ {
		v := vs.Select(weights)
		if strings.HasPrefix(v.ID, "numbers_first|") {
			hits++
		}
	}

	// numbers_first carries ~96% of the hook mass; half is a very safe floor.
	require.Greater(t, hits, draws/2)
}

func TestSelectIgnoresNonPositiveWeights(t *testing.T) {
	vs := NewVariationSelector(rand.New(rand.NewSource(3)))
	weights := map[string]float64{}
	for _, key := range AllWeightKeys() {
		weights[key] = -1.0
	}

	// Every weight non-positive degrades to uniform; must still return a
	// complete variation.
	v := vs.Select(weights)
	require.NotNil(t, SplitVariationID(v.ID))
}

func TestSplitVariationID(t *testing.T) {
	components := SplitVariationID("bold_claim|bullets_bold|bottom_line|save_this")
	require.Equal(t, []string{
		"hook:bold_claim",
		"structure:bullets_bold",
		"closer:bottom_line",
		"cta:save_this",
	}, components)

	require.Nil(t, SplitVariationID(""))
	require.Nil(t, SplitVariationID("only|three|parts"))
	require.Nil(t, SplitVariationID("a|b|c|d|e"))
}

func TestAllWeightKeysCoverEveryAxisOption(t *testing.T) {
	keys := AllWeightKeys()
	require.Len(t, keys, len(hookOptions)+len(structureOptions)+len(closerOptions)+len(ctaOptions))

	seen := map[string]bool{}
	for _, k := range keys {
		require.False(t, seen[k], "duplicate weight key %s", k)
		seen[k] = true
	}
	require.True(t, seen["hook:pattern_interrupt"])
	require.True(t, seen["cta:hot_take"])
}
