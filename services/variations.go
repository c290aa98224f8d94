package services

import (
	"math/rand"
	"strings"
)

// A VariationOption is one named stylistic choice on an axis, carrying the
// prompt fragment handed to the copy drafter.
type VariationOption struct {
	Name   string
	Prompt string
}

// Axis names, in the fixed order they appear inside a variation id.
const (
	AxisHook      = "hook"
	AxisStructure = "structure"
	AxisCloser    = "closer"
	AxisCTA       = "cta"
)

// Option tables. Order is load-bearing: weighted selection walks each slice
// in declared order, so the walk is reproducible for a fixed random source.
var hookOptions = []VariationOption{
	{"bold_claim", `Start with a bold, slightly controversial claim that challenges conventional wisdom. Example: "Most developers are doing this completely wrong."`},
	{"personal_test", `Start with a personal experiment with specific timeframe and results. Example: "Just tested X for 8 weeks straight. The results?"`},
	{"numbers_first", `Lead with a striking statistic or number. Example: "15+ hours saved per week."`},
	{"question_hook", `Open with a thought-provoking question that creates curiosity. Example: "What if you could 10x your output without working harder?"`},
	{"pattern_interrupt", `Start with something unexpected that stops the scroll. Example: "Delete your to-do list."`},
}

var structureOptions = []VariationOption{
	{"bullets_bold", `Use bullet points with **bold headers** followed by description with specific metrics.`},
	{"numbered_steps", `Use a numbered list for sequential steps or ranked items.`},
	{"short_paragraphs", `Use very short paragraphs (1-2 sentences each) without bullets. Create rhythm through line breaks.`},
	{"problem_solution", `Structure each point as Problem, then Insight, then Solution. Show the pain, then the relief.`},
}

var closerOptions = []VariationOption{
	{"impressive_part", `Use "The most impressive part?" as transition to the key insight.`},
	{"mindset_shift", `Use "The biggest mindset shift:" to share the transformation.`},
	{"bottom_line", `Use "Bottom line:" for a direct, no-nonsense summary.`},
	{"real_talk", `Use "Here's the truth:" for an authentic, direct closing.`},
}

var ctaOptions = []VariationOption{
	{"which_first", `End with "Which of these are you most excited to try first?"`},
	{"what_would", `End with "What [specific task] would you want [tool] to handle?"`},
	{"drop_comment", `End with an engagement ask inviting a comment.`},
	{"save_this", `End with "Save this for later - you'll need it."`},
	{"hot_take", `End with "Hot take? Let me know if you disagree."`},
}

var axes = []struct {
	Name    string
	Options []VariationOption
}{
	{AxisHook, hookOptions},
	{AxisStructure, structureOptions},
	{AxisCloser, closerOptions},
	{AxisCTA, ctaOptions},
}

// AllWeightKeys enumerates every axis:option pair, each of which owns one
// selection weight.
func AllWeightKeys() []string {
	var keys []string
	for _, axis := range axes {
		for _, opt := range axis.Options {
			keys = append(keys, axis.Name+":"+opt.Name)
		}
	}
	return keys
}

// Variation is one drawn combination across the four axes.
type Variation struct {
	ID              string
	HookPrompt      string
	StructurePrompt string
	CloserPrompt    string
	CTAPrompt       string
}

// VariationSelector draws one option per axis, weighted by the supplied
// weight snapshot (unknown keys default to 1.0). The random source is
// injectable so selection is reproducible under test.
type VariationSelector struct {
	rng *rand.Rand
}

func NewVariationSelector(rng *rand.Rand) *VariationSelector {
	return &VariationSelector{rng: rng}
}

// Select draws independently on each axis and joins the chosen option names
// with "|" to form the variation id.
func (vs *VariationSelector) Select(weights map[string]float64) Variation {
	chosen := make([]VariationOption, len(axes))
	names := make([]string, len(axes))
	for i, axis := range axes {
		opt := vs.pick(axis.Name, axis.Options, weights)
		chosen[i] = opt
		names[i] = opt.Name
	}
	return Variation{
		ID:              strings.Join(names, "|"),
		HookPrompt:      chosen[0].Prompt,
		StructurePrompt: chosen[1].Prompt,
		CloserPrompt:    chosen[2].Prompt,
		CTAPrompt:       chosen[3].Prompt,
	}
}

func (vs *VariationSelector) pick(axisName string, options []VariationOption, weights map[string]float64) VariationOption {
	total := 0.0
	for _, opt := range options {
		total += optionWeight(weights, axisName, opt.Name)
	}

	draw := vs.rng.Float64() * total
	cumulative := 0.0
	for _, opt := range options {
		cumulative += optionWeight(weights, axisName, opt.Name)
		if draw <= cumulative {
			return opt
		}
	}
	// Floating point slack: the walk can fall just short of total.
	return options[len(options)-1]
}

func optionWeight(weights map[string]float64, axisName, optName string) float64 {
	if w, ok := weights[axisName+":"+optName]; ok && w > 0 {
		return w
	}
	return 1.0
}

// SplitVariationID breaks a composite variation id back into its four
// axis:option components. Malformed ids yield nil.
func SplitVariationID(variationID string) []string {
	parts := strings.Split(variationID, "|")
	if len(parts) != len(axes) {
		return nil
	}
	components := make([]string, len(parts))
	for i, part := range parts {
		components[i] = axes[i].Name + ":" + part
	}
	return components
}
