package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
)

func TestPipelinePublishesWhenNotPreviewing(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, _, _, _, pub := newTestPipeline(s)
	ctx := context.Background()

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	bundle, err := p.Run(ctx, "https://youtu.be/abc", client)
	require.NoError(t, err)

	require.True(t, bundle.Posted)
	require.Equal(t, 1, pub.calls)
	require.Equal(t, models.PlatformYouTube, bundle.Platform)
	require.Equal(t, "https://cdn.example/hosted.png", bundle.ImageURL)
	require.Len(t, bundle.PostID, 12)
	require.NotNil(t, SplitVariationID(bundle.VariationID))

	// The run is recorded in the experiment ledger.
	exp, ok, err := NewExperimentLedger(s).Get(ctx, bundle.PostID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bundle.VariationID, exp.VariationID)
}

func TestPipelineStagesInPreviewMode(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, _, _, _, pub := newTestPipeline(s)

	client := models.Client{Name: "acme", PostingAccountID: "acct-1", PreviewMode: true}
	bundle, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.NoError(t, err)

	require.False(t, bundle.Posted)
	require.Zero(t, pub.calls)
	require.NotEmpty(t, bundle.PostText)
}

func TestPipelineContinuesWithoutImage(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, _, images, _, pub := newTestPipeline(s)
	images.submitErr = errors.New("render farm down")

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	bundle, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.NoError(t, err)

	// No image means no auto-publish; the bundle degrades to a staged draft.
	require.Empty(t, bundle.ImageURL)
	require.False(t, bundle.Posted)
	require.Zero(t, pub.calls)
}

func TestPipelineFallsBackToGeneratorURLOnUploadFailure(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, _, _, storage, _ := newTestPipeline(s)
	storage.err = errors.New("cdn unavailable")

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	bundle, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.NoError(t, err)
	require.Equal(t, "https://img.example/raw.png", bundle.ImageURL)
	require.True(t, bundle.Posted)
}

func TestPipelineFailsWhenContentUnavailable(t *testing.T) {
	s := store.NewMemoryStore()
	p, transcripts, llm, _, _, _ := newTestPipeline(s)
	transcripts.err = ErrContentUnavailable

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	_, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.ErrorIs(t, err, ErrContentUnavailable)
	require.Zero(t, llm.calls)
}

func TestPipelineWrapsGenerationFailures(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, llm, _, _, _ := newTestPipeline(s)
	llm.err = errors.New("model overloaded")

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	_, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestPipelineRejectsEmptyModelOutput(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, llm, _, _, _ := newTestPipeline(s)
	llm.output = "   \n"

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	_, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.ErrorIs(t, err, ErrGenerationFailed)
}

func TestExperimentPreviewTruncatesOnRuneBoundary(t *testing.T) {
	s := store.NewMemoryStore()
	p, _, llm, _, _, _ := newTestPipeline(s)
	llm.output = strings.Repeat("é", 300)

	client := models.Client{Name: "acme", PostingAccountID: "acct-1"}
	bundle, err := p.Run(context.Background(), "https://youtu.be/abc", client)
	require.NoError(t, err)

	exp, ok, err := NewExperimentLedger(s).Get(context.Background(), bundle.PostID)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, utf8.ValidString(exp.PostTextPreview))
	require.Equal(t, postPreviewLen, utf8.RuneCountInString(exp.PostTextPreview))
}

func TestStripHashtags(t *testing.T) {
	require.Equal(t, "Great insight here", stripHashtags("Great insight here\n#ai #productivity"))
	require.Equal(t, "Mixed  content", stripHashtags("Mixed #tag content"))
	require.Equal(t, "No tags at all", stripHashtags("No tags at all"))
}
