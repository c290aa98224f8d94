package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/models"
	"linkedin-content-platform/utils"
)

const postPreviewLen = 200

var (
	trailingHashtagsRe = regexp.MustCompile(`(?m)\n#\w+.*$`)
	inlineHashtagRe    = regexp.MustCompile(`#\w+`)
)

// GenerationPipeline sequences the external collaborators into one content
// bundle: fetch -> summarize -> brief -> image -> upload -> draft -> (maybe)
// publish. Image generation and upload are soft steps: their failure
// degrades the bundle to no image instead of aborting the job.
type GenerationPipeline struct {
	transcripts TranscriptSource
	llm         TextGenerator
	images      ImageGenerator
	storage     ObjectStorage
	publisher   Publisher
	selector    *VariationSelector
	ledger      *ExperimentLedger
	retry       utils.RetryPolicy
}

func NewGenerationPipeline(
	transcripts TranscriptSource,
	llm TextGenerator,
	images ImageGenerator,
	storage ObjectStorage,
	publisher Publisher,
	selector *VariationSelector,
	ledger *ExperimentLedger,
) *GenerationPipeline {
	return &GenerationPipeline{
		transcripts: transcripts,
		llm:         llm,
		images:      images,
		storage:     storage,
		publisher:   publisher,
		selector:    selector,
		ledger:      ledger,
		retry:       utils.DefaultRetryPolicy(IsTransient),
	}
}

// Run executes the full pipeline for one URL on behalf of a client. When
// the client is in preview mode (or no image survived), the bundle is
// returned unposted for staging; otherwise it publishes immediately.
func (p *GenerationPipeline) Run(ctx context.Context, url string, client models.Client) (models.ContentBundle, error) {
	tracer := otel.Tracer("generation-pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("pipeline.client", client.Name),
		attribute.String("pipeline.url", url),
	)

	bundle := models.ContentBundle{
		URL:              url,
		Platform:         models.Platform(utils.DetectPlatform(url)),
		PostingAccountID: client.PostingAccountID,
	}

	// 1. Source content. No usable content is fatal to the whole job.
	var content string
	err := p.retry.Do(ctx, func() error {
		var ferr error
		content, ferr = p.transcripts.Fetch(ctx, url)
		return ferr
	})
	if err != nil {
		return bundle, err
	}

	// 2. Summary.
	summary, err := p.generate(ctx, summaryPrompt(bundle.Platform, content))
	if err != nil {
		return bundle, err
	}
	bundle.Summary = summary

	// 3. Visual brief.
	brief, err := p.generate(ctx, briefPrompt(client.Style, summary))
	if err != nil {
		return bundle, err
	}
	bundle.Brief = brief

	// 4 + 5. Image generation and rehosting, both soft: a post without an
	// image is acceptable, a stalled pipeline is not.
	bundle.ImageURL = p.generateImage(ctx, client, brief, url)

	// 6. Post copy with a fresh variation draw over the weight snapshot.
	weights, err := p.ledger.GetWeights(ctx)
	if err != nil {
		logger.Warn("weight snapshot unavailable, drawing uniform", "error", err.Error())
		weights = map[string]float64{}
	}
	variation := p.selector.Select(weights)
	span.SetAttributes(attribute.String("pipeline.variation", variation.ID))

	postText, err := p.generate(ctx, copyPrompt(client.Style, bundle.Platform, variation, content))
	if err != nil {
		return bundle, err
	}
	bundle.PostText = stripHashtags(postText)

	// 7. Assemble and record the experiment.
	bundle.PostID = utils.NewPostID()
	bundle.VariationID = variation.ID
	preview := bundle.PostText
	if runes := []rune(preview); len(runes) > postPreviewLen {
		preview = string(runes[:postPreviewLen])
	}
	if err := p.ledger.Log(ctx, bundle.PostID, variation.ID, url, preview); err != nil {
		logger.Warn("experiment log failed", "post_id", bundle.PostID, "error", err.Error())
	}

	// 8. Publish unless previewing or no image survived.
	if !client.PreviewMode && bundle.ImageURL != "" {
		err := p.retry.Do(ctx, func() error {
			_, perr := p.publisher.Publish(ctx, bundle.PostText, bundle.ImageURL, bundle.PostingAccountID, nil)
			return perr
		})
		if err != nil {
			return bundle, err
		}
		bundle.Posted = true
	}

	return bundle, nil
}

func (p *GenerationPipeline) generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := p.retry.Do(ctx, func() error {
		var gerr error
		text, gerr = p.llm.Generate(ctx, prompt)
		return gerr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty model output", ErrGenerationFailed)
	}
	return strings.TrimSpace(text), nil
}

func (p *GenerationPipeline) generateImage(ctx context.Context, client models.Client, brief, url string) string {
	taskID, err := p.images.Submit(ctx, styledBrief(client.Style, brief))
	if err != nil {
		logger.Error("image task submit failed, continuing without image", "url", url, "error", err.Error())
		return ""
	}
	rawURL, err := p.images.Poll(ctx, taskID)
	if err != nil {
		logger.Error("image generation failed, continuing without image", "url", url, "error", err.Error())
		return ""
	}

	publicURL, err := p.storage.Upload(ctx, rawURL, storageKeyFor(url))
	if err != nil {
		// Fall back to the generator's URL rather than blocking the post.
		logger.Warn("image upload failed, using generator url", "url", url, "error", err.Error())
		return rawURL
	}
	return publicURL
}

func storageKeyFor(url string) string {
	return "licp_" + utils.ShortHash(url)
}

func stripHashtags(text string) string {
	text = trailingHashtagsRe.ReplaceAllString(text, "")
	text = inlineHashtagRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
