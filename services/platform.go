package services

import (
	"math/rand"
	"time"

	"linkedin-content-platform/internal/config"
	"linkedin-content-platform/internal/store"
)

// Platform bundles the assembled service graph so the API server, the
// worker and the scheduler can share one wiring path.
type Platform struct {
	Store     store.Store
	Registry  *ClientRegistry
	Queue     *JobQueue
	Limiter   *DailyRateLimiter
	Ledger    *ExperimentLedger
	Selector  *VariationSelector
	Pipeline  *GenerationPipeline
	Preview   *PreviewApprovalFlow
	Processor *Processor
}

// NewPlatform wires the core services over the given store and language
// model. The HTTP collaborators (transcripts, images, storage, publisher)
// are constructed from config here.
func NewPlatform(cfg *config.Config, s store.Store, llm TextGenerator) (*Platform, error) {
	registry := NewClientRegistry(s, cfg.BlotatoAccountID)
	queue := NewJobQueue(s)

	limiter, err := NewDailyRateLimiter(s, cfg.MaxPostsPerDay, cfg.PostingTimezone)
	if err != nil {
		return nil, err
	}

	ledger := NewExperimentLedger(s)
	selector := NewVariationSelector(rand.New(rand.NewSource(time.Now().UnixNano())))
	publisher := NewBlotatoPublisher(cfg)

	pipeline := NewGenerationPipeline(
		NewHTTPTranscriptSource(cfg.ScrapingDogAPIKey),
		llm,
		NewKieImageGenerator(cfg),
		NewCloudinaryStorage(cfg),
		publisher,
		selector,
		ledger,
	)

	preview := NewPreviewApprovalFlow(s, queue, publisher, limiter)
	processor := NewProcessor(registry, queue, limiter, pipeline, preview)

	return &Platform{
		Store:     s,
		Registry:  registry,
		Queue:     queue,
		Limiter:   limiter,
		Ledger:    ledger,
		Selector:  selector,
		Pipeline:  pipeline,
		Preview:   preview,
		Processor: processor,
	}, nil
}
