package services

import (
	"context"
	"fmt"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/models"
)

// Process outcomes. "busy" and "empty" and "rate_limited" are soft skips,
// not errors.
const (
	ProcessStatusBusy        = "busy"
	ProcessStatusEmpty       = "empty"
	ProcessStatusRateLimited = "rate_limited"
	ProcessStatusPosted      = "posted"
	ProcessStatusStaged      = "staged"
	ProcessStatusFailed      = "failed"
)

// ProcessResult describes what one trigger did for one client.
type ProcessResult struct {
	Client    string                `json:"client"`
	Status    string                `json:"status"`
	URL       string                `json:"url,omitempty"`
	StageHash string                `json:"stage_hash,omitempty"`
	Error     string                `json:"error,omitempty"`
	Bundle    *models.ContentBundle `json:"bundle,omitempty"`
}

// Processor ties queue, registry, rate limiter, pipeline and preview flow
// into the process-next and all-clients sweep operations. It owns the
// locking discipline: one pipeline run per client at a time, lock always
// released on exit.
type Processor struct {
	registry *ClientRegistry
	queue    *JobQueue
	limiter  *DailyRateLimiter
	pipeline *GenerationPipeline
	preview  *PreviewApprovalFlow
}

func NewProcessor(registry *ClientRegistry, queue *JobQueue, limiter *DailyRateLimiter, pipeline *GenerationPipeline, preview *PreviewApprovalFlow) *Processor {
	return &Processor{
		registry: registry,
		queue:    queue,
		limiter:  limiter,
		pipeline: pipeline,
		preview:  preview,
	}
}

// ProcessNext dequeues and runs one job for the named client. Concurrent
// triggers for the same client are serialized by the processing lock: the
// loser observes "busy" and must skip, not wait. A failed job's URL is not
// re-enqueued (at-most-once processing; operators re-add manually).
func (p *Processor) ProcessNext(ctx context.Context, clientName string) (ProcessResult, error) {
	result := ProcessResult{Client: normalizeClient(clientName)}

	client, ok, err := p.registry.Get(ctx, clientName)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, fmt.Errorf("unknown client: %s", clientName)
	}

	acquired, err := p.queue.AcquireLock(ctx, clientName, LockPurposeProcessing, DefaultLockTTL)
	if err != nil {
		return result, err
	}
	if !acquired {
		result.Status = ProcessStatusBusy
		return result, nil
	}
	defer p.queue.ReleaseLock(ctx, clientName, LockPurposeProcessing)

	url, err := p.queue.DequeueNext(ctx, clientName)
	if err != nil {
		return result, err
	}
	if url == "" {
		result.Status = ProcessStatusEmpty
		return result, nil
	}
	result.URL = url

	bundle, err := p.pipeline.Run(ctx, url, client)
	if err != nil {
		result.Status = ProcessStatusFailed
		result.Error = err.Error()
		logger.Error("pipeline run failed", "client", client.Name, "url", url, "error", err.Error())
		return result, err
	}
	result.Bundle = &bundle

	if bundle.Posted {
		p.limiter.Increment(ctx, p.limiter.Today())
		if err := p.queue.RecordDone(ctx, clientName, url); err != nil {
			logger.Warn("history record failed", "client", client.Name, "error", err.Error())
		}
		result.Status = ProcessStatusPosted
		return result, nil
	}

	// Preview mode (or no image): stage for human approval.
	hash, err := p.preview.Stage(ctx, clientName, bundle)
	if err != nil {
		result.Status = ProcessStatusFailed
		result.Error = err.Error()
		return result, err
	}
	result.Status = ProcessStatusStaged
	result.StageHash = hash
	return result, nil
}

// ProcessAllClients runs at most one job for each client with pending
// work, in stable name order, stopping when the daily cap is reached.
// Clients proceed independently: a busy or failing client never blocks the
// rest of the sweep.
func (p *Processor) ProcessAllClients(ctx context.Context) ([]ProcessResult, error) {
	names, err := p.registry.Names(ctx)
	if err != nil {
		return nil, err
	}

	var results []ProcessResult
	for _, name := range names {
		if !p.limiter.CanPostNow(ctx) {
			results = append(results, ProcessResult{Client: name, Status: ProcessStatusRateLimited})
			continue
		}
		res, err := p.ProcessNext(ctx, name)
		if err != nil {
			// Recorded in the result; the sweep moves on.
			logger.Warn("sweep client failed", "client", name, "error", err.Error())
		}
		results = append(results, res)
	}
	return results, nil
}
