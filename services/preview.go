package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
	"linkedin-content-platform/utils"
)

// stageTTL time-boxes a staged bundle; an unapproved stage simply expires.
const stageTTL = 24 * time.Hour

// PreviewApprovalFlow stages generated bundles for a human approve/cancel
// decision. Stage state machine: STAGED -> APPROVED | CANCELLED | EXPIRED,
// where EXPIRED is implicit via the store TTL.
type PreviewApprovalFlow struct {
	store     store.Store
	queue     *JobQueue
	publisher Publisher
	limiter   *DailyRateLimiter
	now       func() time.Time
}

func NewPreviewApprovalFlow(s store.Store, queue *JobQueue, publisher Publisher, limiter *DailyRateLimiter) *PreviewApprovalFlow {
	return &PreviewApprovalFlow{store: s, queue: queue, publisher: publisher, limiter: limiter, now: time.Now}
}

// Stage persists the bundle under the client + url-hash key and returns the
// hash the operator needs for approve/cancel.
func (f *PreviewApprovalFlow) Stage(ctx context.Context, client string, bundle models.ContentBundle) (string, error) {
	urlHash := utils.ShortHash(bundle.URL)
	stage := models.PreviewStage{
		ClientName:       normalizeClient(client),
		URL:              bundle.URL,
		URLHash:          urlHash,
		PostText:         bundle.PostText,
		ImageURL:         bundle.ImageURL,
		PostingAccountID: bundle.PostingAccountID,
		StagedAt:         f.now().UTC(),
	}
	raw, err := json.Marshal(stage)
	if err != nil {
		return "", err
	}
	if err := f.store.Set(ctx, previewKey(client, urlHash), string(raw), stageTTL); err != nil {
		return "", err
	}
	return urlHash, nil
}

// GetStage loads a staged bundle. Missing or expired stages return
// ErrStageNotFound.
func (f *PreviewApprovalFlow) GetStage(ctx context.Context, client, urlHash string) (models.PreviewStage, error) {
	raw, err := f.store.Get(ctx, previewKey(client, urlHash))
	if errors.Is(err, store.ErrNotFound) {
		return models.PreviewStage{}, ErrStageNotFound
	}
	if err != nil {
		return models.PreviewStage{}, err
	}
	var stage models.PreviewStage
	if err := json.Unmarshal([]byte(raw), &stage); err != nil {
		return models.PreviewStage{}, ErrStageNotFound
	}
	return stage, nil
}

// Approve publishes the staged bundle. On success the stage is consumed,
// the URL lands in the client's done-history and the post counts against
// the shared daily cap. On publish failure the stage stays intact so the
// operator can re-approve.
func (f *PreviewApprovalFlow) Approve(ctx context.Context, client, urlHash string) (string, error) {
	stage, err := f.GetStage(ctx, client, urlHash)
	if err != nil {
		return "", err
	}

	submissionID, err := f.publisher.Publish(ctx, stage.PostText, stage.ImageURL, stage.PostingAccountID, nil)
	if err != nil {
		return "", err
	}

	f.limiter.Increment(ctx, f.limiter.Today())
	if err := f.queue.RecordDone(ctx, client, stage.URL); err != nil {
		logger.Warn("history record failed after approve", "client", client, "error", err.Error())
	}
	if err := f.store.Del(ctx, previewKey(client, urlHash)); err != nil {
		logger.Warn("stage cleanup failed after approve", "client", client, "error", err.Error())
	}
	return submissionID, nil
}

// Cancel discards the stage. Idempotent: cancelling a missing stage is fine.
func (f *PreviewApprovalFlow) Cancel(ctx context.Context, client, urlHash string) error {
	return f.store.Del(ctx, previewKey(client, urlHash))
}
