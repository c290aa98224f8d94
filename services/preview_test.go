package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"linkedin-content-platform/internal/store"
	"linkedin-content-platform/models"
	"linkedin-content-platform/utils"
)

func testBundle(url string) models.ContentBundle {
	return models.ContentBundle{
		URL:              url,
		PostText:         "post body",
		ImageURL:         "https://cdn.example/img.png",
		PostingAccountID: "acct-1",
	}
}

func newPreviewFlow(t *testing.T, s *store.MemoryStore, pub Publisher) (*PreviewApprovalFlow, *JobQueue, *DailyRateLimiter) {
	t.Helper()
	queue := NewJobQueue(s)
	limiter, err := NewDailyRateLimiter(s, 5, "America/New_York")
	require.NoError(t, err)
	limiter.SetClock(fixedClock(t, "2024-06-10 09:00")) // Monday
	return NewPreviewApprovalFlow(s, queue, pub, limiter), queue, limiter
}

func TestStageAndGetStage(t *testing.T) {
	s := store.NewMemoryStore()
	flow, _, _ := newPreviewFlow(t, s, &fakePublisher{submissionID: "sub-1"})
	ctx := context.Background()

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)
	require.Equal(t, utils.ShortHash("https://youtu.be/abc"), hash)

	stage, err := flow.GetStage(ctx, "acme", hash)
	require.NoError(t, err)
	require.Equal(t, "acme", stage.ClientName)
	require.Equal(t, "post body", stage.PostText)

	_, err = flow.GetStage(ctx, "acme", "deadbeef00")
	require.ErrorIs(t, err, ErrStageNotFound)
}

func TestApproveConsumesStageAndRecordsHistory(t *testing.T) {
	s := store.NewMemoryStore()
	pub := &fakePublisher{submissionID: "sub-1"}
	flow, queue, _ := newPreviewFlow(t, s, pub)
	ctx := context.Background()

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)

	submissionID, err := flow.Approve(ctx, "acme", hash)
	require.NoError(t, err)
	require.Equal(t, "sub-1", submissionID)
	require.Equal(t, 1, pub.calls)

	// Stage is gone, history has the URL.
	_, err = flow.GetStage(ctx, "acme", hash)
	require.ErrorIs(t, err, ErrStageNotFound)

	records, err := queue.History(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "https://youtu.be/abc", records[0].URL)
}

func TestApproveCountsAgainstDailyCap(t *testing.T) {
	s := store.NewMemoryStore()
	flow, _, limiter := newPreviewFlow(t, s, &fakePublisher{submissionID: "sub-1"})
	ctx := context.Background()

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)

	require.Equal(t, 0, limiter.GetCount(ctx, limiter.Today()))

	_, err = flow.Approve(ctx, "acme", hash)
	require.NoError(t, err)

	// An approved preview post draws from the same shared budget as an
	// auto-published one.
	require.Equal(t, 1, limiter.GetCount(ctx, limiter.Today()))
	require.Equal(t, 4, limiter.RemainingToday(ctx))
}

func TestApprovePublishFailureKeepsStage(t *testing.T) {
	s := store.NewMemoryStore()
	pub := &fakePublisher{err: Transient(context.DeadlineExceeded)}
	flow, queue, limiter := newPreviewFlow(t, s, pub)
	ctx := context.Background()

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)

	_, err = flow.Approve(ctx, "acme", hash)
	require.Error(t, err)

	// Stage survives for a retry; nothing landed in history or the budget.
	stage, err := flow.GetStage(ctx, "acme", hash)
	require.NoError(t, err)
	require.Equal(t, "post body", stage.PostText)

	records, err := queue.History(ctx, "acme")
	require.NoError(t, err)
	require.Empty(t, records)

	require.Equal(t, 0, limiter.GetCount(ctx, limiter.Today()))
}

func TestCancelIsIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	flow, _, _ := newPreviewFlow(t, s, &fakePublisher{})
	ctx := context.Background()

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)

	require.NoError(t, flow.Cancel(ctx, "acme", hash))
	_, err = flow.GetStage(ctx, "acme", hash)
	require.ErrorIs(t, err, ErrStageNotFound)

	require.NoError(t, flow.Cancel(ctx, "acme", hash))
}

func TestStageExpires(t *testing.T) {
	s := store.NewMemoryStore()
	flow, _, _ := newPreviewFlow(t, s, &fakePublisher{})
	ctx := context.Background()

	now := time.Now()
	s.SetClock(func() time.Time { return now })

	hash, err := flow.Stage(ctx, "acme", testBundle("https://youtu.be/abc"))
	require.NoError(t, err)

	now = now.Add(stageTTL + time.Minute)

	_, err = flow.GetStage(ctx, "acme", hash)
	require.ErrorIs(t, err, ErrStageNotFound)
}
