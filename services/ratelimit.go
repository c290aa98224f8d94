package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"linkedin-content-platform/internal/logger"
	"linkedin-content-platform/internal/store"
)

// counterTTL keeps yesterday's counter around for dashboards before the
// store reclaims it.
const counterTTL = 48 * time.Hour

// DailyRateLimiter caps total published posts per calendar day across all
// clients. Days are reckoned in a fixed business timezone and posting is
// gated to weekdays. Reads fail open (count 0) and failed increments are
// logged and dropped; the counter is best-effort accounting, not a safety
// invariant.
type DailyRateLimiter struct {
	store     store.Store
	maxPerDay int
	loc       *time.Location
	now       func() time.Time
}

func NewDailyRateLimiter(s store.Store, maxPerDay int, timezone string) (*DailyRateLimiter, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	return &DailyRateLimiter{
		store:     s,
		maxPerDay: maxPerDay,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// SetClock overrides the time source for tests.
func (l *DailyRateLimiter) SetClock(now func() time.Time) { l.now = now }

// Today returns the current calendar day in the posting timezone.
func (l *DailyRateLimiter) Today() string {
	return l.now().In(l.loc).Format("2006-01-02")
}

// IsWeekday reports whether it is currently a weekday in the posting
// timezone.
func (l *DailyRateLimiter) IsWeekday() bool {
	switch l.now().In(l.loc).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// GetCount returns the post count for the given date (YYYY-MM-DD). Store
// errors degrade to 0.
func (l *DailyRateLimiter) GetCount(ctx context.Context, date string) int {
	raw, err := l.store.Get(ctx, dailyKey(date))
	if errors.Is(err, store.ErrNotFound) {
		return 0
	}
	if err != nil {
		logger.Warn("daily counter read failed, assuming 0", "date", date, "error", err.Error())
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// Increment atomically bumps the counter for date and returns the new
// value. A failed increment is logged and reported as the current count;
// the drift only affects the dashboard number.
func (l *DailyRateLimiter) Increment(ctx context.Context, date string) int {
	key := dailyKey(date)
	n, err := l.store.Incr(ctx, key)
	if err != nil {
		logger.Warn("daily counter increment failed", "date", date, "error", err.Error())
		return l.GetCount(ctx, date)
	}
	if n == 1 {
		if err := l.store.Expire(ctx, key, counterTTL); err != nil {
			logger.Warn("daily counter expire failed", "date", date, "error", err.Error())
		}
	}
	return int(n)
}

// CanPostNow reports whether another post is allowed today.
func (l *DailyRateLimiter) CanPostNow(ctx context.Context) bool {
	if !l.IsWeekday() {
		return false
	}
	return l.GetCount(ctx, l.Today()) < l.maxPerDay
}

// RemainingToday returns how many more posts may go out today; 0 on
// non-weekdays.
func (l *DailyRateLimiter) RemainingToday(ctx context.Context) int {
	if !l.IsWeekday() {
		return 0
	}
	remaining := l.maxPerDay - l.GetCount(ctx, l.Today())
	if remaining < 0 {
		return 0
	}
	return remaining
}
