package aiusage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/finpal/server/internal/logger"
)

const (
	opGetOrCreate = "get_or_create"
	opIncrement   = "increment"
)

// gates and meters AI feature usage per user against a shared daily ceiling.
// holds no mutable state of its own; all counters live in the store.
type Limiter struct {
	store   Store
	config  Config
	clock   Clock
	metrics *Metrics
}

// configures optional limiter collaborators
type Option func(*Limiter)

// overrides the wall clock, mainly for tests
func WithClock(clock Clock) Option {
	return func(l *Limiter) {
		l.clock = clock
	}
}

// enables Prometheus metrics
func WithMetrics(metrics *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = metrics
	}
}

// creates a limiter over store with the given policy
func NewLimiter(store Store, config Config, opts ...Option) *Limiter {
	if config.Location == nil {
		config.Location = time.UTC
	}

	if config.DailyLimit < 0 {
		config.DailyLimit = 0
	}

	l := &Limiter{
		store:  store,
		config: config,
		clock:  SystemClock(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// returns the policy in effect
func (l *Limiter) Config() Config {
	return l.config
}

// reports whether the user may invoke an AI feature right now.
// the status snapshot is always populated; on store failure the
// result is denied and the status is marked unavailable.
func (l *Limiter) CheckUsage(ctx context.Context, userID string, feature FeatureType) CheckResult {
	now := l.clock.Now()

	if !feature.IsValid() {
		return CheckResult{
			Status: l.unavailableStatus(now),
			Error:  msgInvalidFeature,
			Err:    fmt.Errorf("%w: %q", ErrInvalidFeature, feature),
		}
	}

	result := l.check(ctx, userID, now)
	if !errors.Is(result.Err, ErrStoreUnavailable) && !errors.Is(result.Err, ErrInvalidUser) {
		l.metrics.recordCheck(feature, result.Allowed)
	}

	return result
}

// records one invocation of feature for the user if the daily ceiling
// allows it. the check and the write share the same calendar day, and the
// write itself is guarded so concurrent callers cannot overshoot the ceiling.
func (l *Limiter) IncrementUsage(ctx context.Context, userID string, feature FeatureType) IncrementResult {
	now := l.clock.Now()

	if !feature.IsValid() {
		return IncrementResult{
			Status: l.unavailableStatus(now),
			Error:  msgInvalidFeature,
			Err:    fmt.Errorf("%w: %q", ErrInvalidFeature, feature),
		}
	}

	check := l.check(ctx, userID, now)
	if !check.Allowed {
		result := IncrementResult{
			Status: check.Status,
			Error:  check.Error,
			Err:    check.Err,
		}

		if errors.Is(check.Err, ErrStoreUnavailable) {
			result.Error = msgIncrementFailed
		}

		if errors.Is(check.Err, ErrLimitReached) {
			l.metrics.recordCheck(feature, false)
			l.metrics.recordIncrement(feature, false)
		}

		return result
	}

	day := calendarDay(now, l.config.Location)

	start := time.Now()
	record, applied, err := l.store.IncrementIfBelow(ctx, userID, day, feature, l.config.DailyLimit)
	l.metrics.observeStore(opIncrement, start)

	if err != nil {
		l.metrics.recordStoreError(opIncrement)

		return IncrementResult{
			Status: check.Status,
			Error:  msgIncrementFailed,
			Err:    fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
		}
	}

	l.verifyRecord(ctx, record)
	status := l.statusFor(record, now)
	l.metrics.recordIncrement(feature, applied)

	if !applied {
		// a concurrent increment took the last slot after our check
		l.metrics.recordCheck(feature, false)

		return IncrementResult{
			Status: status,
			Error:  limitMessage(status.TotalLimit, status.NextResetAt),
			Err:    ErrLimitReached,
		}
	}

	return IncrementResult{
		Success: true,
		Status:  status,
	}
}

// returns only the status projection for the user's current day
func (l *Limiter) GetUsageStatus(ctx context.Context, userID string) (UsageStatus, error) {
	result := l.check(ctx, userID, l.clock.Now())

	if errors.Is(result.Err, ErrLimitReached) {
		return result.Status, nil
	}

	return result.Status, result.Err
}

func (l *Limiter) check(ctx context.Context, userID string, now time.Time) CheckResult {
	if userID == "" {
		return CheckResult{
			Status: l.unavailableStatus(now),
			Error:  msgInvalidUser,
			Err:    ErrInvalidUser,
		}
	}

	day := calendarDay(now, l.config.Location)

	start := time.Now()
	record, err := l.store.GetOrCreate(ctx, userID, day)
	l.metrics.observeStore(opGetOrCreate, start)

	if err != nil {
		l.metrics.recordStoreError(opGetOrCreate)

		return CheckResult{
			Status: l.unavailableStatus(now),
			Error:  msgCheckFailed,
			Err:    fmt.Errorf("%w: %w", ErrStoreUnavailable, err),
		}
	}

	l.verifyRecord(ctx, record)
	status := l.statusFor(record, now)

	if !status.CanUseAI {
		return CheckResult{
			Status: status,
			Error:  limitMessage(status.TotalLimit, status.NextResetAt),
			Err:    ErrLimitReached,
		}
	}

	return CheckResult{
		Allowed: true,
		Status:  status,
	}
}

// computes the status projection of record at now
func (l *Limiter) statusFor(record *UsageRecord, now time.Time) UsageStatus {
	limit := l.config.DailyLimit

	return UsageStatus{
		TotalUsed:       record.TotalUsed,
		TotalLimit:      limit,
		Remaining:       max(0, limit-record.TotalUsed),
		CanUseAI:        record.TotalUsed < limit,
		NextResetAt:     nextMidnight(now, l.config.Location),
		PredictionsUsed: record.PredictionsUsed,
		InsightsUsed:    record.InsightsUsed,
		ChatbotUsed:     record.ChatbotUsed,
	}
}

// placeholder status when usage is unknown; reports no quota so that
// callers rendering it cannot offer an AI action the limiter refused
func (l *Limiter) unavailableStatus(now time.Time) UsageStatus {
	return UsageStatus{
		TotalLimit:  l.config.DailyLimit,
		NextResetAt: nextMidnight(now, l.config.Location),
		Unavailable: true,
	}
}

// logs records whose total drifted from the feature sum; never corrects them
func (l *Limiter) verifyRecord(ctx context.Context, record *UsageRecord) {
	if record.IsConsistent() {
		return
	}

	l.metrics.recordIntegrityError()

	logger.FromContext(ctx).Warn("usage record total diverges from feature counters",
		"user_id", record.UserID,
		"usage_date", dayKey(record.UsageDate),
		"total_used", record.TotalUsed,
		"predictions_used", record.PredictionsUsed,
		"insights_used", record.InsightsUsed,
		"chatbot_used", record.ChatbotUsed,
	)
}
