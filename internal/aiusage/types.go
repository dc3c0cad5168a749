// package aiusage meters AI feature usage per user per calendar day.
// predictions, insights and chatbot share one daily ceiling; the count
// resets when the calendar date changes in the configured time zone.
package aiusage

import (
	"fmt"
	"strings"
	"time"
)

// identifies one of the AI-backed dashboard features
type FeatureType string

const (
	FeaturePredictions FeatureType = "predictions"
	FeatureInsights    FeatureType = "insights"
	FeatureChatbot     FeatureType = "chatbot"
)

// all features that draw from the shared daily ceiling
var Features = []FeatureType{FeaturePredictions, FeatureInsights, FeatureChatbot}

// returns true if the feature is one of the known AI features
func (f FeatureType) IsValid() bool {
	switch f {
	case FeaturePredictions, FeatureInsights, FeatureChatbot:
		return true
	default:
		return false
	}
}

// parses a feature name, rejecting anything outside the closed set
func ParseFeatureType(s string) (FeatureType, error) {
	f := FeatureType(strings.ToLower(strings.TrimSpace(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFeature, s)
	}

	return f, nil
}

// persisted per-user-per-day counter row
type UsageRecord struct {
	UserID          string    `json:"user_id"`
	UsageDate       time.Time `json:"usage_date"`
	PredictionsUsed int       `json:"predictions_used"`
	InsightsUsed    int       `json:"insights_used"`
	ChatbotUsed     int       `json:"chatbot_used"`
	TotalUsed       int       `json:"total_used"`
}

// returns the counter for a single feature
func (r *UsageRecord) Used(f FeatureType) int {
	switch f {
	case FeaturePredictions:
		return r.PredictionsUsed
	case FeatureInsights:
		return r.InsightsUsed
	case FeatureChatbot:
		return r.ChatbotUsed
	default:
		return 0
	}
}

// adds one to the feature counter and the total
func (r *UsageRecord) increment(f FeatureType) {
	switch f {
	case FeaturePredictions:
		r.PredictionsUsed++
	case FeatureInsights:
		r.InsightsUsed++
	case FeatureChatbot:
		r.ChatbotUsed++
	default:
		return
	}

	r.TotalUsed++
}

// reports whether the total matches the sum of the feature counters
func (r *UsageRecord) IsConsistent() bool {
	return r.TotalUsed == r.PredictionsUsed+r.InsightsUsed+r.ChatbotUsed
}

// read-only projection of a usage record against the daily ceiling
type UsageStatus struct {
	TotalUsed       int       `json:"total_used"`
	TotalLimit      int       `json:"total_limit"`
	Remaining       int       `json:"remaining"`
	CanUseAI        bool      `json:"can_use_ai"`
	NextResetAt     time.Time `json:"next_reset_at"`
	PredictionsUsed int       `json:"predictions_used"`
	InsightsUsed    int       `json:"insights_used"`
	ChatbotUsed     int       `json:"chatbot_used"`

	// set when the store could not be read and the status is a placeholder
	Unavailable bool `json:"unavailable,omitempty"`
}

// outcome of CheckUsage
type CheckResult struct {
	Allowed bool        `json:"allowed"`
	Status  UsageStatus `json:"status"`
	Error   string      `json:"error,omitempty"`
	Err     error       `json:"-"`
}

// outcome of IncrementUsage
type IncrementResult struct {
	Success bool        `json:"success"`
	Status  UsageStatus `json:"status"`
	Error   string      `json:"error,omitempty"`
	Err     error       `json:"-"`
}

// holds limiter policy
type Config struct {
	// maximum invocations per user per day, summed across features
	DailyLimit int

	// zone whose midnight is the reset boundary
	Location *time.Location
}

// returns the reference policy: 25 per day, UTC midnight reset
func DefaultConfig() Config {
	return Config{
		DailyLimit: 25,
		Location:   time.UTC,
	}
}
