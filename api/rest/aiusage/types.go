package aiusage

import "codeberg.org/finpal/server/internal/aiusage"

type FeatureRequest struct {
	Feature string `json:"feature" binding:"required"`
}

type UsageStatusResponse struct {
	Status        aiusage.UsageStatus `json:"status"`
	TimeRemaining string              `json:"time_remaining"` // HH:MM:SS until the daily reset
}

type CheckResponse struct {
	Allowed       bool                `json:"allowed"`
	Status        aiusage.UsageStatus `json:"status"`
	TimeRemaining string              `json:"time_remaining"`
	Code          string              `json:"code,omitempty"` // ai_limit_reached when denied
	Message       string              `json:"message,omitempty"`
}

type IncrementResponse struct {
	Success       bool                `json:"success"`
	Status        aiusage.UsageStatus `json:"status"`
	TimeRemaining string              `json:"time_remaining"`
	Code          string              `json:"code,omitempty"`
	Message       string              `json:"message,omitempty"`
}
