package aiusage

import (
	stderrors "errors"
	"net/http"

	"codeberg.org/finpal/server/internal/aiusage"
	"codeberg.org/finpal/server/internal/auth"
	"codeberg.org/finpal/server/internal/errors"
	"github.com/gin-gonic/gin"
)

// GetStatus godoc
// @Summary Get today's AI usage
// @Description Returns the authenticated user's AI usage for the current day, the shared daily limit and the countdown to the next reset
// @Tags ai-usage
// @Produce json
// @Success 200 {object} UsageStatusResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/ai-usage [get]
// @Security BearerAuth
func GetStatus(limiter *aiusage.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		status, err := limiter.GetUsageStatus(c.Request.Context(), userID)
		if err != nil {
			errors.ServiceUnavailable(c, "Failed to check usage limits", err)
			return
		}

		c.JSON(http.StatusOK, UsageStatusResponse{
			Status:        status,
			TimeRemaining: aiusage.FormatTimeRemaining(status.NextResetAt),
		})
	}
}

// CheckUsage godoc
// @Summary Check whether an AI feature may be used
// @Description Reports whether the authenticated user is still under the shared daily AI limit. Does not consume quota.
// @Tags ai-usage
// @Accept json
// @Produce json
// @Param request body FeatureRequest true "Feature to check (predictions, insights, chatbot)"
// @Success 200 {object} CheckResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} CheckResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/ai-usage/check [post]
// @Security BearerAuth
func CheckUsage(limiter *aiusage.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		feature, ok := bindFeature(c)
		if !ok {
			return
		}

		result := limiter.CheckUsage(c.Request.Context(), userID, feature)

		if !result.Allowed && !stderrors.Is(result.Err, aiusage.ErrLimitReached) {
			respondFailure(c, result.Error, result.Err)
			return
		}

		status, code := http.StatusOK, ""
		if !result.Allowed {
			status, code = http.StatusTooManyRequests, errors.CodeAILimitReached
		}

		c.JSON(status, CheckResponse{
			Allowed:       result.Allowed,
			Status:        result.Status,
			TimeRemaining: aiusage.FormatTimeRemaining(result.Status.NextResetAt),
			Code:          code,
			Message:       result.Error,
		})
	}
}

// IncrementUsage godoc
// @Summary Record one AI feature invocation
// @Description Consumes one unit of the authenticated user's shared daily AI quota for the given feature
// @Tags ai-usage
// @Accept json
// @Produce json
// @Param request body FeatureRequest true "Feature that was invoked (predictions, insights, chatbot)"
// @Success 200 {object} IncrementResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} IncrementResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/ai-usage/increment [post]
// @Security BearerAuth
func IncrementUsage(limiter *aiusage.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "user not authenticated")
			return
		}

		feature, ok := bindFeature(c)
		if !ok {
			return
		}

		result := limiter.IncrementUsage(c.Request.Context(), userID, feature)

		if !result.Success && !stderrors.Is(result.Err, aiusage.ErrLimitReached) {
			respondFailure(c, result.Error, result.Err)
			return
		}

		status, code := http.StatusOK, ""
		if !result.Success {
			status, code = http.StatusTooManyRequests, errors.CodeAILimitReached
		}

		c.JSON(status, IncrementResponse{
			Success:       result.Success,
			Status:        result.Status,
			TimeRemaining: aiusage.FormatTimeRemaining(result.Status.NextResetAt),
			Code:          code,
			Message:       result.Error,
		})
	}
}

// binds the request body and parses the feature name
func bindFeature(c *gin.Context) (aiusage.FeatureType, bool) {
	var req FeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.ValidationError(c, err)
		return "", false
	}

	feature, err := aiusage.ParseFeatureType(req.Feature)
	if err != nil {
		errors.InvalidFeature(c, "feature must be one of predictions, insights, chatbot")
		return "", false
	}

	return feature, true
}

// maps non-limit limiter failures to HTTP responses
func respondFailure(c *gin.Context, message string, err error) {
	switch {
	case stderrors.Is(err, aiusage.ErrInvalidFeature):
		errors.InvalidFeature(c, message)
	case stderrors.Is(err, aiusage.ErrInvalidUser):
		errors.Unauthorized(c, message)
	default:
		errors.ServiceUnavailable(c, message, err)
	}
}
