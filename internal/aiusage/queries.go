package aiusage

import "fmt"

const (
	createTableSQL = `
		CREATE TABLE IF NOT EXISTS ai_usage (
			user_id TEXT NOT NULL,
			usage_date DATE NOT NULL,
			predictions_used INTEGER NOT NULL DEFAULT 0 CHECK (predictions_used >= 0),
			insights_used INTEGER NOT NULL DEFAULT 0 CHECK (insights_used >= 0),
			chatbot_used INTEGER NOT NULL DEFAULT 0 CHECK (chatbot_used >= 0),
			total_used INTEGER NOT NULL DEFAULT 0 CHECK (total_used >= 0),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, usage_date)
		);
	`

	// DO UPDATE rather than DO NOTHING so RETURNING yields the row even
	// when a concurrent transaction inserted it first
	queryGetOrCreate = `
		INSERT INTO ai_usage (user_id, usage_date)
		VALUES ($1, $2::date)
		ON CONFLICT (user_id, usage_date)
		DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, usage_date, predictions_used, insights_used, chatbot_used, total_used
	`

	queryIncrementTemplate = `
		INSERT INTO ai_usage (user_id, usage_date, %[1]s, total_used)
		VALUES ($1, $2::date, 1, 1)
		ON CONFLICT (user_id, usage_date)
		DO UPDATE SET
			%[1]s = ai_usage.%[1]s + 1,
			total_used = ai_usage.total_used + 1,
			updated_at = NOW()
		WHERE ai_usage.total_used < $3
		RETURNING user_id, usage_date, predictions_used, insights_used, chatbot_used, total_used
	`

	queryPruneBefore = `
		DELETE FROM ai_usage
		WHERE usage_date < $1::date
	`
)

// column holding each feature's counter
var featureColumns = map[FeatureType]string{
	FeaturePredictions: "predictions_used",
	FeatureInsights:    "insights_used",
	FeatureChatbot:     "chatbot_used",
}

// guarded increment statement per feature, built from the fixed column set
var queryIncrement = func() map[FeatureType]string {
	queries := make(map[FeatureType]string, len(featureColumns))
	for feature, column := range featureColumns {
		queries[feature] = fmt.Sprintf(queryIncrementTemplate, column)
	}
	return queries
}()
