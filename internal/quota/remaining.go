package quota

import "github.com/linkcraft-ai/backend/internal/models"

// Remaining holds per-bucket remaining quota, clamped at zero.
type Remaining struct {
	Posts    int `json:"posts"`
	Comments int `json:"comments"`
	Replies  int `json:"replies"`
	Rewrites int `json:"rewrites"`
	Total    int `json:"total"`
}

// RemainingFor computes remaining quota for a plan and usage snapshot.
func RemainingFor(plan *models.Plan, usage models.Usage) Remaining {
	if plan == nil {
		return Remaining{}
	}
	return Remaining{
		Posts:    clampRemaining(plan.PostsLimit, usage.PostsCreated),
		Comments: clampRemaining(plan.CommentsLimit, usage.CommentsEnhanced),
		Replies:  clampRemaining(plan.RepliesLimit, usage.RepliesSuggested),
		Rewrites: clampRemaining(plan.RewritesLimit, usage.TextsRewritten),
		Total:    clampRemaining(plan.TotalUsageLimit, usage.TotalUsage),
	}
}

func clampRemaining(limit, used int) int {
	remaining := limit - used
	if remaining < 0 {
		return 0
	}
	return remaining
}
