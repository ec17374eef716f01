package quota

import (
	"strings"

	"github.com/linkcraft-ai/backend/internal/models"
)

// Action identifies one metered extension action.
type Action string

// Metered action kinds. MESSAGE_REPLIED charges the replies counter, the
// same bucket the extension has always used for inbox replies.
const (
	ActionPostCreated     Action = "POST_CREATED"
	ActionCommentEnhanced Action = "COMMENT_ENHANCED"
	ActionReplySuggested  Action = "REPLY_SUGGESTED"
	ActionTextRewritten   Action = "TEXT_REWRITTEN"
	ActionMessageReplied  Action = "MESSAGE_REPLIED"
)

// actionCounter binds an action to its usage column, plan limit, and the
// accessors reading them.
type actionCounter struct {
	column    string
	limitName string
	limit     func(*models.Plan) int
	used      func(models.Usage) int
}

var (
	postsCounter = actionCounter{
		column:    "posts_created",
		limitName: "postsLimit",
		limit:     func(plan *models.Plan) int { return plan.PostsLimit },
		used:      func(usage models.Usage) int { return usage.PostsCreated },
	}
	commentsCounter = actionCounter{
		column:    "comments_enhanced",
		limitName: "commentsLimit",
		limit:     func(plan *models.Plan) int { return plan.CommentsLimit },
		used:      func(usage models.Usage) int { return usage.CommentsEnhanced },
	}
	repliesCounter = actionCounter{
		column:    "replies_suggested",
		limitName: "repliesLimit",
		limit:     func(plan *models.Plan) int { return plan.RepliesLimit },
		used:      func(usage models.Usage) int { return usage.RepliesSuggested },
	}
	rewritesCounter = actionCounter{
		column:    "texts_rewritten",
		limitName: "rewritesLimit",
		limit:     func(plan *models.Plan) int { return plan.RewritesLimit },
		used:      func(usage models.Usage) int { return usage.TextsRewritten },
	}
)

var actionCounters = map[Action]actionCounter{
	ActionPostCreated:     postsCounter,
	ActionCommentEnhanced: commentsCounter,
	ActionReplySuggested:  repliesCounter,
	ActionTextRewritten:   rewritesCounter,
	ActionMessageReplied:  repliesCounter,
}

// ParseAction validates a raw action kind.
func ParseAction(raw string) (Action, bool) {
	action := Action(strings.TrimSpace(raw))
	_, ok := actionCounters[action]
	return action, ok
}

// Column returns the usage counter column charged by the action.
func (a Action) Column() string {
	return actionCounters[a].column
}

// LimitName returns the plan limit field name for the action.
func (a Action) LimitName() string {
	return actionCounters[a].limitName
}

// LimitFor returns the plan ceiling for the action.
func (a Action) LimitFor(plan *models.Plan) int {
	entry, ok := actionCounters[a]
	if !ok || plan == nil {
		return 0
	}
	return entry.limit(plan)
}

// UsedFrom returns the current counter value charged by the action.
func (a Action) UsedFrom(usage models.Usage) int {
	entry, ok := actionCounters[a]
	if !ok {
		return 0
	}
	return entry.used(usage)
}
