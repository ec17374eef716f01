package quota

import (
	"testing"

	"github.com/linkcraft-ai/backend/internal/models"
)

func TestActionAccessors(t *testing.T) {
	plan := &models.Plan{
		PostsLimit:      1,
		CommentsLimit:   2,
		RepliesLimit:    3,
		RewritesLimit:   4,
		TotalUsageLimit: 10,
	}
	usage := models.Usage{
		PostsCreated:     5,
		CommentsEnhanced: 6,
		RepliesSuggested: 7,
		TextsRewritten:   8,
	}

	cases := []struct {
		action    Action
		column    string
		limitName string
		limit     int
		used      int
	}{
		{ActionPostCreated, "posts_created", "postsLimit", 1, 5},
		{ActionCommentEnhanced, "comments_enhanced", "commentsLimit", 2, 6},
		{ActionReplySuggested, "replies_suggested", "repliesLimit", 3, 7},
		{ActionTextRewritten, "texts_rewritten", "rewritesLimit", 4, 8},
		{ActionMessageReplied, "replies_suggested", "repliesLimit", 3, 7},
	}
	for _, tc := range cases {
		if got := tc.action.Column(); got != tc.column {
			t.Errorf("%s.Column() = %q, want %q", tc.action, got, tc.column)
		}
		if got := tc.action.LimitName(); got != tc.limitName {
			t.Errorf("%s.LimitName() = %q, want %q", tc.action, got, tc.limitName)
		}
		if got := tc.action.LimitFor(plan); got != tc.limit {
			t.Errorf("%s.LimitFor = %d, want %d", tc.action, got, tc.limit)
		}
		if got := tc.action.UsedFrom(usage); got != tc.used {
			t.Errorf("%s.UsedFrom = %d, want %d", tc.action, got, tc.used)
		}
	}
}

func TestActionAccessors_UnknownAction(t *testing.T) {
	unknown := Action("SOMETHING_ELSE")
	if got := unknown.LimitFor(&models.Plan{PostsLimit: 9}); got != 0 {
		t.Fatalf("LimitFor = %d, want 0", got)
	}
	if got := unknown.UsedFrom(models.Usage{PostsCreated: 9}); got != 0 {
		t.Fatalf("UsedFrom = %d, want 0", got)
	}
	if _, ok := ParseAction("SOMETHING_ELSE"); ok {
		t.Fatalf("ParseAction accepted an unknown action")
	}
}
