package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"scan-service/core"
)

func node(id string, replies ...any) map[string]any {
	data := map[string]any{
		"id":   id,
		"body": "comment " + id,
	}
	if len(replies) > 0 {
		data["replies"] = map[string]any{
			"data": map[string]any{
				"children": replies,
			},
		}
	}
	return map[string]any{"data": data}
}

func ids(comments []core.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, c.ID())
	}
	return out
}

func TestFlattenComments(t *testing.T) {
	testCases := []struct {
		desc     string
		children []any
		wantIDs  []string
	}{
		{
			desc:     "nested reply is yielded after its parent",
			children: []any{node("1", node("1.1"))},
			wantIDs:  []string{"1", "1.1"},
		},
		{
			desc: "subtree completes before the next sibling",
			children: []any{
				node("1", node("1.1", node("1.1.1")), node("1.2")),
				node("2"),
			},
			wantIDs: []string{"1", "1.1", "1.1.1", "1.2", "2"},
		},
		{
			desc:     "empty listing",
			children: nil,
			wantIDs:  []string{},
		},
		{
			desc: "node without data yields an empty record",
			children: []any{
				map[string]any{},
				node("2"),
			},
			wantIDs: []string{"", "2"},
		},
		{
			desc: "malformed replies treated as leaf",
			children: []any{
				map[string]any{"data": map[string]any{"id": "1", "replies": "not a listing"}},
				node("2"),
			},
			wantIDs: []string{"1", "2"},
		},
		{
			desc: "non-object child yields an empty record",
			children: []any{
				"garbage",
				node("2"),
			},
			wantIDs: []string{"", "2"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := core.FlattenComments(tc.children)
			require.Equal(t, tc.wantIDs, ids(got))
		})
	}
}

func TestFlattenCommentsDeepNesting(t *testing.T) {
	// a degenerate 10000-level chain must not exhaust the stack
	const depth = 10000

	leaf := node("deep")
	current := leaf
	for i := 0; i < depth; i++ {
		current = node("n", current)
	}

	got := core.FlattenComments([]any{current})
	require.Len(t, got, depth+1)
	require.Equal(t, "deep", got[depth].ID())
}

func TestListing(t *testing.T) {
	testCases := []struct {
		desc    string
		payload map[string]any
		wantLen int
	}{
		{
			desc: "valid listing",
			payload: map[string]any{
				"data": map[string]any{
					"children": []any{node("1"), node("2")},
				},
			},
			wantLen: 2,
		},
		{
			desc:    "missing data",
			payload: map[string]any{},
			wantLen: 0,
		},
		{
			desc: "children wrong type",
			payload: map[string]any{
				"data": map[string]any{"children": "oops"},
			},
			wantLen: 0,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			require.Len(t, core.Listing(tc.payload), tc.wantLen)
		})
	}
}
