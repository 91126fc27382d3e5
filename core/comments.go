package core

// Listing pulls the comment children out of a source document. Any missing
// or wrongly-typed level yields an empty listing instead of an error.
func Listing(payload map[string]any) []any {
	data, _ := payload["data"].(map[string]any)
	children, _ := data["children"].([]any)
	return children
}

// FlattenComments walks a nested reply tree and returns every node's data
// payload, depth-first: each node before its descendants, each subtree fully
// before the next sibling. Malformed nodes (missing data, broken replies) are
// treated as leaves with an empty payload rather than aborting the walk.
//
// The traversal uses an explicit worklist so arbitrarily deep trees cannot
// exhaust the goroutine stack.
func FlattenComments(children []any) []Comment {
	var comments []Comment

	stack := make([]any, 0, len(children))
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, children[i])
	}

	for len(stack) > 0 {
		child := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, _ := child.(map[string]any)
		data, _ := node["data"].(map[string]any)
		if data == nil {
			data = map[string]any{}
		}
		comments = append(comments, Comment(data))

		// replies is either absent/null for a leaf or a nested listing
		// with its own children
		replies, _ := data["replies"].(map[string]any)
		nested := Listing(replies)
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, nested[i])
		}
	}
	return comments
}
