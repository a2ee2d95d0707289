// Package commenttree turns a flat, parent-linked comment list into a reply tree.
//
// Nodes are collected in an arena indexed by position; parent/child edges are
// arena indices, so dangling or self-referential parent ids can never produce a
// cycle. The tree is materialised only after the single forward pass.
package commenttree

import (
	"slices"

	"github.com/example/poetry-platform/services/poetry/internal/store"
)

// Node is a comment with its direct replies in ascending creation order.
type Node struct {
	store.CommentRecord
	Replies []Node `json:"replies"`
}

type slot struct {
	rec      store.CommentRecord
	children []int
}

// Build expects records ascending by CreatedAt. Roots come back newest first;
// every reply list keeps the input order. Comments whose parent is absent from
// records (or is the comment itself) are promoted to roots.
func Build(records []store.CommentRecord) []Node {
	arena := make([]slot, 0, len(records))
	index := make(map[int64]int, len(records))
	var roots []int

	for _, rec := range records {
		i := len(arena)
		arena = append(arena, slot{rec: rec})

		parent, ok := -1, false
		if rec.ParentID != nil {
			parent, ok = index[*rec.ParentID]
		}
		if ok {
			arena[parent].children = append(arena[parent].children, i)
		} else {
			roots = append(roots, i)
		}
		// Registered after attachment so a self reference cannot resolve.
		index[rec.ID] = i
	}

	slices.SortStableFunc(roots, func(a, b int) int {
		return arena[b].rec.CreatedAt.Compare(arena[a].rec.CreatedAt)
	})

	out := make([]Node, len(roots))
	for k, i := range roots {
		out[k] = materialize(arena, i)
	}
	return out
}

func materialize(arena []slot, i int) Node {
	n := Node{CommentRecord: arena[i].rec, Replies: make([]Node, len(arena[i].children))}
	for k, c := range arena[i].children {
		n.Replies[k] = materialize(arena, c)
	}
	return n
}

// Count returns the number of nodes in the forest.
func Count(nodes []Node) int {
	total := 0
	for _, n := range nodes {
		total += 1 + Count(n.Replies)
	}
	return total
}
