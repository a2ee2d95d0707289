package commenttree

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/example/poetry-platform/services/poetry/internal/store"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr(v int64) *int64 { return &v }

func rec(id int64, parent *int64, minute int) store.CommentRecord {
	return store.CommentRecord{
		ID:        id,
		PoemID:    1,
		Content:   "c",
		Username:  "u",
		CreatedAt: t0.Add(time.Duration(minute) * time.Minute),
		ParentID:  parent,
	}
}

func ids(nodes []Node) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	got := Build(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Fatalf("expected [] JSON, got %s", b)
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	records := []store.CommentRecord{
		rec(1, nil, 1),
		rec(2, ptr(1), 2),
		rec(3, nil, 3),
	}
	got := Build(records)

	if !reflect.DeepEqual(ids(got), []int64{3, 1}) {
		t.Fatalf("expected root order [3 1], got %v", ids(got))
	}
	if !reflect.DeepEqual(ids(got[1].Replies), []int64{2}) {
		t.Fatalf("expected node 1 replies [2], got %v", ids(got[1].Replies))
	}
	if len(got[0].Replies) != 0 || got[0].Replies == nil {
		t.Fatalf("expected empty non-nil replies on node 3, got %#v", got[0].Replies)
	}
}

// Roots surface newest first while a thread reads oldest first. This mirrors the
// existing comment endpoint; keep the asymmetry unless the product decides otherwise.
func TestBuild_RootsDescendingRepliesAscending(t *testing.T) {
	records := []store.CommentRecord{
		rec(1, nil, 1),
		rec(2, ptr(1), 2),
		rec(3, nil, 3),
		rec(4, ptr(1), 4),
		rec(5, ptr(1), 5),
		rec(6, nil, 6),
	}
	got := Build(records)

	if !reflect.DeepEqual(ids(got), []int64{6, 3, 1}) {
		t.Fatalf("expected roots [6 3 1], got %v", ids(got))
	}
	if !reflect.DeepEqual(ids(got[2].Replies), []int64{2, 4, 5}) {
		t.Fatalf("expected replies [2 4 5], got %v", ids(got[2].Replies))
	}
}

func TestBuild_NestedReplies(t *testing.T) {
	records := []store.CommentRecord{
		rec(1, nil, 1),
		rec(2, ptr(1), 2),
		rec(3, ptr(2), 3),
	}
	got := Build(records)

	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("expected single root 1, got %v", ids(got))
	}
	if len(got[0].Replies) != 1 || len(got[0].Replies[0].Replies) != 1 || got[0].Replies[0].Replies[0].ID != 3 {
		t.Fatalf("expected 1 -> 2 -> 3 chain, got %+v", got)
	}
}

func TestBuild_OrphanPromotedToRoot(t *testing.T) {
	records := []store.CommentRecord{
		rec(1, nil, 1),
		rec(2, ptr(99), 2),
	}
	got := Build(records)

	if !reflect.DeepEqual(ids(got), []int64{2, 1}) {
		t.Fatalf("expected orphan 2 among roots, got %v", ids(got))
	}
	if got[0].ParentID == nil || *got[0].ParentID != 99 {
		t.Fatal("orphan must keep its declared parent id")
	}
}

func TestBuild_ParentAfterChildIsOrphan(t *testing.T) {
	// Parent seen later in the pass does not resolve.
	records := []store.CommentRecord{
		rec(2, ptr(1), 1),
		rec(1, nil, 2),
	}
	got := Build(records)
	if Count(got) != 2 || len(got) != 2 {
		t.Fatalf("expected two roots, got %v", ids(got))
	}
}

func TestBuild_SelfReferenceTerminates(t *testing.T) {
	records := []store.CommentRecord{rec(7, ptr(7), 1)}

	done := make(chan []Node, 1)
	go func() { done <- Build(records) }()

	select {
	case got := <-done:
		if !reflect.DeepEqual(ids(got), []int64{7}) || len(got[0].Replies) != 0 {
			t.Fatalf("expected self-referencing node as lone root, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("Build did not terminate on self reference")
	}
}

func TestBuild_StableTies(t *testing.T) {
	records := []store.CommentRecord{
		rec(1, nil, 1),
		rec(2, nil, 1),
		rec(3, nil, 1),
	}
	got := Build(records)
	if !reflect.DeepEqual(ids(got), []int64{1, 2, 3}) {
		t.Fatalf("expected ties to keep input order, got %v", ids(got))
	}
}

func TestBuild_Idempotent(t *testing.T) {
	records := randomRecords(rand.New(rand.NewSource(1)), 200)
	a := Build(records)
	b := Build(records)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical trees from identical input")
	}
}

func TestBuild_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		records := randomRecords(rng, rng.Intn(80))
		got := Build(records)

		if Count(got) != len(records) {
			t.Fatalf("round %d: expected %d nodes, got %d", round, len(records), Count(got))
		}

		seen := map[int64]bool{}
		for _, r := range records {
			seen[r.ID] = false
		}
		position := map[int64]int{}
		for i, r := range records {
			position[r.ID] = i
		}
		var walk func(nodes []Node, parent *Node)
		walk = func(nodes []Node, parent *Node) {
			for i, n := range nodes {
				if seen[n.ID] {
					t.Fatalf("round %d: node %d appears twice", round, n.ID)
				}
				seen[n.ID] = true

				if parent == nil {
					if n.ParentID != nil {
						if p, ok := position[*n.ParentID]; ok && p < position[n.ID] {
							t.Fatalf("round %d: resolvable node %d placed at root", round, n.ID)
						}
					}
					if i > 0 && nodes[i-1].CreatedAt.Before(n.CreatedAt) {
						t.Fatalf("round %d: roots not descending at %d", round, i)
					}
				} else {
					if n.ParentID == nil || *n.ParentID != parent.ID {
						t.Fatalf("round %d: node %d attached under wrong parent %d", round, n.ID, parent.ID)
					}
					if i > 0 && position[nodes[i-1].ID] > position[n.ID] {
						t.Fatalf("round %d: replies of %d not in input order", round, parent.ID)
					}
				}
				walk(n.Replies, &nodes[i])
			}
		}
		walk(got, nil)

		for id, ok := range seen {
			if !ok {
				t.Fatalf("round %d: node %d lost", round, id)
			}
		}
	}
}

// randomRecords builds n ascending records with a mix of roots, valid replies,
// dangling parents and self references.
func randomRecords(rng *rand.Rand, n int) []store.CommentRecord {
	out := make([]store.CommentRecord, 0, n)
	minute := 0
	for i := 0; i < n; i++ {
		id := int64(i + 1)
		minute += rng.Intn(3) // equal timestamps happen
		var parent *int64
		switch k := rng.Intn(10); {
		case k < 3:
		case k < 8 && i > 0:
			parent = ptr(int64(rng.Intn(i) + 1))
		case k == 8:
			parent = ptr(int64(n + 100 + i))
		default:
			parent = ptr(id)
		}
		out = append(out, rec(id, parent, minute))
	}
	return out
}

func TestNode_JSONShape(t *testing.T) {
	name := "alice"
	r := rec(2, ptr(1), 0)
	r.ParentUsername = &name
	b, err := json.Marshal(Node{CommentRecord: r, Replies: []Node{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for _, k := range []string{"id", "poemID", "content", "username", "createdAt", "parentID", "parentUsername", "replies"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("expected key %q in %s", k, b)
		}
	}
}
