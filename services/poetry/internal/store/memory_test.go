package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

// steppedClock returns t0, t0+1m, t0+2m, ...
func steppedClock(t0 time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		t := t0.Add(time.Duration(n) * time.Minute)
		n++
		return t
	}
}

func TestInMemoryStore_FindPoemByTitle_TrimmedExactMatch(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	s.AddPoem(Poem{Title: " 静夜思 ", Poet: "李白", Dynasty: "唐"})

	p, ok, err := s.FindPoemByTitle(ctx, "静夜思")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if p.Poet != "李白" {
		t.Fatalf("expected poet 李白, got %q", p.Poet)
	}

	if _, ok, _ := s.FindPoemByTitle(ctx, "静夜"); ok {
		t.Fatal("substring must not match")
	}
}

func TestInMemoryStore_FindPoemByTitle_CaseSensitive(t *testing.T) {
	s := NewInMemoryStore()
	s.AddPoem(Poem{Title: "Ode", Poet: "Keats"})

	if _, ok, _ := s.FindPoemByTitle(context.Background(), "ode"); ok {
		t.Fatal("expected case-sensitive comparison")
	}
}

func TestInMemoryStore_ListPoems_Search(t *testing.T) {
	s := NewSeededInMemoryStore()
	ctx := context.Background()

	all, _ := s.ListPoems(ctx, "")
	if len(all) != 4 {
		t.Fatalf("expected 4 seeded poems, got %d", len(all))
	}

	byPoet, _ := s.ListPoems(ctx, "杜甫")
	if len(byPoet) != 1 || byPoet[0].Title != "春望" {
		t.Fatalf("expected 春望 by poet search, got %+v", byPoet)
	}

	byContent, _ := s.ListPoems(ctx, "明月")
	if len(byContent) != 1 || byContent[0].Title != "静夜思" {
		t.Fatalf("expected 静夜思 by content search, got %+v", byContent)
	}
}

func TestInMemoryStore_ListPoems_Cap(t *testing.T) {
	s := NewInMemoryStore()
	for i := 0; i < MaxPoems+5; i++ {
		s.AddPoem(Poem{Title: "t", Poet: "p"})
	}
	got, _ := s.ListPoems(context.Background(), "")
	if len(got) != MaxPoems {
		t.Fatalf("expected %d poems, got %d", MaxPoems, len(got))
	}
}

func TestInMemoryStore_GetPoem_NotFound(t *testing.T) {
	s := NewInMemoryStore()
	if _, err := s.GetPoem(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_Comments(t *testing.T) {
	s := NewInMemoryStore(WithClock(steppedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	ctx := context.Background()

	rootID, err := s.CreateComment(ctx, NewComment{PoemID: 1, Content: "好诗", Username: "alice"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	replyID, _ := s.CreateComment(ctx, NewComment{PoemID: 1, Content: "同意", ParentID: &rootID})
	_, _ = s.CreateComment(ctx, NewComment{PoemID: 2, Content: "other poem"})

	got, err := s.ListComments(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 comments for poem 1, got %d", len(got))
	}
	if got[0].ID != rootID || got[1].ID != replyID {
		t.Fatalf("expected ascending order [%d %d], got [%d %d]", rootID, replyID, got[0].ID, got[1].ID)
	}
	if got[1].Username != DefaultUsername {
		t.Fatalf("expected default username, got %q", got[1].Username)
	}
	if got[1].ParentUsername == nil || *got[1].ParentUsername != "alice" {
		t.Fatalf("expected parent username alice, got %v", got[1].ParentUsername)
	}
	if got[0].ParentUsername != nil {
		t.Fatal("root comment must not carry a parent username")
	}
}

func TestInMemoryStore_Comments_DanglingParent(t *testing.T) {
	s := NewInMemoryStore()
	missing := int64(404)
	_, _ = s.CreateComment(context.Background(), NewComment{PoemID: 1, Content: "orphan", ParentID: &missing})

	got, _ := s.ListComments(context.Background(), 1)
	if len(got) != 1 || got[0].ParentUsername != nil {
		t.Fatalf("expected orphan with nil parent username, got %+v", got)
	}
}

func TestInMemoryStore_Relationships(t *testing.T) {
	s := NewSeededInMemoryStore()
	g, err := s.Relationships(context.Background())
	if err != nil {
		t.Fatalf("relationships: %v", err)
	}
	if len(g.Nodes) != 4 {
		t.Fatalf("expected 4 poets, got %d", len(g.Nodes))
	}
	if len(g.Links) != 2 || g.Links[0].Source != "李白" {
		t.Fatalf("unexpected links %+v", g.Links)
	}
	if g.Nodes[0].Group != "唐" {
		t.Fatalf("expected dynasty as group, got %q", g.Nodes[0].Group)
	}
}
