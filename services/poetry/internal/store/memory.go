package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a development-only in-memory implementation.
type InMemoryStore struct {
	mu       sync.RWMutex
	poems    []Poem
	poets    []GraphNode
	links    []GraphLink
	comments []CommentRecord
	nextID   int64
	now      func() time.Time
}

// MemoryOption configures an InMemoryStore.
type MemoryOption func(*InMemoryStore)

// WithClock overrides the timestamp source used for new comments.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) { s.now = now }
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{now: func() time.Time { return time.Now().UTC() }}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewSeededInMemoryStore returns a store preloaded with a handful of Tang poems
// so the service is usable without a database.
func NewSeededInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := NewInMemoryStore(opts...)
	s.AddPoem(Poem{Title: "静夜思", Poet: "李白", Dynasty: "唐", Content: "床前明月光，疑是地上霜。举头望明月，低头思故乡。"})
	s.AddPoem(Poem{Title: "春晓", Poet: "孟浩然", Dynasty: "唐", Content: "春眠不觉晓，处处闻啼鸟。夜来风雨声，花落知多少。"})
	s.AddPoem(Poem{Title: "登鹳雀楼", Poet: "王之涣", Dynasty: "唐", Content: "白日依山尽，黄河入海流。欲穷千里目，更上一层楼。"})
	s.AddPoem(Poem{Title: "春望", Poet: "杜甫", Dynasty: "唐", Content: "国破山河在，城春草木深。感时花溅泪，恨别鸟惊心。"})
	s.AddRelationship(GraphLink{Source: "李白", Target: "杜甫", Relation: "挚友", Value: 10})
	s.AddRelationship(GraphLink{Source: "孟浩然", Target: "李白", Relation: "师友", Value: 8})
	return s
}

// AddPoem registers p (and its poet) and returns it with an id assigned.
func (s *InMemoryStore) AddPoem(p Poem) Poem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.ID = s.nextID
	s.poems = append(s.poems, p)
	for _, n := range s.poets {
		if n.ID == p.Poet {
			return p
		}
	}
	s.poets = append(s.poets, GraphNode{ID: p.Poet, Group: p.Dynasty})
	return p
}

func (s *InMemoryStore) AddRelationship(l GraphLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links = append(s.links, l)
}

func (s *InMemoryStore) ListPoems(_ context.Context, search string) ([]Poem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(search))
	out := []Poem{}
	for _, p := range s.poems {
		if len(out) == MaxPoems {
			break
		}
		if needle == "" || containsFold(needle, p.Title, p.Poet, p.Content, p.Dynasty) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *InMemoryStore) GetPoem(_ context.Context, id int64) (Poem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.poems {
		if p.ID == id {
			return p, nil
		}
	}
	return Poem{}, ErrNotFound
}

func (s *InMemoryStore) FindPoemByTitle(_ context.Context, title string) (Poem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	title = strings.TrimSpace(title)
	for _, p := range s.poems {
		if strings.TrimSpace(p.Title) == title {
			return p, true, nil
		}
	}
	return Poem{}, false, nil
}

func (s *InMemoryStore) ListComments(_ context.Context, poemID int64) ([]CommentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usernames := make(map[int64]string, len(s.comments))
	for _, c := range s.comments {
		usernames[c.ID] = c.Username
	}

	out := []CommentRecord{}
	for _, c := range s.comments {
		if c.PoemID != poemID {
			continue
		}
		c.ParentUsername = nil
		if c.ParentID != nil {
			if name, ok := usernames[*c.ParentID]; ok {
				c.ParentUsername = &name
			}
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *InMemoryStore) CreateComment(_ context.Context, c NewComment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(c.Username) == "" {
		c.Username = DefaultUsername
	}
	s.nextID++
	s.comments = append(s.comments, CommentRecord{
		ID:        s.nextID,
		PoemID:    c.PoemID,
		Content:   c.Content,
		Username:  c.Username,
		CreatedAt: s.now(),
		ParentID:  c.ParentID,
	})
	return s.nextID, nil
}

func (s *InMemoryStore) Relationships(_ context.Context) (RelationshipGraph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return RelationshipGraph{
		Nodes: append([]GraphNode{}, s.poets...),
		Links: append([]GraphLink{}, s.links...),
	}, nil
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }

func containsFold(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
