package store

import (
	"context"
	"errors"
	"time"
)

// MaxPoems caps every poem listing.
const MaxPoems = 100

// DefaultUsername is stored when a comment is submitted without a name.
const DefaultUsername = "匿名用户"

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Poem is a poem joined with its poet.
type Poem struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Poet    string `json:"poet"`
	Dynasty string `json:"dynasty"`
}

// CommentRecord is one comment row joined with its parent's username.
type CommentRecord struct {
	ID             int64     `json:"id"`
	PoemID         int64     `json:"poemID"`
	Content        string    `json:"content"`
	Username       string    `json:"username"`
	CreatedAt      time.Time `json:"createdAt"`
	ParentID       *int64    `json:"parentID"`
	ParentUsername *string   `json:"parentUsername"`
}

// NewComment is a comment submission.
type NewComment struct {
	PoemID   int64
	Content  string
	Username string
	ParentID *int64
}

// GraphNode is a poet in the relationship graph; Group is the dynasty.
type GraphNode struct {
	ID    string `json:"id"`
	Group string `json:"group"`
}

// GraphLink is a directed relationship between two poets.
type GraphLink struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Value    int    `json:"value"`
}

type RelationshipGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Store is the storage contract of the poetry service.
type Store interface {
	// ListPoems returns at most MaxPoems poems; search filters on title, poet,
	// content and dynasty when non-empty.
	ListPoems(ctx context.Context, search string) ([]Poem, error)
	GetPoem(ctx context.Context, id int64) (Poem, error)
	// FindPoemByTitle matches the trimmed stored title exactly (case-sensitive).
	FindPoemByTitle(ctx context.Context, title string) (Poem, bool, error)
	// ListComments returns the poem's comments ascending by creation time.
	ListComments(ctx context.Context, poemID int64) ([]CommentRecord, error)
	CreateComment(ctx context.Context, c NewComment) (int64, error)
	Relationships(ctx context.Context) (RelationshipGraph, error)
	Ping(ctx context.Context) error
}
