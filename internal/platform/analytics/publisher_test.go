package analytics

import (
	"testing"
	"time"
)

func TestPublish_NilSafe(t *testing.T) {
	var p *Publisher
	p.Publish(SubjectCommentCreated, "comment_created", "", nil)

	New(nil, nil).Publish(SubjectCommentCreated, "comment_created", "", map[string]any{"poem_id": 1})
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.FixedZone("CST", 8*3600))
	ev := NewEvent("recommendation_resolved", "u-1", map[string]any{"kind": "detail"}, at)

	if ev.EventID == "" {
		t.Fatal("expected event id to be generated")
	}
	if ev.OccurredAt.Location() != time.UTC || !ev.OccurredAt.Equal(at) {
		t.Fatalf("expected UTC timestamp equal to input, got %v", ev.OccurredAt)
	}
	if ev.Properties["kind"] != "detail" {
		t.Fatalf("unexpected properties %v", ev.Properties)
	}
	if other := NewEvent("x", "", nil, at); other.EventID == ev.EventID {
		t.Fatal("expected unique event ids")
	}
}
