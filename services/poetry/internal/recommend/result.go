package recommend

import (
	"encoding/json"

	"github.com/example/poetry-platform/services/poetry/internal/store"
)

// Kind tags a Result.
type Kind string

const (
	KindDetail Kind = "detail"
	KindList   Kind = "recommendation"
)

// Detail is the exact-title hit.
type Detail struct {
	Title   string `json:"title"`
	Poet    string `json:"poet"`
	Dynasty string `json:"dynasty"`
	Content string `json:"content"`
}

// Result is either a Detail (Kind == KindDetail) or a list of titles.
type Result struct {
	Kind   Kind
	Detail Detail
	Titles []string
}

func detailResult(p store.Poem) Result {
	return Result{Kind: KindDetail, Detail: Detail{Title: p.Title, Poet: p.Poet, Dynasty: p.Dynasty, Content: p.Content}}
}

func listResult(titles []string) Result {
	if titles == nil {
		titles = []string{}
	}
	return Result{Kind: KindList, Titles: titles}
}

// MarshalJSON flattens the variant:
//
//	{"type":"detail","title":...,"poet":...,"dynasty":...,"content":...}
//	{"type":"recommendation","titles":[...]}
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Kind == KindDetail {
		return json.Marshal(struct {
			Type Kind `json:"type"`
			Detail
		}{Type: KindDetail, Detail: r.Detail})
	}
	titles := r.Titles
	if titles == nil {
		titles = []string{}
	}
	return json.Marshal(struct {
		Type   Kind     `json:"type"`
		Titles []string `json:"titles"`
	}{Type: KindList, Titles: titles})
}
