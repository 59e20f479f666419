package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestContent_Found(t *testing.T) {
	src := NewMock(map[string]string{
		"صلاح الدين الأيوبي": "كان صلاح الدين قائداً عسكرياً مسلماً.",
	})

	text, err := Content(context.Background(), src, "صلاح الدين الأيوبي")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "كان صلاح الدين قائداً عسكرياً مسلماً." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestContent_NotFound(t *testing.T) {
	src := NewMock(nil)

	_, err := Content(context.Background(), src, "شخصية غير موجودة")
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestContent_EmptyArticleIsNotFound(t *testing.T) {
	src := NewMock(map[string]string{"X": ""})

	_, err := Content(context.Background(), src, "X")
	if !errors.Is(err, ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound for empty article, got %v", err)
	}
}

func TestContent_SearchFailure(t *testing.T) {
	src := NewMock(nil)
	src.SearchErr = fmt.Errorf("%w: connection refused", ErrSourceFetch)

	_, err := Content(context.Background(), src, "X")
	if !errors.Is(err, ErrSourceFetch) {
		t.Errorf("expected ErrSourceFetch, got %v", err)
	}
}

func TestWikipedia_SearchAndFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("list") {
		case "search":
			fmt.Fprint(w, `{"query":{"search":[{"title":"محمد علي باشا"}]}}`)
		default:
			fmt.Fprint(w, `{"query":{"pages":{"123":{"title":"محمد علي باشا","extract":"والي مصر ومؤسس الدولة الحديثة."}}}}`)
		}
	}))
	defer server.Close()

	wp := NewWikipedia(WikipediaConfig{BaseURL: server.URL})

	titles, err := wp.Search(context.Background(), "محمد علي")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(titles) != 1 || titles[0] != "محمد علي باشا" {
		t.Fatalf("unexpected titles: %v", titles)
	}

	text, err := wp.Fetch(context.Background(), titles[0])
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if text != "والي مصر ومؤسس الدولة الحديثة." {
		t.Errorf("unexpected extract: %q", text)
	}
}

func TestWikipedia_ServerErrorIsSourceFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	wp := NewWikipedia(WikipediaConfig{BaseURL: server.URL})

	_, err := wp.Search(context.Background(), "anything")
	if !errors.Is(err, ErrSourceFetch) {
		t.Errorf("expected ErrSourceFetch, got %v", err)
	}
}
