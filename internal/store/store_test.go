package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/corbenferris/figjam-plantuml/internal/db"
	"github.com/corbenferris/figjam-plantuml/internal/render"
	"github.com/corbenferris/figjam-plantuml/internal/session"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestCreateAndGet(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := t.Context()

	state := session.State{Text: "A -> B", URL: "https://example.test/svg/x", Src: "<svg/>"}
	n, err := s.Create(ctx, state)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n.ID == "" {
		t.Fatal("expected node ID to be set")
	}

	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != state {
		t.Errorf("state = %+v, want %+v", got.State, state)
	}
}

func TestGetUnknown(t *testing.T) {
	s := New(setupTestDB(t))
	if _, err := s.Get(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestPutReplacesWholeState(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := t.Context()

	n, err := s.Create(ctx, session.DefaultState(""))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	next := session.State{Text: "X -> Y", URL: "u", Src: "<svg>new</svg>"}
	if err := s.Put(ctx, n.ID, next); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(ctx, n.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != next {
		t.Errorf("state = %+v, want %+v", got.State, next)
	}

	if err := s.Put(ctx, "missing", next); !errors.Is(err, ErrNotFound) {
		t.Errorf("Put(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	s := New(setupTestDB(t))
	ctx := t.Context()

	a, _ := s.Create(ctx, session.State{Text: "a"})
	b, _ := s.Create(ctx, session.State{Text: "b"})

	nodes, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}

	nodes, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(nodes) != 1 || nodes[0].ID != b.ID {
		t.Errorf("after delete got %+v, want only %s", nodes, b.ID)
	}
}

type countingFetcher struct {
	calls atomic.Int32
	body  string
	err   error
}

func (f *countingFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls.Add(1)
	return f.body, f.err
}

func TestCachedFetcher(t *testing.T) {
	d := setupTestDB(t)
	next := &countingFetcher{body: "<svg>cached</svg>"}
	c := NewCachedFetcher(d, next, nil)
	ctx := t.Context()

	for i := 0; i < 3; i++ {
		body, err := c.Fetch(ctx, "https://example.test/svg/abc")
		if err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if body != "<svg>cached</svg>" {
			t.Errorf("Fetch #%d body = %q", i, body)
		}
	}
	if got := next.calls.Load(); got != 1 {
		t.Errorf("underlying fetcher called %d times, want 1", got)
	}

	n, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("Purge dropped %d entries, want 1", n)
	}
}

func TestCachedFetcherDoesNotCacheFailures(t *testing.T) {
	d := setupTestDB(t)
	next := &countingFetcher{err: &render.RequestFailedError{StatusCode: 400, Body: "syntax"}}
	c := NewCachedFetcher(d, next, nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(t.Context(), "u"); !errors.Is(err, render.ErrRenderRequestFailed) {
			t.Fatalf("Fetch error = %v, want ErrRenderRequestFailed", err)
		}
	}
	if got := next.calls.Load(); got != 2 {
		t.Errorf("underlying fetcher called %d times, want 2", got)
	}
}
