package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type counters map[string]int

func newCounters() counters { return counters{} }

func TestFileBackendMissingDocumentYieldsDefaults(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	doc := NewDocument(backend, "points", newCounters)

	got, err := doc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty defaults, got %v", got)
	}
}

func TestFileBackendCorruptDocumentIsReplaced(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "points.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	doc := NewDocument(backend, "points", newCounters)
	ctx := context.Background()

	got, err := doc.Get(ctx)
	if err != nil {
		t.Fatalf("corrupt document should not fail: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected defaults, got %v", got)
	}

	if err := doc.PutAll(ctx, counters{"a": 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	reopened := NewDocument(backend, "points", newCounters)
	got, err = reopened.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["a"] != 1 || len(got) != 1 {
		t.Fatalf("document not fully replaced: %s", raw)
	}
}

func TestUpdateDoesNotWriteOnError(t *testing.T) {
	backend := NewMemoryBackend()
	doc := NewDocument(backend, "points", newCounters)
	ctx := context.Background()

	if err := doc.PutAll(ctx, counters{"a": 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	boom := errors.New("boom")
	_, err := doc.Update(ctx, func(c *counters) error {
		(*c)["a"] = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := doc.Get(ctx)
	if got["a"] != 1 {
		t.Fatalf("failed update was persisted: %v", got)
	}
}

func TestConcurrentUpdatesAreNotLost(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	doc := NewDocument(backend, "points", newCounters)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := doc.Update(ctx, func(c *counters) error {
				(*c)["a"]++
				return nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := doc.Get(ctx)
	if got["a"] != 50 {
		t.Fatalf("expected 50 increments, got %d", got["a"])
	}
}

type failingBackend struct{ MemoryBackend }

func (f *failingBackend) Read(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestReadFailureIsReturned(t *testing.T) {
	doc := NewDocument[counters](&failingBackend{}, "points", newCounters)
	if _, err := doc.Get(context.Background()); err == nil {
		t.Fatalf("expected backend read error")
	}
	_, err := doc.Update(context.Background(), func(*counters) error {
		t.Fatalf("fn must not run after a failed read")
		return nil
	})
	if err == nil {
		t.Fatalf("expected update error")
	}
}
