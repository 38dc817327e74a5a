package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_New_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path/test.db")
	if err == nil {
		t.Error("expected error for invalid path")
	}
}

func TestStore_PutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	msg := Message{
		ID:          "blog",
		Locale:      "en",
		Description: "link to the blog",
		Other:       `Hey check out my <blog-link>blog</blog-link>, {name}!`,
	}
	if err := s.Put(ctx, msg); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "blog", "en")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Other != msg.Other || got.Description != msg.Description {
		t.Errorf("unexpected message %+v", got)
	}
	if got.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}

	_, ok, err = s.Get(ctx, "blog", "fr")
	if err != nil || ok {
		t.Errorf("expected miss for other locale, got %v, %v", ok, err)
	}
}

func TestStore_PutReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Put(ctx, Message{ID: "a", Locale: "en", Other: "first"})
	if err := s.Put(ctx, Message{ID: "a", Locale: "en", Other: "second", One: "one"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _, _ := s.Get(ctx, "a", "en")
	if got.Other != "second" || got.One != "one" {
		t.Errorf("expected replaced message, got %+v", got)
	}
	if !got.Plural() {
		t.Error("expected plural message")
	}
}

func TestStore_PutInvalid(t *testing.T) {
	s := newTestStore(t)
	for _, m := range []Message{
		{Locale: "en", Other: "x"},
		{ID: "a", Other: "x"},
		{ID: "a", Locale: "en", Other: "  "},
	} {
		if err := s.Put(context.Background(), m); !errors.Is(err, ErrInvalidMessage) {
			t.Errorf("Put(%+v) = %v, want ErrInvalidMessage", m, err)
		}
	}
}

func TestStore_NormalizesToNFC(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// "e" + combining acute accent
	_ = s.Put(ctx, Message{ID: "cafe", Locale: "fr", Other: "cafe\u0301 "})
	got, _, _ := s.Get(ctx, "cafe", "fr")
	if got.Other != "caf\u00e9 " {
		t.Errorf("expected NFC text with trailing space kept, got %q", got.Other)
	}
}

func TestStore_ListLocalesDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, m := range []Message{
		{ID: "b", Locale: "en", Other: "B"},
		{ID: "a", Locale: "en", Other: "A"},
		{ID: "a", Locale: "fr", Other: "A fr"},
	} {
		if err := s.Put(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	var keys []string
	for _, m := range all {
		keys = append(keys, m.Locale+"/"+m.ID)
	}
	if want := []string{"en/a", "en/b", "fr/a"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("List order = %v, want %v", keys, want)
	}

	fr, _ := s.List(ctx, "fr")
	if len(fr) != 1 {
		t.Errorf("expected 1 fr message, got %d", len(fr))
	}

	locales, _ := s.Locales(ctx)
	if !reflect.DeepEqual(locales, []string{"en", "fr"}) {
		t.Errorf("Locales = %v", locales)
	}

	n, err := s.Delete(ctx, "a", "fr")
	if err != nil || n != 1 {
		t.Errorf("Delete one locale = %d, %v", n, err)
	}
	_ = s.Put(ctx, Message{ID: "a", Locale: "fr", Other: "A fr"})
	n, _ = s.Delete(ctx, "a", "")
	if n != 2 {
		t.Errorf("Delete all locales removed %d rows, want 2", n)
	}
}

func TestStore_StatsAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_ = s.Put(ctx, Message{ID: "a", Locale: "en", Other: "A"})
	_ = s.Put(ctx, Message{ID: "a", Locale: "fr", Other: "A"})
	_ = s.Put(ctx, Message{ID: "items", Locale: "en", One: "{n} item", Other: "{n} items"})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{TotalEntries: 3, DistinctIDs: 2, Locales: 2, PluralEntries: 1}
	if *stats != want {
		t.Errorf("Stats = %+v, want %+v", *stats, want)
	}

	n, err := s.Clear(ctx)
	if err != nil || n != 3 {
		t.Errorf("Clear = %d, %v", n, err)
	}
	stats, _ = s.Stats(ctx)
	if stats.TotalEntries != 0 {
		t.Errorf("expected empty catalog, got %+v", stats)
	}
}

func TestStore_Similar(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"blog-link", "blog-links", "welcome"} {
		_ = s.Put(ctx, Message{ID: id, Locale: "en", Other: id})
	}

	got, err := s.Similar(ctx, "blog-lnk", 0.75, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"blog-link", "blog-links"}) {
		t.Errorf("Similar = %v", got)
	}

	got, _ = s.Similar(ctx, "blog-lnk", 0, 5)
	if got != nil {
		t.Errorf("threshold 0 must disable matching, got %v", got)
	}
}

func TestMessage_Forms(t *testing.T) {
	m := Message{One: "one", Other: "other"}
	if !reflect.DeepEqual(m.Forms(), map[string]string{"one": "one", "other": "other"}) {
		t.Errorf("Forms = %v", m.Forms())
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"привіт", "привет", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
