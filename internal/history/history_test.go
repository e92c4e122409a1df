package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/raysh454/phishguard/internal/history"
	"github.com/raysh454/phishguard/internal/model"
	"github.com/raysh454/phishguard/internal/testutil"
)

func openStore(t *testing.T) *history.SQLiteStore {
	t.Helper()
	s, err := history.Open(filepath.Join(t.TempDir(), "data", "history.db"), testutil.NewDummyLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func verdictAt(url string, label model.Label, at time.Time) *model.Verdict {
	return &model.Verdict{
		Label:            label,
		URL:              url,
		FinalURL:         url + "landing",
		Info:             []string{"URL does not use HTTPS.", "Heuristic check passed. Using full ML model."},
		Stage:            model.StageModel,
		HeuristicScore:   1,
		ScoreKind:        "probability",
		Score:            0.61,
		Threshold:        0.5,
		RegisteredDomain: "example.org",
		Fetched:          true,
		Redirected:       true,
		ClassifiedAt:     at,
		Duration:         1500 * time.Millisecond,
	}
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, u := range []string{"http://a.example.org/", "http://b.example.org/", "http://c.example.org/"} {
		if err := s.Record(ctx, verdictAt(u, model.Phishing, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].URL != "http://c.example.org/" || entries[2].URL != "http://a.example.org/" {
		t.Errorf("order = %s, %s, %s", entries[0].URL, entries[1].URL, entries[2].URL)
	}

	e := entries[0]
	if e.ID == "" || e.Label != "phishing" || e.Stage != "model" || e.Score != 0.61 || !e.Fetched || !e.Redirected || e.Trusted {
		t.Errorf("entry = %+v", e)
	}
	if !e.CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v", e.CreatedAt)
	}
	if e.DurationMs != 1500 {
		t.Errorf("DurationMs = %d", e.DurationMs)
	}
	if want := []string{"URL does not use HTTPS.", "Heuristic check passed. Using full ML model."}; !reflect.DeepEqual(e.Info, want) {
		t.Errorf("Info = %q", e.Info)
	}

	limited, err := s.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("List(2) = %d, %v", len(limited), err)
	}
}

func TestSQLiteStore_Get(t *testing.T) {
	t.Parallel()
	s := openStore(t)
	ctx := context.Background()

	if err := s.Record(ctx, &model.Verdict{Label: model.Legitimate, URL: "https://ok.example.org/", Stage: model.StageModel}); err != nil {
		t.Fatal(err)
	}
	entries, _ := s.List(ctx, 1)
	got, err := s.Get(ctx, entries[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Label != "legitimate" || got.Info == nil || len(got.Info) != 0 {
		t.Errorf("entry = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("zero ClassifiedAt should be stamped on insert")
	}

	if _, err := s.Get(ctx, "does-not-exist"); !errors.Is(err, history.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_EmptyListIsNotNil(t *testing.T) {
	t.Parallel()
	entries, err := openStore(t).List(context.Background(), 10)
	if err != nil || entries == nil || len(entries) != 0 {
		t.Errorf("List = %#v, %v", entries, err)
	}
}

func TestSQLiteStore_RecordNil(t *testing.T) {
	t.Parallel()
	if err := openStore(t).Record(context.Background(), nil); err == nil {
		t.Error("expected error for nil verdict")
	}
}

func TestNew_SchemaIsIdempotent(t *testing.T) {
	t.Parallel()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "h.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for i := 0; i < 2; i++ {
		s, err := history.New(db, nil)
		if err != nil {
			t.Fatalf("New #%d: %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	}
	if err := db.Ping(); err != nil {
		t.Errorf("store closed a db it did not own: %v", err)
	}
	if _, err := history.New(nil, nil); err == nil {
		t.Error("expected error for nil db")
	}
}
