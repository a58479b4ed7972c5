package audit

import (
	"testing"
	"time"
)

func openMemSink(t *testing.T) *Sink {
	t.Helper()
	s, err := Open("sqlite::memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open("mongo://localhost/db"); err == nil {
		t.Fatal("expected an unknown scheme to be rejected")
	}
}

func TestOpenRejectsSchemelessDSN(t *testing.T) {
	if _, err := Open("not-a-dsn"); err == nil {
		t.Fatal("expected a dsn with no scheme separator to be rejected")
	}
}

func TestAppendAndTailRoundTrip(t *testing.T) {
	s := openMemSink(t)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, sub := range []string{"typecheck", "interpret", "compile"} {
		err := s.Append(Record{
			Time:       base.Add(time.Duration(i) * time.Second),
			Subcommand: sub,
			Input:      "prog.json",
			ExitCode:   0,
			Duration:   5 * time.Millisecond,
		})
		if err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	got, err := s.Tail(2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Subcommand != "compile" {
		t.Fatalf("got newest-first head %q, want compile", got[0].Subcommand)
	}
}
