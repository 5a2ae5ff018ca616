package server

import (
	"context"
	"testing"
	"time"

	"github.com/rageebridwan/newsmind/config"
	"github.com/rageebridwan/newsmind/internal/rag"
	"github.com/rageebridwan/newsmind/session"
)

func timeAgo(d time.Duration) *time.Time {
	t := time.Now().Add(-d)
	return &t
}

func TestIsDue(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		cron string
		last *time.Time
		want bool
	}{
		{"daily never ran", "@daily", nil, true},
		{"daily ran recently", "@daily", timeAgo(time.Hour), false},
		{"daily elapsed", "@daily", timeAgo(25 * time.Hour), true},
		{"hourly ran recently", "@hourly", timeAgo(30 * time.Minute), false},
		{"hourly elapsed", "@hourly", timeAgo(2 * time.Hour), true},
		{"invalid never ran", "not a cron", nil, true},
		{"invalid falls back to daily", "not a cron", timeAgo(time.Hour), false},
		{"invalid elapsed", "not a cron", timeAgo(25 * time.Hour), true},
		{"cron midnight elapsed", "0 0 * * *", timeAgo(25 * time.Hour), true},
		{"cron midnight ran now", "0 0 * * *", timeAgo(0), false},
		{"cron every minute", "* * * * *", timeAgo(2 * time.Minute), true},
	}
	for _, tc := range cases {
		if got := isDue(tc.cron, tc.last); got != tc.want {
			t.Fatalf("%s: isDue(%q) = %v, want %v", tc.name, tc.cron, got, tc.want)
		}
	}
}

func newTestScheduler(t *testing.T, fetcher stubFetcher) (*Scheduler, session.Store) {
	t.Helper()
	store, _, _ := newTestHarness("unused")
	cfg := config.SchedulerConfig{Enabled: true, Cron: "@daily", Tick: time.Minute, LockTTL: time.Minute}
	return NewScheduler(cfg, store, fetcher, 0, nil), store
}

func TestRegisterDefaultsCron(t *testing.T) {
	sched, _ := newTestScheduler(t, stubFetcher{})

	urls := []string{"https://cats.example.com/article"}
	if got := sched.Register("s1", urls, ""); got != "@daily" {
		t.Fatalf("expected default schedule, got %q", got)
	}
	if got := sched.Register("s2", urls, "@hourly"); got != "@hourly" {
		t.Fatalf("expected explicit schedule kept, got %q", got)
	}

	urls[0] = "mutated"
	sched.mu.Lock()
	job := sched.jobs["s1"]
	sched.mu.Unlock()
	if job == nil || job.cron != "@daily" {
		t.Fatalf("expected stored job with default schedule, got %+v", job)
	}
	if job.urls[0] != "https://cats.example.com/article" {
		t.Fatalf("expected url slice copied, got %+v", job.urls)
	}
}

func TestDueRespectsSchedule(t *testing.T) {
	sched, _ := newTestScheduler(t, stubFetcher{})
	sched.Register("hourly", []string{"https://cats.example.com/article"}, "@hourly")
	sched.Register("daily", []string{"https://dogs.example.com/article"}, "@daily")

	if due := sched.due(); len(due) != 0 {
		t.Fatalf("expected nothing due right after registration, got %+v", due)
	}

	sched.mu.Lock()
	sched.jobs["hourly"].lastRun = time.Now().Add(-2 * time.Hour)
	sched.jobs["daily"].lastRun = time.Now().Add(-2 * time.Hour)
	sched.mu.Unlock()

	due := sched.due()
	if len(due) != 1 || due[0].sessionID != "hourly" {
		t.Fatalf("expected only the hourly job due, got %+v", due)
	}
}

func TestRefreshRebuildsCorpus(t *testing.T) {
	fetcher := stubFetcher{pages: map[string]rag.Page{
		"https://cats.example.com/article": okPage("https://cats.example.com/article", "cats.example.com", "All About Cats", "Updated: cats now meow loudly."),
	}}
	sched, store := newTestScheduler(t, fetcher)

	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	seed := okPage("https://cats.example.com/article", "cats.example.com", "All About Cats", "Cats purr when they are content.")
	if _, err := sess.Ingest(context.Background(), []rag.Page{seed}); err != nil {
		t.Fatalf("seed ingest: %v", err)
	}

	sched.refresh(refreshJob{
		sessionID: sess.ID(),
		urls:      []string{"https://cats.example.com/article"},
		cron:      "@hourly",
	})

	chunks := sess.Pipeline().Chunks()
	if len(chunks) != 1 {
		t.Fatalf("expected rebuilt corpus with 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "Updated: cats now meow loudly." {
		t.Fatalf("expected refreshed content, got %q", chunks[0].Content)
	}
}

func TestRefreshKeepsCorpusOnFetchFailure(t *testing.T) {
	sched, store := newTestScheduler(t, stubFetcher{})

	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("ensure session: %v", err)
	}
	seed := okPage("https://cats.example.com/article", "cats.example.com", "All About Cats", "Cats purr when they are content.")
	if _, err := sess.Ingest(context.Background(), []rag.Page{seed}); err != nil {
		t.Fatalf("seed ingest: %v", err)
	}

	sched.refresh(refreshJob{
		sessionID: sess.ID(),
		urls:      []string{"https://gone.example.com/article"},
		cron:      "@hourly",
	})

	chunks := sess.Pipeline().Chunks()
	if len(chunks) != 1 || chunks[0].Content != "Cats purr when they are content." {
		t.Fatalf("expected corpus untouched after failed refresh, got %+v", chunks)
	}
}

func TestRefreshDropsExpiredSession(t *testing.T) {
	sched, _ := newTestScheduler(t, stubFetcher{})
	sched.Register("ghost", []string{"https://cats.example.com/article"}, "@hourly")

	sched.refresh(refreshJob{sessionID: "ghost", urls: []string{"https://cats.example.com/article"}, cron: "@hourly"})

	sched.mu.Lock()
	_, ok := sched.jobs["ghost"]
	sched.mu.Unlock()
	if ok {
		t.Fatalf("expected job dropped for missing session")
	}
}
