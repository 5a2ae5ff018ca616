package server

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorhill/cronexpr"
	"github.com/redis/go-redis/v9"

	"github.com/rageebridwan/newsmind/config"
	"github.com/rageebridwan/newsmind/session"
	"github.com/rageebridwan/newsmind/tools/web_fetch"
)

// refreshJob tracks one session's registered URL set and schedule.
type refreshJob struct {
	sessionID string
	urls      []string
	cron      string
	lastRun   time.Time
}

// Scheduler re-fetches and re-ingests registered sessions on their
// schedule. Each refresh is a full rebuild of the session corpus: the last
// build wins.
type Scheduler struct {
	store       session.Store
	fetcher     web_fetch.WebFetcher
	delay       time.Duration
	rdb         *redis.Client
	lockTTL     time.Duration
	tick        time.Duration
	defaultCron string
	logger      *log.Logger

	Stop chan struct{}

	mu   sync.Mutex
	jobs map[string]*refreshJob
}

func NewScheduler(cfg config.SchedulerConfig, store session.Store, fetcher web_fetch.WebFetcher, delay time.Duration, rdb *redis.Client) *Scheduler {
	return &Scheduler{
		store:       store,
		fetcher:     fetcher,
		delay:       delay,
		rdb:         rdb,
		lockTTL:     cfg.LockTTL,
		tick:        cfg.Tick,
		defaultCron: cfg.Cron,
		logger:      log.New(log.Writer(), "[SCHED] ", log.LstdFlags),
		Stop:        make(chan struct{}),
		jobs:        make(map[string]*refreshJob),
	}
}

func (s *Scheduler) Start() {
	ticker := time.NewTicker(s.tick)
	go func() {
		for {
			select {
			case <-s.Stop:
				ticker.Stop()
				return
			case <-ticker.C:
				s.runDue()
			}
		}
	}()
}

// Register puts a session on a refresh schedule, replacing any existing
// registration, and returns the effective schedule. The first refresh comes
// one interval after registration: the session was just ingested.
func (s *Scheduler) Register(sessionID string, urls []string, cron string) string {
	cron = strings.TrimSpace(cron)
	if cron == "" {
		cron = s.defaultCron
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[sessionID] = &refreshJob{
		sessionID: sessionID,
		urls:      append([]string(nil), urls...),
		cron:      cron,
		lastRun:   time.Now(),
	}
	return cron
}

func (s *Scheduler) Unregister(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, sessionID)
}

func (s *Scheduler) runDue() {
	for _, job := range s.due() {
		go s.refresh(job)
	}
}

// due snapshots the jobs whose schedule has elapsed.
func (s *Scheduler) due() []refreshJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []refreshJob
	for _, job := range s.jobs {
		last := job.lastRun
		if !isDue(job.cron, &last) {
			continue
		}
		out = append(out, *job)
	}
	return out
}

// refresh re-fetches a job's URL set and rebuilds the session corpus. The
// attempt is recorded before fetching, so a failing URL set retries on the
// next interval rather than every tick.
func (s *Scheduler) refresh(job refreshJob) {
	ctx := context.Background()

	sess, err := s.store.GetSession(job.sessionID)
	if err != nil || sess == nil {
		// session expired and was purged
		s.Unregister(job.sessionID)
		return
	}

	if s.rdb != nil {
		// distributed lock to avoid duplicate refreshes
		lockKey := "sched:lock:" + job.sessionID
		ok, err := s.rdb.SetNX(ctx, lockKey, "1", s.lockTTL).Result()
		if err != nil || !ok {
			return
		}
		defer s.rdb.Del(ctx, lockKey)
	}

	s.markRan(job.sessionID)

	pages, err := web_fetch.FetchAll(ctx, s.fetcher, job.urls, s.delay)
	if err != nil {
		s.logger.Printf("refresh fetch failed for session %s: %v", job.sessionID, err)
		return
	}
	report, err := sess.Ingest(ctx, pages)
	if err != nil {
		s.logger.Printf("refresh failed for session %s: %v", job.sessionID, err)
		return
	}
	s.logger.Printf("refreshed session %s: %d documents, %d chunks", job.sessionID, report.Documents, report.Chunks)
}

func (s *Scheduler) markRan(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[sessionID]; ok {
		job.lastRun = time.Now()
	}
}

// isDue determines if a job with cronSpec should run now based on its last
// run time. Supports "@daily", "@hourly", and standard 5-field cron
// expressions; invalid expressions fall back to @daily.
func isDue(cronSpec string, last *time.Time) bool {
	now := time.Now()
	switch cronSpec {
	case "@daily":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= 24*time.Hour
	case "@hourly":
		if last == nil {
			return true
		}
		return now.Sub(*last) >= time.Hour
	default:
		expr, err := cronexpr.Parse(cronSpec)
		if err != nil {
			if last == nil {
				return true
			}
			return now.Sub(*last) >= 24*time.Hour
		}
		if last == nil {
			return true
		}
		next := expr.Next(*last)
		return !next.After(now)
	}
}
