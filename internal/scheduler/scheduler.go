// Package scheduler repeats QA runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler runs jobs on cron schedules. A job whose previous run is still in
// progress is skipped, since runs share one browser.
type Scheduler struct {
	mu         sync.Mutex
	cron       *cron.Cron
	jobs       map[string]cron.EntryID
	base       context.Context
	jobTimeout time.Duration
}

// New creates a scheduler evaluating schedules in timezone. Every job run
// derives its context from base and is bounded by jobTimeout.
func New(base context.Context, timezone string, jobTimeout time.Duration) (*Scheduler, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", timezone, err)
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.Default()))),
	)

	return &Scheduler{
		cron:       c,
		jobs:       make(map[string]cron.EntryID),
		base:       base,
		jobTimeout: jobTimeout,
	}, nil
}

// AddJob registers job under name with a standard five-field cron spec,
// e.g. "0 */6 * * *", or a descriptor such as "@hourly".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already scheduled", name)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(name, job); err != nil {
			log.Printf("[scheduler] job %s failed: %v", name, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Printf("[scheduler] added job: %s (schedule: %s)", name, schedule)
	return nil
}

func (s *Scheduler) run(name string, job Job) error {
	ctx, cancel := s.jobContext()
	defer cancel()

	log.Printf("[scheduler] starting job: %s", name)
	start := time.Now()
	if err := job(ctx); err != nil {
		return err
	}
	log.Printf("[scheduler] job %s completed in %v", name, time.Since(start))
	return nil
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	if s.jobTimeout > 0 {
		return context.WithTimeout(s.base, s.jobTimeout)
	}
	return context.WithCancel(s.base)
}

func (s *Scheduler) Start() {
	log.Println("[scheduler] starting scheduler")
	s.cron.Start()
}

// Stop halts scheduling. The returned context is done once running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	log.Println("[scheduler] stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes job immediately, outside the cron schedule.
func (s *Scheduler) RunNow(name string, job Job) error {
	log.Printf("[scheduler] running job now: %s", name)
	return s.run(name, job)
}

// JobInfo describes a scheduled job.
type JobInfo struct {
	Name    string
	NextRun time.Time
	LastRun time.Time
}

// ListJobs returns the scheduled jobs sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		entry := s.cron.Entry(entryID)
		infos = append(infos, JobInfo{
			Name:    name,
			NextRun: entry.Next,
			LastRun: entry.Prev,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
