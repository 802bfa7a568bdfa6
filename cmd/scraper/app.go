package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"listing-qa/config"
	"listing-qa/internal/domain"
	"listing-qa/internal/scheduler"
	"listing-qa/scraper"
	"listing-qa/scraper/listing"
	"listing-qa/service"
)

func NewApp(cfg *config.Config) *App {
	return &App{cfg: cfg}
}

type App struct {
	cfg *config.Config
}

// Run performs one QA pass, or keeps performing them on the configured cron
// schedule until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log.Printf("qa config: url=%s max_retries=%d run_budget=%v schedule=%q",
		a.cfg.URL, a.cfg.Retry.MaxRetries, a.cfg.Timing.RunBudget, a.cfg.Schedule.Cron)

	repo, closers, err := a.openRepositories(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	allocCtx, cancel := scraper.NewAllocator(ctx, &a.cfg.Browser)
	defer cancel()

	if a.cfg.Schedule.Cron == "" {
		return a.runOnce(ctx, allocCtx, repo)
	}

	sched, err := scheduler.New(ctx, a.cfg.Schedule.Timezone, a.runTimeout())
	if err != nil {
		return err
	}
	job := func(ctx context.Context) error { return a.runOnce(ctx, allocCtx, repo) }
	if err := sched.AddJob("listing-qa", a.cfg.Schedule.Cron, job); err != nil {
		return err
	}

	if err := sched.RunNow("listing-qa", job); err != nil {
		log.Printf("initial run failed: %v", err)
	}
	sched.Start()
	for _, j := range sched.ListJobs() {
		log.Printf("[scheduler] %s next run at %s", j.Name, j.NextRun.Format(time.RFC3339))
	}
	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}

func (a *App) runOnce(ctx, allocCtx context.Context, repo domain.RunRepository) error {
	tab, cancel := scraper.NewTabWithTimeout(allocCtx, a.runTimeout(), a.cfg.Browser.Debug)
	defer cancel()

	page := listing.NewChromedpPage(tab, a.cfg)
	run, err := service.NewQAService(page, repo, a.cfg).Run(ctx, a.cfg.URL)
	if err != nil {
		return fmt.Errorf("qa run failed: %w", err)
	}

	fmt.Printf("✓ QA run completed: %d audits, %d currency options checked\n", len(run.Audits), run.Results.Len())
	return nil
}

// runTimeout bounds one QA pass, its tab included: the run budget plus one
// page timeout of slack for saving the run.
func (a *App) runTimeout() time.Duration {
	return a.cfg.Timing.RunBudget + a.cfg.Timing.PageTimeout
}

// openRepositories connects every configured report sink.
func (a *App) openRepositories(ctx context.Context) (domain.MultiRepository, []io.Closer, error) {
	var (
		repos   domain.MultiRepository
		closers []io.Closer
	)
	fail := func(err error) (domain.MultiRepository, []io.Closer, error) {
		for _, c := range closers {
			_ = c.Close()
		}
		return nil, nil, err
	}

	rc := a.cfg.Report
	if rc.CSVPath != "" {
		repos = append(repos, domain.NewCSVRepository(rc.CSVPath))
	}
	if rc.XLSXPath != "" {
		repos = append(repos, domain.NewXLSXRepository(rc.XLSXPath))
	}
	if rc.SQLitePath != "" {
		lite, err := domain.NewSQLiteRepository(ctx, rc.SQLitePath)
		if err != nil {
			return fail(err)
		}
		repos = append(repos, lite)
		closers = append(closers, lite)
	}
	if rc.PostgresDSN != "" {
		db, err := sql.Open("postgres", rc.PostgresDSN)
		if err != nil {
			return fail(fmt.Errorf("failed to create db connection: %w", err))
		}
		closers = append(closers, db)
		if err := db.PingContext(ctx); err != nil {
			return fail(fmt.Errorf("failed to ping db: %w", err))
		}
		log.Println("db connection successful")

		pg, err := domain.NewPostgresRepository(ctx, db)
		if err != nil {
			return fail(err)
		}
		repos = append(repos, pg)
	}

	if len(repos) == 0 {
		return nil, nil, errors.New("no report sink configured")
	}
	return repos, closers, nil
}
