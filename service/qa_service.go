package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"listing-qa/config"
	"listing-qa/internal/audit"
	"listing-qa/internal/currency"
	"listing-qa/internal/domain"
	"listing-qa/models"
)

// QAService runs every check against one listing page and stores the run.
type QAService struct {
	page domain.Page
	repo domain.RunRepository
	cfg  *config.Config
}

func NewQAService(
	p domain.Page,
	r domain.RunRepository,
	cfg *config.Config,
) *QAService {

	return &QAService{
		page: p,
		repo: r,
		cfg:  cfg,
	}
}

// Run navigates to url, runs the static audits and the currency workflow,
// and saves whatever was collected, even when a step aborted. The returned
// error joins the run failure and any save failure.
func (s *QAService) Run(ctx context.Context, url string) (*models.Run, error) {
	run := &models.Run{URL: url, StartedAt: time.Now()}

	runCtx := ctx
	if budget := s.cfg.Timing.RunBudget; budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, budget)
		defer cancel()
	}

	runErr := s.check(runCtx, run)
	if runErr != nil {
		run.Err = runErr.Error()
		log.Printf("[qa] run %s failed: %v", url, runErr)
	}
	run.FinishedAt = time.Now()

	// saving must not be cut short by an exhausted run budget
	saveErr := s.repo.Save(context.WithoutCancel(ctx), run)
	if saveErr != nil {
		saveErr = fmt.Errorf("save run: %w", saveErr)
	}

	log.Printf("[qa] %s: %d audits, %d currency groups in %s",
		url, len(run.Audits), run.Results.Len(), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	return run, errors.Join(runErr, saveErr)
}

func (s *QAService) check(ctx context.Context, run *models.Run) error {
	run.Results = models.NewResultsLog(0)

	if err := s.page.Navigate(ctx, run.URL); err != nil {
		return err
	}

	source, err := s.page.HTML(ctx)
	if err != nil {
		return fmt.Errorf("read page source: %w", err)
	}
	audits, err := audit.Run(source)
	if err != nil {
		return err
	}
	run.Audits = audits

	if ev, ok := s.page.(domain.Evaluator); ok {
		sd, err := audit.ScrapeScriptData(ctx, ev)
		if err != nil {
			log.Printf("[qa] script data: %v", err)
		}
		run.ScriptData = sd
		run.Audits = append(run.Audits, audit.ScriptDataResult(sd, err))
	}

	wf := currency.New(s.page, currency.SelectorsFromConfig(s.cfg.Selectors), currency.OptionsFromConfig(s.cfg))
	results, err := wf.Run(ctx)
	run.Results = results
	run.Audits = append(run.Audits, audit.CurrencyResult(results, err))
	return err
}
