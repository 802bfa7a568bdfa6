package domain

import (
	"context"
	"errors"
	"fmt"

	"listing-qa/models"
)

// RunRepository persists the outcome of one QA run.
type RunRepository interface {
	Save(ctx context.Context, run *models.Run) error
}

// MultiRepository saves a run into every sink and reports all failures.
// A failing sink does not stop the others.
type MultiRepository []RunRepository

func (m MultiRepository) Save(ctx context.Context, run *models.Run) error {
	var errs []error
	for _, r := range m {
		if err := r.Save(ctx, run); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", r, err))
		}
	}
	return errors.Join(errs...)
}

