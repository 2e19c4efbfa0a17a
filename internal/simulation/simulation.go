package simulation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/period"
	"github.com/cleared-dev/finsim/internal/scheduler"
)

// JournalAction logs t in j on every date it runs and validates the entry.
func JournalAction(j *journal.Journal, t *journal.Template, document string) scheduler.Func {
	return func(date time.Time) error {
		e, err := j.LogTemplate(date, t, document)
		if e == nil {
			return err
		}
		return multierr.Append(err, e.Validate(j.Now()))
	}
}

// Schedule registers one action per transaction of s on sched. Every
// transaction must name a journal of p.
func (s *Scenario) Schedule(sched *scheduler.Scheduler, p *period.Period) error {
	var errs error
	for _, tx := range s.Transactions {
		j, err := p.Journal(tx.Journal)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("transaction %q: %w", tx.Label, err))
			continue
		}
		a, err := scheduler.NewAction(tx.Recurrence, tx.Label, tx.Date, JournalAction(j, tx.Template, tx.Document))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("transaction %q: %w", tx.Label, err))
			continue
		}
		sched.Add(a)
	}
	return errs
}

// Run posts the scenario over the period of p and returns the number of
// entries posted.
func Run(ctx context.Context, p *period.Period, s *Scenario, opts ...scheduler.Option) (int, error) {
	sched := scheduler.New(opts...)
	if err := s.Schedule(sched, p); err != nil {
		return 0, err
	}
	return sched.Run(ctx, p.Start(), p.Stop())
}
