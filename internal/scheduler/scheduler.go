package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Planned is an action due on a date.
type Planned struct {
	Date   time.Time
	Action Action
}

func (p Planned) String() string {
	return fmt.Sprintf("%s %s", p.Date.Format(time.DateOnly), p.Action.Label())
}

// Scheduler runs registered actions over a date range.
type Scheduler struct {
	actions []Action
	logger  *slog.Logger
}

type Option func(*Scheduler)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add registers actions. Registration order breaks ties between actions
// due on the same date.
func (s *Scheduler) Add(actions ...Action) {
	s.actions = append(s.actions, actions...)
}

func (s *Scheduler) Actions() []Action { return s.actions }

// Plan returns every occurrence within [start, stop] ordered by date, then
// by registration order.
func (s *Scheduler) Plan(start, stop time.Time) []Planned {
	var plan []Planned
	for _, a := range s.actions {
		for d := range a.NextDates(start, stop) {
			plan = append(plan, Planned{Date: d, Action: a})
		}
	}
	slices.SortStableFunc(plan, func(a, b Planned) int {
		return a.Date.Compare(b.Date)
	})
	return plan
}

// Run executes the plan of [start, stop] and stops at the first failing
// action. It returns the number of actions run successfully.
func (s *Scheduler) Run(ctx context.Context, start, stop time.Time) (int, error) {
	plan := s.Plan(start, stop)
	s.logger.Debug("running schedule",
		"start", start.Format(time.DateOnly),
		"stop", stop.Format(time.DateOnly),
		"planned", len(plan))
	for i, p := range plan {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		s.logger.Debug("run action", "date", p.Date.Format(time.DateOnly), "action", p.Action.Label())
		if err := p.Action.Run(p.Date); err != nil {
			return i, fmt.Errorf("action %s on %s: %w", p.Action.Label(), p.Date.Format(time.DateOnly), err)
		}
	}
	return len(plan), nil
}
