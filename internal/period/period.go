// Package period groups the balance charts of a financial period with the
// journals posting to them.
package period

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

// ErrUnknownJournal is returned for a journal label the period does not hold.
var ErrUnknownJournal = errors.New("unknown journal")

// JournalDef declares a journal of the period.
type JournalDef struct {
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// Period is a financial period: balance charts mirrored from the account
// charts, shared by a set of named journals.
type Period struct {
	start, stop time.Time
	chart       *balance.Chart
	analytic    *balance.Chart
	journals    map[string]*journal.Journal
	order       []string
}

type options struct {
	analytic   *accounts.Chart
	journalOps []journal.Option
}

// Option configures a Period.
type Option func(*options)

// WithAnalyticChart adds an analytic chart shared by every journal.
func WithAnalyticChart(chart *accounts.Chart) Option {
	return func(o *options) { o.analytic = chart }
}

// WithJournalOptions applies opts to every journal of the period.
func WithJournalOptions(opts ...journal.Option) Option {
	return func(o *options) { o.journalOps = append(o.journalOps, opts...) }
}

// New creates a period over [start, stop] with one journal per definition.
func New(chart *accounts.Chart, defs []JournalDef, start, stop time.Time, opts ...Option) (*Period, error) {
	if stop.Before(start) {
		return nil, fmt.Errorf("period stops (%s) before it starts (%s)", stop.Format(model.DateFormat), start.Format(model.DateFormat))
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Period{
		start:    start,
		stop:     stop,
		chart:    balance.Mirror(chart),
		journals: make(map[string]*journal.Journal, len(defs)),
	}
	jopts := slices.Clone(o.journalOps)
	if o.analytic != nil {
		p.analytic = balance.Mirror(o.analytic)
		jopts = append(jopts, journal.WithAnalyticChart(p.analytic))
	}

	for _, def := range defs {
		if def.Label == "" {
			return nil, errors.New("journal without label")
		}
		if _, dup := p.journals[def.Label]; dup {
			return nil, fmt.Errorf("journal %s declared twice", def.Label)
		}
		p.journals[def.Label] = journal.New(def.Label, def.Description, p.chart, jopts...)
		p.order = append(p.order, def.Label)
	}
	return p, nil
}

func (p *Period) Start() time.Time { return p.start }

func (p *Period) Stop() time.Time { return p.stop }

// Contains reports whether date falls within the period, bounds included.
func (p *Period) Contains(date time.Time) bool {
	return !date.Before(p.start) && !date.After(p.stop)
}

// Chart returns the balance chart shared by the journals.
func (p *Period) Chart() *balance.Chart { return p.chart }

// AnalyticChart returns the analytic balance chart, or nil.
func (p *Period) AnalyticChart() *balance.Chart { return p.analytic }

// Journal returns the journal labelled label.
func (p *Period) Journal(label string) (*journal.Journal, error) {
	j, ok := p.journals[label]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJournal, label)
	}
	return j, nil
}

// Journals iterates the journals in declaration order.
func (p *Period) Journals() iter.Seq[*journal.Journal] {
	return func(yield func(*journal.Journal) bool) {
		for _, label := range p.order {
			if !yield(p.journals[label]) {
				return
			}
		}
	}
}

// Run resets the charts once and replays every journal.
func (p *Period) Run() error {
	p.chart.Reset()
	if p.analytic != nil {
		p.analytic.Reset()
	}
	var errs error
	for j := range p.Journals() {
		errs = multierr.Append(errs, j.Replay())
	}
	return errs
}

// Records returns the records of every journal, journal by journal.
func (p *Period) Records() []model.EntryRecord {
	var res []model.EntryRecord
	for j := range p.Journals() {
		res = append(res, j.Records()...)
	}
	return res
}

// Load dispatches records to their journals. Balances are not updated
// until Run.
func (p *Period) Load(records []model.EntryRecord) error {
	byJournal := make(map[string][]model.EntryRecord)
	for _, rec := range records {
		if _, ok := p.journals[rec.Journal]; !ok {
			return fmt.Errorf("loading %s-%d: %w: %s", rec.Journal, rec.SequenceNumber, ErrUnknownJournal, rec.Journal)
		}
		byJournal[rec.Journal] = append(byJournal[rec.Journal], rec)
	}
	for _, label := range p.order {
		if err := p.journals[label].Load(byJournal[label]); err != nil {
			return err
		}
	}
	return nil
}
