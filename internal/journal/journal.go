// Package journal implements the double-entry posting protocol: entries are
// resolved against a balance chart, checked, applied and appended to an
// ordered log that can be replayed at any time.
package journal

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/balance"
	"github.com/cleared-dev/finsim/internal/id"
	"github.com/cleared-dev/finsim/internal/model"
)

// Journal is an append-only log of entries posted against a balance chart.
type Journal struct {
	label       string
	description string
	chart       *balance.Chart
	analytic    *balance.Chart

	entries []*Entry
	bySeq   map[int]*Entry
	seq     *id.Sequence

	listeners []Listener
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithAnalyticChart sets the chart analytic accounts resolve against.
func WithAnalyticChart(chart *balance.Chart) Option {
	return func(j *Journal) { j.analytic = chart }
}

// WithListener registers a listener. Listeners run in registration order.
func WithListener(l Listener) Option {
	return func(j *Journal) { j.listeners = append(j.listeners, l) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) { j.logger = logger }
}

// WithSequence sets the sequence number generator.
func WithSequence(seq *id.Sequence) Option {
	return func(j *Journal) { j.seq = seq }
}

// New creates an empty journal posting to chart.
func New(label, description string, chart *balance.Chart, opts ...Option) *Journal {
	j := &Journal{
		label:       label,
		description: description,
		chart:       chart,
		bySeq:       make(map[int]*Entry),
		seq:         id.NewSequence(0),
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.logger = j.logger.With("journal", label)
	return j
}

func (j *Journal) Label() string { return j.label }

func (j *Journal) Description() string { return j.description }

// Chart returns the balance chart entries post to.
func (j *Journal) Chart() *balance.Chart { return j.chart }

// AnalyticChart returns the analytic chart, or nil.
func (j *Journal) AnalyticChart() *balance.Chart { return j.analytic }

// Now returns the journal clock's current time.
func (j *Journal) Now() time.Time { return j.now() }

// AddListener registers a listener after construction.
func (j *Journal) AddListener(l Listener) { j.listeners = append(j.listeners, l) }

// Len returns the number of entries.
func (j *Journal) Len() int { return len(j.entries) }

// Entries iterates the log in posting order.
func (j *Journal) Entries() iter.Seq[*Entry] { return slices.Values(j.entries) }

// Entry returns the entry with sequence number seq.
func (j *Journal) Entry(seq int) (*Entry, error) {
	e, ok := j.bySeq[seq]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id.FormatEntryID(j.label, seq))
	}
	return e, nil
}

// LogEntry resolves, checks, applies and appends an entry. A sequence number
// is allocated once every account resolved; it is burned if the entry turns
// out to be invalid. A failure before application leaves the chart
// untouched. Listener errors are returned along with the posted entry.
func (j *Journal) LogEntry(date time.Time, description string, data []ImputationData, document string) (*Entry, error) {
	imputations := make([]*Imputation, 0, len(data))
	for _, d := range data {
		imp, err := d.Resolve(j.chart, j.analytic)
		if err != nil {
			return nil, fmt.Errorf("logging %q: %w", description, err)
		}
		imputations = append(imputations, imp)
	}
	return j.post(date, description, document, imputations)
}

// LogTemplate logs t on date.
func (j *Journal) LogTemplate(date time.Time, t *Template, document string) (*Entry, error) {
	return j.LogEntry(date, t.description, t.imputations, document)
}

func (j *Journal) post(date time.Time, description, document string, imputations []*Imputation) (*Entry, error) {
	seq := j.seq.Next()
	e, err := newEntry(j, seq, date, description, document, imputations)
	if err != nil {
		return nil, fmt.Errorf("logging %q: %w", description, err)
	}

	for _, imp := range e.imputations {
		if err := imp.apply(); err != nil {
			return nil, fmt.Errorf("applying %s: %w", e.ID(), err)
		}
	}
	j.append(e)
	j.logger.Debug("posted entry",
		"id", e.ID(),
		"date", e.date.String(),
		"description", description,
		"amount", e.SumOfDebits().StringFixed(2))

	var errs error
	for _, imp := range e.imputations {
		errs = multierr.Append(errs, j.notify(Event{Kind: EventImputed, Journal: j, Entry: e, Imputation: imp}))
	}
	errs = multierr.Append(errs, j.notify(Event{Kind: EventPosted, Journal: j, Entry: e}))
	if errs != nil {
		return e, fmt.Errorf("%s posted, notifying listeners: %w", e.ID(), errs)
	}
	return e, nil
}

func (j *Journal) append(e *Entry) {
	j.entries = append(j.entries, e)
	j.bySeq[e.seq] = e
}

func (j *Journal) notify(ev Event) error {
	var errs error
	for _, l := range j.listeners {
		errs = multierr.Append(errs, l.HandleEvent(ev))
	}
	return errs
}

// Run resets the charts and replays the whole log.
func (j *Journal) Run() error {
	j.chart.Reset()
	if j.analytic != nil {
		j.analytic.Reset()
	}
	return j.Replay()
}

// Replay applies every entry again without resetting the charts.
func (j *Journal) Replay() error {
	var errs error
	for _, e := range j.entries {
		for _, imp := range e.imputations {
			if err := imp.apply(); err != nil {
				return fmt.Errorf("replaying %s: %w", e.ID(), err)
			}
			errs = multierr.Append(errs, j.notify(Event{Kind: EventImputed, Journal: j, Entry: e, Imputation: imp, Replay: true}))
		}
	}
	j.logger.Debug("replayed journal", "entries", len(j.entries))
	return errs
}

// Filter yields the entries involving account (or a sub-account) dated
// within [from, to]. An empty account or a zero bound disables that filter.
func (j *Journal) Filter(account string, from, to time.Time) iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, e := range j.entries {
			if account != "" && !e.Involves(account) {
				continue
			}
			if !from.IsZero() && e.date.Before(from) {
				continue
			}
			if !to.IsZero() && e.date.After(to) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Records returns the serialized form of every entry.
func (j *Journal) Records() []model.EntryRecord {
	res := make([]model.EntryRecord, len(j.entries))
	for k, e := range j.entries {
		res[k] = e.Record()
	}
	return res
}

// Load rebuilds entries from records in sequence order without applying
// them; call Run to obtain the balances. Records of other journals are
// rejected. The sequence generator continues after the highest number.
func (j *Journal) Load(records []model.EntryRecord) error {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.EntryRecord) int {
		return cmp.Compare(a.SequenceNumber, b.SequenceNumber)
	})

	loaded := make([]*Entry, 0, len(sorted))
	seen := make(map[int]bool, len(sorted))
	for _, rec := range sorted {
		entryID := id.FormatEntryID(rec.Journal, rec.SequenceNumber)
		if rec.Journal != j.label {
			return fmt.Errorf("loading %s into journal %s: foreign record", entryID, j.label)
		}
		if _, dup := j.bySeq[rec.SequenceNumber]; dup || seen[rec.SequenceNumber] {
			return fmt.Errorf("loading %s: %w", entryID, ErrDuplicateSequence)
		}
		seen[rec.SequenceNumber] = true

		e, err := j.fromRecord(rec)
		if err != nil {
			return fmt.Errorf("loading %s: %w", entryID, err)
		}
		loaded = append(loaded, e)
	}

	for _, e := range loaded {
		j.append(e)
		j.seq.Advance(e.seq)
	}
	j.logger.Debug("loaded journal", "entries", len(loaded), "sequence", j.seq.Current())
	return nil
}

// fromRecord rebuilds an entry and restores its lifecycle state, which must
// be reachable through Validate then Reconcile.
func (j *Journal) fromRecord(rec model.EntryRecord) (*Entry, error) {
	if rec.SequenceNumber <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSequence, rec.SequenceNumber)
	}
	if rec.ReconciliationDate != nil && rec.ValidationDate == nil {
		return nil, fmt.Errorf("reconciled as %q: %w", rec.ReconciliationID, ErrNotValidated)
	}
	var imputations []*Imputation
	add := func(records []model.ImputationRecord, side model.Side) error {
		for _, r := range records {
			d := ImputationData{Account: r.Account, AnalyticAccount: r.AnalyticAccount, Amount: r.Amount, Side: side}
			imp, err := d.Resolve(j.chart, j.analytic)
			if err != nil {
				return err
			}
			imputations = append(imputations, imp)
		}
		return nil
	}
	if err := add(rec.Debits, model.Debit); err != nil {
		return nil, err
	}
	if err := add(rec.Credits, model.Credit); err != nil {
		return nil, err
	}

	e, err := newEntry(j, rec.SequenceNumber, rec.Date.Time, rec.Description, rec.Document, imputations)
	if err != nil {
		return nil, err
	}
	if rec.ValidationDate != nil {
		t := *rec.ValidationDate
		e.validationDate = &t
	}
	if rec.ReconciliationDate != nil {
		t := *rec.ReconciliationDate
		e.reconciliationDate = &t
		e.reconciliationID = rec.ReconciliationID
	}
	return e, nil
}
