package scheduler

import (
	"errors"
	"fmt"
	"iter"
	"time"
)

// ErrInvalidRecurrence is returned for an unknown or non-positive recurrence.
var ErrInvalidRecurrence = errors.New("invalid recurrence")

// Action is something to do on the dates it yields.
type Action interface {
	Label() string
	// NextDates yields, in increasing order, the dates of the action within
	// [start, stop].
	NextDates(start, stop time.Time) iter.Seq[time.Time]
	Run(date time.Time) error
}

// Func is the work of an action.
type Func func(date time.Time) error

type base struct {
	label string
	fn    Func
}

func (b *base) Label() string { return b.label }

func (b *base) Run(date time.Time) error {
	if b.fn == nil {
		return nil
	}
	return b.fn(date)
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func within(d, start, stop time.Time) bool {
	return !d.Before(start) && !d.After(stop)
}

// Single runs once.
type Single struct {
	base
	date time.Time
}

func NewSingle(label string, date time.Time, fn Func) *Single {
	return &Single{base: base{label: label, fn: fn}, date: date}
}

func (s *Single) Date() time.Time { return s.date }

func (s *Single) NextDates(start, stop time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if within(s.date, start, stop) {
			yield(s.date)
		}
	}
}

func (s *Single) String() string {
	return fmt.Sprintf("action %s @%s", s.label, s.date.Format(time.DateOnly))
}

// Recurrent runs on the dates derived from an anchor date. The k-th date is
// always computed from the anchor, never from the previous date, so a
// clamped month end does not drift.
type Recurrent struct {
	base
	start time.Time
	every string
	step  func(anchor time.Time, k int) time.Time
}

func (r *Recurrent) Start() time.Time { return r.start }

func (r *Recurrent) NextDates(start, stop time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for k := 0; ; k++ {
			d := r.step(r.start, k)
			if d.After(stop) {
				return
			}
			if !d.Before(start) && !yield(d) {
				return
			}
		}
	}
}

func (r *Recurrent) String() string {
	return fmt.Sprintf("action %s %s from %s", r.label, r.every, r.start.Format(time.DateOnly))
}

// NewPeriodic runs every days days from start.
func NewPeriodic(label string, start time.Time, days int, fn Func) (*Recurrent, error) {
	if days <= 0 {
		return nil, fmt.Errorf("%w: period of %d days", ErrInvalidRecurrence, days)
	}
	return &Recurrent{
		base:  base{label: label, fn: fn},
		start: start,
		every: fmt.Sprintf("every %d days", days),
		step: func(anchor time.Time, k int) time.Time {
			return anchor.AddDate(0, 0, k*days)
		},
	}, nil
}

func NewWeekly(label string, start time.Time, fn Func) *Recurrent {
	r, _ := NewPeriodic(label, start, 7, fn)
	r.every = "weekly"
	return r
}

// NewNMonthly runs every n months on the day of month of start, clamped to
// the last day of shorter months.
func NewNMonthly(label string, start time.Time, n int, fn Func) (*Recurrent, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: period of %d months", ErrInvalidRecurrence, n)
	}
	return &Recurrent{
		base:  base{label: label, fn: fn},
		start: start,
		every: fmt.Sprintf("every %d months", n),
		step: func(anchor time.Time, k int) time.Time {
			return AddMonths(anchor, k*n)
		},
	}, nil
}

func mustNMonthly(label, every string, start time.Time, n int, fn Func) *Recurrent {
	r, _ := NewNMonthly(label, start, n, fn)
	r.every = every
	return r
}

func NewMonthly(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "monthly", start, 1, fn)
}

func NewBimonthly(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "bimonthly", start, 2, fn)
}

func NewQuarterly(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "quarterly", start, 3, fn)
}

func NewFourMonthly(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "four-monthly", start, 4, fn)
}

func NewHalfYearly(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "half-yearly", start, 6, fn)
}

// NewAnnual runs every year on the month and day of start; 29 February
// falls back to the 28th on common years.
func NewAnnual(label string, start time.Time, fn Func) *Recurrent {
	return mustNMonthly(label, "annual", start, 12, fn)
}

// AddMonths moves t by n months keeping its day of month, clamped to the
// last day of the target month.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(d, last)-1)
}

// Recurrence names a recurrence kind.
type Recurrence string

const (
	Once        Recurrence = "single"
	Weekly      Recurrence = "weekly"
	Monthly     Recurrence = "monthly"
	Bimonthly   Recurrence = "bimonthly"
	Quarterly   Recurrence = "quarterly"
	FourMonthly Recurrence = "four-monthly"
	HalfYearly  Recurrence = "half-yearly"
	Annual      Recurrence = "annual"
)

// ParseRecurrence accepts the recurrence names; the empty string is Once.
func ParseRecurrence(s string) (Recurrence, error) {
	switch r := Recurrence(s); r {
	case "":
		return Once, nil
	case Once, Weekly, Monthly, Bimonthly, Quarterly, FourMonthly, HalfYearly, Annual:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRecurrence, s)
}

// NewAction builds the action of recurrence r anchored at start.
func NewAction(r Recurrence, label string, start time.Time, fn Func) (Action, error) {
	switch r {
	case Once, "":
		return NewSingle(label, start, fn), nil
	case Weekly:
		return NewWeekly(label, start, fn), nil
	case Monthly:
		return NewMonthly(label, start, fn), nil
	case Bimonthly:
		return NewBimonthly(label, start, fn), nil
	case Quarterly:
		return NewQuarterly(label, start, fn), nil
	case FourMonthly:
		return NewFourMonthly(label, start, fn), nil
	case HalfYearly:
		return NewHalfYearly(label, start, fn), nil
	case Annual:
		return NewAnnual(label, start, fn), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidRecurrence, string(r))
}
