// Package history keeps the successive states of account balances as
// entries are posted.
package history

import (
	"slices"

	"github.com/cleared-dev/finsim/internal/id"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

// Recorder is a journal listener taking a Snapshot after every imputation.
// Replayed imputations are skipped unless WithReplay is set.
type Recorder struct {
	replay    bool
	snapshots []Snapshot
}

type Option func(*Recorder)

// WithReplay also records imputations re-applied by Run and Replay.
func WithReplay() Option {
	return func(r *Recorder) { r.replay = true }
}

func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Recorder) HandleEvent(ev journal.Event) error {
	if ev.Kind != journal.EventImputed || (ev.Replay && !r.replay) {
		return nil
	}
	imp := ev.Imputation
	line := slices.Index(ev.Entry.Imputations(), imp)
	acct := imp.Account()
	r.snapshots = append(r.snapshots, Snapshot{
		Date:         model.Date{Time: ev.Entry.Date()},
		ImputationID: id.FormatImputationID(ev.Entry.ID(), line),
		Account:      acct.Number(),
		Side:         imp.Side(),
		Amount:       imp.Amount(),
		InnerDebit:   acct.InnerDebit(),
		InnerCredit:  acct.InnerCredit(),
	})
	return nil
}

// Snapshots returns the snapshots recorded since the last Flush.
func (r *Recorder) Snapshots() []Snapshot { return slices.Clone(r.snapshots) }

// Account returns the recorded snapshots of one account.
func (r *Recorder) Account(number string) []Snapshot {
	var res []Snapshot
	for _, s := range r.snapshots {
		if s.Account == number {
			res = append(res, s)
		}
	}
	return res
}

// Flush appends the pending snapshots to the history of the project at root.
func (r *Recorder) Flush(root string) error {
	if len(r.snapshots) == 0 {
		return nil
	}
	if err := Append(root, r.snapshots); err != nil {
		return err
	}
	r.snapshots = nil
	return nil
}
