package store

import (
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
)

// Source gives the full set of records to persist.
type Source interface {
	Records() []model.EntryRecord
}

// Listener appends posted entries to a File. Validation and reconciliation
// change records already written, so they only mark the file dirty until
// the next Flush.
type Listener struct {
	file  *File
	dirty bool
}

func NewListener(f *File) *Listener {
	return &Listener{file: f}
}

func (l *Listener) HandleEvent(ev journal.Event) error {
	if ev.Replay {
		return nil
	}
	switch ev.Kind {
	case journal.EventPosted:
		return l.file.Append(ev.Entry.Record())
	case journal.EventValidated, journal.EventReconciled:
		l.dirty = true
	}
	return nil
}

// Dirty reports whether written records are out of date.
func (l *Listener) Dirty() bool { return l.dirty }

// Flush rewrites the file from src when records changed after being
// written. src must hold every record of the file, not only one journal's.
func (l *Listener) Flush(src Source) error {
	if !l.dirty {
		return nil
	}
	if err := l.file.Rewrite(src.Records()); err != nil {
		return err
	}
	l.dirty = false
	return nil
}
