package journal

import "fmt"

// EventKind identifies what happened to an entry.
type EventKind int

const (
	// EventImputed fires once per imputation applied to the chart, both on
	// posting and on replay.
	EventImputed EventKind = iota + 1
	// EventPosted fires once an entry is applied and appended.
	EventPosted
	EventValidated
	EventReconciled
)

func (k EventKind) String() string {
	switch k {
	case EventImputed:
		return "imputed"
	case EventPosted:
		return "posted"
	case EventValidated:
		return "validated"
	case EventReconciled:
		return "reconciled"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered synchronously to the listeners of a journal.
type Event struct {
	Kind       EventKind
	Journal    *Journal
	Entry      *Entry
	Imputation *Imputation // EventImputed only
	Replay     bool        // set while Run or Replay re-applies the log
}

// Listener reacts to journal events.
type Listener interface {
	HandleEvent(Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event) error

func (f ListenerFunc) HandleEvent(ev Event) error { return f(ev) }
