package id

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence is a monotonic generator of entry sequence numbers. A number
// handed out by Next is never handed out again, even if the caller fails to
// use it.
type Sequence struct {
	last int
}

// NewSequence returns a generator whose first number is start+1.
func NewSequence(start int) *Sequence {
	return &Sequence{last: start}
}

// Next allocates the next number.
func (s *Sequence) Next() int {
	s.last++
	return s.last
}

// Current returns the last allocated number, 0 if none.
func (s *Sequence) Current() int { return s.last }

// Advance moves the generator forward so that Next returns at least n+1.
// It never moves backward.
func (s *Sequence) Advance(n int) {
	if n > s.last {
		s.last = n
	}
}

// FormatEntryID returns an entry ID like "VT-000012".
func FormatEntryID(journal string, seq int) string {
	return fmt.Sprintf("%s-%06d", journal, seq)
}

// FormatImputationID returns an imputation ID like "VT-000012a" (line 0='a', 1='b', etc.).
func FormatImputationID(entryID string, line int) string {
	return entryID + string(rune('a'+line))
}

// ParseEntryID parses "VT-000012" into the journal label and sequence.
func ParseEntryID(id string) (journal string, seq int, err error) {
	base := EntryOf(id)

	i := strings.LastIndex(base, "-")
	if i <= 0 || i == len(base)-1 {
		return "", 0, fmt.Errorf("invalid entry ID format: %q", id)
	}

	seq, err = strconv.Atoi(base[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}
	return base[:i], seq, nil
}

// EntryOf strips the line suffix from an imputation ID.
// "VT-000012a" -> "VT-000012"
func EntryOf(imputationID string) string {
	i := len(imputationID)
	for i > 0 && imputationID[i-1] >= 'a' && imputationID[i-1] <= 'z' {
		i--
	}
	return imputationID[:i]
}
