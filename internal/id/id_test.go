package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	s := NewSequence(0)
	assert.Equal(t, 0, s.Current())
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, 2, s.Next())
	assert.Equal(t, 2, s.Current())

	s.Advance(10)
	assert.Equal(t, 11, s.Next())
	s.Advance(3)
	assert.Equal(t, 12, s.Next())

	assert.Equal(t, 6, NewSequence(5).Next())
}

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		journal string
		seq     int
		want    string
	}{
		{"VT", 1, "VT-000001"},
		{"BQ", 99, "BQ-000099"},
		{"OD", 1234567, "OD-1234567"},
	}
	for _, tt := range tests {
		got := FormatEntryID(tt.journal, tt.seq)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatImputationID(t *testing.T) {
	tests := []struct {
		entryID string
		line    int
		want    string
	}{
		{"VT-000001", 0, "VT-000001a"},
		{"VT-000001", 1, "VT-000001b"},
		{"VT-000001", 2, "VT-000001c"},
	}
	for _, tt := range tests {
		got := FormatImputationID(tt.entryID, tt.line)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input       string
		wantJournal string
		wantSeq     int
	}{
		{"VT-000001", "VT", 1},
		{"BQ-000099", "BQ", 99},
		{"VT-000001a", "VT", 1},
		{"achats-fr-000007b", "achats-fr", 7},
	}
	for _, tt := range tests {
		journal, seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.wantJournal, journal)
		assert.Equal(t, tt.wantSeq, seq)
	}
}

func TestParseEntryID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"000001",
		"VT-",
		"-000001",
		"VT-00x1",
	}
	for _, input := range badInputs {
		_, _, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestEntryOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"VT-000001a", "VT-000001"},
		{"VT-000001b", "VT-000001"},
		{"VT-000001", "VT-000001"},
		{"", ""},
	}
	for _, tt := range tests {
		got := EntryOf(tt.input)
		assert.Equal(t, tt.want, got)
	}
}
