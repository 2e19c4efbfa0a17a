// Package store persists serialized journal entries as JSON Lines.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/model"
)

// maxLine bounds a single record line.
const maxLine = 1 << 20

// File is a JSON Lines file holding one model.EntryRecord per line.
type File struct {
	path   string
	logger *slog.Logger
}

type Option func(*File)

func WithLogger(logger *slog.Logger) Option {
	return func(f *File) { f.logger = logger }
}

func NewFile(path string, opts ...Option) *File {
	f := &File{path: path, logger: slog.Default()}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *File) Path() string { return f.path }

// Append adds records at the end of the file, creating it if needed.
func (f *File) Append(records ...model.EntryRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	w := bufio.NewWriter(out)
	if err := Encode(w, records); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	f.logger.Debug("appended records", "path", f.path, "count", len(records))
	return nil
}

// Load reads every record of the file. A missing file holds no record.
func (f *File) Load() (records []model.EntryRecord, err error) {
	in, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()
	records, err = Decode(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	return records, nil
}

// Rewrite replaces the whole file with records. Readers see either the old
// or the new content, never a partial file.
func (f *File) Rewrite(records []model.EntryRecord) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := atomic.WriteFile(f.path, &buf); err != nil {
		return err
	}
	f.logger.Debug("rewrote records", "path", f.path, "count", len(records))
	return nil
}

// Encode writes records as JSON Lines.
func Encode(w io.Writer, records []model.EntryRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding %s-%d: %w", rec.Journal, rec.SequenceNumber, err)
		}
	}
	return nil
}

// Decode reads JSON Lines records. Blank lines are ignored.
func Decode(r io.Reader) ([]model.EntryRecord, error) {
	var records []model.EntryRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec model.EntryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
