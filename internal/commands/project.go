package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/config"
	"github.com/cleared-dev/finsim/internal/gitops"
	"github.com/cleared-dev/finsim/internal/history"
	"github.com/cleared-dev/finsim/internal/id"
	"github.com/cleared-dev/finsim/internal/journal"
	"github.com/cleared-dev/finsim/internal/model"
	"github.com/cleared-dev/finsim/internal/period"
	"github.com/cleared-dev/finsim/internal/store"
)

// project is an opened finsim directory: its configuration, its period
// with every stored entry replayed, and the listeners persisting changes.
type project struct {
	root     string
	cfg      *config.Config
	period   *period.Period
	file     *store.File
	listener *store.Listener
	recorder *history.Recorder
	logger   *slog.Logger
}

// openProject loads the project at root. With persist, entries posted
// afterwards are written to the store and balance history.
func openProject(root string, persist bool, logger *slog.Logger) (*project, error) {
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}

	chart, err := accounts.Load(config.Resolve(root, cfg.Chart.Source))
	if err != nil {
		return nil, fmt.Errorf("loading chart: %w", err)
	}
	opts := []period.Option{period.WithJournalOptions(journal.WithLogger(logger))}
	if cfg.Chart.Analytic != "" {
		analytic, err := accounts.Load(config.Resolve(root, cfg.Chart.Analytic))
		if err != nil {
			return nil, fmt.Errorf("loading analytic chart: %w", err)
		}
		opts = append(opts, period.WithAnalyticChart(analytic))
	}

	p, err := period.New(chart, cfg.Journals, cfg.Period.Start.Time, cfg.Period.Stop.Time, opts...)
	if err != nil {
		return nil, err
	}

	file := store.NewFile(config.Resolve(root, cfg.Paths.Store), store.WithLogger(logger))
	records, err := file.Load()
	if err != nil {
		return nil, err
	}
	if err := checkRecords(records, chart, logger); err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path(), err)
	}
	if err := p.Load(records); err != nil {
		return nil, err
	}
	if err := p.Run(); err != nil {
		return nil, fmt.Errorf("replaying journals: %w", err)
	}
	logger.Debug("opened project", "root", root, "entries", len(records))

	prj := &project{root: root, cfg: cfg, period: p, file: file, logger: logger}
	if persist {
		prj.listener = store.NewListener(file)
		prj.recorder = history.NewRecorder()
		for j := range p.Journals() {
			j.AddListener(prj.listener)
			j.AddListener(prj.recorder)
		}
	}
	return prj, nil
}

// checkRecords reports every invalid stored entry at once. Amounts finer
// than the currency precision only warn: postings round them when balancing.
func checkRecords(records []model.EntryRecord, chart journal.AccountChecker, logger *slog.Logger) error {
	var err error
	for _, v := range journal.ValidateRecords(records, chart) {
		if errors.Is(v, journal.ErrPrecision) {
			logger.Warn("amount exceeds currency precision", "entry", v.EntryID, "detail", v.Description)
			continue
		}
		err = multierr.Append(err, v)
	}
	return err
}

func (p *project) journal(label string) (*journal.Journal, error) {
	return p.period.Journal(label)
}

// entry finds an entry by its id, e.g. VT-000012.
func (p *project) entry(entryID string) (*journal.Entry, error) {
	label, seq, err := id.ParseEntryID(entryID)
	if err != nil {
		return nil, err
	}
	j, err := p.journal(label)
	if err != nil {
		return nil, err
	}
	return j.Entry(seq)
}

// save flushes pending changes and commits them when auto-commit is on.
func (p *project) save(ctx context.Context, message string) error {
	if p.listener == nil {
		return nil
	}
	err := multierr.Combine(
		p.listener.Flush(p.period),
		p.recorder.Flush(p.root),
	)
	if err != nil {
		return err
	}
	return p.commit(ctx, message)
}

func (p *project) commit(ctx context.Context, message string) error {
	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.root) {
		return nil
	}
	repo, err := gitops.Open(p.root,
		gitops.WithAuthor(p.cfg.Git.AuthorName, p.cfg.Git.AuthorEmail),
		gitops.WithLogger(p.logger))
	if err != nil {
		return err
	}
	_, err = repo.CommitAll(ctx, message)
	return err
}

// rewriteHistory replaces the balance history with snapshots.
func rewriteHistory(root string, snapshots []history.Snapshot) error {
	if err := os.Remove(history.Path(root)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return history.Append(root, snapshots)
}
