package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/finsim/internal/accounts"
	"github.com/cleared-dev/finsim/internal/config"
	"github.com/cleared-dev/finsim/internal/gitops"
)

const chartFile = "chart.csv"

func newInitCommand(g *globals) *cobra.Command {
	var (
		name  string
		year  int
		noGit bool
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new finsim project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg := config.Default(name, year)
			cfg.Chart.Source = chartFile
			if err := runInit(absDir, cfg); err != nil {
				return err
			}
			if noGit {
				cfg.Git.AutoCommit = false
				if err := config.Save(filepath.Join(absDir, config.FileName), cfg); err != nil {
					return err
				}
				printf(cmd, "Initialized finsim project at %s\n", absDir)
				return nil
			}

			hash, err := initRepo(cmd.Context(), absDir, cfg, g)
			if err != nil {
				return err
			}
			printf(cmd, "Initialized finsim project at %s (%s)\n", absDir, hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "calendar year of the first period")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(dir string, cfg *config.Config) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	dirs := []string{
		filepath.Dir(cfg.Paths.Store),
		cfg.Paths.Reports,
		"logs",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := accounts.Save(filepath.Join(dir, cfg.Chart.Source), accounts.DefaultChart()); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}

func initRepo(ctx context.Context, dir string, cfg *config.Config, g *globals) (string, error) {
	repo, err := gitops.Open(dir,
		gitops.WithAuthor(cfg.Git.AuthorName, cfg.Git.AuthorEmail),
		gitops.WithLogger(g.logger))
	if err != nil {
		return "", err
	}
	if err := repo.Init(ctx); err != nil {
		return "", err
	}
	hash, err := repo.CommitAll(ctx, "init: Initialize "+cfg.Business.Name)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
