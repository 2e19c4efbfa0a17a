// Package gitops versions a finsim project directory with git.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoGit is returned when the git binary cannot be found.
var ErrNoGit = errors.New("git executable not found")

// Repo runs git commands in a project directory.
type Repo struct {
	dir    string
	name   string
	email  string
	logger *slog.Logger
}

type Option func(*Repo)

// WithAuthor sets the author and committer of commits.
func WithAuthor(name, email string) Option {
	return func(r *Repo) { r.name, r.email = name, email }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repo) { r.logger = logger }
}

// Open returns the repository at dir. The directory is not required to be
// a repository yet.
func Open(dir string, opts ...Option) (*Repo, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, ErrNoGit
	}
	r := &Repo{dir: dir, name: "finsim", email: "finsim@localhost", logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Dir returns the working directory of the repository.
func (r *Repo) Dir() string { return r.dir }

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Init initializes the repository unless it already exists.
func (r *Repo) Init(ctx context.Context) error {
	if IsRepo(r.dir) {
		return nil
	}
	if _, err := r.git(ctx, "init", "--quiet"); err != nil {
		return err
	}
	r.logger.Debug("initialized git repository", "dir", r.dir)
	return nil
}

// CommitAll stages all files and commits them. It returns the short hash
// of the new commit, or "" when the tree has no change.
func (r *Repo) CommitAll(ctx context.Context, message string) (string, error) {
	if _, err := r.git(ctx, "add", "-A"); err != nil {
		return "", err
	}
	status, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", nil
	}

	author := fmt.Sprintf("%s <%s>", r.name, r.email)
	if _, err := r.git(ctx, "commit", "--quiet", "-m", message, "--author", author); err != nil {
		return "", err
	}
	hash, err := r.git(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	r.logger.Info("committed project", "hash", hash, "message", message)
	return hash, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+r.name,
		"GIT_COMMITTER_EMAIL="+r.email,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
