package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// Load reads a chart from path. YAML files are chart definitions, CSV files
// are exports written by Save. An empty path yields the default chart.
func Load(path string) (*Chart, error) {
	if path == "" {
		return DefaultChart(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadDefinition(f)
	case ".csv":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return ReadChart(f, name)
	default:
		return nil, fmt.Errorf("unsupported chart format %q", filepath.Ext(path))
	}
}

// Save writes the chart as CSV, replacing path atomically.
func Save(path string, chart *Chart) error {
	var sb strings.Builder
	if err := WriteAccounts(&sb, chart); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating chart directory: %w", err)
	}
	if err := atomic.WriteFile(path, strings.NewReader(sb.String())); err != nil {
		return fmt.Errorf("writing chart: %w", err)
	}
	return nil
}
