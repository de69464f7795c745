package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Summary records the parameters and outcome of one ranking run. It is
// written as TOML next to the report files when a summary path is set.
type Summary struct {
	Input       string    `toml:"input"`
	StartedAt   time.Time `toml:"started_at"`
	CompletedAt time.Time `toml:"completed_at"`

	Damping       float64 `toml:"damping"`
	Mode          string  `toml:"mode"`
	Threshold     float64 `toml:"threshold"`
	MaxIterations int     `toml:"max_iterations"`
	K             int     `toml:"k"`

	Pages int `toml:"pages"`
	Edges int `toml:"edges"`
	Sinks int `toml:"sinks"`

	Iterations    int     `toml:"iterations"`
	FinalDistance float64 `toml:"final_distance"`
	Converged     bool    `toml:"converged"`
	Mass          float64 `toml:"mass"`

	TopPage    string  `toml:"top_page,omitempty"`
	TopScore   float64 `toml:"top_score,omitempty"`
	RankFile   string  `toml:"rank_file"`
	InlinkFile string  `toml:"inlink_file"`
}

// WriteSummary writes s to path, creating parent directories as needed.
func WriteSummary(path string, s *Summary) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary %s: %w", path, err)
	}
	return nil
}

// ReadSummary loads a summary previously written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading summary %s: %w", path, err)
	}

	var s Summary
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing summary %s: %w", path, err)
	}
	return &s, nil
}
