package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/causal"
)

// Manifest describes one batch run on disk: a pattern document plus the
// trials to grade against it. Relative paths resolve against the manifest's
// own directory so a run directory can be moved or archived whole.
type Manifest struct {
	Pattern string          `yaml:"pattern"`
	Trials  []ManifestTrial `yaml:"trials"`
}

// ManifestTrial names one agent's files. Transcript is optional.
type ManifestTrial struct {
	AgentID    string `yaml:"agent_id"`
	Report     string `yaml:"report"`
	Transcript string `yaml:"transcript,omitempty"`
}

// LoadManifest reads a manifest and materializes its tasks: the pattern is
// built once and shared read-only across trials.
func LoadManifest(path string) ([]Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Pattern == "" {
		return nil, fmt.Errorf("manifest %s: missing pattern", path)
	}
	if len(m.Trials) == 0 {
		return nil, fmt.Errorf("manifest %s: no trials", path)
	}

	base := filepath.Dir(path)
	graph, err := causal.LoadPattern(resolve(base, m.Pattern))
	if err != nil {
		return nil, err
	}

	tasks := make([]Task, 0, len(m.Trials))
	for i, t := range m.Trials {
		if t.AgentID == "" {
			return nil, fmt.Errorf("manifest %s: trial %d: missing agent_id", path, i)
		}
		if t.Report == "" {
			return nil, fmt.Errorf("manifest %s: trial %s: missing report", path, t.AgentID)
		}
		report, err := os.ReadFile(resolve(base, t.Report))
		if err != nil {
			return nil, fmt.Errorf("trial %s: read report: %w", t.AgentID, err)
		}
		var transcript []byte
		if t.Transcript != "" {
			transcript, err = os.ReadFile(resolve(base, t.Transcript))
			if err != nil {
				return nil, fmt.Errorf("trial %s: read transcript: %w", t.AgentID, err)
			}
		}
		tasks = append(tasks, Task{
			AgentID:    t.AgentID,
			Graph:      graph,
			Report:     string(report),
			Transcript: transcript,
		})
	}
	return tasks, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
