package causal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParsePattern decodes a YAML pattern document and builds its graph.
func ParsePattern(data []byte) (*Graph, error) {
	var spec PatternSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse pattern yaml: %w", err)
	}
	return Build(&spec)
}

// LoadPattern reads a YAML pattern document from path and builds its graph.
func LoadPattern(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern %s: %w", path, err)
	}
	g, err := ParsePattern(data)
	if err != nil {
		return nil, fmt.Errorf("load pattern %s: %w", path, err)
	}
	return g, nil
}
