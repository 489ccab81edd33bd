// Package evidence serves seeded ground-truth evidence to agents under
// test over MCP. Each injected pattern ships an evidence map: per-channel
// items (logs, metrics, config, deploys) that an agent can query while
// investigating. The server throttles queries with a token bucket and
// records every call, producing the transcript the process metrics
// aggregator grades afterward.
package evidence

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is one retrievable piece of evidence. Keywords gate retrieval: a
// query matches when it contains any keyword. NodeID ties the item back to
// the causal graph for authoring sanity checks, never exposed to agents.
type Item struct {
	ID       string   `yaml:"id" json:"id"`
	Keywords []string `yaml:"keywords" json:"-"`
	Content  string   `yaml:"content" json:"content"`
	NodeID   string   `yaml:"node_id,omitempty" json:"-"`
}

// Map is the seeded evidence for one pattern.
type Map struct {
	PatternID string            `yaml:"pattern_id"`
	Channels  map[string][]Item `yaml:"channels"`
}

// ParseMap decodes and validates an evidence map document.
func ParseMap(data []byte) (*Map, error) {
	var m Map
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse evidence map: %w", err)
	}
	if m.PatternID == "" {
		return nil, fmt.Errorf("evidence map: missing pattern_id")
	}
	if len(m.Channels) == 0 {
		return nil, fmt.Errorf("evidence map %s: no channels", m.PatternID)
	}
	for ch, items := range m.Channels {
		for i, it := range items {
			if it.ID == "" {
				return nil, fmt.Errorf("evidence map %s: channel %s item %d: missing id", m.PatternID, ch, i)
			}
			if len(it.Keywords) == 0 {
				return nil, fmt.Errorf("evidence map %s: item %s: no keywords", m.PatternID, it.ID)
			}
		}
	}
	return &m, nil
}

// LoadMap reads and parses an evidence map from disk.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read evidence map: %w", err)
	}
	return ParseMap(data)
}

// ChannelNames returns the channel names in sorted order.
func (m *Map) ChannelNames() []string {
	names := make([]string, 0, len(m.Channels))
	for ch := range m.Channels {
		names = append(names, ch)
	}
	sort.Strings(names)
	return names
}

// Query returns the channel's items whose keywords appear in the query,
// case-insensitively, preserving authoring order.
func (m *Map) Query(channel, query string) ([]Item, error) {
	items, ok := m.Channels[channel]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q (have %s)", channel, strings.Join(m.ChannelNames(), ", "))
	}
	q := strings.ToLower(query)
	var hits []Item
	for _, it := range items {
		for _, kw := range it.Keywords {
			if strings.Contains(q, strings.ToLower(kw)) {
				hits = append(hits, it)
				break
			}
		}
	}
	return hits, nil
}
