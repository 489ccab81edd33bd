package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/logging"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultRateCapacity and DefaultRefillPeriod mirror the process policy's
// token bucket so the server throttles at the same rate the grader scores.
const (
	DefaultRateCapacity = 10
	DefaultRefillPeriod = time.Second
)

// Server exposes one pattern's evidence map over MCP. Every query is
// recorded for process scoring; rate-limit violations are answered anyway
// and show up in the transcript stats instead of blocking the agent.
type Server struct {
	MCPServer *sdkmcp.Server

	emap     *Map
	limiter  *Limiter
	recorder *Recorder
}

// NewServer creates an evidence server for the given map.
func NewServer(m *Map) *Server {
	s := &Server{
		emap:     m,
		limiter:  NewLimiter(DefaultRateCapacity, DefaultRefillPeriod),
		recorder: NewRecorder(),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "sdlc-inject-evidence", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Recorder exposes the session transcript for grading after the agent
// finishes.
func (s *Server) Recorder() *Recorder { return s.recorder }

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_channels",
		Description: "List the evidence channels available for this incident.",
	}, s.handleListChannels)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "query_evidence",
		Description: "Query one evidence channel with a free-text query. Returns matching evidence items.",
	}, s.handleQueryEvidence)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "session_stats",
		Description: "Get call counts and rate-limit violations for this session.",
	}, s.handleSessionStats)
}

// --- Tool input/output types ---

type listChannelsInput struct{}

type listChannelsOutput struct {
	Channels []string `json:"channels"`
}

type queryEvidenceInput struct {
	Channel string `json:"channel" jsonschema:"evidence channel (logs, metrics, config, deploys)"`
	Query   string `json:"query" jsonschema:"free-text query matched against the channel"`
}

type queryEvidenceOutput struct {
	Items       []Item `json:"items"`
	RateLimited bool   `json:"rate_limited,omitempty"`
}

type sessionStatsInput struct{}

type sessionStatsOutput struct {
	Calls               int `json:"calls"`
	RateLimitViolations int `json:"rate_limit_violations"`
}

// --- Tool handlers ---

func (s *Server) handleListChannels(ctx context.Context, _ *sdkmcp.CallToolRequest, _ listChannelsInput) (*sdkmcp.CallToolResult, listChannelsOutput, error) {
	s.recorder.Record("list_channels", nil)
	return nil, listChannelsOutput{Channels: s.emap.ChannelNames()}, nil
}

func (s *Server) handleQueryEvidence(ctx context.Context, _ *sdkmcp.CallToolRequest, input queryEvidenceInput) (*sdkmcp.CallToolResult, queryEvidenceOutput, error) {
	logger := logging.New("evidence")
	if input.Channel == "" {
		return nil, queryEvidenceOutput{}, fmt.Errorf("channel is required")
	}

	s.recorder.Record("query_evidence", map[string]any{
		"channel": input.Channel,
		"query":   input.Query,
	})
	withinLimit := s.limiter.Allow()
	if !withinLimit {
		logger.Warn("rate limit exceeded", "pattern", s.emap.PatternID, "channel", input.Channel)
	}

	items, err := s.emap.Query(input.Channel, input.Query)
	if err != nil {
		return nil, queryEvidenceOutput{}, err
	}
	logger.Debug("evidence queried",
		"pattern", s.emap.PatternID, "channel", input.Channel, "hits", len(items))
	return nil, queryEvidenceOutput{Items: items, RateLimited: !withinLimit}, nil
}

func (s *Server) handleSessionStats(ctx context.Context, _ *sdkmcp.CallToolRequest, _ sessionStatsInput) (*sdkmcp.CallToolResult, sessionStatsOutput, error) {
	_, violations := s.limiter.Stats()
	return nil, sessionStatsOutput{
		Calls:               s.recorder.Len(),
		RateLimitViolations: violations,
	}, nil
}
