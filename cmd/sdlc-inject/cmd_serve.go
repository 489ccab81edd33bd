package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohilkanwar-aai/sdlc-inject/internal/evidence"
	"github.com/rohilkanwar-aai/sdlc-inject/internal/logging"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

var serveFlags struct {
	evidenceMap   string
	transcriptOut string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a pattern's evidence map over MCP stdio",
	Long: `Serve starts an evidence server over stdin/stdout for one pattern. The
agent under test connects via MCP and investigates through list_channels
and query_evidence. Every call is recorded; on shutdown the transcript is
written out for process scoring with the grade command.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.evidenceMap, "evidence", "", "Path to evidence map YAML (required)")
	f.StringVar(&serveFlags.transcriptOut, "transcript-out", "", "Write the session transcript here on shutdown")
	_ = serveCmd.MarkFlagRequired("evidence")
}

func runServe(cmd *cobra.Command, _ []string) error {
	m, err := evidence.LoadMap(serveFlags.evidenceMap)
	if err != nil {
		return err
	}
	srv := evidence.NewServer(m)

	log := logging.New("serve")
	log.Info("starting evidence server over stdio", "pattern", m.PatternID)

	runErr := srv.MCPServer.Run(cmd.Context(), &sdkmcp.StdioTransport{})

	if serveFlags.transcriptOut != "" && srv.Recorder().Len() > 0 {
		data, err := srv.Recorder().JSON()
		if err != nil {
			return fmt.Errorf("render transcript: %w", err)
		}
		if err := os.WriteFile(serveFlags.transcriptOut, data, 0o644); err != nil {
			return fmt.Errorf("write transcript: %w", err)
		}
		log.Info("transcript written", "path", serveFlags.transcriptOut, "calls", srv.Recorder().Len())
	}
	return runErr
}
