package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"crosshatch/internal/casedb"
	"crosshatch/internal/centralrepo"
	"crosshatch/internal/logging"
	mcpserver "crosshatch/internal/mcp"
)

var serveFlags struct {
	caseDB string
	repoDB string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing derivation and cross-case
search tools to agent clients.

The server monitors for parent process death. When the client disconnects or
restarts, the server self-terminates to prevent zombie processes.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.caseDB, "case-db", "", "Case DB path")
	f.StringVar(&serveFlags.repoDB, "repo-db", "", "Central repository DB path")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cases, err := casedb.Open(caseDBPath(serveFlags.caseDB))
	if err != nil {
		return fmt.Errorf("open case db: %w", err)
	}
	defer cases.Close()

	repo, err := centralrepo.Open(repoDBPath(serveFlags.repoDB))
	if err != nil {
		return fmt.Errorf("open central repository: %w", err)
	}
	defer repo.Close()

	srv := mcpserver.NewServer(cases, repo)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting crosshatch MCP server over stdio (parent watchdog active)")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
