// Package mcp exposes the log search as a Model Context Protocol tool served
// over stdio.
package mcp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/altinukshini/logsearch/internal/config"
	"github.com/altinukshini/logsearch/internal/search"
)

const ServerName = "logsearch"

// Server wraps the MCP server with the search dependencies.
type Server struct {
	mcp    *server.MCPServer
	cwd    string
	cfg    config.Config
	engine *search.Engine
	log    *zap.Logger
}

// NewServer creates a server whose searches default to cwd and the values in
// cfg when a call leaves them out.
func NewServer(cwd string, cfg config.Config, log *zap.Logger, version string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		mcp:    server.NewMCPServer(ServerName, version),
		cwd:    cwd,
		cfg:    cfg,
		engine: search.New(search.WithLogger(log)),
		log:    log,
	}
	s.registerTools()
	return s
}

// Serve blocks on stdio until the client disconnects or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	return s.serve(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Debug("mcp server listening on stdio", zap.String("cwd", s.cwd))

	stdio := server.NewStdioServer(s.mcp)
	if errLog, err := zap.NewStdLogAt(s.log, zap.ErrorLevel); err == nil {
		stdio.SetErrorLogger(errLog)
	}
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchLogsTool(s.cfg), s.handleSearchLogs)
}
