package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cli/go-gh/v2/pkg/jsonpretty"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/altinukshini/logsearch/internal/finder"
	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/render"
	"github.com/altinukshini/logsearch/internal/workspace"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602
	ErrorCodeInternalError = -32603
	ErrorCodeEmptyQuery    = -32004
)

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrNotDirectory    = errors.New("path is not a directory")
)

func (s *Server) handleSearchLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	scope, err := model.ParseScope(getStringDefault(args, "scope", string(s.cfg.Scope)))
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid scope", map[string]interface{}{
			"param":   "scope",
			"value":   args["scope"],
			"allowed": []string{"all", "text", "jsonl"},
		})
	}

	limit := getIntDefault(args, "limit", s.cfg.Limit)
	if limit < 1 || limit > maxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, fmt.Sprintf("limit must be between 1 and %d", maxLimit), map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	cwd := getStringDefault(args, "cwd", s.cwd)
	if err := validateDir(cwd); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid cwd", map[string]interface{}{
			"param":  "cwd",
			"reason": err.Error(),
		})
	}

	layout := workspace.New(cwd, s.cfg.WorkspaceDir, s.log)
	res, err := finder.New(layout, s.engine, s.log).Find(ctx, model.SearchQuery{
		Pattern: query,
		Scope:   scope,
		Limit:   limit,
	})
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	text, err := formatRecords(res)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "encode results", map[string]interface{}{
			"error": err.Error(),
		})
	}
	s.log.Debug("search_logs served", zap.String("query", query), zap.Int("matches", res.TotalCount()))
	return mcp.NewToolResultText(text), nil
}

func formatRecords(res *model.SearchResults) (string, error) {
	data, err := render.MarshalRecords(res)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := jsonpretty.Format(&buf, bytes.NewReader(data), "  ", false); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func validateDir(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if err != nil {
		return ErrPathNotFound
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}
