package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/altinukshini/logsearch/internal/config"
)

const (
	toolSearchLogs = "search_logs"
	maxLimit       = 1000
)

func searchLogsTool(cfg config.Config) mcp.Tool {
	return mcp.Tool{
		Name:        toolSearchLogs,
		Description: "Case-insensitive substring search over workspace/log.txt, workspace/logs/**/*.log and workspace/log.jsonl",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Text to look for; matching ignores case",
				},
				"scope": map[string]interface{}{
					"type":        "string",
					"description": "Which logs to search",
					"enum":        []string{"all", "text", "jsonl"},
					"default":     string(cfg.Scope),
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum matches per log kind (1-1000)",
					"default":     cfg.Limit,
					"minimum":     1,
					"maximum":     maxLimit,
				},
				"cwd": map[string]interface{}{
					"type":        "string",
					"description": "Absolute directory containing the workspace; defaults to the server's working directory",
				},
			},
			Required: []string{"query"},
		},
	}
}
