// Package finder runs a search over a workspace: it discovers the log files,
// then drives the text and JSONL scanners the query's scope selects.
package finder

import (
	"context"

	"go.uber.org/zap"

	"github.com/altinukshini/logsearch/internal/model"
	"github.com/altinukshini/logsearch/internal/search"
	"github.com/altinukshini/logsearch/internal/workspace"
)

type Finder struct {
	layout workspace.Layout
	engine *search.Engine
	log    *zap.Logger
}

func New(layout workspace.Layout, engine *search.Engine, log *zap.Logger) *Finder {
	if engine == nil {
		engine = search.New(search.WithLogger(log))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Finder{layout: layout, engine: engine, log: log}
}

func (f *Finder) Layout() workspace.Layout { return f.layout }

// Find runs the text scanner and then the JSONL scanner. Each scanner is
// capped at q.Limit independently. Cancellation is checked between phases.
func (f *Finder) Find(ctx context.Context, q model.SearchQuery) (*model.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Scope == "" {
		q.Scope = model.ScopeAll
	}

	res := &model.SearchResults{
		Query: q,
		Root:  f.layout.Root,
		Text:  []model.TextMatch{},
		JSONL: []model.JSONLMatch{},
	}

	if q.Scope.IncludesText() {
		res.TextFiles = f.layout.TextFiles()
		res.Text = f.engine.SearchTextFiles(res.TextFiles, q.Pattern, q.Limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.Scope.IncludesJSONL() {
		res.JSONLFile = f.layout.JSONLLogPath()
		res.JSONL = f.engine.SearchJSONL(res.JSONLFile, q.Pattern, q.Limit)
	}

	f.log.Debug("search complete",
		zap.String("query", q.Pattern),
		zap.String("scope", string(q.Scope)),
		zap.Int("text", len(res.Text)),
		zap.Int("jsonl", len(res.JSONL)))
	return res, nil
}
