// Package mcp exposes attack-tree analysis as Model Context Protocol
// tools, so an LLM agent can load, evaluate and probe a tree during a
// threat-modeling conversation.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"canopy/pkg/analysis"
	"canopy/pkg/decode"
	"canopy/pkg/domain"
	"canopy/pkg/ports"
	"canopy/pkg/spec"
	"canopy/pkg/viz"
)

// Operation is one computation's outcome. Incomplete trees surface as
// available=false rather than a tool error, so the agent can see which
// values are still missing.
type Operation struct {
	Available bool     `json:"available" jsonschema_description:"Whether the value could be computed"`
	Value     *float64 `json:"value,omitempty" jsonschema_description:"The computed value, when available"`
	Error     string   `json:"error,omitempty" jsonschema_description:"Why the value is unavailable"`
}

// AnalyzeResponse is the full analysis of one tree.
type AnalyzeResponse struct {
	Root            string                 `json:"root" jsonschema_description:"Root node id of the analyzed tree"`
	Probability     Operation              `json:"probability" jsonschema_description:"Top event probability"`
	ExpectedLoss    Operation              `json:"expected_loss" jsonschema_description:"Sum of probability x impact over all leaves"`
	TopContributors []analysis.Contributor `json:"top_contributors" jsonschema_description:"Leaves ranked by expected-loss contribution"`
}

// WhatIfResponse compares the baseline against one scaled leaf.
type WhatIfResponse struct {
	Leaf       string          `json:"leaf" jsonschema_description:"The scaled leaf id"`
	Multiplier float64         `json:"multiplier" jsonschema_description:"Probability multiplier that was applied"`
	Base       analysis.Result `json:"base" jsonschema_description:"Results before scaling"`
	Scaled     analysis.Result `json:"scaled" jsonschema_description:"Results with the scaled probability"`
}

// ContributorsResponse ranks leaves by expected-loss contribution.
type ContributorsResponse struct {
	Contributors []analysis.Contributor `json:"contributors" jsonschema_description:"Leaves ranked by probability x impact, descending"`
}

// Server exposes a SpecStore's sessions over MCP.
type Server struct {
	store     ports.SpecStore
	mcpServer *server.MCPServer
}

// NewServer builds the MCP server and registers its tools and resources.
func NewServer(store ports.SpecStore, version string) *Server {
	s := &Server{
		store:     store,
		mcpServer: server.NewMCPServer("canopy-mcp", strings.TrimSpace(version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: analyze_tree
	analyzeTool := mcp.NewTool("analyze_tree",
		mcp.WithDescription("Compute top event probability, expected loss and top contributors for an attack tree. Pass either a stored spec_id or an inline document."),
		mcp.WithString("spec_id", mcp.Description("Id of a stored specification session")),
		mcp.WithString("document", mcp.Description("Inline attack tree document (when no spec_id is given)")),
		mcp.WithString("format", mcp.Description("Inline document format: yaml, json or xml (default yaml)")),
		mcp.WithNumber("top", mcp.Description("How many contributors to rank (default 3)")),
		mcp.WithOutputSchema[AnalyzeResponse](),
	)
	s.mcpServer.AddTool(analyzeTool, mcp.NewStructuredToolHandler(s.handleAnalyze))

	// TOOL: what_if
	whatIfTool := mcp.NewTool("what_if",
		mcp.WithDescription("Preview scaling one leaf's probability by a multiplier (clamped to [0,1]) without changing the stored tree."),
		mcp.WithString("leaf", mcp.Required(), mcp.Description("Leaf node id to scale")),
		mcp.WithNumber("multiplier", mcp.Required(), mcp.Description("Probability multiplier, e.g. 0.5 halves it")),
		mcp.WithString("spec_id", mcp.Description("Id of a stored specification session")),
		mcp.WithString("document", mcp.Description("Inline attack tree document (when no spec_id is given)")),
		mcp.WithString("format", mcp.Description("Inline document format: yaml, json or xml (default yaml)")),
		mcp.WithOutputSchema[WhatIfResponse](),
	)
	s.mcpServer.AddTool(whatIfTool, mcp.NewStructuredToolHandler(s.handleWhatIf))

	// TOOL: top_contributors
	contributorsTool := mcp.NewTool("top_contributors",
		mcp.WithDescription("Rank leaves by their expected-loss contribution (probability x impact)."),
		mcp.WithString("spec_id", mcp.Description("Id of a stored specification session")),
		mcp.WithString("document", mcp.Description("Inline attack tree document (when no spec_id is given)")),
		mcp.WithString("format", mcp.Description("Inline document format: yaml, json or xml (default yaml)")),
		mcp.WithNumber("top", mcp.Description("How many contributors to return (default 3)")),
		mcp.WithOutputSchema[ContributorsResponse](),
	)
	s.mcpServer.AddTool(contributorsTool, mcp.NewStructuredToolHandler(s.handleContributors))

	// TOOL: export_spec
	s.mcpServer.AddTool(mcp.NewTool("export_spec",
		mcp.WithDescription("Serialize a stored specification back to canonical YAML."),
		mcp.WithString("spec_id", mcp.Required(), mcp.Description("Id of a stored specification session")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("spec_id", "")
		stored, err := s.store.Load(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("load %q: %v", id, err)), nil
		}
		data, err := spec.Export(stored)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// Handler methods for structured tools

func (s *Server) handleAnalyze(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (AnalyzeResponse, error) {
	parsed, err := s.resolveSpec(ctx, args)
	if err != nil {
		return AnalyzeResponse{}, err
	}

	topN := 3
	if n, ok := args["top"].(float64); ok {
		topN = int(n)
	}

	return AnalyzeResponse{
		Root:            parsed.Root,
		Probability:     operation(analysis.Probability(parsed)),
		ExpectedLoss:    operation(analysis.ExpectedLoss(parsed)),
		TopContributors: analysis.TopContributors(parsed, topN),
	}, nil
}

func (s *Server) handleWhatIf(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (WhatIfResponse, error) {
	parsed, err := s.resolveSpec(ctx, args)
	if err != nil {
		return WhatIfResponse{}, err
	}

	leaf, _ := args["leaf"].(string)
	multiplier, ok := args["multiplier"].(float64)
	if !ok {
		return WhatIfResponse{}, fmt.Errorf("multiplier must be a number")
	}

	base, err := analysis.Preview(parsed, leaf, 1.0)
	if err != nil {
		return WhatIfResponse{}, fmt.Errorf("baseline failed: %w", err)
	}
	scaled, err := analysis.Preview(parsed, leaf, multiplier)
	if err != nil {
		return WhatIfResponse{}, fmt.Errorf("what-if failed: %w", err)
	}

	return WhatIfResponse{
		Leaf:       leaf,
		Multiplier: multiplier,
		Base:       base,
		Scaled:     scaled,
	}, nil
}

func (s *Server) handleContributors(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ContributorsResponse, error) {
	parsed, err := s.resolveSpec(ctx, args)
	if err != nil {
		return ContributorsResponse{}, err
	}

	topN := 3
	if n, ok := args["top"].(float64); ok {
		topN = int(n)
	}

	contributors := analysis.TopContributors(parsed, topN)
	if contributors == nil {
		contributors = []analysis.Contributor{}
	}
	return ContributorsResponse{Contributors: contributors}, nil
}

// resolveSpec loads the tree a tool call refers to: a stored session when
// spec_id is set, otherwise an inline document.
func (s *Server) resolveSpec(ctx context.Context, args map[string]interface{}) (*domain.Specification, error) {
	if id, ok := args["spec_id"].(string); ok && id != "" {
		stored, err := s.store.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", id, err)
		}
		return stored, nil
	}

	doc, _ := args["document"].(string)
	if doc == "" {
		return nil, fmt.Errorf("either spec_id or document is required")
	}
	format, _ := args["format"].(string)
	if format == "" {
		format = "yaml"
	}

	v, err := decode.Decode([]byte(doc), format)
	if err != nil {
		return nil, err
	}
	return spec.Normalize(v)
}

func operation(v float64, err error) Operation {
	if err != nil {
		return Operation{Error: err.Error()}
	}
	return Operation{Available: true, Value: &v}
}

func (s *Server) registerResources() {
	// EXPOSE: canopy://specs
	s.mcpServer.AddResource(mcp.NewResource("canopy://specs", "Stored Specification Sessions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids, err := s.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list specs: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		jsonBytes, _ := json.Marshal(ids)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "canopy://specs",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: canopy://graph/{id} as Graphviz DOT
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate("canopy://graph/{id}", "Attack Tree Graph",
		mcp.WithTemplateMIMEType("text/vnd.graphviz"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id := strings.TrimPrefix(request.Params.URI, "canopy://graph/")
		stored, err := s.store.Load(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", id, err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/vnd.graphviz",
				Text:     viz.DOT(stored),
			},
		}, nil
	})
}
