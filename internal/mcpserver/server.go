// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Raido's resolver tools to LLM hosts via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/session"
)

// StdioSessionID names the single session an MCP server holds in the
// service's session store. The MCP process lifetime is the session.
const StdioSessionID = "stdio"

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *resolver.Service
	ses *session.Cache
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *resolver.Service) *Server {
	s := &Server{svc: svc, ses: svc.Sessions().GetOrCreate(StdioSessionID)}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_query",
		mcp.WithDescription("Resolve a free-text question to the best-matching skill documents. "+
			"Returns ranked hits plus a non-binding escalation suggestion when the top skill "+
			"declares neighbors; the caller decides whether to follow it."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text question or task description")),
	), s.resolveQuery)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a skill document's full content. Loads are remembered for this "+
			"session; check first_load in the response (or use session_info) to avoid re-reading "+
			"material you already hold."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Library-relative document path (e.g. rails/SKILL.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_skills",
		mcp.WithDescription("List all skills with their descriptions and trigger phrases."),
	), s.listSkills)

	s.mcp.AddTool(mcp.NewTool("get_skill",
		mcp.WithDescription("Get one skill: its documents, trigger phrases, and escalation edges."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Skill name")),
	), s.getSkill)

	s.mcp.AddTool(mcp.NewTool("search_documents",
		mcp.WithDescription("Full-text search through document content, beyond trigger matching."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDocuments)

	s.mcp.AddTool(mcp.NewTool("session_info",
		mcp.WithDescription("List the documents already loaded in this session."),
	), s.sessionInfo)

	s.mcp.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Forget which documents were loaded in this session."),
	), s.resetSession)

	s.mcp.AddTool(mcp.NewTool("get_skill_contract",
		mcp.WithDescription("Returns the canonical skill package format contract. "+
			"Call this before authoring a new SKILL.md."),
	), s.getSkillContract)

	// Resource: skill format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://skill-format", "Skill Format Contract",
			mcp.WithResourceDescription("Canonical skill package format that all library entries must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSkillFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) resolveQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.svc.Resolve(ctx, query, 0)
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.ReadDocument(ctx, path, s.ses)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listSkills(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, sk := range s.svc.ListSkills(ctx) {
		fmt.Fprintf(&b, "- %s: %s", sk.Name, sk.Description)
		if len(sk.Triggers) > 0 {
			fmt.Fprintf(&b, " (triggers: %s)", strings.Join(sk.Triggers, ", "))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("no skills loaded"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) getSkill(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sk, err := s.svc.GetSkill(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown skill: %s", name)), nil
	}
	out, _ := json.MarshalIndent(sk, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) sessionInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths := s.ses.Paths()
	if len(paths) == 0 {
		return mcp.NewToolResultText("no documents loaded this session"), nil
	}
	sort.Strings(paths)
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) resetSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.ses.Reset()
	return mcp.NewToolResultText("session reset"), nil
}

func (s *Server) getSkillContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SkillFormatContract), nil
}

func (s *Server) readSkillFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://skill-format",
			MIMEType: "text/markdown",
			Text:     SkillFormatContract,
		},
	}, nil
}
