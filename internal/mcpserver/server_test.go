package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/resolver"
	"github.com/starford/raido/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	dir, store := testutil.TestLibrary(t)
	testutil.WriteSkill(t, dir, "turbo-streams", `---
name: turbo-streams
description: Broadcasting page updates over Action Cable.
triggers:
  - turbo streams
neighbors:
  - skill: stimulus-controllers
    when: client-side behaviour is needed
documents:
  - path: references/broadcasting.md
    description: Broadcast helpers.
---
# Turbo Streams
`)
	testutil.WriteSkill(t, dir, "stimulus-controllers", `---
name: stimulus-controllers
description: Small JavaScript controllers bound to HTML.
---
# Stimulus
`)
	testutil.WriteFile(t, dir, "turbo-streams/references/broadcasting.md",
		"# Broadcasting\n\nbroadcast_render_to and friends.\n")

	cat, err := catalog.ScanAndLoad(store)
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := resolver.New(store, db, cat, logger)
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}

	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are invoked directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "resolve_query":
		result, err = srv.resolveQuery(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "list_skills":
		result, err = srv.listSkills(ctx, req)
	case "get_skill":
		result, err = srv.getSkill(ctx, req)
	case "search_documents":
		result, err = srv.searchDocuments(ctx, req)
	case "session_info":
		result, err = srv.sessionInfo(ctx, req)
	case "reset_session":
		result, err = srv.resetSession(ctx, req)
	case "get_skill_contract":
		result, err = srv.getSkillContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestResolveQuery(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "resolve_query", map[string]interface{}{
		"query": "turbo streams broadcast",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, "turbo-streams") {
		t.Errorf("result should name the matched skill: %q", text)
	}
	if !strings.Contains(text, "stimulus-controllers") {
		t.Errorf("result should carry the escalation hint: %q", text)
	}
}

func TestResolveQuery_MissingArgument(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "resolve_query", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error for missing query")
	}
}

func TestReadDocument_TracksSession(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_document", map[string]interface{}{
		"path": "turbo-streams/references/broadcasting.md",
	})
	if r.IsError {
		t.Fatalf("read failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"first_load": true`) {
		t.Errorf("first read should report first_load: %q", resultText(r))
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{
		"path": "turbo-streams/references/broadcasting.md",
	})
	if !strings.Contains(resultText(r), `"first_load": false`) {
		t.Errorf("repeat read should not be a first load: %q", resultText(r))
	}

	r = callTool(t, srv, "session_info", map[string]interface{}{})
	if !strings.Contains(resultText(r), "turbo-streams/references/broadcasting.md") {
		t.Errorf("session info = %q", resultText(r))
	}
}

func TestSessionLivesInServiceStore(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "read_document", map[string]interface{}{
		"path": "turbo-streams/SKILL.md",
	})

	cache := srv.svc.Sessions().Get(StdioSessionID)
	if cache == nil {
		t.Fatal("stdio session should be registered in the store")
	}
	if !cache.WasLoaded("turbo-streams/SKILL.md") {
		t.Error("load should be visible through the store")
	}
}

func TestReadDocument_Missing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for unknown document")
	}
}

func TestResetSession(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "read_document", map[string]interface{}{
		"path": "turbo-streams/SKILL.md",
	})
	callTool(t, srv, "reset_session", map[string]interface{}{})

	r := callTool(t, srv, "session_info", map[string]interface{}{})
	if got := resultText(r); got != "no documents loaded this session" {
		t.Errorf("session info after reset = %q", got)
	}
}

func TestListSkills(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "list_skills", map[string]interface{}{}))
	if !strings.Contains(text, "turbo-streams") || !strings.Contains(text, "stimulus-controllers") {
		t.Errorf("list = %q", text)
	}
	if !strings.Contains(text, "triggers: turbo streams") {
		t.Errorf("list should include trigger phrases: %q", text)
	}
}

func TestGetSkill(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_skill", map[string]interface{}{"name": "turbo-streams"})
	if r.IsError {
		t.Fatalf("get_skill failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "references/broadcasting.md") {
		t.Errorf("skill should list its documents: %q", resultText(r))
	}

	r = callTool(t, srv, "get_skill", map[string]interface{}{"name": "nope"})
	if !r.IsError {
		t.Error("expected error for unknown skill")
	}
}

func TestSearchDocuments(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "search_documents", map[string]interface{}{"query": "broadcast"})
	if r.IsError {
		t.Fatalf("search failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "broadcasting.md") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestGetSkillContract(t *testing.T) {
	srv := testServer(t)
	text := resultText(callTool(t, srv, "get_skill_contract", map[string]interface{}{}))
	if !strings.Contains(text, "SKILL.md") {
		t.Errorf("contract = %q", text)
	}
}

func TestReadSkillFormatResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readSkillFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(contents) != 1 {
		t.Fatalf("contents = %d", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("unexpected content type %T", contents[0])
	}
	if tc.URI != "raido://skill-format" || tc.Text == "" {
		t.Errorf("resource = %+v", tc)
	}
}
