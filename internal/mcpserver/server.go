// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes refparser operations as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/refparser"
	"github.com/erraggy/refparser/parser"
)

const serverInstructions = `refparser MCP server: parses JSON and YAML documents and follows their $ref pointers across files and URLs.

Tools:
- parse: decode a document without following references
- resolve: read every referenced document and list them
- dereference: replace every $ref with its target
- bundle: move external documents under a definitions key so only internal $refs remain

Configuration: defaults are configurable via REFPARSER_MCP_* environment variables set in your MCP client config.

Key settings:
- REFPARSER_MCP_CACHE_FILE_TTL (default: 15m) - cache TTL for local file inputs
- REFPARSER_MCP_CACHE_URL_TTL (default: 5m) - cache TTL for URL inputs
- REFPARSER_MCP_CACHE_ENABLED (default: true) - disable result caching entirely
- REFPARSER_MCP_MAX_DOCUMENTS (default: 500) - documents read per call
- REFPARSER_MCP_ALLOW_PRIVATE_IPS (default: false) - allow URLs on private networks

Caching: results are cached per session. File entries use path+mtime as key (auto-invalidated on change). URL entries are cached with a shorter TTL. A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled. base options, typically from the config
// package, apply to every tool call.
func Run(ctx context.Context, base ...parser.Option) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "refparser", Version: refparser.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, base)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server, base []parser.Option) {
	t := &tools{base: base}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse",
		Description: "Parse a JSON or YAML document without following $ref pointers. Returns the source location and, with full=true, the decoded document.",
	}, t.handleParse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve",
		Description: "Resolve a document: read it and every file or URL its $ref pointers reach. Returns the list of documents read with the resolver that read each one. Use external=false to stay within the input document.",
	}, t.handleResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dereference",
		Description: "Dereference a document: replace every $ref with the value it points to. Circular references are reported; a document that stays circular cannot be returned inline, so use bundle for those. circular=error fails on the first cycle.",
	}, t.handleDereference)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bundle",
		Description: "Bundle a document: copy every external document it references under definitions_key (default $defs) and rewrite the $refs to point there, producing one self-contained document.",
	}, t.handleBundle)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
