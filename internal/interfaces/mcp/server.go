// Package mcp 通过 MCP（SSE）向外部客户端暴露知识库工具
package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appRAG "github.com/comparo/backend/internal/application/rag"
	appStatus "github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/infrastructure/log"
)

// MCPServer MCP 服务器
type MCPServer struct {
	server    *mcp.Server
	handler   http.Handler
	retriever *appRAG.Retriever
	ingestion *appRAG.IngestionService
	checker   *appStatus.Checker
	logger    *slog.Logger
}

// NewServer 创建 MCP 服务器
func NewServer(retriever *appRAG.Retriever, ingestion *appRAG.IngestionService, checker *appStatus.Checker) *MCPServer {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "comparo-knowledge",
			Version: "0.1.0",
		},
		nil,
	)

	s := &MCPServer{
		server:    server,
		retriever: retriever,
		ingestion: ingestion,
		checker:   checker,
		logger:    log.NewModuleLogger("mcp", "server"),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name: "search_knowledge",
		Description: `Search the comparator knowledge base (mobile plans, internet boxes, phones) by semantic similarity.
Parameters:
- query (string, required): natural language question, usually in French
- limit (int, optional): maximum number of documents, 1-10, default 5
- threshold (number, optional): minimum similarity 0-1, default 0.5

Returns: matching documents with title, source, excerpt and similarity, best match first.`,
	}, s.searchKnowledgeTool)

	mcp.AddTool(server, &mcp.Tool{
		Name: "ingest_document",
		Description: `Add a document to the knowledge base. Long content is split into overlapping chunks before embedding.
Parameters:
- content (string, required): document text
- title (string, optional): document title
- source (string, optional): origin of the document, e.g. a URL or file name
- category (string, optional): free-form category

Returns: number of chunks inserted and failed, with per-chunk ids.`,
	}, s.ingestDocumentTool)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_system_status",
		Description: "Check knowledge base readiness: documents table, similarity search function, completion gateway and API key. No parameters required. Returns the four flags, the readiness tier (ready/partial/not-ready) and guidance.",
	}, s.getSystemStatusTool)

	s.handler = mcp.NewSSEHandler(
		func(r *http.Request) *mcp.Server {
			return server
		},
		nil,
	)
	return s
}

// GetHandler 获取 HTTP Handler（用于集成到 HTTP 服务器）
func (s *MCPServer) GetHandler() http.Handler {
	return s.handler
}

// Start 启动服务器
func (s *MCPServer) Start() error {
	// SSE 模式下由 HTTP 服务器统一管理生命周期
	s.logger.Info("MCP server ready", "transport", "sse")
	return nil
}

// Stop 停止服务器
func (s *MCPServer) Stop() error {
	return nil
}
