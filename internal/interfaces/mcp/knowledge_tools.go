package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	appRAG "github.com/comparo/backend/internal/application/rag"
	appStatus "github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/domain/knowledge"
)

// 检索工具的结果上限
const maxSearchLimit = 10

// SearchKnowledgeInput 检索工具输入
type SearchKnowledgeInput struct {
	Query     string  `json:"query" jsonschema:"Question to search for (required)"`
	Limit     int     `json:"limit,omitempty" jsonschema:"Maximum number of documents, defaults to 5, max 10"`
	Threshold float32 `json:"threshold,omitempty" jsonschema:"Minimum similarity between 0 and 1, defaults to 0.5"`
}

// KnowledgeHit 检索结果
type KnowledgeHit struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Source     string  `json:"source,omitempty"`
	Excerpt    string  `json:"excerpt"`
	Similarity float32 `json:"similarity"`
}

// SearchKnowledgeOutput 检索工具输出
type SearchKnowledgeOutput struct {
	Results    []KnowledgeHit `json:"results"`
	TotalCount int            `json:"total_count"`
}

func (s *MCPServer) searchKnowledgeTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SearchKnowledgeInput,
) (*mcp.CallToolResult, SearchKnowledgeOutput, error) {
	output := SearchKnowledgeOutput{Results: []KnowledgeHit{}}
	if input.Query == "" {
		return nil, output, fmt.Errorf("query is required")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = appRAG.DefaultRetrieveLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = appRAG.DefaultMatchThreshold
	}

	docs := s.retriever.Retrieve(ctx, input.Query, limit, threshold)
	refs := appRAG.References(docs)
	for i, d := range docs {
		output.Results = append(output.Results, KnowledgeHit{
			ID:         d.ID,
			Title:      d.Title(),
			Source:     d.Metadata.Source(),
			Excerpt:    refs[i].Excerpt,
			Similarity: d.Similarity,
		})
	}
	output.TotalCount = len(output.Results)
	return nil, output, nil
}

// IngestDocumentInput 入库工具输入
type IngestDocumentInput struct {
	Content  string `json:"content" jsonschema:"Document text (required)"`
	Title    string `json:"title,omitempty" jsonschema:"Document title"`
	Source   string `json:"source,omitempty" jsonschema:"Origin of the document"`
	Category string `json:"category,omitempty" jsonschema:"Free-form category"`
}

// IngestDocumentOutput 入库工具输出
type IngestDocumentOutput struct {
	Success  bool     `json:"success"`
	Inserted int      `json:"inserted"`
	Failed   int      `json:"failed"`
	IDs      []string `json:"ids"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *MCPServer) ingestDocumentTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input IngestDocumentInput,
) (*mcp.CallToolResult, IngestDocumentOutput, error) {
	output := IngestDocumentOutput{IDs: []string{}}
	if input.Content == "" {
		return nil, output, fmt.Errorf("content is required")
	}

	source := input.Source
	if source == "" {
		source = "mcp"
	}
	report := s.ingestion.IngestSource(ctx, knowledge.SourceDocument{
		Title:    input.Title,
		Source:   source,
		Category: input.Category,
		Content:  input.Content,
	})

	output.Success = report.Success
	output.Inserted = report.Inserted
	output.Failed = report.Failed
	for _, r := range report.Results {
		if r.Success {
			output.IDs = append(output.IDs, r.ID)
		} else if r.Error != "" {
			output.Errors = append(output.Errors, r.Error)
		}
	}
	s.logger.Info("Document ingested through MCP", "inserted", report.Inserted, "failed", report.Failed)
	return nil, output, nil
}

// SystemStatusInput 状态工具输入（空输入）
type SystemStatusInput struct{}

// SystemStatusOutput 状态工具输出
type SystemStatusOutput struct {
	TableExists        bool   `json:"table_exists"`
	FunctionExists     bool   `json:"function_exists"`
	EdgeFunctionsReady bool   `json:"edge_functions_ready"`
	APIKeyConfigured   bool   `json:"api_key_configured"`
	Readiness          string `json:"readiness"`
	Guidance           string `json:"guidance"`
}

// getSystemStatusTool MCP 端点挂在管理鉴权之后，调用方视为管理员
func (s *MCPServer) getSystemStatusTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SystemStatusInput,
) (*mcp.CallToolResult, SystemStatusOutput, error) {
	report, err := s.checker.CheckDefault(appStatus.WithAdmin(ctx))
	if err != nil {
		return nil, SystemStatusOutput{}, err
	}
	return nil, SystemStatusOutput{
		TableExists:        report.Status.TableExists,
		FunctionExists:     report.Status.FunctionExists,
		EdgeFunctionsReady: report.Status.EdgeFunctionsReady,
		APIKeyConfigured:   report.Status.APIKeyConfigured,
		Readiness:          string(report.Readiness),
		Guidance:           report.Guidance,
	}, nil
}
