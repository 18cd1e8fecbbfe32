package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	appStatus "github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/domain/knowledge"
)

// adminTokenHeader 与服务端管理中间件一致
const adminTokenHeader = "X-Admin-Token"

// APIError 服务端返回的业务错误
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d (code %d): %s: %s", e.StatusCode, e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("HTTP %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// envelope 统一响应结构
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// DocumentList 文档列表
type DocumentList struct {
	Documents []*knowledge.Document `json:"documents"`
	Total     int                   `json:"total"`
	Backend   string                `json:"backend"`
}

// UploadFields 上传附带的元数据
type UploadFields struct {
	Title    string
	Source   string
	Category string
}

// Client 管理接口客户端
type Client struct {
	http *resty.Client
}

// NewClient 创建客户端
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL + "/api/v1").
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetHeader(adminTokenHeader, token)
	}
	return &Client{http: c}
}

func call[T any](req *resty.Request, method, path string) (T, error) {
	var (
		out    envelope[T]
		apiErr APIError
		zero   T
	)
	resp, err := req.SetResult(&out).SetError(&apiErr).Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return zero, &apiErr
	}
	return out.Data, nil
}

// Ingest 批量入库
func (c *Client) Ingest(ctx context.Context, items []knowledge.IngestItem) (*knowledge.IngestReport, error) {
	req := c.http.R().SetContext(ctx).SetBody(map[string]any{"documents": items})
	return call[*knowledge.IngestReport](req, http.MethodPost, "/documents/ingest")
}

// Upload 上传文件入库
func (c *Client) Upload(ctx context.Context, path string, fields UploadFields) (*knowledge.IngestReport, error) {
	form := map[string]string{}
	if fields.Title != "" {
		form["title"] = fields.Title
	}
	if fields.Source != "" {
		form["source"] = fields.Source
	}
	if fields.Category != "" {
		form["category"] = fields.Category
	}
	req := c.http.R().SetContext(ctx).SetFile("file", path).SetFormData(form)
	return call[*knowledge.IngestReport](req, http.MethodPost, "/documents/upload")
}

// List 列出文档
func (c *Client) List(ctx context.Context) (*DocumentList, error) {
	return call[*DocumentList](c.http.R().SetContext(ctx), http.MethodGet, "/documents")
}

// Delete 删除文档
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := call[map[string]string](c.http.R().SetContext(ctx).SetPathParam("id", id), http.MethodDelete, "/documents/{id}")
	return err
}

// Status 系统状态
func (c *Client) Status(ctx context.Context) (*appStatus.Report, error) {
	return call[*appStatus.Report](c.http.R().SetContext(ctx), http.MethodGet, "/status")
}
