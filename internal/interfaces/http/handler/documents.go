package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/rag"
	"github.com/comparo/backend/internal/domain/knowledge"
	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/extract"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// DocumentHandler 知识库文档管理处理器
type DocumentHandler struct {
	ingestion      *rag.IngestionService
	documents      *rag.DocumentService
	sources        *rag.SourceService
	maxUploadBytes int64
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(ingestion *rag.IngestionService, documents *rag.DocumentService, sources *rag.SourceService, cfg *config.KnowledgeConfig) *DocumentHandler {
	h := &DocumentHandler{
		ingestion:      ingestion,
		documents:      documents,
		sources:        sources,
		maxUploadBytes: 20 << 20,
	}
	if cfg != nil && cfg.MaxUploadBytes > 0 {
		h.maxUploadBytes = cfg.MaxUploadBytes
	}
	return h
}

// IngestRequest 批量入库请求
type IngestRequest struct {
	Documents []knowledge.IngestItem `json:"documents" binding:"required"`
}

// Ingest 批量入库
// @Summary 批量入库文档
// @Description 逐个向量化并写入，单个文档失败不影响其他文档
// @Tags 知识库
// @Accept json
// @Produce json
// @Param body body IngestRequest true "文档列表"
// @Success 200 {object} response.Response{data=knowledge.IngestReport}
// @Failure 400 {object} response.ErrorResponse
// @Router /documents/ingest [post]
func (h *DocumentHandler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "参数错误", err.Error())
		return
	}
	if len(req.Documents) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParams, "documents 不能为空")
		return
	}

	report := h.ingestion.Ingest(c.Request.Context(), req.Documents)
	response.Success(c, report)
}

// Upload 上传文件入库
// @Summary 上传文件入库
// @Description 支持 PDF、HTML、Markdown、纯文本，提取文本后切分入库
// @Tags 知识库
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "文件"
// @Param title formData string false "标题"
// @Param source formData string false "来源"
// @Param category formData string false "分类"
// @Success 200 {object} response.Response{data=knowledge.IngestReport}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 415 {object} response.ErrorResponse
// @Router /documents/upload [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusRequestEntityTooLarge, response.CodeUploadTooLarge, "文件过大")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParams, "缺少文件")
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeUploadTooLarge, "文件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParams, "无法读取文件")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParams, "无法读取文件")
		return
	}

	report, err := h.sources.IngestFile(c.Request.Context(), fileHeader.Filename, data, rag.UploadMeta{
		Title:    c.PostForm("title"),
		Source:   c.PostForm("source"),
		Category: c.PostForm("category"),
	})
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedFormat):
			response.ErrorWithDetail(c, http.StatusUnsupportedMediaType, response.CodeUnsupportedFile, "不支持的文件类型", err.Error())
		case errors.Is(err, extract.ErrNoText), errors.Is(err, extract.ErrInvalidEncoding):
			response.ErrorWithDetail(c, http.StatusUnprocessableEntity, response.CodeUnsupportedFile, "无法提取文本", err.Error())
		default:
			response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeIngestFailed, "入库失败", err.Error())
		}
		return
	}
	response.Success(c, report)
}

// List 列出文档
// @Summary 列出知识库文档
// @Description 按创建时间倒序
// @Tags 知识库
// @Produce json
// @Success 200 {object} response.Response{data=[]knowledge.Document}
// @Failure 500 {object} response.ErrorResponse
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeStoreFailed, "查询失败", err.Error())
		return
	}
	response.Success(c, gin.H{
		"documents": docs,
		"total":     len(docs),
		"backend":   h.documents.Backend(),
	})
}

// Delete 删除文档
// @Summary 删除知识库文档
// @Tags 知识库
// @Produce json
// @Param id path string true "文档 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, knowledge.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "文档不存在")
			return
		}
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeStoreFailed, "删除失败", err.Error())
		return
	}
	response.Success(c, gin.H{"id": id})
}
