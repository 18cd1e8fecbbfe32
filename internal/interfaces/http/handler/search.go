package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/rag"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// SearchHandler 相似度检索处理器
type SearchHandler struct {
	retriever *rag.Retriever
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(retriever *rag.Retriever) *SearchHandler {
	return &SearchHandler{retriever: retriever}
}

// SearchRequest 相似度检索请求
type SearchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding" binding:"required"`
	MatchThreshold *float32  `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

// Search 按向量检索
// @Summary 相似度检索
// @Description 返回相似度不低于阈值的文档，按相似度降序
// @Tags 知识库
// @Accept json
// @Produce json
// @Param body body SearchRequest true "检索参数"
// @Success 200 {object} response.Response{data=[]knowledge.ScoredDocument}
// @Failure 400 {object} response.ErrorResponse
// @Router /search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeInvalidParams, "参数错误", err.Error())
		return
	}
	if len(req.QueryEmbedding) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidParams, "query_embedding 不能为空")
		return
	}

	threshold := rag.DefaultMatchThreshold
	if req.MatchThreshold != nil {
		threshold = *req.MatchThreshold
	}

	docs, err := h.retriever.SearchByEmbedding(c.Request.Context(), req.QueryEmbedding, threshold, req.MatchCount)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeStoreFailed, "检索失败", err.Error())
		return
	}
	for _, d := range docs {
		d.Embedding = nil
	}
	response.Success(c, docs)
}
