package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/catalog"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// CatalogHandler 手机目录处理器
type CatalogHandler struct {
	service *catalog.Service
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// Phones 手机目录
// @Summary 手机目录
// @Description 缓存有效期内直接返回；数据源失败时返回过期缓存并标记 stale
// @Tags 目录
// @Produce json
// @Success 200 {object} response.Response{data=catalog.Result}
// @Failure 503 {object} response.ErrorResponse
// @Router /catalog/phones [get]
func (h *CatalogHandler) Phones(c *gin.Context) {
	result, err := h.service.Phones(c.Request.Context())
	if err != nil {
		response.ErrorWithDetail(c, http.StatusServiceUnavailable, response.CodeCatalogUnavailable, "目录暂不可用", err.Error())
		return
	}
	response.Success(c, result)
}
