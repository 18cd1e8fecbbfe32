package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/status"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// StatusHandler 系统状态处理器
type StatusHandler struct {
	checker *status.Checker
}

// NewStatusHandler 创建状态处理器
func NewStatusHandler(checker *status.Checker) *StatusHandler {
	return &StatusHandler{checker: checker}
}

// Check 检查知识库基础设施
// @Summary 系统就绪状态
// @Description 依次探测文档表、检索函数和补全网关；未认证时返回全 false
// @Tags 状态
// @Produce json
// @Success 200 {object} response.Response{data=status.Report}
// @Failure 504 {object} response.ErrorResponse
// @Router /status [get]
func (h *StatusHandler) Check(c *gin.Context) {
	report, err := h.checker.CheckDefault(c.Request.Context())
	if err != nil {
		if errors.Is(err, status.ErrCheckTimeout) {
			response.Error(c, http.StatusGatewayTimeout, response.CodeStatusTimeout, err.Error())
			return
		}
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeStatusFailed, "状态检查失败", err.Error())
		return
	}
	response.Success(c, report)
}
