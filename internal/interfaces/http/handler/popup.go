package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comparo/backend/internal/application/popup"
	domainPopup "github.com/comparo/backend/internal/domain/popup"
	"github.com/comparo/backend/internal/interfaces/http/response"
)

// PopupHandler 弹窗展示记录处理器
type PopupHandler struct {
	service *popup.Service
}

// NewPopupHandler 创建弹窗处理器
func NewPopupHandler(service *popup.Service) *PopupHandler {
	return &PopupHandler{service: service}
}

// Shown 读取展示记录
// @Summary 读取弹窗展示记录
// @Tags 弹窗
// @Produce json
// @Param visitor path string true "访客 ID"
// @Param scope path string true "session 或 persistent"
// @Success 200 {object} response.Response{data=popup.ShownMap}
// @Failure 400 {object} response.ErrorResponse
// @Router /popups/{visitor}/{scope} [get]
func (h *PopupHandler) Shown(c *gin.Context) {
	shown, err := h.service.Shown(c.Request.Context(), c.Param("visitor"), c.Param("scope"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, shown)
}

// MarkShown 标记已展示
// @Summary 标记弹窗已展示
// @Tags 弹窗
// @Produce json
// @Param visitor path string true "访客 ID"
// @Param scope path string true "session 或 persistent"
// @Param kind path string true "弹窗种类"
// @Success 200 {object} response.Response{data=popup.ShownMap}
// @Failure 400 {object} response.ErrorResponse
// @Router /popups/{visitor}/{scope}/{kind} [post]
func (h *PopupHandler) MarkShown(c *gin.Context) {
	shown, err := h.service.MarkShown(c.Request.Context(), c.Param("visitor"), c.Param("scope"), c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, shown)
}

// EndSession 清除会话范围的记录
// @Summary 结束访客会话
// @Tags 弹窗
// @Produce json
// @Param visitor path string true "访客 ID"
// @Success 200 {object} response.Response
// @Router /popups/{visitor}/session [delete]
func (h *PopupHandler) EndSession(c *gin.Context) {
	if err := h.service.EndSession(c.Request.Context(), c.Param("visitor")); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *PopupHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, popup.ErrInvalidVisitor),
		errors.Is(err, domainPopup.ErrUnknownScope),
		errors.Is(err, domainPopup.ErrUnknownKind):
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodePopupInvalidParams, "参数错误", err.Error())
	default:
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodePopupFailed, "操作失败", err.Error())
	}
}
