// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"repair-guide-api/internal/application/stockphoto"
)

// ImageProxyHandler 关键词取图代理处理器
type ImageProxyHandler struct {
	svc *stockphoto.Service
}

// NewImageProxyHandler 创建取图代理处理器
func NewImageProxyHandler(svc *stockphoto.Service) *ImageProxyHandler {
	return &ImageProxyHandler{svc: svc}
}

// FetchImage 按关键词返回图库照片，上游失败时返回 SVG 占位图，始终 200
// @Summary 关键词取图
// @Tags Images
// @Produce image/jpeg,image/svg+xml
// @Param q query string false "逗号分隔的关键词"
// @Param index query int false "步骤下标"
// @Success 200 {file} binary
// @Router /api/fetch-image [get]
func (h *ImageProxyHandler) FetchImage(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	index, err := strconv.Atoi(c.DefaultQuery("index", "0"))
	if err != nil {
		index = 0
	}

	res := h.svc.Fetch(c.Request.Context(), q, index)
	c.Header("Cache-Control", res.CacheControl)
	c.Header("X-Image-Origin", string(res.Origin))
	c.Data(http.StatusOK, res.ContentType, res.Data)
}
