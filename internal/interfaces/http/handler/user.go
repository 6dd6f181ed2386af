// Package handler 提供 HTTP 请求处理器
package handler

import (
	"repair-guide-api/internal/interfaces/http/dto"
	"repair-guide-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct{}

// NewUserHandler 创建用户处理器
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetMe 获取当前技师信息
// @Summary 获取当前用户信息
// @Description 返回 Token 中的技师身份，展示名依次取 name、email、"Technician"
// @Tags Users
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	dto.Success(c, dto.UserResponse{
		ID:          middleware.GetUserIDFromGin(c),
		Name:        middleware.GetUserNameFromGin(c),
		Email:       middleware.GetUserEmailFromGin(c),
		DisplayName: middleware.GetDisplayNameFromGin(c),
	})
}
