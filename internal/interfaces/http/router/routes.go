// Package router 提供 HTTP 路由配置
package router

import (
	"repair-guide-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	guideHandler *handler.GuideHandler,
	userHandler *handler.UserHandler,
) {
	// 维修指南
	guides := v1.Group("/guides")
	{
		guides.POST("", guideHandler.CreateGuide)
		guides.POST("/stream", guideHandler.StreamGuide)
		guides.GET("/capabilities", guideHandler.GetCapabilities)
		guides.GET("/session", guideHandler.GetSession)
		guides.DELETE("/session", guideHandler.ResetSession)
	}

	// 当前用户
	users := v1.Group("/users")
	{
		users.GET("/me", userHandler.GetMe)
	}
}
