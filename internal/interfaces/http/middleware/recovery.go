// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"runtime/debug"

	"repair-guide-api/internal/interfaces/http/dto"
	"repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery Panic 恢复中间件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					fmt.Errorf("%v", rec),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)

				// 已开始写出的流式响应无法再改写状态码
				if c.Writer.Written() {
					c.Abort()
					return
				}
				dto.AppError(c, errors.ErrInternalError)
				c.Abort()
			}
		}()

		c.Next()
	}
}
