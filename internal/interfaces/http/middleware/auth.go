// Package middleware 提供 HTTP 中间件
package middleware

import (
	"errors"
	"strings"

	"repair-guide-api/internal/interfaces/http/dto"
	apperrors "repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"
	"repair-guide-api/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID      = "user_id"
	ctxUserName    = "user_name"
	ctxDisplayName = "user_display_name"
	ctxUserEmail   = "user_email"
)

// AuthConfig 认证配置
type AuthConfig struct {
	// Secret 校验 Token 的密钥
	Secret string
	// Issuer 期望的签发者
	Issuer string
	// Audience 期望的受众
	Audience string
}

// Auth Bearer Token 认证中间件
func Auth(cfg AuthConfig) gin.HandlerFunc {
	jwtManager := utils.NewJWTManager(cfg.Secret, cfg.Issuer, cfg.Audience)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithAppError(c, apperrors.ErrTokenMissing)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortWithAppError(c, apperrors.ErrTokenInvalid.WithDetail("invalid authorization format"))
			return
		}

		claims, err := jwtManager.ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				abortWithAppError(c, apperrors.ErrTokenExpired)
				return
			}
			abortWithAppError(c, apperrors.ErrTokenInvalid)
			return
		}

		c.Set(ctxUserID, claims.Subject)
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxDisplayName, claims.DisplayName())
		c.Set(ctxUserEmail, claims.Email)

		ctx := logger.WithContext(c.Request.Context(), logger.UserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireIdentity 身份提供方未配置时拒绝访问
func RequireIdentity(configured bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !configured {
			abortWithAppError(c, apperrors.ErrIdentityMissing.WithDetail(
				"Set identity.domain, identity.client_id and identity.secret to enable the guide API."))
			return
		}
		c.Next()
	}
}

// GetUserIDFromGin 获取当前用户 ID
func GetUserIDFromGin(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserNameFromGin 获取 Token 中的原始 name 声明
func GetUserNameFromGin(c *gin.Context) string {
	return c.GetString(ctxUserName)
}

// GetDisplayNameFromGin 获取当前用户展示名
func GetDisplayNameFromGin(c *gin.Context) string {
	return c.GetString(ctxDisplayName)
}

// GetUserEmailFromGin 获取当前用户邮箱
func GetUserEmailFromGin(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}

func abortWithAppError(c *gin.Context, err *apperrors.AppError) {
	dto.AppError(c, err)
	c.Abort()
}

