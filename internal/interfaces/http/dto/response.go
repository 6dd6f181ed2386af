// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "repair-guide-api/pkg/errors"
)

// Response 统一响应结构
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	ErrorCode string `json:"error_code,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Details   string `json:"details,omitempty"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// Success 返回成功响应
func Success[T any](c *gin.Context, data T) {
	c.JSON(200, Response[T]{
		Code:    200,
		Message: "success",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// AppError 按应用错误的状态码与分类返回错误响应
func AppError(c *gin.Context, err *apperrors.AppError) {
	resp := NewErrorResponse(err)
	resp.TraceID = c.GetString("trace_id")
	c.JSON(resp.Code, resp)
}

// NewErrorResponse 构造错误响应体，SSE error 事件复用同一结构
func NewErrorResponse(err *apperrors.AppError) ErrorResponse {
	status := err.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return ErrorResponse{
		Code:    status,
		Message: err.Message,
		Error: &ErrorDetail{
			ErrorCode: string(err.Code),
			Kind:      string(err.Kind()),
			Details:   err.Detail,
		},
	}
}

// FromError 将任意错误转换为错误响应
func FromError(c *gin.Context, err error) {
	AppError(c, apperrors.AsAppError(err))
}
