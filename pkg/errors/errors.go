// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired ErrorCode = "2001"
	CodeTokenInvalid ErrorCode = "2002"
	CodeTokenMissing ErrorCode = "2003"

	// 业务错误 (4xxx)
	CodeGenerationFailed   ErrorCode = "4001"
	CodeValidationFailed   ErrorCode = "4002"
	CodeLLMCallFailed      ErrorCode = "4005"
	CodeFileTooLarge       ErrorCode = "4007"
	CodeGenerationInFlight ErrorCode = "4008"
	CodeEmptyResponse      ErrorCode = "4009"
	CodeMalformedPlan      ErrorCode = "4010"
	CodeGenerationReset    ErrorCode = "4011"

	// 外部服务错误 (5xxx)
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5005"
	CodeIdentityMissing  ErrorCode = "5006"
)

// Kind 错误分类，对应前端展示策略
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTransport   Kind = "transport"
	KindFormat      Kind = "format"
	KindConflict    Kind = "conflict"
	KindAuth        Kind = "auth"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使预定义错误可用于 errors.Is
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Kind 返回错误分类
func (e *AppError) Kind() Kind {
	return codeToKind(e.Code)
}

// WithDetail 返回带详细信息的副本
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed, CodeFileTooLarge:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeGenerationInFlight, CodeGenerationReset:
		return http.StatusConflict
	case CodeLLMCallFailed, CodeLLMProviderError, CodeEmptyResponse, CodeMalformedPlan:
		return http.StatusBadGateway
	case CodeServiceUnavailable, CodeIdentityMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// codeToKind 错误码转错误分类
func codeToKind(code ErrorCode) Kind {
	switch code {
	case CodeInvalidParam, CodeValidationFailed, CodeFileTooLarge:
		return KindValidation
	case CodeLLMCallFailed, CodeLLMProviderError:
		return KindTransport
	case CodeEmptyResponse, CodeMalformedPlan:
		return KindFormat
	case CodeConflict, CodeGenerationInFlight, CodeGenerationReset:
		return KindConflict
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing, CodeForbidden:
		return KindAuth
	case CodeServiceUnavailable, CodeIdentityMissing:
		return KindUnavailable
	default:
		return KindInternal
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized       = New(CodeUnauthorized, "unauthorized")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrIdentityMissing = New(CodeIdentityMissing, "identity provider is not configured")

	ErrValidationFailed   = New(CodeValidationFailed, "validation failed")
	ErrFileTooLarge       = New(CodeFileTooLarge, "Image must be 4 MB or smaller")
	ErrGenerationInFlight = New(CodeGenerationInFlight, "a guide is already being generated")
	ErrLLMCallFailed      = New(CodeLLMCallFailed, "model request failed")
	ErrEmptyResponse      = New(CodeEmptyResponse, "model response did not include plan text")
	ErrMalformedPlan      = New(CodeMalformedPlan, "model returned an unexpected format")
	ErrGenerationReset    = New(CodeGenerationReset, "generation was reset before it finished")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// KindOf 返回任意错误的分类
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsAppError(err).Kind()
}
