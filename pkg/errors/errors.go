package errors

import (
	"errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误类型 ==========

// AppError 业务错误，携带错误码供接口层映射返回
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New 创建业务错误
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound 资源不存在
func NotFound(format string, args ...interface{}) *AppError {
	return New(CodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict 资源冲突
func Conflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, fmt.Sprintf(format, args...))
}

// Forbidden 无权操作
func Forbidden(format string, args ...interface{}) *AppError {
	return New(CodeForbidden, fmt.Sprintf(format, args...))
}

// BadRequest 参数错误
func BadRequest(format string, args ...interface{}) *AppError {
	return New(CodeInvalidParam, fmt.Sprintf(format, args...))
}

// CodeOf 提取错误码，非业务错误返回500
func CodeOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeServerError
}

// IsNotFound 是否为资源不存在错误
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsConflict 是否为资源冲突错误
func IsConflict(err error) bool {
	return CodeOf(err) == CodeConflict
}

// IsForbidden 是否为无权操作错误
func IsForbidden(err error) bool {
	return CodeOf(err) == CodeForbidden
}
