// Package errors 统一错误码与 HTTP 映射
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码，按职责分段：1xxx 请求、2xxx 认证、
// 4xxx 业务（生成/检索/命令/SQL 闸门）、5xxx 依赖
type ErrorCode string

const (
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	CodeUnauthorized ErrorCode = "2001"
	CodeTokenExpired ErrorCode = "2002"
	CodeTokenInvalid ErrorCode = "2003"

	CodeGenerationFailed  ErrorCode = "4001"
	CodeParseFailed       ErrorCode = "4002"
	CodeRetrievalFailed   ErrorCode = "4003"
	CodeSQLNotSelectOnly  ErrorCode = "4004"
	CodeCommandNotAllowed ErrorCode = "4005"
	CodeEmbeddingFailed   ErrorCode = "4006"

	CodeDatabaseError ErrorCode = "5001"
	CodeVectorDBError ErrorCode = "5002"
	CodeRerankError   ErrorCode = "5003"
	CodeLLMCallFailed ErrorCode = "5004"
)

// httpStatusByCode 错误码到 HTTP 状态码的映射，未登记的码一律 500。
var httpStatusByCode = map[ErrorCode]int{
	CodeSuccess:            http.StatusOK,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeTokenInvalid:       http.StatusUnauthorized,
	CodeSQLNotSelectOnly:   http.StatusForbidden,
	CodeCommandNotAllowed:  http.StatusForbidden,
	CodeNotFound:           http.StatusNotFound,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeVectorDBError:      http.StatusServiceUnavailable,
}

func (c ErrorCode) httpStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AppError 带错误码的应用错误，HTTPStatus 由错误码推导。
// 不直接序列化，响应形态由 dto 层负责。
type AppError struct {
	Code       ErrorCode
	Message    string
	Detail     string
	HTTPStatus int
	Err        error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 附加面向调用方的细节说明
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: code.httpStatus(),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Err = err
	return appErr
}

// IsAppError 判断错误链上是否有带码错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 取出错误链上的带码错误，没有则按未知错误包装
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
