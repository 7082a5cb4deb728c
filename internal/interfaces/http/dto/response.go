// Package dto HTTP 层请求与响应结构
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 成功响应的统一包裹，trace_id 供桌面端上报问题时定位链路
type Response[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorDetail 机器可读的错误补充，桌面端按 Suggestions 向用户给出下一步
type ErrorDetail struct {
	ErrorCode   string   `json:"error_code,omitempty"`
	Details     string   `json:"details,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ErrorResponse 错误响应的统一包裹
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

func respond[T any](c *gin.Context, status int, message string, data T) {
	c.JSON(status, Response[T]{
		Code:    status,
		Message: message,
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

func Success[T any](c *gin.Context, data T) {
	respond(c, http.StatusOK, "success", data)
}

func Created[T any](c *gin.Context, data T) {
	respond(c, http.StatusCreated, "created", data)
}

// NoContent 204，不带响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 以 ErrorResponse 包裹返回任意 HTTP 错误码
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{Code: httpCode, Message: message, TraceID: c.GetString("trace_id")})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

func ServiceUnavailable(c *gin.Context, message string) {
	Error(c, http.StatusServiceUnavailable, message)
}
