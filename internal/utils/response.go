package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope 统一API响应结构
type Envelope struct {
	Method       string      `json:"method"`
	Endpoint     string      `json:"endpoint"`
	ResponseCode int         `json:"responseCode"`
	Data         interface{} `json:"data"`
}

// ErrorData 错误响应的 data 部分
type ErrorData struct {
	Error string `json:"error"`
}

// Respond 以统一信封返回，HTTP 状态码与 responseCode 一致
func Respond(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Envelope{
		Method:       c.Request.Method,
		Endpoint:     RedactQuery(c.Request.URL.RequestURI()),
		ResponseCode: code,
		Data:         data,
	})
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, data)
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	Respond(c, code, ErrorData{Error: message})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 返回401错误
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid or missing API key."
	}
	Error(c, http.StatusUnauthorized, message)
}

// NotFound 返回404错误
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found."
	}
	Error(c, http.StatusNotFound, message)
}

// InternalServerError 返回500错误，不向调用方暴露内部细节
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "An unexpected error occurred."
	}
	Error(c, http.StatusInternalServerError, message)
}
