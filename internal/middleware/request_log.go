package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/utils"
)

// LogSink 接收请求日志，实现方负责异步落库
type LogSink interface {
	Dispatch(entry *model.LogEntry)
}

const skipRequestLogKey = "skip_request_log"

// SkipRequestLog 本次请求不再生成服务端日志（客户端提交的日志已落库）
func SkipRequestLog(c *gin.Context) {
	c.Set(skipRequestLogKey, true)
}

// RequestLog 每个 prefix 下的请求在响应后生成一条日志，包括 401/404/405
func RequestLog(sink LogSink, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.GetBool(skipRequestLogKey) {
			return
		}

		path := c.Request.URL.Path
		if path != prefix && !strings.HasPrefix(path, prefix+"/") {
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			ip = model.UnknownIP
		}

		sink.Dispatch(&model.LogEntry{
			RequestMethod:    c.Request.Method,
			Endpoint:         utils.RedactQuery(c.Request.URL.RequestURI()),
			ResponseCode:     c.Writer.Status(),
			UserIP:           ip,
			AuthorizedUserID: GetUserIDPtr(c),
		})
	}
}
