package middleware

import (
	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// SetUserID 记录通过 API Key 校验的用户，请求日志据此填写 authorized_user_id
func SetUserID(c *gin.Context, userID int) {
	c.Set(userIDKey, userID)
}

// GetUserIDPtr 从上下文获取用户 ID 指针（未授权返回 nil）
func GetUserIDPtr(c *gin.Context) *int {
	if userID, exists := c.Get(userIDKey); exists {
		id := userID.(int)
		return &id
	}
	return nil
}
