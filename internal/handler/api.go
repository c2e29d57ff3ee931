package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/swfilms/internal/utils"
)

// APIWelcome API 入口，列出可用端点
func (h *Handler) APIWelcome(c *gin.Context) {
	base := strings.TrimRight(h.Config.SiteUrl, "/") + "/api/"
	utils.Success(c, gin.H{
		"message": "Welcome to Star Wars API!",
		"endpoints": gin.H{
			"films":            base + "films",
			"films-detail":     base + "films/details/{id}",
			"movie-name":       base + "movie/{movieName}",
			"characters-names": base + "characters-names",
			"log-data":         base + "log-register?days={7|15|30}&finished={YYYY-MM-DD}&apikey={key}",
		},
	})
}

// NotFound 未匹配路由：API 返回 JSON，页面重定向到错误页
func (h *Handler) NotFound(c *gin.Context) {
	path := c.Request.URL.Path
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{
			"error":         "Route not found",
			"responseCode":  http.StatusNotFound,
			"showErrorPage": true,
		})
		return
	}
	c.Redirect(http.StatusFound, "/error-page")
}
