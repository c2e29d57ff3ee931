package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ==================== 公开页面 ====================

// Home 首页
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", h.RenderData(c, gin.H{
		"Title": h.Config.SiteName,
	}))
}

// Movie 影片详情页，数据由页面脚本通过 API 加载
func (h *Handler) Movie(c *gin.Context) {
	name := c.Param("name")
	c.HTML(http.StatusOK, "movie.html", h.RenderData(c, gin.H{
		"Title":     name + " - " + h.Config.SiteName,
		"MovieName": name,
	}))
}

// ErrorPage 404 页面
func (h *Handler) ErrorPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "error.html", h.RenderData(c, gin.H{
		"Title": "Page not found - " + h.Config.SiteName,
	}))
}
