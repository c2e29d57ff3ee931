package router

import (
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/swfilms/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(h.NotFound)
	r.NoMethod(h.MethodNotAllowed)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== 公开页面 ====================
	r.GET("/", h.Home)
	r.GET("/movie/:name", h.Movie)
	r.GET("/error-page", h.ErrorPage)

	// ==================== JSON API ====================
	api := r.Group("/api")
	{
		api.GET("/", h.APIWelcome)
		api.GET("/films", h.AllFilms)
		api.GET("/films/details/:id", h.FilmDetails)
		api.GET("/movie/:name", h.MoviePoster)
		api.POST("/characters-names", h.CharacterNames)

		// 请求日志
		api.GET("/log-register", h.QueryLogs)
		api.POST("/log-register", h.RegisterLog)
		api.GET("/log-data/query", h.QueryLogs)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(partials)+1)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
	}

	for _, page := range []string{"home", "movie", "error"} {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	return r
}
