package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/swfilms/internal/config"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/middleware"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/service"
	"github.com/user/swfilms/internal/utils"
)

// FilmService 影片聚合能力
type FilmService interface {
	GetAllFilms(ctx context.Context) ([]model.FilmSummary, error)
	GetFilmByID(ctx context.Context, id int) (*model.Film, error)
	CharacterNames(ctx context.Context, ids []int) ([]string, error)
	PosterByName(ctx context.Context, name string) (string, error)
}

// LogService 请求日志的查询与写入
type LogService interface {
	QueryLogs(ctx context.Context, apiKey string, q service.LogQuery) (*service.LogQueryResult, *model.User, error)
	RecordLog(ctx context.Context, entry *model.LogEntry) (int64, error)
}

// Handler HTTP 处理器
type Handler struct {
	Films  FilmService
	Logs   LogService
	Config *config.Config
}

// NewHandler 创建处理器
func NewHandler(films FilmService, logs LogService, cfg *config.Config) *Handler {
	return &Handler{
		Films:  films,
		Logs:   logs,
		Config: cfg,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
		"ApiBase":  h.Config.SiteUrl + "/api",
	}

	for k, v := range data {
		res[k] = v
	}

	return res
}

// respondError 将领域错误映射为状态码；上游与存储错误只返回通用信息
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		utils.Unauthorized(c, "")
	case errors.Is(err, service.ErrInvalidWindow):
		utils.NotFound(c, "FAILED TO FETCH RECORDS")
	case errors.Is(err, service.ErrFilmNotFound):
		utils.NotFound(c, "Film not found or invalid data.")
	case errors.Is(err, service.ErrNoFilms):
		utils.NotFound(c, "No films found.")
	case errors.Is(err, service.ErrPosterNotFound):
		utils.NotFound(c, service.PosterNotAvailable)
	default:
		var clientErr *utils.ClientError
		event := logging.Error().Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path)
		if errors.As(err, &clientErr) {
			event = event.Int("upstream_status", clientErr.StatusCode)
		}
		event.Msg("[Handler] 请求处理失败")
		utils.InternalServerError(c, "")
	}
}

// MethodNotAllowed 405
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	utils.Error(c, http.StatusMethodNotAllowed, "Method not allowed.")
}
