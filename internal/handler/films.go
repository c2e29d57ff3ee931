package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/utils"
)

// AllFilms 影片列表，按上映日期升序
func (h *Handler) AllFilms(c *gin.Context) {
	films, err := h.Films.GetAllFilms(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, films)
}

// FilmDetails 影片详情，data 为单元素数组
func (h *Handler) FilmDetails(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "Invalid film ID.")
		return
	}

	film, err := h.Films.GetFilmByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, []model.Film{*film})
}

// MoviePoster 按片名查找海报地址
func (h *Handler) MoviePoster(c *gin.Context) {
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		utils.BadRequest(c, "Movie name is required.")
		return
	}

	poster, err := h.Films.PosterByName(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	utils.Success(c, poster)
}

// CharacterNames 请求体为角色 ID 数组，元素可以是数字或数字字符串
func (h *Handler) CharacterNames(c *gin.Context) {
	var raw []json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil || len(raw) == 0 {
		utils.BadRequest(c, "At least one valid ID is required to proceed.")
		return
	}

	ids := make([]int, 0, len(raw))
	for _, item := range raw {
		id, ok := parseCharacterID(item)
		if !ok {
			utils.BadRequest(c, "At least one valid ID is required to proceed.")
			return
		}
		ids = append(ids, id)
	}

	names, err := h.Films.CharacterNames(c.Request.Context(), ids)
	if err != nil {
		h.respondError(c, err)
		return
	}

	utils.Success(c, gin.H{
		"message":         "Character names request completed successfully.",
		"charactersnames": names,
	})
}

func parseCharacterID(item json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(item, &n); err == nil {
		return n, n > 0
	}
	var s string
	if err := json.Unmarshal(item, &s); err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
