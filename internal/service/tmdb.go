package service

import (
	"context"
	"net/url"
	"time"

	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/utils"
	"golang.org/x/sync/singleflight"
)

const (
	tmdbSearchURL = "https://api.themoviedb.org/3/search/movie"
	tmdbImageBase = "https://image.tmdb.org/t/p/w500"

	// searchTimeout 合并后的单次海报查询上限
	searchTimeout = 30 * time.Second

	// PosterNotAvailable 未找到海报时的占位
	PosterNotAvailable = "Poster not available"
)

// TMDBService 通过 TMDB 搜索接口查找影片海报
type TMDBService struct {
	client    *utils.HTTPClient
	apiKey    string
	prefix    string
	searchURL string
	cache     *utils.TTLCache[string]
	group     singleflight.Group
}

func NewTMDBService(client *utils.HTTPClient, apiKey, franchisePrefix string) *TMDBService {
	return &TMDBService{
		client:    client,
		apiKey:    apiKey,
		prefix:    franchisePrefix,
		searchURL: tmdbSearchURL,
		cache:     utils.NewTTLCache[string](time.Hour, 10*time.Minute),
	}
}

type tmdbSearchResponse struct {
	Results []struct {
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// FindPoster 返回海报 CDN 地址；未配置 API Key 或无结果时返回 PosterNotAvailable
func (s *TMDBService) FindPoster(ctx context.Context, title string) (string, error) {
	if s.apiKey == "" {
		logging.Debug().Str("title", title).Msg("[TMDB] 未配置 API Key，跳过海报查询")
		return PosterNotAvailable, nil
	}
	if poster, ok := s.cache.Get(title); ok {
		return poster, nil
	}

	// 使用 singleflight 避免并发重复查询
	poster, err := sharedDo(ctx, &s.group, title, searchTimeout, s.search)
	if err != nil {
		return PosterNotAvailable, err
	}
	return poster, nil
}

func (s *TMDBService) search(ctx context.Context, title string) (string, error) {
	query := title
	if s.prefix != "" {
		query = s.prefix + ": " + title
	}
	searchURL := s.searchURL + "?query=" + url.QueryEscape(query) + "&api_key=" + url.QueryEscape(s.apiKey)

	var result tmdbSearchResponse
	if err := s.client.GetJSON(ctx, searchURL, &result); err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("[TMDB] 海报查询失败")
		return PosterNotAvailable, err
	}

	if len(result.Results) == 0 || result.Results[0].PosterPath == "" {
		return PosterNotAvailable, nil
	}

	poster := tmdbImageBase + result.Results[0].PosterPath
	s.cache.Set(title, poster)
	return poster, nil
}
