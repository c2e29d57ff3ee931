package service

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/utils"
)

const (
	youtubeBaseURL  = "https://www.youtube.com"
	youtubeWatchURL = "https://www.youtube.com/watch?v="

	// TrailerNotFound 未找到预告片时的占位
	TrailerNotFound = "Trailer link not found"
)

var videoIDPattern = regexp.MustCompile(`/watch\?v=([a-zA-Z0-9_-]{11})`)

// YouTubeService 抓取 YouTube 搜索结果页查找预告片
type YouTubeService struct {
	client  *utils.HTTPClient
	prefix  string
	baseURL string
	cache   *utils.LRUCache[string]
}

func NewYouTubeService(client *utils.HTTPClient, franchisePrefix string) *YouTubeService {
	return &YouTubeService{
		client:  client,
		prefix:  franchisePrefix,
		baseURL: youtubeBaseURL,
		cache:   utils.NewLRUCache[string](256, 6*time.Hour),
	}
}

// FindTrailer 搜索 "<前缀>: <片名> trailer"，返回第一个视频链接；找不到时返回 TrailerNotFound
func (s *YouTubeService) FindTrailer(ctx context.Context, title string) (string, error) {
	if link, ok := s.cache.Get(title); ok {
		return link, nil
	}

	query := title + " trailer"
	if s.prefix != "" {
		query = s.prefix + ": " + query
	}
	searchURL := s.baseURL + "/results?search_query=" + url.QueryEscape(query)

	body, err := s.client.Fetch(ctx, searchURL)
	if err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("[YouTube] 搜索页请求失败")
		return TrailerNotFound, err
	}

	id := extractVideoID(body)
	if id == "" {
		logging.Debug().Str("title", title).Msg("[YouTube] 未找到预告片")
		return TrailerNotFound, nil
	}

	link := youtubeWatchURL + id
	s.cache.Set(title, link)
	return link, nil
}

// extractVideoID 先查找页面中的视频链接，再回退到对整页做正则匹配（结果多数嵌在脚本数据里）
func extractVideoID(page []byte) string {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page)); err == nil {
		var id string
		doc.Find(`a[href*="/watch?v="]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			href, _ := sel.Attr("href")
			if m := videoIDPattern.FindStringSubmatch(href); len(m) == 2 {
				id = m[1]
				return false
			}
			return true
		})
		if id != "" {
			return id
		}
	}

	if m := videoIDPattern.FindSubmatch(page); len(m) == 2 {
		return string(m[1])
	}
	return ""
}
