package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/user/swfilms/internal/utils"
)

// FilmSource 上游影片数据源，启动时按配置选定唯一实现
type FilmSource interface {
	Name() string
	// ListFilms 返回全部影片，顺序与上游一致
	ListFilms(ctx context.Context) ([]RawFilm, error)
	// GetFilm 上游无此影片时返回 ErrFilmNotFound
	GetFilm(ctx context.Context, id int) (*RawFilm, error)
	// PeopleNames 遍历 people 全部分页，返回 id -> name
	PeopleNames(ctx context.Context) (map[int]string, error)
}

// RawFilm 统一后的上游影片结构
type RawFilm struct {
	ID            int
	Title         string
	EpisodeID     int
	OpeningCrawl  string
	Director      string
	Producer      string
	ReleaseDate   string
	CharacterURLs []string
}

// swapiFilm 上游 film 对象（解包后）
type swapiFilm struct {
	Title        string            `json:"title"`
	EpisodeID    json.Number       `json:"episode_id"`
	OpeningCrawl string            `json:"opening_crawl"`
	Director     string            `json:"director"`
	Producer     string            `json:"producer"`
	ReleaseDate  string            `json:"release_date"`
	Characters   []json.RawMessage `json:"characters"`
	URL          string            `json:"url"`
}

// toRawFilm resourceURL 为空时使用 fallbackID
func (f *swapiFilm) toRawFilm(resourceURL string, fallbackID int, peopleBase string) RawFilm {
	id := fallbackID
	if ids := utils.ExtractIDs(utils.CanonicalURL(resourceURL)); len(ids) > 0 {
		id = ids[0]
	}
	episode, _ := strconv.Atoi(f.EpisodeID.String())

	return RawFilm{
		ID:            id,
		Title:         strings.TrimSpace(f.Title),
		EpisodeID:     episode,
		OpeningCrawl:  f.OpeningCrawl,
		Director:      f.Director,
		Producer:      f.Producer,
		ReleaseDate:   f.ReleaseDate,
		CharacterURLs: characterURLs(f.Characters, peopleBase),
	}
}

// characterURLs 角色引用可能是 URL 字符串，也可能是裸主键（swapi-node）
func characterURLs(refs []json.RawMessage, peopleBase string) []string {
	urls := make([]string, 0, len(refs))
	for _, raw := range refs {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				urls = append(urls, utils.CanonicalURL(s))
			}
			continue
		}
		var pk int
		if err := json.Unmarshal(raw, &pk); err == nil {
			urls = append(urls, fmt.Sprintf("%s%d/", peopleBase, pk))
		}
	}
	return urls
}
