package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	releaseDateLayout = "2006-01-02"

	// UnknownFilmAge 上映日期无法解析时的占位
	UnknownFilmAge = "Unknown film age"
)

// PosterFinder 按片名查找海报
type PosterFinder interface {
	FindPoster(ctx context.Context, title string) (string, error)
}

// TrailerFinder 按片名查找预告片
type TrailerFinder interface {
	FindTrailer(ctx context.Context, title string) (string, error)
}

// FilmService 影片聚合服务
type FilmService struct {
	source   FilmSource
	posters  PosterFinder
	trailers TrailerFinder
	siteURL  string
	now      func() time.Time
}

func NewFilmService(source FilmSource, posters PosterFinder, trailers TrailerFinder, siteURL string, loc *time.Location) *FilmService {
	if loc == nil {
		loc = time.Local
	}
	return &FilmService{
		source:   source,
		posters:  posters,
		trailers: trailers,
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// GetAllFilms 返回影片列表，按上映日期升序
func (s *FilmService) GetAllFilms(ctx context.Context) ([]model.FilmSummary, error) {
	raws, err := s.source.ListFilms(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取影片列表失败: %w", err)
	}
	if len(raws) == 0 {
		return nil, ErrNoFilms
	}

	films := make([]model.FilmSummary, 0, len(raws))
	for _, raw := range raws {
		films = append(films, model.FilmSummary{
			ID:          raw.ID,
			Name:        raw.Title,
			ReleaseDate: raw.ReleaseDate,
			PosterURL:   s.posterLink(raw.Title),
		})
	}

	SortByReleaseDate(films)
	return films, nil
}

// posterLink 指向本服务的海报接口，由前端延迟加载
func (s *FilmService) posterLink(title string) string {
	return s.siteURL + "/api/movie/" + url.PathEscape(title)
}

// SortByReleaseDate 按上映日期升序稳定排序，无法解析的日期排在最后
func SortByReleaseDate(films []model.FilmSummary) {
	sort.SliceStable(films, func(i, j int) bool {
		di, errI := time.Parse(releaseDateLayout, films[i].ReleaseDate)
		dj, errJ := time.Parse(releaseDateLayout, films[j].ReleaseDate)
		switch {
		case errI != nil:
			return false
		case errJ != nil:
			return true
		default:
			return di.Before(dj)
		}
	})
}

// GetFilmByID 获取影片详情：海报、预告片与角色名并发获取，海报/预告片失败时降级为占位
func (s *FilmService) GetFilmByID(ctx context.Context, id int) (*model.Film, error) {
	raw, err := s.source.GetFilm(ctx, id)
	if err != nil {
		return nil, err
	}
	if raw == nil || raw.Title == "" {
		return nil, ErrFilmNotFound
	}

	film := &model.Film{
		ID:           raw.ID,
		Name:         raw.Title,
		Episode:      raw.EpisodeID,
		Synopsis:     raw.OpeningCrawl,
		ReleaseDate:  raw.ReleaseDate,
		Director:     raw.Director,
		Producers:    utils.SplitList(raw.Producer),
		CharacterIDs: utils.ExtractIDs(raw.CharacterURLs...),
		FilmAge:      FilmAge(raw.ReleaseDate, s.now()),
		PosterURL:    PosterNotAvailable,
		TrailerURL:   TrailerNotFound,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	g.Go(func() error {
		poster, err := s.posters.FindPoster(gctx, raw.Title)
		if err != nil {
			logging.Warn().Err(err).Int("film_id", id).Msg("[FilmService] 海报获取失败，使用占位")
			return nil
		}
		film.PosterURL = poster
		return nil
	})

	g.Go(func() error {
		trailer, err := s.trailers.FindTrailer(gctx, raw.Title)
		if err != nil {
			logging.Warn().Err(err).Int("film_id", id).Msg("[FilmService] 预告片获取失败，使用占位")
			return nil
		}
		film.TrailerURL = trailer
		return nil
	})

	g.Go(func() error {
		names, err := s.source.PeopleNames(gctx)
		if err != nil {
			return fmt.Errorf("获取角色列表失败: %w", err)
		}
		film.CharacterNames = ResolveNames(film.CharacterIDs, names)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return film, nil
}

// CharacterNames 将角色 ID 解析为名称，顺序与输入一致
func (s *FilmService) CharacterNames(ctx context.Context, ids []int) ([]string, error) {
	names, err := s.source.PeopleNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取角色列表失败: %w", err)
	}
	return ResolveNames(ids, names), nil
}

// PosterByName 查找海报，未找到返回 ErrPosterNotFound
func (s *FilmService) PosterByName(ctx context.Context, name string) (string, error) {
	poster, err := s.posters.FindPoster(ctx, name)
	if err != nil {
		return "", err
	}
	if poster == "" || poster == PosterNotAvailable {
		return "", ErrPosterNotFound
	}
	return poster, nil
}

// FilmAge 计算上映至今的时长，格式 "Y years, M months, D days"。
// 天数不足时向 now 所在月的上一个月借位。
func FilmAge(releaseDate string, now time.Time) string {
	release, err := time.ParseInLocation(releaseDateLayout, releaseDate, now.Location())
	if err != nil {
		return UnknownFilmAge
	}

	from, to := release, now
	if from.After(to) {
		from, to = to, from
	}

	years := to.Year() - from.Year()
	months := int(to.Month()) - int(from.Month())
	days := to.Day() - from.Day()

	if days < 0 {
		months--
		// 起始日超过借位月天数时（如 1-31 到 3-1），借位月的剩余天数记为 0
		days = max(daysIn(to.Year(), to.Month()-1)-from.Day(), 0) + to.Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	return fmt.Sprintf("%d years, %d months, %d days", years, months, days)
}

// daysIn month 为 0 时表示上一年的 12 月
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
