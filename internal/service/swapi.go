package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/user/swfilms/internal/utils"
)

// swapiVariant 描述一种上游 SWAPI 形态：地址、斜杠约定、对象包装与游标方式
type swapiVariant struct {
	name          string
	defaultBase   string
	trailingSlash bool
	cursor        CursorStrategy
	unwrapItem    unwrapFunc
	// unwrapResource 解包单个资源响应（films/:id）
	unwrapResource func(body []byte) (resourceURL string, fields json.RawMessage, err error)
}

// SwapiSource 基于某种 SWAPI 形态的 FilmSource 实现
type SwapiSource struct {
	variant  swapiVariant
	client   *utils.HTTPClient
	baseURL  string
	resolver *Resolver
}

// NewFilmSource 按 provider 选择上游实现；baseURL 为空时使用该实现的默认地址
func NewFilmSource(provider, baseURL string, client *utils.HTTPClient, maxPages int) (FilmSource, error) {
	var variant swapiVariant
	switch provider {
	case "py4e":
		variant = py4eVariant
	case "tech":
		variant = techVariant
	case "node":
		variant = nodeVariant
	default:
		return nil, fmt.Errorf("未知的 SWAPI 数据源: %q", provider)
	}
	return newSwapiSource(variant, baseURL, client, maxPages)
}

func newSwapiSource(variant swapiVariant, baseURL string, client *utils.HTTPClient, maxPages int) (*SwapiSource, error) {
	if baseURL == "" {
		baseURL = variant.defaultBase
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	resolver, err := NewResolver(client, baseURL, variant.cursor, maxPages, variant.unwrapItem)
	if err != nil {
		return nil, err
	}

	return &SwapiSource{
		variant:  variant,
		client:   client,
		baseURL:  baseURL,
		resolver: resolver,
	}, nil
}

func (s *SwapiSource) Name() string {
	return s.variant.name
}

// collection 集合地址，如 films/ 或 films
func (s *SwapiSource) collection(name string) string {
	if s.variant.trailingSlash {
		return name + "/"
	}
	return name
}

// resource 单个资源地址，如 films/1/ 或 films/1
func (s *SwapiSource) resource(name string, id int) string {
	path := s.baseURL + name + "/" + strconv.Itoa(id)
	if s.variant.trailingSlash {
		path += "/"
	}
	return path
}

// peopleBase 合成角色 URL 的前缀（总带末尾斜杠，便于提取 ID）
func (s *SwapiSource) peopleBase() string {
	return s.baseURL + "people/"
}

func (s *SwapiSource) ListFilms(ctx context.Context) ([]RawFilm, error) {
	var films []RawFilm
	err := s.resolver.Walk(ctx, s.collection("films"), func(resourceURL string, fields json.RawMessage) error {
		var f swapiFilm
		if err := json.Unmarshal(fields, &f); err != nil {
			return nil
		}
		if resourceURL == "" {
			resourceURL = f.URL
		}
		films = append(films, f.toRawFilm(resourceURL, 0, s.peopleBase()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return films, nil
}

func (s *SwapiSource) GetFilm(ctx context.Context, id int) (*RawFilm, error) {
	body, err := s.client.Fetch(ctx, s.resource("films", id))
	if err != nil {
		var ce *utils.ClientError
		if errors.As(err, &ce) && ce.StatusCode == http.StatusNotFound {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}

	resourceURL, fields, err := s.variant.unwrapResource(body)
	if err != nil {
		return nil, ErrFilmNotFound
	}
	var f swapiFilm
	if err := json.Unmarshal(fields, &f); err != nil {
		return nil, ErrFilmNotFound
	}
	if strings.TrimSpace(f.Title) == "" {
		return nil, ErrFilmNotFound
	}
	if resourceURL == "" {
		resourceURL = f.URL
	}

	film := f.toRawFilm(resourceURL, id, s.peopleBase())
	return &film, nil
}

func (s *SwapiSource) PeopleNames(ctx context.Context) (map[int]string, error) {
	return s.resolver.FetchAllMapped(ctx, s.collection("people"), "name")
}

// flatItem 平铺对象，资源地址在 url 字段
func flatItem(item json.RawMessage, _ string) (string, json.RawMessage, error) {
	var head struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return "", nil, err
	}
	return head.URL, item, nil
}
