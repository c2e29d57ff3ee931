package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/user/swfilms/internal/logging"
	"github.com/user/swfilms/internal/metrics"
	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/utils"
	"golang.org/x/sync/singleflight"
)

// CursorStrategy 分页游标的跟随方式
type CursorStrategy int

const (
	// CursorLiteral 直接跟随上游返回的 next URL
	CursorLiteral CursorStrategy = iota
	// CursorRebuild 只把 next 当作"还有下一页"的标记，自行拼接 endpoint?page=N&format=json
	CursorRebuild
)

// DefaultMaxPages 分页遍历上限
const DefaultMaxPages = 100

// walkTimeout 合并后的整次遍历上限
const walkTimeout = 2 * time.Minute

// unwrapFunc 把上游列表项解包为 (资源 URL, 字段对象)
type unwrapFunc func(item json.RawMessage, collectionURL string) (resourceURL string, fields json.RawMessage, err error)

// listPage 上游分页响应
type listPage struct {
	Results []json.RawMessage `json:"results"`
	Result  json.RawMessage   `json:"result"` // swapi.tech 的 films 列表
	Next    json.RawMessage   `json:"next"`
}

func (p *listPage) items() ([]json.RawMessage, error) {
	if len(p.Results) > 0 {
		return p.Results, nil
	}
	trimmed := bytes.TrimSpace(p.Result)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// nextCursor next 为 null、空串或 false 时视为没有下一页
func (p *listPage) nextCursor() (string, bool) {
	raw := bytes.TrimSpace(p.Next)
	switch string(raw) {
	case "", "null", `""`, "false":
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	// 非字符串（如页码数字）只说明还有下一页
	return "", true
}

// Resolver 遍历上游分页集合并构建 id -> 字段映射
type Resolver struct {
	client   *utils.HTTPClient
	baseURL  *url.URL
	strategy CursorStrategy
	maxPages int
	unwrap   unwrapFunc
	group    singleflight.Group
}

// NewResolver baseURL 用于解析相对的 next 游标
func NewResolver(client *utils.HTTPClient, baseURL string, strategy CursorStrategy, maxPages int, unwrap unwrapFunc) (*Resolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("无效的上游地址 %q: %w", baseURL, err)
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Resolver{
		client:   client,
		baseURL:  base,
		strategy: strategy,
		maxPages: maxPages,
		unwrap:   unwrap,
	}, nil
}

// Walk 按游标遍历集合，对每个解包后的条目调用 fn
func (r *Resolver) Walk(ctx context.Context, endpoint string, fn func(resourceURL string, fields json.RawMessage) error) error {
	collectionURL := r.resolve(endpoint)
	next := collectionURL
	seen := make(map[string]bool)

	for page := 1; next != ""; page++ {
		if page > r.maxPages {
			logging.Warn().Str("endpoint", endpoint).Int("max_pages", r.maxPages).
				Msg("[Resolver] 达到分页上限，停止遍历")
			return nil
		}
		if seen[next] {
			logging.Warn().Str("endpoint", endpoint).Str("cursor", next).
				Msg("[Resolver] 检测到重复游标，停止遍历")
			return nil
		}
		seen[next] = true

		var p listPage
		if err := r.client.GetJSON(ctx, next, &p); err != nil {
			return fmt.Errorf("获取 %s 第 %d 页失败: %w", endpoint, page, err)
		}
		metrics.PaginationPagesTotal.WithLabelValues(endpoint).Inc()

		items, err := p.items()
		if err != nil {
			return fmt.Errorf("解析 %s 第 %d 页失败: %w", endpoint, page, err)
		}
		for _, item := range items {
			resourceURL, fields, err := r.unwrap(item, collectionURL)
			if err != nil {
				logging.Debug().Err(err).Str("endpoint", endpoint).Msg("[Resolver] 跳过无法解包的条目")
				continue
			}
			if err := fn(resourceURL, fields); err != nil {
				return err
			}
		}

		cursor, more := p.nextCursor()
		switch {
		case !more:
			next = ""
		case r.strategy == CursorRebuild || cursor == "":
			next = collectionURL + "?page=" + strconv.Itoa(page+1) + "&format=json"
		default:
			next = r.resolve(cursor)
		}
	}
	return nil
}

// FetchAllMapped 返回 id -> valueField 映射；缺少 ID 或字段的条目直接跳过。
// 相同 endpoint/valueField 的并发调用合并为一次遍历，结果只读共享。
func (r *Resolver) FetchAllMapped(ctx context.Context, endpoint, valueField string) (map[int]string, error) {
	key := endpoint + "|" + valueField
	return sharedDo(ctx, &r.group, key, walkTimeout, func(ctx context.Context) (map[int]string, error) {
		return r.fetchAllMapped(ctx, endpoint, valueField)
	})
}

func (r *Resolver) fetchAllMapped(ctx context.Context, endpoint, valueField string) (map[int]string, error) {
	mapped := make(map[int]string)
	err := r.Walk(ctx, endpoint, func(resourceURL string, fields json.RawMessage) error {
		ids := utils.ExtractIDs(utils.CanonicalURL(resourceURL))
		if len(ids) == 0 {
			return nil
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(fields, &obj); err != nil {
			return nil
		}
		if value, ok := scalarString(obj[valueField]); ok {
			mapped[ids[0]] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapped, nil
}

func (r *Resolver) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return r.baseURL.ResolveReference(u).String()
}

func scalarString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, val != ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

// ResolveNames 按 ids 顺序映射名称，未知 ID 返回 Unknown
func ResolveNames(ids []int, names map[int]string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if name, ok := names[id]; ok {
			out[i] = name
		} else {
			out[i] = model.UnknownCharacter
		}
	}
	return out
}
