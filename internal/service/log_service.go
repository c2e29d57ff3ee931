package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/swfilms/internal/model"
	"github.com/user/swfilms/internal/utils"
)

const (
	logTimeLayout = "2006-01-02 15:04:05"

	// 未指定 days 时向前查 4 天，对外报告为 5 个自然日
	defaultWindowDays  = 4
	defaultWindowLabel = "5"
)

// 允许的查询窗口
var allowedWindows = map[string]int{
	"7":  7,
	"15": 15,
	"30": 30,
	"":   defaultWindowDays,
}

// finished 参数支持的格式
var finishedLayouts = []string{
	logTimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	releaseDateLayout,
}

// LogStore 请求日志存储
type LogStore interface {
	Create(ctx context.Context, entry *model.LogEntry) (int64, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]model.LogEntry, error)
	CountBetween(ctx context.Context, start, end time.Time) (int64, error)
}

// APIKeyStore API Key 查询，不存在时返回 nil, nil
type APIKeyStore interface {
	FindByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
}

// LogQuery 日志查询参数
type LogQuery struct {
	Days     string // 7, 15, 30 或空
	Finished string // 结束日期，空表示今天
}

// LogQueryResult 日志查询结果
type LogQueryResult struct {
	DaysSearch string           `json:"query-days-search"`
	DayStart   string           `json:"query-day-start"`
	DayEnd     string           `json:"query-day-end"`
	Count      int64            `json:"count"`
	Registers  []model.LogEntry `json:"registers"`
}

// LogService 请求日志的写入与查询
type LogService struct {
	logs  LogStore
	users APIKeyStore
	loc   *time.Location
	now   func() time.Time
}

func NewLogService(logs LogStore, users APIKeyStore, loc *time.Location) *LogService {
	if loc == nil {
		loc = time.Local
	}
	return &LogService{
		logs:  logs,
		users: users,
		loc:   loc,
		now:   time.Now,
	}
}

// RecordLog 过滤字段后写入日志，返回生成的 ID
func (s *LogService) RecordLog(ctx context.Context, entry *model.LogEntry) (int64, error) {
	clean := *entry
	clean.RequestMethod = utils.SanitizeText(entry.RequestMethod)
	clean.Endpoint = utils.SanitizeText(entry.Endpoint)
	clean.UserIP = utils.SanitizeText(entry.UserIP)
	if clean.UserIP == "" {
		clean.UserIP = model.UnknownIP
	}

	id, err := s.logs.Create(ctx, &clean)
	if err != nil {
		return 0, fmt.Errorf("写入请求日志失败: %w", err)
	}
	return id, nil
}

// Authorize 校验 API Key，空或未知返回 ErrUnauthorized
func (s *LogService) Authorize(ctx context.Context, apiKey string) (*model.User, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindByAPIKey(ctx, apiKey)
	if err != nil {
		return nil, fmt.Errorf("查询 API Key 失败: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

// QueryLogs 校验 API Key 后按天数窗口查询日志。
// Key 有效时即使窗口非法也返回对应用户，便于标记请求归属。
func (s *LogService) QueryLogs(ctx context.Context, apiKey string, q LogQuery) (*LogQueryResult, *model.User, error) {
	user, err := s.Authorize(ctx, apiKey)
	if err != nil {
		return nil, nil, err
	}

	start, end, err := s.Window(q)
	if err != nil {
		return nil, user, err
	}

	rows, err := s.logs.FindBetween(ctx, start, end)
	if err != nil {
		return nil, user, fmt.Errorf("查询请求日志失败: %w", err)
	}
	count, err := s.logs.CountBetween(ctx, start, end)
	if err != nil {
		return nil, user, fmt.Errorf("统计请求日志失败: %w", err)
	}
	if rows == nil {
		rows = []model.LogEntry{}
	}

	label := strings.TrimSpace(q.Days)
	if label == "" {
		label = defaultWindowLabel
	}

	return &LogQueryResult{
		DaysSearch: label,
		DayStart:   start.Format(logTimeLayout),
		DayEnd:     end.Format(logTimeLayout),
		Count:      count,
		Registers:  rows,
	}, user, nil
}

// Window 计算查询区间：起点为结束日期当天 0 点再往前 N 天，终点为结束日期当天的当前时刻
func (s *LogService) Window(q LogQuery) (time.Time, time.Time, error) {
	days, ok := allowedWindows[strings.TrimSpace(q.Days)]
	if !ok {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}

	now := s.now().In(s.loc)
	finished := now
	if f := strings.TrimSpace(q.Finished); f != "" {
		parsed, err := parseFinished(f, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, ErrInvalidWindow
		}
		finished = parsed
	}

	y, m, d := finished.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc).AddDate(0, 0, -days)
	end := time.Date(y, m, d, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), s.loc)
	return start, end, nil
}

func parseFinished(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range finishedLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期 %q", value)
}
