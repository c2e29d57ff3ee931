package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// 资源 URL 末尾的数字 ID，如 https://swapi.py4e.com/api/people/4/
var trailingIDPattern = regexp.MustCompile(`(\d+)/$`)

// ExtractIDs 从资源 URL 中提取数字 ID，保持输入顺序；不匹配的 URL 直接跳过
func ExtractIDs(urls ...string) []int {
	ids := make([]int, 0, len(urls))
	for _, u := range urls {
		match := trailingIDPattern.FindStringSubmatch(u)
		if len(match) < 2 {
			continue
		}
		id, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// CanonicalURL 统一资源 URL 格式：去掉查询串并补齐末尾斜杠
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	return raw
}

// SplitList 拆分上游逗号分隔的字段（如 producer）
func SplitList(s string) []string {
	if s == "" {
		return []string{}
	}
	res := []string{}
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			res = append(res, v)
		}
	}
	return res
}

// RedactedPlaceholder 替换敏感查询参数值
const RedactedPlaceholder = "[REDACTED]"

var sensitiveParams = map[string]bool{
	"apikey":  true,
	"api_key": true,
}

// RedactQuery 将 URI 中的 apikey 等参数值替换为占位符，其余部分原样保留
func RedactQuery(requestURI string) string {
	path, rawQuery, found := strings.Cut(requestURI, "?")
	if !found || rawQuery == "" {
		return requestURI
	}

	parts := strings.Split(rawQuery, "&")
	for i, part := range parts {
		key, _, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(key)
		if err != nil {
			name = key
		}
		if sensitiveParams[strings.ToLower(name)] {
			parts[i] = key + "=" + RedactedPlaceholder
		}
	}
	return path + "?" + strings.Join(parts, "&")
}
