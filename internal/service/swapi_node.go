package service

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// nodeVariant swapi-node：对象包在 fields 中，用 pk 标识，URL 无末尾斜杠；
// next 不可靠，按 ?page=N&format=json 重建游标
var nodeVariant = swapiVariant{
	name:           "node",
	defaultBase:    "https://swapi-node.now.sh/api/",
	trailingSlash:  false,
	cursor:         CursorRebuild,
	unwrapItem:     nodeItem,
	unwrapResource: nodeResource,
}

type nodeEnvelope struct {
	PK     json.Number     `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

// nodeItem 资源地址由集合地址与 pk 合成
func nodeItem(item json.RawMessage, collectionURL string) (string, json.RawMessage, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(item, &env); err != nil {
		return "", nil, err
	}
	if len(env.Fields) == 0 {
		return "", nil, errors.New("条目缺少 fields")
	}
	pk, err := strconv.Atoi(env.PK.String())
	if err != nil || pk <= 0 {
		return "", nil, errors.New("条目缺少有效的 pk")
	}
	return strings.TrimSuffix(collectionURL, "/") + "/" + strconv.Itoa(pk) + "/", env.Fields, nil
}

func nodeResource(body []byte) (string, json.RawMessage, error) {
	var env nodeEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", nil, err
	}
	if len(env.Fields) == 0 {
		return "", nil, errors.New("响应缺少 fields")
	}
	// 单个资源的 ID 由调用方提供
	return "", env.Fields, nil
}
