package service

import (
	"errors"

	"github.com/goccy/go-json"
)

// techVariant www.swapi.tech：对象包在 properties 中，URL 无末尾斜杠，直接跟随 next
var techVariant = swapiVariant{
	name:           "tech",
	defaultBase:    "https://www.swapi.tech/api/",
	trailingSlash:  false,
	cursor:         CursorLiteral,
	unwrapItem:     techItem,
	unwrapResource: techResource,
}

type techEnvelope struct {
	UID        string          `json:"uid"`
	URL        string          `json:"url"`
	Properties json.RawMessage `json:"properties"`
}

// techItem 列表项可能是 {uid,name,url}（people）或 {uid,properties}（films）
func techItem(item json.RawMessage, collectionURL string) (string, json.RawMessage, error) {
	var env techEnvelope
	if err := json.Unmarshal(item, &env); err != nil {
		return "", nil, err
	}
	if len(env.Properties) == 0 {
		return env.URL, item, nil
	}

	var props struct {
		URL string `json:"url"`
	}
	json.Unmarshal(env.Properties, &props)
	resourceURL := props.URL
	if resourceURL == "" && env.UID != "" {
		resourceURL = collectionURL + "/" + env.UID
	}
	return resourceURL, env.Properties, nil
}

// techResource 单个资源响应形如 {"message":"ok","result":{"properties":{...},"uid":"1"}}
func techResource(body []byte) (string, json.RawMessage, error) {
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, err
	}
	if len(resp.Result) == 0 {
		return "", nil, errors.New("响应缺少 result")
	}
	return techItem(resp.Result, "")
}
