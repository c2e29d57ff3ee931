package service

import (
	"github.com/goccy/go-json"
)

// py4eVariant swapi.py4e.com：平铺对象，URL 带末尾斜杠，直接跟随 next
var py4eVariant = swapiVariant{
	name:          "py4e",
	defaultBase:   "https://swapi.py4e.com/api/",
	trailingSlash: true,
	cursor:        CursorLiteral,
	unwrapItem:    flatItem,
	unwrapResource: func(body []byte) (string, json.RawMessage, error) {
		return flatItem(body, "")
	},
}
