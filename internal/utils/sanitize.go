package utils

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// SanitizeText 去除 HTML 标签与控制字符，用于落库前过滤
func SanitizeText(s string) string {
	if s == "" {
		return s
	}

	if strings.ContainsAny(s, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}

	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
