package export

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const defaultLang = "en"

// downloadURL extracts the per-language download link a widget page
// advertises in its meta tags. It prefers the requested language, falls back
// to the default language, and returns empty when neither is advertised.
func downloadURL(html, lang, metaSel string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("export: parse widget document: %w", err)
	}

	if lang == "" {
		lang = defaultLang
	}

	var requested, fallback string
	doc.Find(metaSel).Each(func(_ int, s *goquery.Selection) {
		language := s.AttrOr("language", "")
		value := s.AttrOr("value", "")
		// tags without a language never match, not even the default
		if value == "" || language == "" {
			return
		}
		switch language {
		case lang:
			if requested == "" {
				requested = value
			}
		case defaultLang:
			if fallback == "" {
				fallback = value
			}
		}
	})

	if requested != "" {
		return requested, nil
	}
	return fallback, nil
}
