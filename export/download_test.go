package export

import (
	"testing"

	"github.com/graasp/graasp-service-exporter/selector"
)

const metaTags = `<meta name="download" value="https://example.com/">
<meta name="download" language="fr" value="https://example.com/fr">`

const metaTagsWithEn = metaTags +
	`<meta name="download" language="en" value="https://example.com/en">`

func TestDownloadURL(t *testing.T) {
	cases := []struct {
		name string
		html string
		lang string
		want string
	}{
		{"empty content", "", "en", ""},
		{"empty lang falls back to default", metaTagsWithEn, "", "https://example.com/en"},
		{"empty lang without default tag", metaTags, "", ""},
		{"default lang match", metaTagsWithEn, "en", "https://example.com/en"},
		{"default lang absent", metaTags, "en", ""},
		{"unknown lang falls back to default", metaTagsWithEn, "es", "https://example.com/en"},
		{"requested lang wins over default", metaTagsWithEn, "fr", "https://example.com/fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := downloadURL(tc.html, tc.lang, selector.MetaDownload)
			if err != nil {
				t.Fatalf("downloadURL: %v", err)
			}
			if got != tc.want {
				t.Errorf("downloadURL(lang=%q) = %q, want %q", tc.lang, got, tc.want)
			}
		})
	}
}
