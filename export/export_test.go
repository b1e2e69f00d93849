package export

import (
	"strings"
	"testing"

	"github.com/graasp/graasp-service-exporter/selector"
)

func TestComposeChaptersSingleSpace(t *testing.T) {
	contents := []spaceContent{{
		Title:    "Solo",
		Chapters: []Chapter{{Title: "Introduction", Body: "<p>hi</p>"}},
	}}
	got := composeChapters(contents)
	if len(got) != 1 {
		t.Fatalf("got %d chapters, want 1", len(got))
	}
	if got[0].Title != "Introduction" {
		t.Errorf("chapter title = %q", got[0].Title)
	}
}

func TestComposeChaptersMultiSpace(t *testing.T) {
	contents := []spaceContent{
		{Title: "Main", Chapters: []Chapter{{Title: "Introduction", Body: "<p>m</p>"}}},
		{Title: "Sub A", Chapters: []Chapter{{Title: "Phase 1", Body: "<p>a</p>"}}},
		{Title: "Sub B", Chapters: []Chapter{{Title: "Phase 1", Body: "<p>b</p>"}}},
	}
	got := composeChapters(contents)

	wantTitles := []string{"Included spaces", "Introduction", "Sub A", "Phase 1", "Sub B", "Phase 1"}
	if len(got) != len(wantTitles) {
		t.Fatalf("got %d chapters, want %d", len(got), len(wantTitles))
	}
	for i, title := range wantTitles {
		if got[i].Title != title {
			t.Errorf("chapter[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}

	// the listing opens the book and names every space
	for _, title := range []string{"Main", "Sub A", "Sub B"} {
		if !strings.Contains(got[0].Body, title) {
			t.Errorf("space listing does not mention %q", title)
		}
	}

	// sub-space title chapters carry no body of their own
	if got[2].Body != "" || got[4].Body != "" {
		t.Error("sub-space title chapters must have empty bodies")
	}
	if got[3].Body != "<p>a</p>" || got[5].Body != "<p>b</p>" {
		t.Error("sub-space chapters must follow their title chapter in order")
	}
}

func TestHeaderLang(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"fr", "fr"},
		{"fr-CH, fr;q=0.9, en;q=0.8", "fr"},
		{"en-US,en;q=0.5", "en"},
		{" DE-de ", "de"},
	}
	for _, tc := range cases {
		headers := map[string]string{}
		if tc.header != "" {
			headers["accept-language"] = tc.header
		}
		if got := headerLang(headers); got != tc.want {
			t.Errorf("headerLang(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestCatalogFor(t *testing.T) {
	if got := catalogFor(""); got != selector.Current() {
		t.Error("empty template must select the current catalog")
	}
	if got := catalogFor("legacy"); got != selector.Legacy() {
		t.Error("legacy template must select the legacy catalog")
	}
	if catalogFor("legacy").Subpages == catalogFor("").Subpages {
		t.Error("catalogs must differ between template revisions")
	}
}
