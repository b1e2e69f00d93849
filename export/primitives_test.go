package export

import (
	"errors"
	"testing"
)

func TestResolveURL(t *testing.T) {
	base := "https://example.com/"
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"https unchanged", "https://example.com/page", "https://example.com/page"},
		{"http unchanged", "http://example.com/page", "http://example.com/page"},
		{"protocol relative", "//example.com/page", "https://example.com/page"},
		{"dot relative", "./example.com", "https://example.com/example.com"},
		{"bare relative", "example.com", "https://example.com/example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveURL(tc.raw, base)
			if err != nil {
				t.Fatalf("resolveURL(%q): %v", tc.raw, err)
			}
			if got != tc.want {
				t.Errorf("resolveURL(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestResolveURLInvalidBase(t *testing.T) {
	for _, base := range []string{"https:/example.com", "example.com/", ""} {
		if _, err := resolveURL("x", base); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("base %q: err = %v, want ErrInvalidBaseURL", base, err)
		}
	}
}

func TestRetrieveBaseURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", "https://"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com", "https://example.com/"},
		{"http://example.com", "http://example.com/"},
		{"//example.com", "https://example.com/"},
		{"//example.com/", "https://example.com/"},
	}
	for _, tc := range cases {
		if got := retrieveBaseURL(tc.in); got != tc.want {
			t.Errorf("retrieveBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeEntityAmpersands(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"&amp;lt;div&amp;gt;", "&lt;div&gt;"},
		{"&amp;quot;", "&quot;"},
		{"a &amp; b", "a &amp; b"},                   // plain ampersand stays encoded
		{"&amp;toolongentity;", "&amp;toolongentity;"}, // not an entity
	}
	for _, tc := range cases {
		if got := decodeEntityAmpersands(tc.in); got != tc.want {
			t.Errorf("decodeEntityAmpersands(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEncodeXMLEntities(t *testing.T) {
	got := encodeXMLEntities(`<a href="x">a & b</a>`)
	want := "&lt;a href=&quot;x&quot;&gt;a &amp; b&lt;/a&gt;"
	if got != want {
		t.Errorf("encodeXMLEntities = %q, want %q", got, want)
	}
}
