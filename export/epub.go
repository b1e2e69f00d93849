package export

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	epub "github.com/go-shiori/go-epub"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// stripTags reduces chapter titles to plain text for the package metadata.
var stripTags = bluemonday.StrictPolicy()

type book struct {
	Title       string
	Author      string
	Chapters    []Chapter
	CoverPNG    []byte
	Screenshots []string
	TmpDir      string
	Lang        string
}

// packageEpub assembles the chapters into an EPUB and returns its bytes.
// Screenshot files referenced by the chapters are embedded and their srcs
// rewritten to the archive-internal paths; the on-disk files stay in place
// for the caller to clean up.
func packageEpub(b book) ([]byte, error) {
	e, err := epub.NewEpub(b.Title)
	if err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	if b.Lang != "" {
		e.SetLang(b.Lang)
	}
	e.SetAuthor(b.Author)

	if desc := bookDescription(b.Chapters); desc != "" {
		e.SetDescription(desc)
	}

	if len(b.CoverPNG) > 0 {
		coverURI := "data:image/png;base64," + base64.StdEncoding.EncodeToString(b.CoverPNG)
		imgPath, err := e.AddImage(coverURI, "cover.png")
		if err != nil {
			return nil, &PackagingError{Format: "epub", Err: err}
		}
		if err := e.SetCover(imgPath, ""); err != nil {
			return nil, &PackagingError{Format: "epub", Err: err}
		}
	}

	rewrites := make(map[string]string, len(b.Screenshots))
	for _, path := range b.Screenshots {
		internal, err := e.AddImage(path, filepath.Base(path))
		if err != nil {
			return nil, &PackagingError{Format: "epub", Err: fmt.Errorf("embed %s: %w", path, err)}
		}
		rewrites[path] = internal
	}

	for i, ch := range b.Chapters {
		body := ch.Body
		for path, internal := range rewrites {
			body = strings.ReplaceAll(body, path, internal)
		}
		title := strings.TrimSpace(stripTags.Sanitize(ch.Title))
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		filename := fmt.Sprintf("chapter%03d.xhtml", i+1)
		if _, err := e.AddSection(body, title, filename, ""); err != nil {
			return nil, &PackagingError{Format: "epub", Err: fmt.Errorf("section %q: %w", title, err)}
		}
	}

	out := filepath.Join(b.TmpDir, uuid.NewString()+".epub")
	if err := e.Write(out); err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	if err := os.Remove(out); err != nil {
		return data, nil // the artifact is good, stale scratch is not fatal
	}
	return data, nil
}

// bookDescription derives the package description from the introduction
// chapter, converted to plain markdown.
func bookDescription(chapters []Chapter) string {
	for _, ch := range chapters {
		if ch.Title != "Introduction" {
			continue
		}
		md, err := htmltomarkdown.ConvertString(ch.Body)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(md)
	}
	return ""
}
