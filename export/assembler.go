package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/graasp/graasp-service-exporter/selector"
)

const (
	titleTimeout   = 3 * time.Second
	sectionTimeout = time.Second

	untitled      = "Untitled"
	defaultAuthor = "Anonymous"
)

// Chapter is one section of the assembled document.
type Chapter struct {
	Title string
	Body  string
}

// pageTitle reads the space title, falling back to a placeholder when the
// header never renders one.
func pageTitle(page *rod.Page, sel selector.Catalog) string {
	el, res, err := waitElement(page, sel.SpaceTitle, titleTimeout)
	if err != nil || res != lookupFound {
		return untitled
	}
	title, err := innerHTML(el)
	if err != nil || strings.TrimSpace(title) == "" {
		return untitled
	}
	return title
}

// pageBackground resolves the header's background image URL against the
// host. Empty when the space has no background.
func pageBackground(page *rod.Page, host string, sel selector.Catalog) string {
	el, res, err := waitElement(page, sel.Header, sectionTimeout)
	if err != nil || res != lookupFound {
		return ""
	}
	raw, err := el.Attribute("data-background-image")
	if err != nil || raw == nil || *raw == "" {
		return ""
	}
	switch {
	case strings.HasPrefix(*raw, "//"):
		return "https:" + *raw
	case strings.HasPrefix(*raw, "http"):
		return *raw
	default:
		return host + *raw
	}
}

// pageBaseURL reads the document's base element and normalises it for
// attribute rewriting. A page without a usable base degrades to the bare
// https scheme.
func pageBaseURL(page *rod.Page, sel selector.Catalog) string {
	el, res, err := waitElement(page, sel.Base, sectionTimeout)
	if err != nil || res != lookupFound {
		return retrieveBaseURL("")
	}
	href, err := el.Attribute("href")
	if err != nil || href == nil {
		return retrieveBaseURL("")
	}
	return retrieveBaseURL(*href)
}

// assembleChapters collects the introduction, one chapter per phase, and the
// tools section. Sections the space does not have are dropped, and chapters
// with no title or no content are filtered out.
func assembleChapters(p *pipeline) ([]Chapter, error) {
	var chapters []Chapter

	if intro, ok := sectionHTML(p.page, p.sel.Introduction); ok {
		chapters = append(chapters, Chapter{Title: "Introduction", Body: intro})
	}

	phases, err := findElements(p.page, p.sel.Subpages)
	if err != nil {
		return nil, err
	}
	for _, phase := range phases {
		ch, err := phaseChapter(phase, p.sel)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}

	if tools, ok := sectionHTML(p.page, p.sel.Tools); ok {
		chapters = append(chapters, Chapter{Title: "Tools", Body: tools})
	}

	if p.mode.Interactive() {
		for i := range chapters {
			chapters[i].Body = decodeEntityAmpersands(chapters[i].Body)
		}
	}

	filtered := chapters[:0]
	for _, ch := range chapters {
		if strings.TrimSpace(ch.Title) != "" && strings.TrimSpace(ch.Body) != "" {
			filtered = append(filtered, ch)
		}
	}
	return filtered, nil
}

// phaseChapter extracts one phase: the name as title, the description (when
// present) followed by the resources as body.
func phaseChapter(phase *rod.Element, sel selector.Catalog) (Chapter, error) {
	res, err := phase.Eval(`(nameSel, descSel, resSel) => {
		const name = this.querySelector(nameSel);
		const desc = this.querySelector(descSel);
		const resources = this.querySelector(resSel);
		return {
			title: name ? name.innerHTML : '',
			body: (desc ? desc.outerHTML : '') + (resources ? resources.innerHTML : ''),
		};
	}`, sel.PhaseTitle, sel.PhaseDescription, sel.PhaseResources)
	if err != nil {
		return Chapter{}, fmt.Errorf("export: read phase content: %w", err)
	}
	return Chapter{
		Title: res.Value.Get("title").Str(),
		Body:  res.Value.Get("body").Str(),
	}, nil
}

func sectionHTML(page *rod.Page, sel string) (string, bool) {
	el, res, err := waitElement(page, sel, sectionTimeout)
	if err != nil || res != lookupFound {
		return "", false
	}
	html, err := innerHTML(el)
	if err != nil {
		return "", false
	}
	return html, true
}

func innerHTML(el *rod.Element) (string, error) {
	res, err := el.Eval(`() => this.innerHTML`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}
