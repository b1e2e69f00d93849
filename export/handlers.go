package export

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-rod/rod"

	"github.com/graasp/graasp-service-exporter/browser"
	"github.com/graasp/graasp-service-exporter/selector"
)

// pipeline transforms one loaded page for a given render mode. Handlers run
// in a fixed order: image sources are absolutized before anything is
// screenshotted, and unsupported elements are flattened last.
type pipeline struct {
	page        *rod.Page
	sel         selector.Catalog
	mode        Mode
	lang        string
	hostURL     string // host base, for images and backgrounds
	baseURL     string // document base, from the page's base element
	tmpDir      string
	reloadDelay time.Duration
	log         *slog.Logger
}

// category identifies one widget family for strategy selection.
type category int

const (
	catApps category = iota
	catGadgets
	catLabs
	catObjects
	catAudios
	catVideos
	catEmbedded
	catOfflineReady
	catUnsupported
)

// strategy is the treatment a category's elements receive in a mode.
type strategy int

const (
	// strategyScreenshot replaces each element with a static capture.
	strategyScreenshot strategy = iota
	// strategyKeepLive absolutizes the source and pins the height, leaving
	// the element interactive.
	strategyKeepLive
	// strategyPinHeight pins the rendered height only.
	strategyPinHeight
	// strategyInline copies the frame document into srcdoc.
	strategyInline
)

// widgetStrategy maps mode and category onto a treatment. Every category has
// a defined treatment in every mode. Generated documents and unsupported
// content flatten regardless of mode; offline-ready frames inline in both
// interactive modes; everything else stays live only online.
func widgetStrategy(cat category, mode Mode) strategy {
	switch cat {
	case catObjects, catUnsupported:
		return strategyScreenshot
	case catOfflineReady:
		if mode.Interactive() {
			return strategyInline
		}
		return strategyScreenshot
	}
	if mode != ModeInteractiveOnline {
		return strategyScreenshot
	}
	switch cat {
	case catApps, catLabs:
		return strategyKeepLive
	default:
		return strategyPinHeight
	}
}

// run applies every widget handler and returns the paths of the screenshots
// written along the way, so they can be cleaned up after packaging.
func (p *pipeline) run(ctx context.Context) ([]string, error) {
	if err := p.absolutizeImages(); err != nil {
		return nil, err
	}

	var shots []string
	steps := []func(context.Context) ([]string, error){
		p.handleApps,
		p.handleGadgets,
		p.handleLabs,
		p.handleObjects,
		p.handleAudios,
		p.handleVideos,
		p.handleEmbedded,
		p.handleOfflineLabs,
		p.handleUnsupported,
	}
	for _, step := range steps {
		paths, err := step(ctx)
		shots = append(shots, paths...)
		if err != nil {
			return shots, err
		}
	}
	return shots, nil
}

// absolutizeImages rewrites relative img sources against the host so they
// still resolve once the chapter markup leaves the page.
func (p *pipeline) absolutizeImages() error {
	imgs, err := findElements(p.page, p.sel.Images)
	if err != nil {
		return err
	}
	for _, img := range imgs {
		if err := absolutizeAttr(img, "src", p.hostURL); err != nil {
			if errors.Is(err, ErrMissingAttribute) {
				continue
			}
			return err
		}
	}
	return nil
}

func (p *pipeline) handleApps(ctx context.Context) ([]string, error) {
	return p.handleCategory(catApps, p.sel.Apps)
}

func (p *pipeline) handleGadgets(ctx context.Context) ([]string, error) {
	return p.handleCategory(catGadgets, p.sel.Gadgets)
}

func (p *pipeline) handleLabs(ctx context.Context) ([]string, error) {
	return p.handleCategory(catLabs, p.sel.Labs)
}

func (p *pipeline) handleObjects(ctx context.Context) ([]string, error) {
	return p.handleCategory(catObjects, p.sel.Objects)
}

func (p *pipeline) handleAudios(ctx context.Context) ([]string, error) {
	return p.handleCategory(catAudios, p.sel.Audios)
}

func (p *pipeline) handleVideos(ctx context.Context) ([]string, error) {
	return p.handleCategory(catVideos, p.sel.Videos)
}

func (p *pipeline) handleEmbedded(ctx context.Context) ([]string, error) {
	return p.handleCategory(catEmbedded, p.sel.Embedded)
}

// handleCategory selects the category's elements and applies its strategy
// for the current mode. Zero matches is a non-event.
func (p *pipeline) handleCategory(cat category, sel string) ([]string, error) {
	els, err := findElements(p.page, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		p.log.Debug("category absent", "selector", sel)
		return nil, nil
	}
	return p.applyStrategy(els, widgetStrategy(cat, p.mode))
}

// applyStrategy runs one treatment over a category's elements. The inline
// strategy never reaches here; offline-ready frames have their own flow.
func (p *pipeline) applyStrategy(els rod.Elements, st strategy) ([]string, error) {
	switch st {
	case strategyKeepLive:
		return nil, p.keepLive(els)
	case strategyPinHeight:
		return nil, p.pinHeights(els)
	default:
		return p.screenshotAll(els)
	}
}

// handleOfflineLabs makes offline-capable iframes self-contained in both
// interactive modes: retarget to the advertised download document for the
// export language when one exists, then inline the frame into srcdoc. Static
// exports flatten them like everything else.
func (p *pipeline) handleOfflineLabs(ctx context.Context) ([]string, error) {
	els, err := findElements(p.page, p.sel.OfflineReadyIframes)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		p.log.Debug("category absent", "selector", p.sel.OfflineReadyIframes)
		return nil, nil
	}
	if widgetStrategy(catOfflineReady, p.mode) != strategyInline {
		return p.screenshotAll(els)
	}

	for _, el := range els {
		if err := absolutizeAttr(el, "src", p.baseURL); err != nil {
			if errors.Is(err, ErrMissingAttribute) {
				continue
			}
			return nil, err
		}
	}
	// absolutized srcs make the frames reload
	if err := p.waitReload(ctx); err != nil {
		return nil, err
	}

	for _, el := range els {
		if err := p.retargetToDownload(ctx, el); err != nil {
			return nil, err
		}
		if err := inlineFrameContent(ctx, el, p.waitReload); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// retargetToDownload points the iframe at the download document its current
// content advertises for the export language, when there is one.
func (p *pipeline) retargetToDownload(ctx context.Context, el *rod.Element) error {
	frame, err := el.Frame()
	if err != nil {
		p.log.Warn("offline lab frame not reachable", "error", err)
		return nil
	}
	html, err := frame.HTML()
	if err != nil {
		p.log.Warn("offline lab content not readable", "error", err)
		return nil
	}
	dl, err := downloadURL(html, p.lang, p.sel.MetaDownload)
	if err != nil {
		return err
	}
	if dl == "" {
		return nil
	}
	resolved, err := resolveURL(dl, p.baseURL)
	if err != nil {
		return err
	}
	if _, err := el.Eval(`(src) => this.setAttribute('src', src)`, resolved); err != nil {
		return err
	}
	return p.waitReload(ctx)
}

func (p *pipeline) handleUnsupported(ctx context.Context) ([]string, error) {
	return p.handleCategory(catUnsupported, p.sel.Unsupported)
}

func (p *pipeline) screenshotAll(els rod.Elements) ([]string, error) {
	paths := make([]string, 0, len(els))
	for _, el := range els {
		path, err := replaceWithScreenshot(el, p.tmpDir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (p *pipeline) pinHeights(els rod.Elements) error {
	for _, el := range els {
		if err := pinElementHeight(el); err != nil {
			return err
		}
	}
	return nil
}

// keepLive prepares live iframes for the online rendition: absolute sources
// and pinned heights.
func (p *pipeline) keepLive(els rod.Elements) error {
	for _, el := range els {
		if err := absolutizeAttr(el, "src", p.baseURL); err != nil && !errors.Is(err, ErrMissingAttribute) {
			return err
		}
		if err := pinElementHeight(el); err != nil {
			return err
		}
	}
	return nil
}

func (p *pipeline) waitReload(ctx context.Context) error {
	return browser.WaitSettle(ctx, p.reloadDelay)
}
