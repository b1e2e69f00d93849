// Package export drives a headless browser through a live space and turns
// the transformed page into a PDF, PNG, or EPUB artifact.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/graasp/graasp-service-exporter/browser"
	"github.com/graasp/graasp-service-exporter/config"
	"github.com/graasp/graasp-service-exporter/job"
	"github.com/graasp/graasp-service-exporter/selector"
	"github.com/graasp/graasp-service-exporter/store"
)

// subspaceConcurrency bounds how many browser sessions a multi-space export
// may hold open at once.
const subspaceConcurrency = 2

// Service converts spaces into stored artifacts. One Service handles many
// jobs; each job gets its own browser session.
type Service struct {
	cfg    *config.Config
	store  store.Store
	client *http.Client
	log    *slog.Logger
}

func NewService(cfg *config.Config, st store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		store:  st,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    logger,
	}
}

// Generate runs one export job end to end: convert, then store under the
// job's file id. Failures are returned for logging only; the job is left
// pending and the blob untouched, so a poller never sees a broken artifact.
func (s *Service) Generate(ctx context.Context, msg job.Message) error {
	log := s.log.With("space_id", msg.ID, "file_id", msg.FileID)
	log.Info("export started", "format", msg.Body.Format, "mode", msg.Body.Mode)

	if msg.Body.Lang == "" {
		msg.Body.Lang = headerLang(msg.Headers)
	}

	start := time.Now()
	data, contentType, err := s.convert(ctx, msg.ID, msg.Body)
	if err != nil {
		return &FailedError{SpaceID: msg.ID, Format: msg.Body.Format, Err: err}
	}
	duration := time.Since(start)

	if msg.Body.DryRun {
		preset := msg.Body.NetworkPreset
		if preset == "" {
			preset = job.DefaultNetworkPreset
		}
		report, err := json.Marshal(job.Report{
			DurationMs:    duration.Milliseconds(),
			NetworkPreset: preset,
		})
		if err != nil {
			return &FailedError{SpaceID: msg.ID, Format: msg.Body.Format, Err: err}
		}
		data, contentType = report, "application/json"
	}

	if err := s.store.Put(ctx, msg.FileID, data, contentType); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			log.Warn("artifact already stored, keeping the first")
			return nil
		}
		return &FailedError{SpaceID: msg.ID, Format: msg.Body.Format, Err: err}
	}

	log.Info("export finished", "duration", duration, "bytes", len(data))
	return nil
}

func (s *Service) convert(ctx context.Context, id string, req job.Request) ([]byte, string, error) {
	format := req.Format
	if format == "" {
		format = job.DefaultFormat
	}

	switch format {
	case job.FormatEPUB:
		data, err := s.generateEpub(ctx, id, req)
		return data, "application/epub+zip", err
	case job.FormatPDF, job.FormatPNG:
		sess, p, err := s.openSpace(ctx, id, req)
		if err != nil {
			return nil, "", err
		}
		defer sess.Close()
		if format == job.FormatPNG {
			data, err := renderPNG(p.page)
			return data, "image/png", err
		}
		data, err := renderPDF(p.page)
		return data, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// openSpace starts a browser session on the space's export page: throttle,
// navigate, sign in per the probed auth kind, and let the widgets settle.
func (s *Service) openSpace(ctx context.Context, id string, req job.Request) (*browser.Session, *pipeline, error) {
	sess, err := browser.Open(ctx, browser.Config{
		RemoteURL: s.cfg.Browser.Remote,
		Width:     s.cfg.Browser.Width,
		Height:    s.cfg.Browser.Height,
		Logger:    s.log,
	})
	if err != nil {
		return nil, nil, err
	}
	page := sess.Page()

	ok := false
	defer func() {
		if !ok {
			sess.Close()
		}
	}()

	if req.NetworkPreset != "" {
		if err := sess.Throttle(page, req.NetworkPreset); err != nil {
			return nil, nil, err
		}
	}

	kind := probeAuthKind(ctx, s.client, s.authTypeURL(id))
	if err := navigate(page, s.spaceURL(id, req), s.cfg.Browser.NavigationTimeout); err != nil {
		return nil, nil, err
	}

	p := &pipeline{
		page:        page,
		sel:         catalogFor(req.Template),
		mode:        ParseMode(req.Mode),
		lang:        s.lang(req),
		hostURL:     retrieveBaseURL(s.cfg.Host),
		tmpDir:      s.cfg.TmpDir,
		reloadDelay: s.cfg.Browser.ReloadDelay,
		log:         s.log.With("space_id", id),
	}

	// anonymous spaces still present a submit control to pass through
	if err := signIn(p, kind, req.Username, req.Password, s.cfg.Browser.NavigationTimeout); err != nil {
		return nil, nil, err
	}

	// mainly for iframes that keep loading after network idle
	if err := browser.WaitSettle(ctx, s.cfg.Browser.SettleDelay); err != nil {
		return nil, nil, err
	}

	// full-page captures clip unless the viewport covers the rendered
	// height; failure here degrades to the fixed viewport
	if res, err := page.Eval(`() => document.body ? document.body.scrollHeight : 0`); err == nil {
		if h := res.Value.Int(); h > s.cfg.Browser.Height {
			if err := sess.SetViewport(page, s.cfg.Browser.Width, h); err != nil {
				s.log.Warn("viewport expansion failed", "space_id", id, "error", err)
			}
		}
	}

	p.baseURL = pageBaseURL(page, p.sel)
	ok = true
	return sess, p, nil
}

// spaceContent is everything one scraped space contributes to the book.
type spaceContent struct {
	Title      string
	Background string
	Chapters   []Chapter
	Shots      []string
}

func (s *Service) generateEpub(ctx context.Context, id string, req job.Request) ([]byte, error) {
	if err := os.MkdirAll(s.cfg.TmpDir, 0o755); err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	scratch, err := os.MkdirTemp(s.cfg.TmpDir, "export-")
	if err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	defer os.RemoveAll(scratch)

	main, err := s.collectSpace(ctx, id, req, scratch)
	if err != nil {
		return nil, err
	}

	contents := []spaceContent{main}
	if len(req.Subspaces) > 0 {
		extra := make([]spaceContent, len(req.Subspaces))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(subspaceConcurrency)
		for i, sub := range req.Subspaces {
			g.Go(func() error {
				c, err := s.collectSpace(gctx, sub, req, scratch)
				if err != nil {
					return err
				}
				extra[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		contents = append(contents, extra...)
	}

	var shots []string
	for _, c := range contents {
		shots = append(shots, c.Shots...)
	}
	chapters := composeChapters(contents)

	cover, err := renderCover(
		fetchCoverImage(ctx, s.client, main.Background, s.cfg.CoverDefault),
		main.Title, defaultAuthor, map[string]string{
			"Publisher": "Graasp",
			"Date":      time.Now().Format("02/01/2006"),
		})
	if err != nil {
		return nil, err
	}

	data, err := packageEpub(book{
		Title:       main.Title,
		Author:      defaultAuthor,
		Chapters:    chapters,
		CoverPNG:    cover,
		Screenshots: shots,
		TmpDir:      scratch,
		Lang:        s.lang(req),
	})
	if cleanupErr := removeArtifacts(shots); cleanupErr != nil {
		s.log.Warn("scratch cleanup incomplete", "error", cleanupErr)
	}
	return data, err
}

// collectSpace scrapes one space and returns its chapters and screenshots.
// The caller owns the scratch directory; the browser session is closed
// before returning.
func (s *Service) collectSpace(ctx context.Context, id string, req job.Request, scratch string) (spaceContent, error) {
	sess, p, err := s.openSpace(ctx, id, req)
	if err != nil {
		return spaceContent{}, err
	}
	defer sess.Close()
	p.tmpDir = scratch

	shots, err := p.run(ctx)
	if err != nil {
		return spaceContent{Shots: shots}, err
	}
	chapters, err := assembleChapters(p)
	if err != nil {
		return spaceContent{Shots: shots}, err
	}
	return spaceContent{
		Title:      pageTitle(p.page, p.sel),
		Background: pageBackground(p.page, s.cfg.Host, p.sel),
		Chapters:   chapters,
		Shots:      shots,
	}, nil
}

// composeChapters flattens the scraped spaces into the book's chapter
// sequence. A multi-space book opens with the listing of included spaces and
// then the main space's chapters; every sub-space contributes a bare title
// chapter marking where its own chapters begin.
func composeChapters(contents []spaceContent) []Chapter {
	if len(contents) == 1 {
		return contents[0].Chapters
	}
	chapters := []Chapter{includedSpacesChapter(contents)}
	chapters = append(chapters, contents[0].Chapters...)
	for _, c := range contents[1:] {
		chapters = append(chapters, Chapter{Title: c.Title})
		chapters = append(chapters, c.Chapters...)
	}
	return chapters
}

// includedSpacesChapter lists every space the book was assembled from.
func includedSpacesChapter(contents []spaceContent) Chapter {
	var b strings.Builder
	b.WriteString("<h1>Included spaces</h1>\n<ul>\n")
	for _, c := range contents {
		b.WriteString("<li>" + html.EscapeString(c.Title) + "</li>\n")
	}
	b.WriteString("</ul>\n")
	return Chapter{Title: "Included spaces", Body: b.String()}
}

func (s *Service) lang(req job.Request) string {
	if req.Lang == "" {
		return defaultLang
	}
	return req.Lang
}

// headerLang extracts the primary language subtag from a forwarded
// accept-language header, the fallback when the request names no language.
func headerLang(headers map[string]string) string {
	tag, _, _ := strings.Cut(headers["accept-language"], ",")
	tag, _, _ = strings.Cut(tag, ";")
	tag, _, _ = strings.Cut(tag, "-")
	return strings.ToLower(strings.TrimSpace(tag))
}

// catalogFor picks the locator set for the template revision the space was
// rendered with. Spaces never re-rendered since the template change submit
// with template "legacy".
func catalogFor(template string) selector.Catalog {
	if template == "legacy" {
		return selector.Legacy()
	}
	return selector.Current()
}

func (s *Service) spaceURL(id string, req job.Request) string {
	u := fmt.Sprintf("%s/%s/pages/%s/export",
		strings.TrimSuffix(s.cfg.Host, "/"), s.lang(req), id)
	if req.Authorization != "" {
		u += "?authorization=" + url.QueryEscape(req.Authorization)
	}
	return u
}

func (s *Service) authTypeURL(id string) string {
	return strings.TrimSuffix(s.cfg.AuthTypeHost, "/") + "/" + id
}
