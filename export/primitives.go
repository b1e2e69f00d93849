package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
)

// retrieveBaseURL normalises a host into a usable base URL. A nil host falls
// back to the bare https scheme, protocol-relative hosts get https, and the
// result always carries a trailing slash so relative paths can be appended.
func retrieveBaseURL(host string) string {
	if host == "" {
		return "https://"
	}
	if strings.HasPrefix(host, "//") {
		host = "https:" + host
	}
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return host
}

// resolveURL rewrites a single attribute value against baseURL.
//
//	./x            -> baseURL + x
//	//host/x       -> https://host/x
//	http(s)://...  -> unchanged
//	anything else  -> baseURL + value
func resolveURL(raw, baseURL string) (string, error) {
	if !strings.HasPrefix(baseURL, "http") || !strings.HasSuffix(baseURL, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	switch {
	case strings.HasPrefix(raw, "./"):
		return baseURL + raw[2:], nil
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw, nil
	case strings.HasPrefix(raw, "http"):
		return raw, nil
	default:
		return baseURL + raw, nil
	}
}

// absolutizeAttr rewrites the element's attribute in place so it survives
// outside the origin the page was loaded from.
func absolutizeAttr(el *rod.Element, attr, baseURL string) error {
	val, err := el.Attribute(attr)
	if err != nil {
		return fmt.Errorf("export: read %s: %w", attr, err)
	}
	if val == nil || *val == "" {
		return fmt.Errorf("%w: %s", ErrMissingAttribute, attr)
	}
	resolved, err := resolveURL(*val, baseURL)
	if err != nil {
		return err
	}
	if resolved == *val {
		return nil
	}
	_, err = el.Eval(`(attr, v) => this.setAttribute(attr, v)`, attr, resolved)
	if err != nil {
		return fmt.Errorf("export: set %s: %w", attr, err)
	}
	return nil
}

// ensureElementID returns the element's id attribute, assigning a fresh one
// when the element has none so its screenshot file can be named after it.
func ensureElementID(el *rod.Element) (string, error) {
	id, err := el.Attribute("id")
	if err != nil {
		return "", fmt.Errorf("export: read id: %w", err)
	}
	if id != nil && *id != "" {
		return *id, nil
	}
	fresh := "g" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	if _, err := el.Eval(`(id) => this.setAttribute('id', id)`, fresh); err != nil {
		return "", fmt.Errorf("export: assign id: %w", err)
	}
	return fresh, nil
}

// screenshotElement captures the element as a PNG named after its id under
// dir, and returns the written path.
func screenshotElement(el *rod.Element, dir string) (string, error) {
	id, err := ensureElementID(el)
	if err != nil {
		return "", err
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return "", fmt.Errorf("export: screenshot %s: %w", id, err)
	}
	path := filepath.Join(dir, id+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

// replaceWithScreenshot captures the element, inserts an img pointing at the
// capture right after it, and removes the original element. The alt text
// comes from the element's title attribute when present. Returns the path of
// the written capture.
func replaceWithScreenshot(el *rod.Element, dir string) (string, error) {
	path, err := screenshotElement(el, dir)
	if err != nil {
		return "", err
	}
	_, err = el.Eval(`(src) => {
		const img = document.createElement('img');
		img.src = src;
		img.alt = this.getAttribute('title') || '';
		this.insertAdjacentElement('afterend', img);
		this.remove();
	}`, path)
	if err != nil {
		return "", fmt.Errorf("export: replace with screenshot: %w", err)
	}
	return path, nil
}

// pinElementHeight freezes the element at its rendered height so it keeps
// its size once its live content is gone or re-rendered by a reader.
func pinElementHeight(el *rod.Element) error {
	_, err := el.Eval(`() => { this.style.height = this.clientHeight + 'px'; }`)
	if err != nil {
		return fmt.Errorf("export: pin element height: %w", err)
	}
	return nil
}

// encodeXMLEntities escapes the characters that would break a srcdoc
// attribute when the document is later serialised as XHTML.
func encodeXMLEntities(s string) string {
	return xmlEntityReplacer.Replace(s)
}

var xmlEntityReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// inlineFrameContent copies the iframe's live document into its srcdoc
// attribute and drops src, making the frame self-contained. The frame needs
// a moment to re-render from srcdoc, so the caller's reload delay is
// honoured before returning.
func inlineFrameContent(ctx context.Context, el *rod.Element, reloadDelay func(context.Context) error) error {
	frame, err := el.Frame()
	if err != nil {
		return fmt.Errorf("export: frame handle: %w", err)
	}
	html, err := frame.HTML()
	if err != nil {
		return fmt.Errorf("export: frame content: %w", err)
	}
	_, err = el.Eval(`(html) => {
		this.removeAttribute('src');
		this.setAttribute('srcdoc', html);
	}`, encodeXMLEntities(html))
	if err != nil {
		return fmt.Errorf("export: set srcdoc: %w", err)
	}
	if reloadDelay != nil {
		return reloadDelay(ctx)
	}
	return nil
}

// doubleEncodedEntity matches the ampersand of an entity that the browser
// serialised a second time (&amp;lt; for &lt;). Interactive exports carry
// srcdoc documents where this happens.
var doubleEncodedEntity = regexp.MustCompile(`&amp;(([1-9]|[a-zA-Z]){1,6};)`)

// decodeEntityAmpersands undoes the browser's double encoding of XML
// entities inside serialised srcdoc attributes.
func decodeEntityAmpersands(html string) string {
	return doubleEncodedEntity.ReplaceAllString(html, "&$1")
}
