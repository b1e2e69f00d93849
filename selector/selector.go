// Package selector is the catalog of structural locators for the space
// export page template. Each name maps to exactly one locator per template
// revision; consumers must treat zero matches as "region absent", never as
// an error, because spaces routinely omit whole regions (no tools section,
// no audio, etc.).
package selector

// Locators for the current export template.
const (
	// Base is the document <base> element; its href seeds base URL resolution.
	Base = "base"

	// SpaceTitle is the space name inside the page header.
	SpaceTitle = "div.header > h1"

	// Header is the region carrying the background image in its dataset.
	Header = "div.header"

	// Introduction is the space description shown before the first phase.
	Introduction = ".header + .description"

	// Subpages matches one container per phase, in document order.
	Subpages = "app-subpage-content.export"

	// PhaseTitle and PhaseDescription are resolved relative to a Subpages match.
	PhaseTitle       = ".name"
	PhaseDescription = "section > .description"
	PhaseResources   = ".resources"

	// Tools is the optional tools section appended after the phases.
	Tools = ".tools > section"

	// Images matches every image so relative sources can be absolutized
	// before any screenshot replacement rewrites the DOM.
	Images = "img"

	// MetaDownload tags inside an offline-ready frame advertise per-language
	// download locations for its content.
	MetaDownload = "meta[name=download]"
)

// Widget category locators. One per embeddable category; the unsupported
// fallback must stay last in handler order so it only catches what no more
// specific category claimed.
const (
	Audios              = "app-subpage-resource audio"
	Videos              = "video"
	Apps                = "app-graasp-app-resource:not([data-offline-support]) iframe"
	Gadgets             = "div.gadget"
	Labs                = "app-gateway-resource:not([data-offline-support]) iframe"
	Objects             = "app-subpage-resource object"
	Embedded            = ".embedded-html"
	OfflineReadyIframes = "app-gateway-resource[data-offline-support] iframe, app-graasp-app-resource[data-offline-support] iframe"
	Unsupported         = ".unsupported"
)

// Login form locators.
const (
	Username = "#username"
	Password = "#password"
	Submit   = ".submit"
)

// Catalog groups the locators of one template revision so the pipeline can
// address regions by role instead of hard-coded queries.
type Catalog struct {
	Base         string
	SpaceTitle   string
	Header       string
	Introduction string
	Subpages     string

	PhaseTitle       string
	PhaseDescription string
	PhaseResources   string

	Tools        string
	Images       string
	MetaDownload string

	Audios              string
	Videos              string
	Apps                string
	Gadgets             string
	Labs                string
	Objects             string
	Embedded            string
	OfflineReadyIframes string
	Unsupported         string

	Username string
	Password string
	Submit   string
}

// Current returns the catalog for the current export template.
func Current() Catalog {
	return Catalog{
		Base:         Base,
		SpaceTitle:   SpaceTitle,
		Header:       Header,
		Introduction: Introduction,
		Subpages:     Subpages,

		PhaseTitle:       PhaseTitle,
		PhaseDescription: PhaseDescription,
		PhaseResources:   PhaseResources,

		Tools:        Tools,
		Images:       Images,
		MetaDownload: MetaDownload,

		Audios:              Audios,
		Videos:              Videos,
		Apps:                Apps,
		Gadgets:             Gadgets,
		Labs:                Labs,
		Objects:             Objects,
		Embedded:            Embedded,
		OfflineReadyIframes: OfflineReadyIframes,
		Unsupported:         Unsupported,

		Username: Username,
		Password: Password,
		Submit:   Submit,
	}
}

// Legacy returns the catalog for the previous template revision, still
// served for spaces that were never re-rendered. Regions the old template
// did not distinguish reuse the current locator.
func Legacy() Catalog {
	c := Current()
	c.Introduction = ".description p"
	c.Subpages = ".export > section"
	c.Labs = "*:not([data-offline-support]) > iframe"
	c.OfflineReadyIframes = "[data-offline-support] > iframe"
	c.Unsupported = ".resources .unsupported"
	return c
}
