package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Cover layout. The canvas is fixed at 600x600 with a title block on top,
// author and metadata lines below, and the space background filling a
// 600x300 band in the middle.
const (
	coverSize        = 600
	coverMarginLeft  = 10
	coverTitleScale  = 5
	coverAuthorScale = 2
	coverLineSpacing = 8
	coverImageTop    = 130
	coverImageHeight = 300
)

var (
	coverBackground = color.RGBA{R: 0x2f, G: 0x48, B: 0x58, A: 0xff}
	coverFontColor  = color.RGBA{R: 0xf5, G: 0xf5, B: 0xf5, A: 0xff}
)

// fetchCoverImage downloads the space background. A missing or undecodable
// image falls back to the default cover asset; when that is absent too, the
// cover is rendered without an image band.
func fetchCoverImage(ctx context.Context, client *http.Client, url, defaultPath string) image.Image {
	if url != "" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err == nil {
			resp, err := client.Do(req)
			if err == nil {
				defer resp.Body.Close()
				if img, err := imaging.Decode(resp.Body); err == nil {
					return img
				}
			}
		}
	}
	if defaultPath != "" {
		if img, err := imaging.Open(defaultPath); err == nil {
			return img
		}
	}
	return nil
}

// renderCover paints the book cover and returns it PNG-encoded.
func renderCover(background image.Image, title, author string, metadata map[string]string) ([]byte, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, coverSize, coverSize))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(coverBackground), image.Point{}, draw.Src)

	y := 10
	y = drawScaledText(canvas, title, coverMarginLeft, y, coverTitleScale)
	y += coverLineSpacing
	y = drawScaledText(canvas, author, coverMarginLeft, y, coverAuthorScale)

	if background != nil {
		band := imaging.Fill(background, coverSize, coverImageHeight, imaging.Center, imaging.Lanczos)
		rect := image.Rect(0, coverImageTop, coverSize, coverImageTop+coverImageHeight)
		draw.Draw(canvas, rect, band, image.Point{}, draw.Over)
	}

	y = coverImageTop + coverImageHeight + coverLineSpacing
	for _, key := range sortedKeys(metadata) {
		y = drawScaledText(canvas, fmt.Sprintf("%s: %s", key, metadata[key]), coverMarginLeft, y, 1)
		y += coverLineSpacing / 2
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, &PackagingError{Format: "epub", Err: err}
	}
	return buf.Bytes(), nil
}

// drawScaledText renders a line of text at the given integer scale of the
// base bitmap font and returns the y coordinate below the drawn line.
func drawScaledText(dst *image.RGBA, text string, x, y, scale int) int {
	face := basicfont.Face7x13
	if text == "" {
		return y
	}

	w := font.MeasureString(face, text).Ceil()
	h := face.Metrics().Height.Ceil()
	line := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  line,
		Src:  image.NewUniform(coverFontColor),
		Face: face,
		Dot:  fixed.P(0, face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)

	var scaled image.Image = line
	if scale > 1 {
		scaled = imaging.Resize(line, w*scale, h*scale, imaging.NearestNeighbor)
	}

	// clip to the canvas, long titles just run off the edge
	rect := image.Rect(x, y, x+scaled.Bounds().Dx(), y+scaled.Bounds().Dy())
	draw.Draw(dst, rect.Intersect(dst.Bounds()), scaled, image.Point{}, draw.Over)
	return y + scaled.Bounds().Dy()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
