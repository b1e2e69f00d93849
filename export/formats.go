package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// A4 paper with 1cm top and bottom margins, in inches as the print protocol
// expects.
const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	marginIn   = 0.3937
)

func float64Ptr(v float64) *float64 { return &v }

// renderPDF prints the page to PDF and validates the result before it is
// stored. An artifact that passes validation is guaranteed to open.
func renderPDF(page *rod.Page) ([]byte, error) {
	r, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      float64Ptr(a4WidthIn),
		PaperHeight:     float64Ptr(a4HeightIn),
		MarginTop:       float64Ptr(marginIn),
		MarginBottom:    float64Ptr(marginIn),
		PrintBackground: true,
	})
	if err != nil {
		return nil, &PackagingError{Format: "pdf", Err: err}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &PackagingError{Format: "pdf", Err: err}
	}
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return nil, &PackagingError{Format: "pdf", Err: fmt.Errorf("validate: %w", err)}
	}
	return data, nil
}

// renderPNG captures the full page, not just the viewport.
func renderPNG(page *rod.Page) ([]byte, error) {
	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, &PackagingError{Format: "png", Err: err}
	}
	return data, nil
}
