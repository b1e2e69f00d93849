package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
}

func TestPackageEpub(t *testing.T) {
	dir := t.TempDir()
	shot := filepath.Join(dir, "widget1.png")
	writeTestPNG(t, shot)

	cover, err := renderCover(nil, "My Space", defaultAuthor, map[string]string{"Publisher": "Graasp"})
	if err != nil {
		t.Fatalf("renderCover: %v", err)
	}

	data, err := packageEpub(book{
		Title:  "My Space",
		Author: defaultAuthor,
		Chapters: []Chapter{
			{Title: "Introduction", Body: "<p>Welcome</p>"},
			{Title: "<span>Phase 1</span>", Body: `<p>content</p><img src="` + shot + `" alt=""/>`},
		},
		CoverPNG:    cover,
		Screenshots: []string{shot},
		TmpDir:      dir,
		Lang:        "en",
	})
	if err != nil {
		t.Fatalf("packageEpub: %v", err)
	}
	// epub files are zip archives
	if len(data) < 4 || string(data[:2]) != "PK" {
		t.Fatalf("packageEpub did not produce a zip archive (%d bytes)", len(data))
	}

	// scratch epub is removed, screenshots are the caller's to clean up
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".epub") {
			t.Errorf("scratch epub %s left behind", e.Name())
		}
	}
	if _, err := os.Stat(shot); err != nil {
		t.Errorf("screenshot should survive packaging: %v", err)
	}
}

func TestRenderCoverDimensions(t *testing.T) {
	data, err := renderCover(nil, "Title", "Anonymous", nil)
	if err != nil {
		t.Fatalf("renderCover: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("cover is not a png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != coverSize || b.Dy() != coverSize {
		t.Errorf("cover is %dx%d, want %dx%d", b.Dx(), b.Dy(), coverSize, coverSize)
	}
}

func TestBookDescription(t *testing.T) {
	desc := bookDescription([]Chapter{
		{Title: "Introduction", Body: "<p>Hello <strong>world</strong></p>"},
	})
	if !strings.Contains(desc, "Hello") {
		t.Errorf("description %q should carry the introduction text", desc)
	}
	if strings.Contains(desc, "<p>") {
		t.Errorf("description %q should not carry markup", desc)
	}
	if got := bookDescription(nil); got != "" {
		t.Errorf("no chapters should give no description, got %q", got)
	}
}

func TestRemoveArtifacts(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeTestPNG(t, a)

	// missing files are not failures
	if err := removeArtifacts([]string{a, filepath.Join(dir, "missing.png")}); err != nil {
		t.Fatalf("removeArtifacts: %v", err)
	}
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Error("a.png should be gone")
	}
}
