package job

import (
	"strings"
	"testing"
)

func TestNewFileID_FormatExtension(t *testing.T) {
	id := NewFileID(FormatPDF, false)
	if !strings.HasSuffix(id, ".pdf") {
		t.Errorf("expected .pdf suffix, got %q", id)
	}
	token, ext, err := ParseFileID(id)
	if err != nil {
		t.Fatalf("ParseFileID(%q): %v", id, err)
	}
	if ext != "pdf" {
		t.Errorf("ext = %q, want pdf", ext)
	}
	if !IsValidSpaceID(token) {
		t.Errorf("token %q is not a valid object id", token)
	}
}

func TestNewFileID_DryRunIsJSON(t *testing.T) {
	id := NewFileID(FormatEPUB, true)
	if !strings.HasSuffix(id, ".json") {
		t.Errorf("dry-run id should end in .json, got %q", id)
	}
	if !IsDryRunFileID(id) {
		t.Errorf("IsDryRunFileID(%q) = false", id)
	}
}

func TestNewFileID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := NewFileID(FormatPNG, false)
		if seen[id] {
			t.Fatalf("duplicate file id %q", id)
		}
		seen[id] = true
	}
}

func TestParseFileID_Invalid(t *testing.T) {
	for _, id := range []string{
		"",
		"noextension",
		"short.pdf",
		"5f2a000000000000000000zz.pdf",
		"5f2a0000000000000000000a.",
		"5F2A0000000000000000000A.pdf", // uppercase hex rejected
	} {
		if _, _, err := ParseFileID(id); err == nil {
			t.Errorf("ParseFileID(%q) succeeded, want error", id)
		}
	}
}

func TestIsValidSpaceID(t *testing.T) {
	if !IsValidSpaceID("5f2a0000000000000000000a") {
		t.Error("expected valid object id to pass")
	}
	if IsValidSpaceID("5f2a0000000000000000000") {
		t.Error("23 chars should fail")
	}
	if IsValidSpaceID("xxxx0000000000000000000a") {
		t.Error("non-hex should fail")
	}
}

func TestIsSupportedFormat(t *testing.T) {
	for _, f := range []string{FormatPDF, FormatPNG, FormatEPUB} {
		if !IsSupportedFormat(f) {
			t.Errorf("%s should be supported", f)
		}
	}
	if IsSupportedFormat("docx") {
		t.Error("docx should not be supported")
	}
}
