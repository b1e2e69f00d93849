// Package job defines the export job data model: the caller-submitted
// request, the generated file identifier that correlates a submission with
// its eventual artifact, and the derived status values.
//
// No job metadata is persisted server-side. The presence or absence of a
// blob under the FileID in the backing store is the whole state machine.
package job

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Supported output formats.
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatEPUB = "epub"
)

// DefaultFormat is used when the request names none.
const DefaultFormat = FormatPDF

// Statuses reported to pollers. There is deliberately no failed status:
// a job that never completes stays pending forever.
const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// DefaultNetworkPreset is recorded in dry-run reports when the caller
// supplied no throttle preset.
const DefaultNetworkPreset = "wifi"

// Request is the caller-submitted job description. Immutable once accepted.
type Request struct {
	Format        string   `json:"format,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	Lang          string   `json:"lang,omitempty"`
	Username      string   `json:"username,omitempty"`
	Password      string   `json:"password,omitempty"`
	DryRun        bool     `json:"dryRun,omitempty"`
	NetworkPreset string   `json:"networkPreset,omitempty"`
	Subspaces     []string `json:"subspaces,omitempty"`

	// Template names the page template revision the space was rendered
	// with; empty selects the current one.
	Template string `json:"template,omitempty"`

	// Authorization is filled from the caller's bearer token by the submit
	// handler, never by the caller directly.
	Authorization string `json:"authorization,omitempty"`
}

// Message is the envelope published on the export topic.
type Message struct {
	ID      string            `json:"id"`
	Body    Request           `json:"body"`
	Headers map[string]string `json:"headers,omitempty"`
	FileID  string            `json:"fileId"`
}

// Report is the blob uploaded for dry-run jobs instead of an artifact.
type Report struct {
	DurationMs    int64  `json:"duration"`
	NetworkPreset string `json:"networkPreset"`
	Status        string `json:"status,omitempty"`
}

// IsSupportedFormat reports whether format names a producible artifact type.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatPDF, FormatPNG, FormatEPUB:
		return true
	}
	return false
}

// IsValidSpaceID reports whether id is a well-formed space object id:
// 24 lowercase hex characters.
func IsValidSpaceID(id string) bool {
	if len(id) != 24 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}

// NewFileID generates the identifier under which the finished artifact will
// be stored: a random token plus an extension derived from the request.
// Dry runs are flagged as .json so the poll handler knows to return the
// report inline rather than redirect.
func NewFileID(format string, dryRun bool) string {
	ext := format
	if dryRun {
		ext = "json"
	}
	return newToken() + "." + ext
}

// ParseFileID splits a file id into token and extension, validating the
// token as a space-style object id.
func ParseFileID(fileID string) (token, ext string, err error) {
	token, ext, ok := strings.Cut(fileID, ".")
	if !ok || ext == "" || !IsValidSpaceID(token) {
		return "", "", fmt.Errorf("invalid file id %q", fileID)
	}
	return token, ext, nil
}

// IsDryRunFileID reports whether the id names a dry-run report blob.
func IsDryRunFileID(fileID string) bool {
	return strings.HasSuffix(fileID, ".json")
}

func newToken() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		panic("job: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
