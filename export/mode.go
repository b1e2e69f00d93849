package export

// Mode selects how live widgets are treated in the exported document.
type Mode int

const (
	// ModeStatic flattens every widget to a screenshot.
	ModeStatic Mode = iota
	// ModeInteractiveOnline keeps embeddable widgets live, pointing at
	// their online sources.
	ModeInteractiveOnline
	// ModeInteractiveOffline inlines widget documents so the export works
	// without a network connection.
	ModeInteractiveOffline
)

// ParseMode maps the wire-level mode names onto the enum. Both the current
// names (interactive-online, interactive-offline) and the legacy ones are
// accepted; "read-only" selects the offline rendition it always produced.
// Unknown names default to static, the safest rendition.
func ParseMode(s string) Mode {
	switch s {
	case "interactive", "interactive-online":
		return ModeInteractiveOnline
	case "offline", "interactive-offline", "read-only":
		return ModeInteractiveOffline
	default:
		return ModeStatic
	}
}

func (m Mode) String() string {
	switch m {
	case ModeInteractiveOnline:
		return "interactive"
	case ModeInteractiveOffline:
		return "offline"
	default:
		return "static"
	}
}

// Interactive reports whether widgets stay live in this mode.
func (m Mode) Interactive() bool {
	return m == ModeInteractiveOnline || m == ModeInteractiveOffline
}
