package export

import "testing"

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"static", ModeStatic},
		{"", ModeStatic},
		{"nonsense", ModeStatic},
		{"interactive", ModeInteractiveOnline},
		{"interactive-online", ModeInteractiveOnline},
		{"offline", ModeInteractiveOffline},
		{"interactive-offline", ModeInteractiveOffline},
		{"read-only", ModeInteractiveOffline},
	}
	for _, tc := range cases {
		if got := ParseMode(tc.in); got != tc.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestModeInteractive(t *testing.T) {
	if ModeStatic.Interactive() {
		t.Error("static mode must not be interactive")
	}
	if !ModeInteractiveOnline.Interactive() || !ModeInteractiveOffline.Interactive() {
		t.Error("both interactive modes must report interactive")
	}
}

func TestModeRoundTrip(t *testing.T) {
	for _, m := range []Mode{ModeStatic, ModeInteractiveOnline, ModeInteractiveOffline} {
		if got := ParseMode(m.String()); got != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), got, m)
		}
	}
}
