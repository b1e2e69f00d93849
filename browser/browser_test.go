package browser

import (
	"context"
	"testing"
	"time"
)

func TestKnownPresets(t *testing.T) {
	for _, name := range []string{"wifi", "regular4g", "good3g", "regular3g", "offline"} {
		if !IsKnownPreset(name) {
			t.Errorf("IsKnownPreset(%q) = false", name)
		}
	}
	if IsKnownPreset("5g") {
		t.Error("IsKnownPreset(\"5g\") = true")
	}
}

func TestWaitSettleCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := WaitSettle(ctx, time.Minute); err == nil {
		t.Error("WaitSettle should return the context error when cancelled")
	}
}

func TestWaitSettleZero(t *testing.T) {
	if err := WaitSettle(context.Background(), 0); err != nil {
		t.Errorf("WaitSettle(0) = %v", err)
	}
}
