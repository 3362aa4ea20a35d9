package celebrate

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPlan(t *testing.T) {
	large := Plan(Large)
	if len(large) != 3 {
		t.Fatalf("expected three bursts, got %d", len(large))
	}
	if large[0].Count != 100 || large[0].Spread != 70 || large[0].OriginY != 0.6 || large[0].Delay != 0 {
		t.Fatalf("unexpected primary burst: %+v", large[0])
	}
	if large[1].Count != 50 || large[1].Angle != 60 || large[1].OriginX != 0 || large[1].Delay != 200*time.Millisecond {
		t.Fatalf("unexpected left burst: %+v", large[1])
	}
	if large[2].Count != 50 || large[2].Angle != 120 || large[2].OriginX != 1 || large[2].Delay != 400*time.Millisecond {
		t.Fatalf("unexpected right burst: %+v", large[2])
	}

	small := Plan(Small)
	if len(small) != 1 || small[0].Count != 30 || small[0].Spread != 50 || small[0].OriginY != 0.7 {
		t.Fatalf("unexpected small plan: %+v", small)
	}
}

func TestCelebrateDisabledWarnsAndReturnsNil(t *testing.T) {
	var buf bytes.Buffer
	e := NewSeeded(false, slog.New(slog.NewTextHandler(&buf, nil)), 1, 2)
	e.Resize(80, 24)
	if cmd := e.Celebrate(Large); cmd != nil {
		t.Fatal("disabled effect should return nil")
	}
	if !strings.Contains(buf.String(), "celebration skipped") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}

	enabled := NewSeeded(true, nil, 1, 2)
	if cmd := enabled.Celebrate(Small); cmd != nil {
		t.Fatal("zero-size canvas should return nil")
	}

	var nilEffect *Effect
	if cmd := nilEffect.Celebrate(Small); cmd != nil {
		t.Fatal("nil effect should return nil")
	}
}

func TestBurstsShareOneFrameLoop(t *testing.T) {
	e := NewSeeded(true, nil, 7, 9)
	e.Resize(60, 20)
	if cmd := e.Celebrate(Small); cmd == nil {
		t.Fatal("expected burst command")
	}

	cmd, handled := e.Update(BurstMsg{Burst: Plan(Small)[0]})
	if !handled || cmd == nil {
		t.Fatal("first burst should start the frame loop")
	}
	if e.Particles() != 30 {
		t.Fatalf("expected 30 particles, got %d", e.Particles())
	}
	if cmd, _ := e.Update(BurstMsg{Burst: Plan(Large)[1]}); cmd != nil {
		t.Fatal("second burst must not start another frame loop")
	}
	if e.Particles() != 80 {
		t.Fatalf("expected 80 particles, got %d", e.Particles())
	}
	if e.View() == "" {
		t.Fatal("expected particles drawn")
	}

	for i := 0; i < maxLifetime+2 && e.Active(); i++ {
		e.Update(FrameMsg{})
	}
	if e.Active() {
		t.Fatalf("particles should expire, %d left", e.Particles())
	}
	if e.View() != "" {
		t.Fatal("expected empty view once finished")
	}
	if cmd, _ := e.Update(BurstMsg{Burst: Plan(Small)[0]}); cmd == nil {
		t.Fatal("a new burst after the loop ended should restart it")
	}
}
