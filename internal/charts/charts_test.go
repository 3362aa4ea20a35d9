package charts

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/adhdash/internal/model"
)

type countingDrawer struct {
	drawn   []Spec
	handles []*countingHandle
	err     error
}

type countingHandle struct {
	disposed int
}

func (h *countingHandle) View() string { return "chart" }
func (h *countingHandle) Dispose()     { h.disposed++ }

func (d *countingDrawer) Draw(spec Spec) (Handle, error) {
	if d.err != nil {
		return nil, d.err
	}
	d.drawn = append(d.drawn, spec)
	h := &countingHandle{}
	d.handles = append(d.handles, h)
	return h, nil
}

func TestRegistryDisposesPriorHandle(t *testing.T) {
	d := &countingDrawer{}
	r := NewRegistry(d, TargetMood)
	trend := model.MoodTrend{Labels: []string{"mon", "tue"}, Mood: []float64{5, 7}, Energy: []float64{4, 6}}

	if err := Mood(r, TargetMood, trend); err != nil {
		t.Fatalf("first render: %v", err)
	}
	if err := Mood(r, TargetMood, trend); err != nil {
		t.Fatalf("second render: %v", err)
	}
	if len(d.handles) != 2 {
		t.Fatalf("expected two draws, got %d", len(d.handles))
	}
	if d.handles[0].disposed != 1 || d.handles[1].disposed != 0 {
		t.Fatalf("expected first handle disposed once, got %d/%d", d.handles[0].disposed, d.handles[1].disposed)
	}

	r.Close()
	if d.handles[1].disposed != 1 || r.Has(TargetMood) {
		t.Fatal("close should dispose the live handle")
	}
}

func TestRegistryIgnoresUnknownTargetsAndEmptyData(t *testing.T) {
	d := &countingDrawer{}
	r := NewRegistry(d, TargetContext)
	if err := Context(r, "missing", map[string]int{"home": 1}); err != nil {
		t.Fatalf("unknown target: %v", err)
	}
	if err := Context(r, TargetContext, nil); err != nil {
		t.Fatalf("empty data: %v", err)
	}
	if err := Mood(r, TargetContext, model.MoodTrend{}); err != nil {
		t.Fatalf("empty mood: %v", err)
	}
	if len(d.drawn) != 0 {
		t.Fatalf("expected no draws, got %d", len(d.drawn))
	}

	var nilRegistry *Registry
	if err := nilRegistry.Render(TargetContext, Spec{Labels: []string{"a"}}); err != nil || nilRegistry.View(TargetContext) != "" {
		t.Fatal("nil registry should be a no-op")
	}
}

func TestRegistryKeepsHandleOnDrawError(t *testing.T) {
	d := &countingDrawer{}
	r := NewRegistry(d, TargetEnergy)
	_ = Energy(r, TargetEnergy, map[string]int{"high": 1})
	d.err = errors.New("boom")
	if err := Energy(r, TargetEnergy, map[string]int{"low": 2}); err == nil {
		t.Fatal("expected draw error")
	}
	if d.handles[0].disposed != 0 || r.View(TargetEnergy) != "chart" {
		t.Fatal("failed draw must not dispose the live chart")
	}
}

func TestRendererSpecs(t *testing.T) {
	d := &countingDrawer{}
	r := NewRegistry(d, AllTargets()...)

	_ = Quadrant(r, TargetQuadrant, map[string]int{"1": 3, "4": 1, "9": 7})
	_ = Energy(r, TargetEnergy, map[string]int{"medium": 2})
	_ = Context(r, TargetContext, map[string]int{"work": 2, "home": 5})
	_ = BadHabits(r, TargetBadHabits, []model.NamedCount{{Name: "doomscroll", Count: 4}})
	_ = GoodHabits(r, TargetGoodHabits, []model.DatedCount{{Date: "2026-02-08", Count: 2}})
	_ = Techniques(r, TargetTechniques, []model.NamedValue{{Name: "pomodoro", Value: 8.5}})

	if len(d.drawn) != 6 {
		t.Fatalf("expected six charts, got %d", len(d.drawn))
	}
	quad := d.drawn[0]
	if quad.Kind != KindDoughnut || len(quad.Labels) != 4 {
		t.Fatalf("unexpected quadrant spec: %+v", quad)
	}
	want := []float64{3, 0, 0, 1}
	for i, v := range want {
		if quad.Datasets[0].Values[i] != v {
			t.Fatalf("quadrant values %v, want %v", quad.Datasets[0].Values, want)
		}
	}
	energy := d.drawn[1].Datasets[0].Values
	if energy[0] != 0 || energy[1] != 2 || energy[2] != 0 {
		t.Fatalf("unexpected energy values %v", energy)
	}
	ctx := d.drawn[2]
	if ctx.Kind != KindBar || ctx.Labels[0] != "home" || ctx.Datasets[0].Values[0] != 5 {
		t.Fatalf("context labels should be sorted keys: %+v", ctx)
	}
	if d.drawn[3].Kind != KindHorizontalBar || d.drawn[4].Kind != KindLine || d.drawn[5].Kind != KindPie {
		t.Fatal("unexpected chart kinds")
	}
}

func TestDailySeriesFillsGaps(t *testing.T) {
	end := time.Date(2026, 2, 9, 18, 0, 0, 0, time.UTC)
	s := DailySeries([]model.DatedCount{{Date: "2026-02-07", Count: 2}, {Date: "2026-02-09", Count: 1}, {Date: "2026-01-01", Count: 9}}, end, 7)
	if len(s.Labels) != 7 || s.Labels[0] != "02-03" || s.Labels[6] != "02-09" {
		t.Fatalf("unexpected labels %v", s.Labels)
	}
	if s.Values[4] != 2 || s.Values[5] != 0 || s.Values[6] != 1 {
		t.Fatalf("unexpected values %v", s.Values)
	}
}

func TestTerminalDrawer(t *testing.T) {
	d := TerminalDrawer{Width: 60}
	kinds := []Kind{KindLine, KindBar, KindHorizontalBar, KindPie, KindDoughnut}
	for _, k := range kinds {
		h, err := d.Draw(Spec{Kind: k, Title: "t", Labels: []string{"a", "b"}, Datasets: []Dataset{{Label: "x", Values: []float64{1, 3}}}})
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		view := h.View()
		if !strings.Contains(view, "t") || view == "" {
			t.Fatalf("%s: empty view", k)
		}
		h.Dispose()
		if h.View() != "" {
			t.Fatalf("%s: disposed handle still renders", k)
		}
	}
	if _, err := d.Draw(Spec{Kind: KindBar}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if _, err := d.Draw(Spec{Kind: "radar", Labels: []string{"a"}, Datasets: []Dataset{{Values: []float64{1}}}}); err == nil {
		t.Fatal("expected unknown kind error")
	}
}

func TestSparkScale(t *testing.T) {
	if spark(0, 0, 10) != '▁' || spark(10, 0, 10) != '█' || spark(5, 5, 5) != '▁' {
		t.Fatal("unexpected spark scaling")
	}
}
