package charts

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

type Kind string

const (
	KindLine          Kind = "line"
	KindBar           Kind = "bar"
	KindHorizontalBar Kind = "horizontal_bar"
	KindPie           Kind = "pie"
	KindDoughnut      Kind = "doughnut"
)

var ErrNoData = errors.New("charts: no data")

type Dataset struct {
	Label  string
	Values []float64
}

type Spec struct {
	Kind     Kind
	Title    string
	Labels   []string
	Datasets []Dataset
	// Fixed value axis; used when Max > Min.
	Min float64
	Max float64
}

func (s Spec) Empty() bool {
	if len(s.Labels) == 0 {
		return true
	}
	for _, d := range s.Datasets {
		if len(d.Values) > 0 {
			return false
		}
	}
	return true
}

// Handle is a drawn chart. Dispose releases it; a disposed handle renders
// nothing.
type Handle interface {
	View() string
	Dispose()
}

type Drawer interface {
	Draw(spec Spec) (Handle, error)
}

// Registry keeps at most one live chart per target.
type Registry struct {
	mu      sync.Mutex
	drawer  Drawer
	targets map[string]Handle
}

func NewRegistry(drawer Drawer, targets ...string) *Registry {
	r := &Registry{drawer: drawer, targets: make(map[string]Handle, len(targets))}
	for _, t := range targets {
		r.targets[t] = nil
	}
	return r
}

// Render draws spec into target, disposing whatever was there. Unknown
// targets and empty specs are ignored.
func (r *Registry) Render(target string, spec Spec) error {
	if r == nil || r.drawer == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.targets[target]
	if !ok || spec.Empty() {
		return nil
	}
	h, err := r.drawer.Draw(spec)
	if err != nil {
		return fmt.Errorf("draw %s: %w", target, err)
	}
	if prev != nil {
		prev.Dispose()
	}
	r.targets[target] = h
	return nil
}

func (r *Registry) View(target string) string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h := r.targets[target]; h != nil {
		return h.View()
	}
	return ""
}

func (r *Registry) Has(target string) bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.targets[target] != nil
}

func (r *Registry) Targets() []string {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.targets))
	for t := range r.targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Close disposes every live chart.
func (r *Registry) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, h := range r.targets {
		if h != nil {
			h.Dispose()
		}
		r.targets[t] = nil
	}
}
