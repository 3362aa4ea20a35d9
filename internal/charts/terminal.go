package charts

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	legendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	seriesColor = []lipgloss.Color{"#E74C3C", "#2ECC71", "#F39C12", "#3498DB", "#9B59B6", "#1ABC9C", "#95A5A6", "#E67E22"}
	sparkRunes  = []rune("▁▂▃▄▅▆▇█")
)

const labelWidth = 16

// TerminalDrawer renders charts as styled text blocks.
type TerminalDrawer struct {
	Width int
}

func (d TerminalDrawer) Draw(spec Spec) (Handle, error) {
	if spec.Empty() {
		return nil, ErrNoData
	}
	width := d.Width
	if width < 20 {
		width = 40
	}
	var body string
	switch spec.Kind {
	case KindLine:
		body = drawLine(spec)
	case KindBar, KindHorizontalBar:
		body = drawBars(spec, width)
	case KindPie, KindDoughnut:
		body = drawShares(spec, width)
	default:
		return nil, fmt.Errorf("charts: unknown kind %q", spec.Kind)
	}
	if spec.Title != "" {
		body = titleStyle.Render(spec.Title) + "\n" + body
	}
	return &textHandle{view: body}, nil
}

type textHandle struct {
	view     string
	disposed bool
}

func (h *textHandle) View() string {
	if h.disposed {
		return ""
	}
	return h.view
}

func (h *textHandle) Dispose() { h.disposed = true }

func drawLine(spec Spec) string {
	var b strings.Builder
	for i, ds := range spec.Datasets {
		lo, hi := bounds(spec, ds.Values)
		line := make([]rune, len(ds.Values))
		for j, v := range ds.Values {
			line[j] = spark(v, lo, hi)
		}
		style := lipgloss.NewStyle().Foreground(seriesColor[i%len(seriesColor)])
		label := ds.Label
		if label == "" {
			label = "series"
		}
		fmt.Fprintf(&b, "%s %s\n", pad(label, labelWidth), style.Render(string(line)))
	}
	if n := len(spec.Labels); n > 0 {
		fmt.Fprintf(&b, "%s %s … %s", pad("", labelWidth), legendStyle.Render(spec.Labels[0]), legendStyle.Render(spec.Labels[n-1]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func drawBars(spec Spec, width int) string {
	values := spec.Datasets[0].Values
	_, hi := bounds(spec, values)
	barWidth := width - labelWidth - 8
	if barWidth < 4 {
		barWidth = 4
	}
	var b strings.Builder
	for i, label := range spec.Labels {
		v := valueAt(values, i)
		n := 0
		if hi > 0 {
			n = int(math.Round(v / hi * float64(barWidth)))
		}
		style := lipgloss.NewStyle().Foreground(seriesColor[0])
		if spec.Kind == KindHorizontalBar {
			style = lipgloss.NewStyle().Foreground(seriesColor[i%len(seriesColor)])
		}
		fmt.Fprintf(&b, "%s %s %s\n", pad(label, labelWidth), style.Render(strings.Repeat("█", n)), formatValue(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func drawShares(spec Spec, width int) string {
	values := spec.Datasets[0].Values
	total := 0.0
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	strip := width - 2
	glyph := "█"
	if spec.Kind == KindDoughnut {
		glyph = "▓"
	}
	var bar strings.Builder
	var legend strings.Builder
	used := 0
	for i, label := range spec.Labels {
		v := valueAt(values, i)
		style := lipgloss.NewStyle().Foreground(seriesColor[i%len(seriesColor)])
		share := 0.0
		if total > 0 && v > 0 {
			share = v / total
		}
		n := int(math.Round(share * float64(strip)))
		if i == len(spec.Labels)-1 && total > 0 {
			n = strip - used
		}
		if n < 0 {
			n = 0
		}
		used += n
		bar.WriteString(style.Render(strings.Repeat(glyph, n)))
		fmt.Fprintf(&legend, "%s %s %s (%.0f%%)\n", style.Render("■"), pad(label, labelWidth), formatValue(v), share*100)
	}
	return bar.String() + "\n" + strings.TrimRight(legend.String(), "\n")
}

func bounds(spec Spec, values []float64) (float64, float64) {
	if spec.Max > spec.Min {
		return spec.Min, spec.Max
	}
	lo, hi := 0.0, 0.0
	for i, v := range values {
		if i == 0 || v < lo {
			lo = v
		}
		if i == 0 || v > hi {
			hi = v
		}
	}
	if lo > 0 {
		lo = 0
	}
	return lo, hi
}

func spark(v, lo, hi float64) rune {
	if hi <= lo {
		return sparkRunes[0]
	}
	frac := (v - lo) / (hi - lo)
	idx := int(math.Round(frac * float64(len(sparkRunes)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sparkRunes) {
		idx = len(sparkRunes) - 1
	}
	return sparkRunes[idx]
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func pad(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if w := ansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}
