package celebrate

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

type Intensity string

const (
	Small Intensity = "small"
	Large Intensity = "large"
)

const (
	fps          = 30
	maxLifetime  = 3 * fps
	minSpeed     = 18.0
	maxSpeed     = 42.0
	defaultAngle = 90.0
)

// Burst is one emission of particles. Angle is in degrees, 90 pointing up.
// Origin coordinates are fractions of the canvas.
type Burst struct {
	Count   int
	Angle   float64
	Spread  float64
	OriginX float64
	OriginY float64
	Delay   time.Duration
}

func Plan(intensity Intensity) []Burst {
	if intensity == Large {
		return []Burst{
			{Count: 100, Angle: defaultAngle, Spread: 70, OriginX: 0.5, OriginY: 0.6},
			{Count: 50, Angle: 60, Spread: 55, OriginX: 0, OriginY: 0.6, Delay: 200 * time.Millisecond},
			{Count: 50, Angle: 120, Spread: 55, OriginX: 1, OriginY: 0.6, Delay: 400 * time.Millisecond},
		}
	}
	return []Burst{{Count: 30, Angle: defaultAngle, Spread: 50, OriginX: 0.5, OriginY: 0.7}}
}

type BurstMsg struct {
	Burst Burst
}

type FrameMsg struct{}

type particle struct {
	projectile *harmonica.Projectile
	pos        harmonica.Point
	glyph      string
	color      lipgloss.Color
	age        int
}

var (
	glyphs  = []string{"*", "+", "•", "✦", "o", "~"}
	palette = []lipgloss.Color{"#ff4d6d", "#ffd166", "#06d6a0", "#118ab2", "#c77dff", "#f78c6b"}
)

// Effect is a particle celebration drawn over the dashboard. A single frame
// loop runs while any particle is alive.
type Effect struct {
	enabled   bool
	width     int
	height    int
	particles []particle
	animating bool
	rng       *rand.Rand
	logger    *slog.Logger
}

func New(enabled bool, logger *slog.Logger) *Effect {
	now := uint64(time.Now().UnixNano())
	return NewSeeded(enabled, logger, now, now>>1)
}

func NewSeeded(enabled bool, logger *slog.Logger, seed1, seed2 uint64) *Effect {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Effect{
		enabled: enabled,
		rng:     rand.New(rand.NewPCG(seed1, seed2)),
		logger:  logger,
	}
}

func (e *Effect) Resize(width, height int) {
	e.width = width
	e.height = height
}

// Celebrate schedules the bursts for intensity. It returns nil when the
// effect cannot be shown.
func (e *Effect) Celebrate(intensity Intensity) tea.Cmd {
	if e == nil {
		return nil
	}
	if !e.enabled {
		e.logger.Warn("celebration skipped", "reason", "disabled", "intensity", string(intensity))
		return nil
	}
	if e.width <= 0 || e.height <= 0 {
		e.logger.Warn("celebration skipped", "reason", "no canvas", "intensity", string(intensity))
		return nil
	}
	bursts := Plan(intensity)
	cmds := make([]tea.Cmd, 0, len(bursts))
	for _, b := range bursts {
		burst := b
		if burst.Delay <= 0 {
			cmds = append(cmds, func() tea.Msg { return BurstMsg{Burst: burst} })
			continue
		}
		cmds = append(cmds, tea.Tick(burst.Delay, func(time.Time) tea.Msg { return BurstMsg{Burst: burst} }))
	}
	return tea.Batch(cmds...)
}

func (e *Effect) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	if e == nil {
		return nil, false
	}
	switch typed := msg.(type) {
	case BurstMsg:
		e.spawn(typed.Burst)
		return e.ensureLoop(), true
	case FrameMsg:
		return e.step(), true
	}
	return nil, false
}

func (e *Effect) ensureLoop() tea.Cmd {
	if e.animating || len(e.particles) == 0 {
		return nil
	}
	e.animating = true
	return frameCmd()
}

func (e *Effect) spawn(b Burst) {
	if e.width <= 0 || e.height <= 0 {
		return
	}
	origin := harmonica.Point{X: b.OriginX * float64(e.width-1), Y: b.OriginY * float64(e.height-1)}
	angle := b.Angle
	if angle == 0 {
		angle = defaultAngle
	}
	for range b.Count {
		deg := angle + (e.rng.Float64()-0.5)*b.Spread
		rad := deg * math.Pi / 180
		speed := minSpeed + e.rng.Float64()*(maxSpeed-minSpeed)
		velocity := harmonica.Vector{X: math.Cos(rad) * speed, Y: -math.Sin(rad) * speed * 0.5}
		e.particles = append(e.particles, particle{
			projectile: harmonica.NewProjectile(harmonica.FPS(fps), origin, velocity, harmonica.TerminalGravity),
			pos:        origin,
			glyph:      glyphs[e.rng.IntN(len(glyphs))],
			color:      palette[e.rng.IntN(len(palette))],
		})
	}
}

func (e *Effect) step() tea.Cmd {
	alive := e.particles[:0]
	for _, p := range e.particles {
		p.pos = p.projectile.Update()
		p.age++
		if p.age > maxLifetime || p.pos.Y >= float64(e.height) || p.pos.X < -1 || p.pos.X > float64(e.width) {
			continue
		}
		alive = append(alive, p)
	}
	e.particles = alive
	if len(e.particles) == 0 {
		e.animating = false
		return nil
	}
	return frameCmd()
}

func (e *Effect) Active() bool {
	return e != nil && len(e.particles) > 0
}

func (e *Effect) Particles() int {
	if e == nil {
		return 0
	}
	return len(e.particles)
}

// View draws live particles on a blank canvas of the current size.
func (e *Effect) View() string {
	if !e.Active() {
		return ""
	}
	grid := make([][]string, e.height)
	for y := range grid {
		grid[y] = make([]string, e.width)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}
	for _, p := range e.particles {
		x, y := int(math.Round(p.pos.X)), int(math.Round(p.pos.Y))
		if x < 0 || y < 0 || x >= e.width || y >= e.height {
			continue
		}
		grid[y][x] = lipgloss.NewStyle().Foreground(p.color).Render(p.glyph)
	}
	rows := make([]string, len(grid))
	for y, row := range grid {
		rows[y] = strings.Join(row, "")
	}
	return strings.Join(rows, "\n")
}

func frameCmd() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}
