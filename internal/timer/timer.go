package timer

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultSessionSec = 25 * 60
	WarningBelowSec   = 5 * 60
	CriticalBelowSec  = 60
)

var VibratePattern = []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "normal"
	}
}

var (
	normalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warningStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	criticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Blink(true)
)

func (l Level) Style() lipgloss.Style {
	switch l {
	case LevelWarning:
		return warningStyle
	case LevelCritical:
		return criticalStyle
	default:
		return normalStyle
	}
}

func StyleFor(remainingSec int) Level {
	switch {
	case remainingSec < CriticalBelowSec:
		return LevelCritical
	case remainingSec < WarningBelowSec:
		return LevelWarning
	default:
		return LevelNormal
	}
}

type TickMsg struct {
	Generation int
}

// Pomodoro is a countdown with a single live tick source. Every Start opens a
// new generation; ticks from older generations are dropped.
type Pomodoro struct {
	sessionSec   int
	remainingSec int
	running      bool
	generation   int
	signaler     Signaler
	logger       *slog.Logger
}

func New(sessionSec int, signaler Signaler, logger *slog.Logger) *Pomodoro {
	if sessionSec <= 0 {
		sessionSec = DefaultSessionSec
	}
	if signaler == nil {
		signaler = NoopSignaler{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pomodoro{
		sessionSec:   sessionSec,
		remainingSec: sessionSec,
		signaler:     signaler,
		logger:       logger,
	}
}

func (p *Pomodoro) Start() tea.Cmd {
	if p.running {
		return nil
	}
	if p.remainingSec <= 0 {
		p.remainingSec = p.sessionSec
	}
	p.running = true
	p.generation++
	return tickCmd(p.generation)
}

func (p *Pomodoro) Pause() {
	p.running = false
	p.generation++
}

func (p *Pomodoro) Reset() {
	p.Pause()
	p.remainingSec = p.sessionSec
}

func (p *Pomodoro) Toggle() tea.Cmd {
	if p.running {
		p.Pause()
		return nil
	}
	return p.Start()
}

// Update consumes a tick. expired is true exactly once per session, on the
// tick that reaches zero; the returned command then fires the signals.
func (p *Pomodoro) Update(msg TickMsg) (cmd tea.Cmd, expired bool) {
	if !p.running || msg.Generation != p.generation {
		return nil, false
	}
	if p.remainingSec > 0 {
		p.remainingSec--
	}
	if p.remainingSec > 0 {
		return tickCmd(p.generation), false
	}
	p.Pause()
	return p.signalCmd(), true
}

func (p *Pomodoro) signalCmd() tea.Cmd {
	signaler := p.signaler
	logger := p.logger
	return func() tea.Msg {
		if err := signaler.Chime(); err != nil {
			logger.Warn("timer chime failed", "error", err)
		}
		if err := signaler.Vibrate(VibratePattern); err != nil {
			logger.Debug("timer vibrate unavailable", "error", err)
		}
		return nil
	}
}

func (p *Pomodoro) Running() bool      { return p.running }
func (p *Pomodoro) Remaining() int     { return p.remainingSec }
func (p *Pomodoro) SessionSec() int    { return p.sessionSec }
func (p *Pomodoro) Generation() int    { return p.generation }
func (p *Pomodoro) Level() Level       { return StyleFor(p.remainingSec) }
func (p *Pomodoro) Display() string    { return FormatClock(p.remainingSec) }
func (p *Pomodoro) Signaler() Signaler { return p.signaler }

func (p *Pomodoro) Progress() float64 {
	if p.sessionSec <= 0 {
		return 0
	}
	done := float64(p.sessionSec-p.remainingSec) / float64(p.sessionSec)
	switch {
	case done < 0:
		return 0
	case done > 1:
		return 1
	default:
		return done
	}
}

func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

func tickCmd(generation int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return TickMsg{Generation: generation} })
}
