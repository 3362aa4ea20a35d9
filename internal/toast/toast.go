package toast

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindInfo, KindSuccess, KindError, KindWarning:
		return true
	default:
		return false
	}
}

const (
	DefaultDuration = 3 * time.Second
	FadeDuration    = 300 * time.Millisecond
)

type Phase int

const (
	PhaseVisible Phase = iota
	PhaseFading
)

type Toast struct {
	ID       int
	Message  string
	Kind     Kind
	Duration time.Duration
	Phase    Phase
}

type FadeMsg struct{ ID int }

type ExpireMsg struct{ ID int }

// Stack holds the live toasts. A nil *Stack swallows every call.
type Stack struct {
	nextID int
	items  []Toast
}

func NewStack() *Stack {
	return &Stack{nextID: 1}
}

func (s *Stack) Notify(message string, kind Kind, d time.Duration) tea.Cmd {
	if s == nil {
		return nil
	}
	message = strings.TrimSpace(ansi.Strip(message))
	if message == "" {
		return nil
	}
	if !kind.IsValid() {
		kind = KindInfo
	}
	if d <= 0 {
		d = DefaultDuration
	}
	id := s.nextID
	s.nextID++
	s.items = append(s.items, Toast{ID: id, Message: message, Kind: kind, Duration: d, Phase: PhaseVisible})
	return tea.Tick(d, func(time.Time) tea.Msg { return FadeMsg{ID: id} })
}

func (s *Stack) Info(message string) tea.Cmd    { return s.Notify(message, KindInfo, 0) }
func (s *Stack) Success(message string) tea.Cmd { return s.Notify(message, KindSuccess, 0) }
func (s *Stack) Error(message string) tea.Cmd   { return s.Notify(message, KindError, 0) }
func (s *Stack) Warning(message string) tea.Cmd { return s.Notify(message, KindWarning, 0) }

// Update advances toast lifecycles. handled is false for foreign messages.
func (s *Stack) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	if s == nil {
		return nil, false
	}
	switch typed := msg.(type) {
	case FadeMsg:
		for i := range s.items {
			if s.items[i].ID == typed.ID && s.items[i].Phase == PhaseVisible {
				s.items[i].Phase = PhaseFading
				id := typed.ID
				return tea.Tick(FadeDuration, func(time.Time) tea.Msg { return ExpireMsg{ID: id} }), true
			}
		}
		return nil, true
	case ExpireMsg:
		s.remove(typed.ID)
		return nil, true
	}
	return nil, false
}

func (s *Stack) remove(id int) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

func (s *Stack) Visible() []Toast {
	if s == nil {
		return nil
	}
	out := make([]Toast, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Stack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}
