package toast

import (
	"testing"
	"time"
)

func TestNotifyLifecycle(t *testing.T) {
	cases := []struct {
		message string
		kind    Kind
		d       time.Duration
	}{
		{"saved", KindSuccess, 0},
		{"network down", KindError, 5 * time.Second},
		{"no task selected", KindWarning, time.Millisecond},
		{"moved", KindInfo, 4 * time.Second},
	}
	for _, tc := range cases {
		s := NewStack()
		cmd := s.Notify(tc.message, tc.kind, tc.d)
		if cmd == nil {
			t.Fatalf("%q: expected fade command", tc.message)
		}
		if s.Len() != 1 {
			t.Fatalf("%q: expected exactly one toast, got %d", tc.message, s.Len())
		}
		id := s.Visible()[0].ID

		next, handled := s.Update(FadeMsg{ID: id})
		if !handled || next == nil {
			t.Fatalf("%q: expected fade to schedule expiry", tc.message)
		}
		if s.Visible()[0].Phase != PhaseFading {
			t.Fatalf("%q: expected fading phase", tc.message)
		}

		if _, handled := s.Update(ExpireMsg{ID: id}); !handled {
			t.Fatalf("%q: expire not handled", tc.message)
		}
		if s.Len() != 0 {
			t.Fatalf("%q: expected zero toasts after expiry, got %d", tc.message, s.Len())
		}
	}
}

func TestNotifyDefaultsAndIndependence(t *testing.T) {
	s := NewStack()
	s.Notify("first", Kind("bogus"), 0)
	s.Notify("second", KindSuccess, 0)

	items := s.Visible()
	if len(items) != 2 {
		t.Fatalf("expected two overlapping toasts, got %d", len(items))
	}
	if items[0].Kind != KindInfo || items[0].Duration != DefaultDuration {
		t.Fatalf("unexpected defaults: %+v", items[0])
	}

	s.Update(FadeMsg{ID: items[0].ID})
	s.Update(ExpireMsg{ID: items[0].ID})
	left := s.Visible()
	if len(left) != 1 || left[0].Message != "second" || left[0].Phase != PhaseVisible {
		t.Fatalf("expiring one toast touched the other: %+v", left)
	}
}

func TestNilStackIsNoop(t *testing.T) {
	var s *Stack
	if cmd := s.Notify("hello", KindInfo, 0); cmd != nil {
		t.Fatal("expected nil command from nil stack")
	}
	if _, handled := s.Update(FadeMsg{ID: 1}); handled {
		t.Fatal("nil stack should not claim messages")
	}
	if s.Len() != 0 || s.Visible() != nil {
		t.Fatal("nil stack should be empty")
	}
}

func TestNotifyStripsTerminalEscapes(t *testing.T) {
	s := NewStack()
	s.Notify("\x1b[31mred\x1b[0m <b>bold</b>", KindInfo, 0)
	if got := s.Visible()[0].Message; got != "red <b>bold</b>" {
		t.Fatalf("unexpected sanitized message: %q", got)
	}
}
