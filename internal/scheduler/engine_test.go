package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineEmitsInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC()
	if err := engine.Schedule(Event{ID: "later", Kind: KindMoveRetry, Key: "t-2", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Event{ID: "sooner", Kind: KindMoveRetry, Key: "t-1", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitEvent(t, engine.C(), time.Second)
	second := waitEvent(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
	if first.Key != "t-1" || first.Kind != KindMoveRetry {
		t.Fatalf("event fields lost: %+v", first)
	}
}

func TestEngineKeepsInsertionOrderForEqualTriggers(t *testing.T) {
	engine := NewEngine(8)
	at := time.Now().UTC().Add(10 * time.Millisecond)
	for _, id := range []string{"a", "b", "c"} {
		if err := engine.Schedule(Event{ID: id, TriggerAt: at}); err != nil {
			t.Fatalf("schedule %s: %v", id, err)
		}
	}
	engine.Start()
	defer engine.Stop()

	for _, want := range []string{"a", "b", "c"} {
		if got := waitEvent(t, engine.C(), time.Second); got.ID != want {
			t.Fatalf("expected %s, got %s", want, got.ID)
		}
	}
}

func TestAfterSchedulesRelativeToNow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	if err := engine.After(15*time.Millisecond, Event{ID: "retry", Kind: KindMoveRetry, Attempt: 2}); err != nil {
		t.Fatalf("after: %v", err)
	}
	if engine.Pending() != 1 {
		t.Fatalf("expected one pending event, got %d", engine.Pending())
	}
	ev := waitEvent(t, engine.C(), time.Second)
	if ev.Attempt != 2 || ev.TriggerAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEngineNonBlockingDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	now := time.Now().UTC().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Event{
			ID:        "evt",
			Kind:      KindMoveRetry,
			TriggerAt: now,
		}); err != nil {
			t.Fatalf("schedule event: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped events > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Event{ID: "bad"}); err != ErrInvalidTriggerTime {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestScheduleAfterStopFails(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()
	if err := engine.After(time.Millisecond, Event{ID: "late"}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected closed channel after stop")
	}
}

func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for event")
		return Event{}
	}
}
