package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/add pay rent tomorrow", TypeAdd},
		{"done t-1", TypeDone},
		{"DELETE t-2", TypeDelete},
		{"habit h-1", TypeHabit},
		{"move t-1 ✅ Done", TypeMove},
		{"focus", TypeFocus},
		{"import ./tasks.json", TypeImport},
		{"/refresh", TypeRefresh},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseMoveKeepsMultiWordStatus(t *testing.T) {
	cmd, err := Parse("move t-9 🔄 In Progress")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Move.ID != "t-9" || cmd.Move.Status != "🔄 In Progress" {
		t.Fatalf("unexpected move args %+v", cmd.Move)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"add", "done", "done a b", "move t-1", "import", "focus now", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) {
			t.Fatalf("parse %q: expected CommandError, got %v", in, err)
		}
		if ce.Code != ErrCodeInvalidArgument && ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: unexpected code %s", in, ce.Code)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/add write docs")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		Add: func(a AddArgs) (Result, error) {
			called = true
			if a.Title != "write docs" {
				t.Fatalf("unexpected title: %q", a.Title)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	for _, in := range []string{"refresh", "habit h-1", "move t-1 Done"} {
		cmd, err := Parse(in)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		_, err = Execute(cmd, Handlers{})
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
			t.Fatalf("%q: expected missing handler error, got %v", in, err)
		}
	}
}
