package timer

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var ErrVibrateUnsupported = errors.New("timer: vibration not supported")

// Signaler delivers end-of-session cues. Both calls are best effort.
type Signaler interface {
	Chime() error
	Vibrate(pattern []time.Duration) error
}

type NoopSignaler struct{}

func (NoopSignaler) Chime() error                  { return nil }
func (NoopSignaler) Vibrate([]time.Duration) error { return ErrVibrateUnsupported }

// BellSignaler rings the terminal bell.
type BellSignaler struct {
	W io.Writer
}

func (b BellSignaler) Chime() error {
	if b.W == nil {
		return errors.New("timer: no terminal for bell")
	}
	_, err := io.WriteString(b.W, "\a")
	return err
}

func (BellSignaler) Vibrate([]time.Duration) error { return ErrVibrateUnsupported }

type DesktopSignaler struct {
	Title string
	Body  string
	run   func(name string, args ...string) error
}

func NewDesktopSignaler(title, body string) DesktopSignaler {
	return DesktopSignaler{Title: title, Body: body, run: runCommand}
}

func (d DesktopSignaler) Chime() error {
	run := d.run
	if run == nil {
		run = runCommand
	}
	switch runtime.GOOS {
	case "linux":
		return run("notify-send", d.Title, d.Body)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(d.Body), escapeAppleScript(d.Title))
		return run("osascript", "-e", script)
	default:
		return nil
	}
}

func (DesktopSignaler) Vibrate([]time.Duration) error { return ErrVibrateUnsupported }

// MultiSignaler fans out to every signaler and joins the failures.
type MultiSignaler []Signaler

func (m MultiSignaler) Chime() error {
	var errs []error
	for _, s := range m {
		if err := s.Chime(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSignaler) Vibrate(pattern []time.Duration) error {
	var errs []error
	supported := false
	for _, s := range m {
		err := s.Vibrate(pattern)
		switch {
		case err == nil:
			supported = true
		case errors.Is(err, ErrVibrateUnsupported):
		default:
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 && !supported {
		return ErrVibrateUnsupported
	}
	return errors.Join(errs...)
}

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
