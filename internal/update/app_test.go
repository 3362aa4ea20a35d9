package update

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/storage"
)

type fakeBackend struct {
	mu sync.Mutex

	tasks     []model.Task
	habits    []model.Habit
	stats     model.Stats
	increment model.Habit
	result    model.ImportResult

	listErr   error
	doneErr   error
	statusErr error

	done     []string
	deleted  []string
	patches  []string
	created  []string
	imported [][]json.RawMessage
}

func (f *fakeBackend) ListTasks(_ context.Context, q api.TaskQuery) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Task, 0, len(f.tasks))
	for _, t := range f.tasks {
		if q.Status != "" && !model.StatusMatches(t.Status, q.Status) {
			continue
		}
		if q.Urgency != "" && t.Urgency != q.Urgency {
			continue
		}
		out = append(out, t)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeBackend) MarkDone(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done = append(f.done, id)
	return f.doneErr
}

func (f *fakeBackend) CreateTask(_ context.Context, title string) (model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, title)
	return model.Task{ID: "new-1", Title: title, Status: model.StatusInbox}, nil
}

func (f *fakeBackend) UpdateStatus(_ context.Context, id, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.patches = append(f.patches, id+"="+status)
	return f.statusErr
}

func (f *fakeBackend) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) ListHabits(context.Context) ([]model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Habit(nil), f.habits...), nil
}

func (f *fakeBackend) IncrementHabit(_ context.Context, id string) (model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h := f.increment
	h.ID = id
	return h, nil
}

func (f *fakeBackend) Import(_ context.Context, items []json.RawMessage) (model.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imported = append(f.imported, items)
	return f.result, nil
}

func (f *fakeBackend) Stats(context.Context) (model.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats, nil
}

func (f *fakeBackend) MoodTrend(context.Context, int) (model.MoodTrend, error) {
	return model.MoodTrend{}, nil
}

func (f *fakeBackend) BadHabits(context.Context) ([]model.NamedCount, error) { return nil, nil }

func (f *fakeBackend) GoodHabits(context.Context) ([]model.DatedCount, error) { return nil, nil }

func (f *fakeBackend) Techniques(context.Context) ([]model.NamedValue, error) { return nil, nil }

func (f *fakeBackend) setStatusErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusErr = err
}

func (f *fakeBackend) snapshot() (done, deleted, patches, created []string, imported int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.done...), append([]string(nil), f.deleted...),
		append([]string(nil), f.patches...), append([]string(nil), f.created...), len(f.imported)
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t-1", Title: "Write report", Status: model.StatusInbox},
		{ID: "t-2", Title: "Book dentist", Status: model.StatusNextAction, Notes: "call before noon"},
		{ID: "t-3", Title: "Old chore", Status: model.StatusDone},
	}
}

func newTestModel(t *testing.T, backend Backend) Model {
	t.Helper()
	return NewModelWithConfig(t.Context(), Deps{Backend: backend}, DefaultRuntimeConfig())
}

func openStore(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "adhdash.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+k":
		return tea.KeyMsg{Type: tea.KeyCtrlK}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func step(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = step(m, keyPress(k))
	}
	return m
}

// collect runs cmd and its batched children, keeping the messages that
// arrive within wait. Timer driven commands are left behind.
func collect(cmd tea.Cmd, wait time.Duration) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c, wait)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(wait):
		return nil
	}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

func toastMessages(m Model) []string {
	var out []string
	for _, tst := range m.toasts.Visible() {
		out = append(out, tst.Message)
	}
	return out
}

func hasToast(m Model, substr string) bool {
	for _, msg := range toastMessages(m) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(nil)
	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected default view %q, got %q", ViewDashboard, m.CurrentView)
	}
	if m.Keys.Quit != "q" || m.Keys.Search != "ctrl+k" || m.Keys.Focus != "f" {
		t.Fatalf("unexpected key map %+v", m.Keys)
	}
	if m.outbox.Enabled() {
		t.Fatal("outbox needs a store and an engine")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := NewModel(nil)
	m = press(m, "2")
	if m.CurrentView != ViewKanban {
		t.Fatalf("expected kanban view, got %q", m.CurrentView)
	}
	m = press(m, "4")
	if m.CurrentView != ViewImport {
		t.Fatalf("expected import view, got %q", m.CurrentView)
	}
	m = press(m, "3")
	if m.CurrentView != ViewAnalytics {
		t.Fatalf("expected analytics view, got %q", m.CurrentView)
	}
	m = press(m, "1")
	if m.CurrentView != ViewDashboard {
		t.Fatalf("expected dashboard view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := NewModel(nil)
	m, _ = step(m, SwitchViewMsg{View: ViewKanban})
	if m.CurrentView != ViewKanban {
		t.Fatalf("expected kanban view, got %q", m.CurrentView)
	}
	m, _ = step(m, SwitchViewMsg{View: View("Unknown")})
	if m.CurrentView != ViewKanban {
		t.Fatalf("expected view unchanged for unknown view, got %q", m.CurrentView)
	}
}

func TestUpdateStatusMsg(t *testing.T) {
	m := NewModel(nil)
	m, _ = step(m, SetStatusMsg{Text: "ready"})
	if m.Status.Text != "ready" || m.Status.IsError {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m := NewModel(nil)
	m, cmd := step(m, keyPress("q"))
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Fatal("quitting model renders nothing")
	}

	m = NewModel(nil)
	m = press(m, "/")
	m, cmd = step(m, keyPress("ctrl+c"))
	if !m.Quitting || cmd == nil {
		t.Fatal("ctrl+c quits even with the palette open")
	}
}

func TestWindowSizeMsg(t *testing.T) {
	m := NewModel(nil)
	m, _ = step(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.Width != 120 || m.Height != 40 {
		t.Fatalf("unexpected size %dx%d", m.Width, m.Height)
	}
}

func TestEscapeClosesEveryModal(t *testing.T) {
	backend := &fakeBackend{tasks: sampleTasks()}
	m := newTestModel(t, backend)
	m = press(m, "?", "/")
	if !m.HelpVisible || !m.PaletteOpen {
		t.Fatalf("expected help and palette open, help=%v palette=%v", m.HelpVisible, m.PaletteOpen)
	}
	m = press(m, "esc")
	if m.HelpVisible || m.PaletteOpen {
		t.Fatal("esc should close help and palette")
	}

	m, cmd := step(m, keyPress("f"))
	if !m.focus.IsOpen() || cmd == nil {
		t.Fatal("f should open focus mode and fetch a task")
	}
	m = press(m, "esc")
	if m.focus.IsOpen() {
		t.Fatal("esc should close focus mode")
	}

	m, _ = step(m, TasksLoadedMsg{Tasks: sampleTasks()})
	m = press(m, "x")
	if _, _, ok := m.confirm.Pending(); !ok {
		t.Fatal("x should ask for confirmation")
	}
	m = press(m, "esc")
	if _, _, ok := m.confirm.Pending(); ok {
		t.Fatal("esc should cancel the confirmation")
	}
}

func TestEscapeCancelsHeldCard(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m, _ = step(m, TasksLoadedMsg{Tasks: sampleTasks()})
	m = press(m, "2", " ")
	if !m.board.Holding() {
		t.Fatal("space should pick the card")
	}
	m = press(m, "l", "esc")
	if m.board.Holding() {
		t.Fatal("esc should put the card back")
	}
	if got := m.board.Columns()[0].Cards; len(got) != 1 || got[0].ID != "t-1" {
		t.Fatalf("card should return to its column, got %+v", got)
	}
}

func TestCtrlKFocusesSearch(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m, _ = step(m, TasksLoadedMsg{Tasks: sampleTasks()})
	m = press(m, "2", "ctrl+k")
	if m.CurrentView != ViewDashboard || !m.SearchActive || !m.searchInput.Focused() {
		t.Fatal("ctrl+k should focus the dashboard search")
	}
	m = press(m, "n", "o", "o", "n")
	if vis := m.tasks.Visible(); len(vis) != 1 || vis[0].Task.ID != "t-2" {
		t.Fatalf("expected notes match, got %+v", vis)
	}
	m = press(m, "1")
	if m.CurrentView != ViewDashboard || m.tasks.Filter() != "noon1" {
		t.Fatal("keys go to the search input while it is focused")
	}
	m = press(m, "enter")
	if m.SearchActive {
		t.Fatal("enter should release the search input")
	}
}

func TestLoadedTasksSplitBetweenDashboardAndBoard(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	if !m.tasksLoading {
		t.Fatal("model with a backend starts loading")
	}
	tasks := append(sampleTasks(), model.Task{ID: "", Title: "broken"})
	m, _ = step(m, TasksLoadedMsg{Tasks: tasks})
	if m.tasksLoading {
		t.Fatal("loading should end")
	}
	if m.tasks.Len() != 2 {
		t.Fatalf("dashboard lists open tasks only, got %d", m.tasks.Len())
	}
	total := 0
	for _, c := range m.board.Columns() {
		total += len(c.Cards)
	}
	if total != 3 {
		t.Fatalf("board carries every valid task, got %d", total)
	}
	view := m.View()
	if !strings.Contains(view, "Write report") || strings.Contains(view, "Old chore") {
		t.Fatal("dashboard should show open tasks only")
	}
}

func TestLoadFailureShowsReason(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m, _ = step(m, TasksLoadedMsg{Err: &api.NetworkError{Op: "list tasks", Err: errors.New("dial tcp: refused")}})
	if !m.Status.IsError || m.Status.Text != "Could not load tasks: server unreachable" {
		t.Fatalf("unexpected status %+v", m.Status)
	}
	if !hasToast(m, "Could not load tasks") {
		t.Fatalf("expected error toast, got %v", toastMessages(m))
	}

	m, _ = step(m, HabitsLoadedMsg{Err: &api.BackendError{Op: "list habits", Message: "notion down"}})
	if m.Status.Text != "Could not load habits: notion down" {
		t.Fatalf("unexpected status %q", m.Status.Text)
	}
}

func TestAnalyticsErrorsAreReportedOnce(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m.analyticsLoading = true
	m, _ = step(m, AnalyticsLoadedMsg{Errs: []error{errors.New("a"), errors.New("b")}})
	if m.analyticsLoading {
		t.Fatal("loading should end")
	}
	if len(toastMessages(m)) != 1 || !strings.HasPrefix(m.Status.Text, "Some charts could not be loaded") {
		t.Fatalf("expected a single error toast, got %v", toastMessages(m))
	}
}

func TestViewSanitizesTerminalEscapes(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m, _ = step(m, TasksLoadedMsg{Tasks: []model.Task{{ID: "t-1", Title: "\x1b[31mred\x1b[0m <script>alert(1)</script>", Status: model.StatusInbox}}})
	view := m.View()
	if strings.Contains(view, "\x1b[31mred") {
		t.Fatal("escape sequences from task titles must not reach the terminal")
	}
	if !strings.Contains(view, "<script>alert(1)</script>") {
		t.Fatal("markup should be shown as literal text")
	}
}

func TestHelpPanelListsViewBindings(t *testing.T) {
	m := newTestModel(t, &fakeBackend{})
	m = press(m, "2", "?")
	if !m.HelpVisible {
		t.Fatal("? toggles help")
	}
	if view := m.View(); !strings.Contains(view, "pick up / drop card") {
		t.Fatal("help should list the kanban bindings")
	}
	m = press(m, "?")
	if m.HelpVisible {
		t.Fatal("? toggles help off")
	}
}
