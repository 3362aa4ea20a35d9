package update

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/adhdash/internal/actions"
	"github.com/sandeepkv93/adhdash/internal/celebrate"
	"github.com/sandeepkv93/adhdash/internal/charts"
	"github.com/sandeepkv93/adhdash/internal/focus"
	"github.com/sandeepkv93/adhdash/internal/importer"
	"github.com/sandeepkv93/adhdash/internal/kanban"
	"github.com/sandeepkv93/adhdash/internal/model"
	"github.com/sandeepkv93/adhdash/internal/scheduler"
	"github.com/sandeepkv93/adhdash/internal/storage"
	"github.com/sandeepkv93/adhdash/internal/timer"
	"github.com/sandeepkv93/adhdash/internal/toast"
)

type View string

const (
	ViewDashboard View = "Dashboard"
	ViewKanban    View = "Kanban"
	ViewAnalytics View = "Analytics"
	ViewImport    View = "Import"
)

const (
	MoodDays      = 7
	TasksDoneDays = 7
	chartWidth    = 40
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Kanban    string
	Analytics string
	Import    string
	Focus     string
	Search    string
	Palette   string
	Help      string
	Quit      string
}

// Backend is the REST surface the dashboard drives. *api.Client implements it.
type Backend interface {
	focus.Backend
	CreateTask(ctx context.Context, title string) (model.Task, error)
	UpdateStatus(ctx context.Context, id, status string) error
	DeleteTask(ctx context.Context, id string) error
	ListHabits(ctx context.Context) ([]model.Habit, error)
	IncrementHabit(ctx context.Context, id string) (model.Habit, error)
	Import(ctx context.Context, items []json.RawMessage) (model.ImportResult, error)
	Stats(ctx context.Context) (model.Stats, error)
	MoodTrend(ctx context.Context, days int) (model.MoodTrend, error)
	BadHabits(ctx context.Context) ([]model.NamedCount, error)
	GoodHabits(ctx context.Context) ([]model.DatedCount, error)
	Techniques(ctx context.Context) ([]model.NamedValue, error)
}

// Deps are the collaborators built by main. Store and Engine are optional.
type Deps struct {
	Backend  Backend
	Store    storage.Repository
	Engine   *scheduler.Engine
	Signaler timer.Signaler
	Logger   *slog.Logger
}

type Model struct {
	CurrentView  View
	Status       StatusBar
	Keys         GlobalKeyMap
	HelpVisible  bool
	PaletteOpen  bool
	SearchActive bool
	Quitting     bool
	LastError    error
	Width        int
	Height       int

	ctx     context.Context
	cfg     RuntimeConfig
	logger  *slog.Logger
	backend Backend
	store   storage.Repository
	engine  *scheduler.Engine

	toasts  *toast.Stack
	effects *celebrate.Effect
	focus   *focus.Controller
	tasks   *actions.TaskList
	habits  *actions.HabitBoard
	confirm *actions.Confirm
	board   *kanban.Board
	outbox  *kanban.Outbox
	charts  *charts.Registry
	imports *importer.Pipeline

	stats            model.Stats
	tasksLoading     bool
	tasksErr         string
	analyticsLoading bool
	focusSummary     *FocusSummary
	focusNotes       string
	importCursor     int
	importEditing    bool
	spinning         bool
	doneSource       map[string]storage.CompletionSource

	searchInput    textinput.Model
	commandInput   textinput.Model
	importArea     textarea.Model
	previewTable   table.Model
	resultViewport viewport.Model
	busySpinner    spinner.Model
	focusProgress  progress.Model
	helpModel      help.Model
}

type TasksLoadedMsg struct {
	Tasks []model.Task
	Err   error
}

type HabitsLoadedMsg struct {
	Habits []model.Habit
	Err    error
}

type StatsLoadedMsg struct {
	Stats model.Stats
	Err   error
}

type AnalyticsLoadedMsg struct {
	Mood       model.MoodTrend
	BadHabits  []model.NamedCount
	GoodHabits []model.DatedCount
	Techniques []model.NamedValue
	TasksDone  model.Series
	Focus      *FocusSummary
	Errs       []error
}

// FocusSummary totals the focus sessions journaled in the analytics window.
type FocusSummary struct {
	Sessions  int
	Completed int
	Expired   int
	Seconds   int
}

func summarizeFocus(sessions []storage.FocusSession) FocusSummary {
	var s FocusSummary
	for _, fs := range sessions {
		s.Sessions++
		s.Seconds += fs.DurationSec
		switch fs.Outcome {
		case storage.OutcomeCompleted:
			s.Completed++
		case storage.OutcomeExpired:
			s.Expired++
		}
	}
	return s
}

type TaskCreatedMsg struct {
	Task model.Task
	Err  error
}

type ImportFileMsg struct {
	Path    string
	Content string
	Err     error
}

type RetryDueMsg struct {
	Event scheduler.Event
}

type FocusJournaledMsg struct {
	Err error
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

func NewModel(backend Backend) Model {
	return NewModelWithConfig(context.Background(), Deps{Backend: backend}, DefaultRuntimeConfig())
}

func NewModelWithConfig(ctx context.Context, deps Deps, cfg RuntimeConfig) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	signaler := deps.Signaler
	if signaler == nil {
		signaler = timer.NoopSignaler{}
	}
	sessionSec := cfg.SessionSec()
	if sessionSec <= 0 {
		sessionSec = timer.DefaultSessionSec
	}

	m := Model{
		CurrentView: ViewDashboard,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Kanban:    "2",
			Analytics: "3",
			Import:    "4",
			Focus:     "f",
			Search:    "ctrl+k",
			Palette:   "/",
			Help:      "?",
			Quit:      "q",
		},
		ctx:        ctx,
		cfg:        cfg,
		logger:     logger,
		backend:    deps.Backend,
		store:      deps.Store,
		engine:     deps.Engine,
		toasts:     toast.NewStack(),
		effects:    celebrate.New(cfg.Celebrations, logger),
		focus:      focus.New(deps.Backend, timer.New(sessionSec, signaler, logger), logger),
		tasks:      actions.NewTaskList(),
		habits:     actions.NewHabitBoard(),
		confirm:    &actions.Confirm{},
		board:      kanban.NewBoard(cfg.KanbanColumns),
		charts:     charts.NewRegistry(charts.TerminalDrawer{Width: chartWidth}, charts.AllTargets()...),
		imports:    importer.NewPipeline(),
		doneSource: make(map[string]storage.CompletionSource),
	}
	m.tasksLoading = deps.Backend != nil
	if deps.Store != nil && deps.Engine != nil {
		m.outbox = kanban.NewOutbox(deps.Store, deps.Engine, cfg.RetryBackoff, cfg.RetryMaxAttempts, logger)
	}
	m.initBubbleComponents()
	return m
}

func (m *Model) initBubbleComponents() {
	m.searchInput = textinput.New()
	m.searchInput.Prompt = "🔍 "
	m.searchInput.Placeholder = "search tasks (ctrl+k)"
	m.searchInput.CharLimit = 128
	m.searchInput.Width = 40

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.importArea = textarea.New()
	m.importArea.SetWidth(72)
	m.importArea.SetHeight(8)
	m.importArea.ShowLineNumbers = false
	m.importArea.Placeholder = `paste JSON: {"tasks": [{"title": "..."}]}`
	m.importArea.CharLimit = 0

	cols := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Title", Width: 28},
		{Title: "Badges", Width: 30},
		{Title: "Notes", Width: importer.PreviewNotesWidth},
	}
	m.previewTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(8))

	m.resultViewport = viewport.New(72, 6)

	m.busySpinner = spinner.New()
	m.busySpinner.Spinner = spinner.Dot

	m.focusProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	m.helpModel = help.New()
}

// journal returns the completion journal, or nil when no store is configured.
func (m Model) journal() actions.CompletionJournal {
	if m.store == nil {
		return nil
	}
	return m.store
}
