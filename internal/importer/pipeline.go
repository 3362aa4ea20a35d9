package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/api"
	"github.com/sandeepkv93/adhdash/internal/model"
)

type State int

const (
	StateEmpty State = iota
	StatePreview
	StateSubmitting
	StateResult
)

func (s State) String() string {
	switch s {
	case StatePreview:
		return "preview"
	case StateSubmitting:
		return "submitting"
	case StateResult:
		return "result"
	default:
		return "empty"
	}
}

const (
	IdleLabel = "📤 Import Tasks"
	BusyLabel = "⏳ Importing..."
)

// Item is one parsed task. Raw is sent to the backend untouched.
type Item struct {
	Title      string
	Status     string
	Category   string
	Importance string
	Urgency    string
	Energy     string
	Time       string
	Notes      string
	QuickWin   bool
	Context    []string
	Raw        json.RawMessage
}

type PreviewRow struct {
	Index  int
	Title  string
	Badges []string
	Notes  string
}

type Importer interface {
	Import(ctx context.Context, items []json.RawMessage) (model.ImportResult, error)
}

type SubmittedMsg struct {
	Result model.ImportResult
	Err    error
}

// Pipeline owns the import batch. Only one submission runs at a time.
type Pipeline struct {
	state      State
	input      string
	items      []Item
	result     *model.ImportResult
	submitting bool
	lastErr    error
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) SetInput(raw string) { p.input = raw }
func (p *Pipeline) Input() string       { return p.input }
func (p *Pipeline) State() State        { return p.state }
func (p *Pipeline) Len() int            { return len(p.items) }
func (p *Pipeline) LastErr() error      { return p.lastErr }

func (p *Pipeline) Items() []Item {
	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out
}

func (p *Pipeline) Result() (model.ImportResult, bool) {
	if p.result == nil {
		return model.ImportResult{}, false
	}
	return *p.result, true
}

// Parse replaces the batch with the tasks found in raw. On failure the batch
// is cleared and the pipeline returns to the empty state.
func (p *Pipeline) Parse(raw string) error {
	p.input = raw
	items, err := ParseBatch(raw)
	if err != nil {
		p.items = nil
		p.state = StateEmpty
		p.lastErr = err
		return err
	}
	p.items = items
	p.result = nil
	p.lastErr = nil
	p.state = StatePreview
	return nil
}

func ParseBatch(raw string) ([]Item, error) {
	data := bytes.TrimSpace([]byte(raw))
	if len(data) == 0 {
		return nil, &ValidationError{Err: ErrParse, Detail: "input is empty"}
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &ValidationError{Err: ErrParse, Detail: err.Error()}
	}

	var list []json.RawMessage
	switch v := decoded.(type) {
	case []any:
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, &ValidationError{Err: ErrParse, Detail: err.Error()}
		}
	case map[string]any:
		if _, ok := v["tasks"].([]any); !ok {
			return nil, &ValidationError{Err: ErrFormat}
		}
		var wrapped struct {
			Tasks []json.RawMessage `json:"tasks"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, &ValidationError{Err: ErrParse, Detail: err.Error()}
		}
		list = wrapped.Tasks
	default:
		return nil, &ValidationError{Err: ErrFormat}
	}
	if len(list) == 0 {
		return nil, &ValidationError{Err: ErrEmptyBatch}
	}

	items := make([]Item, 0, len(list))
	for i, rawItem := range list {
		var fields map[string]any
		if err := json.Unmarshal(rawItem, &fields); err != nil || fields == nil {
			return nil, &ValidationError{Err: ErrFormat, Detail: fmt.Sprintf("item %d is not an object", i+1)}
		}
		items = append(items, itemFromFields(fields, rawItem))
	}
	return items, nil
}

func itemFromFields(fields map[string]any, raw json.RawMessage) Item {
	item := Item{
		Title:      text(fields["title"]),
		Status:     text(fields["status"]),
		Category:   text(fields["category"]),
		Importance: text(fields["importance"]),
		Urgency:    text(fields["urgency"]),
		Energy:     text(fields["energy"]),
		Time:       text(fields["time"]),
		Notes:      text(fields["notes"]),
		Raw:        append(json.RawMessage(nil), raw...),
	}
	if qw, ok := fields["quick_win"].(bool); ok {
		item.QuickWin = qw
	}
	switch ctx := fields["context"].(type) {
	case string:
		if ctx != "" {
			item.Context = []string{ctx}
		}
	case []any:
		for _, c := range ctx {
			if s := text(c); s != "" {
				item.Context = append(item.Context, s)
			}
		}
	}
	return item
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

// Remove drops the item at index. It reports whether the batch became empty.
func (p *Pipeline) Remove(index int) bool {
	if p.state != StatePreview || index < 0 || index >= len(p.items) {
		return false
	}
	p.items = append(p.items[:index], p.items[index+1:]...)
	if len(p.items) == 0 {
		p.items = nil
		p.state = StateEmpty
		return true
	}
	return false
}

func (p *Pipeline) Preview() []PreviewRow {
	if p.state != StatePreview && p.state != StateSubmitting {
		return nil
	}
	rows := make([]PreviewRow, 0, len(p.items))
	for i, item := range p.items {
		title := Sanitize(item.Title)
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		var badges []string
		for _, b := range []string{item.Status, item.Importance, item.Urgency, item.Energy} {
			if b = Sanitize(b); b != "" {
				badges = append(badges, b)
			}
		}
		if item.QuickWin {
			badges = append(badges, "⚡ Quick Win")
		}
		rows = append(rows, PreviewRow{
			Index:  i + 1,
			Title:  title,
			Badges: badges,
			Notes:  Truncate(Sanitize(item.Notes), PreviewNotesWidth),
		})
	}
	return rows
}

// SubmitEnabled reports whether the control accepts input. An empty batch
// still enables it; Submit rejects that case.
func (p *Pipeline) SubmitEnabled() bool {
	return !p.submitting
}

func (p *Pipeline) SubmitLabel() string {
	if p.submitting {
		return BusyLabel
	}
	return IdleLabel
}

func (p *Pipeline) Submitting() bool { return p.submitting }

// Submit posts the batch. The control stays disabled until Finish.
func (p *Pipeline) Submit(ctx context.Context, imp Importer) (tea.Cmd, error) {
	if len(p.items) == 0 {
		return nil, &ValidationError{Err: ErrEmptyBatch}
	}
	if p.submitting {
		return nil, ErrBusy
	}
	p.submitting = true
	p.state = StateSubmitting
	raws := make([]json.RawMessage, len(p.items))
	for i, item := range p.items {
		raws[i] = item.Raw
	}
	return func() tea.Msg {
		res, err := imp.Import(ctx, raws)
		return SubmittedMsg{Result: res, Err: err}
	}, nil
}

// Finish applies the submission outcome and always re-enables the control.
func (p *Pipeline) Finish(msg SubmittedMsg) error {
	defer func() {
		p.submitting = false
	}()
	if msg.Err != nil {
		p.lastErr = msg.Err
		if len(p.items) > 0 {
			p.state = StatePreview
		} else {
			p.state = StateEmpty
		}
		return msg.Err
	}
	res := msg.Result
	p.result = &res
	p.input = ""
	p.items = nil
	p.lastErr = nil
	p.state = StateResult
	return nil
}

func (p *Pipeline) Clear() {
	p.input = ""
	p.items = nil
	p.result = nil
	p.lastErr = nil
	p.state = StateEmpty
}

// FailureText is the user facing message for a failed submission.
func FailureText(err error) string {
	switch {
	case err == nil:
		return ""
	case api.IsBackend(err):
		if msg := api.BackendMessage(err); msg != "" {
			return Sanitize(msg)
		}
		return "Import failed"
	case api.IsNetwork(err):
		return "Could not reach the server"
	default:
		return Sanitize(err.Error())
	}
}

func ResultTitle(res model.ImportResult) string {
	if res.Failed == 0 {
		return "✅ Import succeeded"
	}
	return "⚠️ Import finished with errors"
}

func Sample() string {
	return `{
  "tasks": [
    {
      "title": "Reply to the important email",
      "status": "▶️ Next Action",
      "context": ["📧 Email"],
      "energy": "🪶 Low Focus",
      "importance": "🔴 High",
      "urgency": "🚨 Urgent",
      "time": "🕐 15 min",
      "quick_win": true,
      "notes": "Email from the project manager"
    },
    {
      "title": "Plan next week",
      "status": "▶️ Next Action",
      "context": ["🤔 Thinking", "📝 Writing"],
      "energy": "🔥 High Focus",
      "importance": "🔴 High",
      "urgency": "⏰ Soon",
      "time": "🕑 30 min",
      "quick_win": false
    },
    {
      "title": "Buy office supplies",
      "status": "💭 Someday/Maybe",
      "context": ["🛒 Shopping"],
      "energy": "🪶 Low Focus",
      "importance": "🟢 Low",
      "urgency": "📅 Normal",
      "time": "🕓 1 hour"
    }
  ]
}`
}
