package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingID    = errors.New("model: task id is required")
	ErrMissingTitle = errors.New("model: task title is required")
)

const (
	StatusInbox      = "📥 Inbox"
	StatusNextAction = "▶️ Next Action"
	StatusInProgress = "🔄 In Progress"
	StatusWaiting    = "⏳ Waiting"
	StatusDone       = "✅ Done"
	StatusSomeday    = "💭 Someday/Maybe"
)

const UrgencyUrgent = "Urgent"

func DefaultStatuses() []string {
	return []string{StatusInbox, StatusNextAction, StatusInProgress, StatusWaiting, StatusDone, StatusSomeday}
}

// StatusMatches reports whether a backend status names the same column as
// label. Notion statuses carry an emoji prefix that the client may omit.
func StatusMatches(status, label string) bool {
	a := bareStatus(status)
	b := bareStatus(label)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

func bareStatus(s string) string {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r < 0x2000 {
			return strings.TrimSpace(s[i:])
		}
	}
	return ""
}

type Task struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	Category   string     `json:"category,omitempty"`
	Importance string     `json:"importance,omitempty"`
	Urgency    string     `json:"urgency,omitempty"`
	Energy     string     `json:"energy,omitempty"`
	Time       string     `json:"time,omitempty"`
	QuickWin   bool       `json:"quick_win,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Context    StringList `json:"context,omitempty"`
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: %s", ErrMissingTitle, t.ID)
	}
	return nil
}

func (t Task) IsDone() bool {
	return StatusMatches(t.Status, StatusDone)
}

// Label is the category line shown under a task title.
func (t Task) Label() string {
	if strings.TrimSpace(t.Category) != "" {
		return t.Category
	}
	return t.Status
}

// StringList decodes either a JSON string or a list of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if strings.TrimSpace(single) == "" {
		*l = nil
		return nil
	}
	*l = StringList{single}
	return nil
}

type Habit struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Counter int    `json:"counter"`
	Streak  int    `json:"streak"`
}
