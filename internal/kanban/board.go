package kanban

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/adhdash/internal/model"
)

type Column struct {
	Status string
	Cards  []model.Task
}

// Move is a card that landed in a different column.
type Move struct {
	TaskID string
	Title  string
	From   string
	To     string
}

type StatusPatcher interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

type SyncedMsg struct {
	Move Move
	Err  error
}

type held struct {
	card model.Task
	from int
	row  int
}

// Board lays tasks out by status. A picked card travels with the column
// cursor until it is dropped or cancelled.
type Board struct {
	columns []Column
	col     int
	row     int
	holding *held
}

func NewBoard(statuses []string) *Board {
	if len(statuses) == 0 {
		statuses = model.DefaultStatuses()
	}
	cols := make([]Column, 0, len(statuses))
	for _, s := range statuses {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		cols = append(cols, Column{Status: s})
	}
	return &Board{columns: cols}
}

// Load replaces every card. Tasks whose status matches no column land in the
// first column.
func (b *Board) Load(tasks []model.Task) {
	for i := range b.columns {
		b.columns[i].Cards = nil
	}
	if len(b.columns) == 0 {
		return
	}
	for _, task := range tasks {
		idx := b.columnFor(task.Status)
		if idx < 0 {
			idx = 0
		}
		b.columns[idx].Cards = append(b.columns[idx].Cards, task)
	}
	b.holding = nil
	b.clampRow()
}

func (b *Board) columnFor(status string) int {
	for i, c := range b.columns {
		if c.Status == status {
			return i
		}
	}
	for i, c := range b.columns {
		if model.StatusMatches(status, c.Status) {
			return i
		}
	}
	return -1
}

func (b *Board) Columns() []Column {
	out := make([]Column, len(b.columns))
	for i, c := range b.columns {
		out[i] = Column{Status: c.Status, Cards: append([]model.Task(nil), c.Cards...)}
	}
	return out
}

func (b *Board) Cursor() (col, row int) { return b.col, b.row }
func (b *Board) Holding() bool          { return b.holding != nil }

func (b *Board) Held() (model.Task, bool) {
	if b.holding == nil {
		return model.Task{}, false
	}
	return b.holding.card, true
}

func (b *Board) Selected() (model.Task, bool) {
	if b.col < 0 || b.col >= len(b.columns) {
		return model.Task{}, false
	}
	cards := b.columns[b.col].Cards
	if b.row < 0 || b.row >= len(cards) {
		return model.Task{}, false
	}
	return cards[b.row], true
}

func (b *Board) Left() {
	if b.col > 0 {
		b.col--
		b.clampRow()
	}
}

func (b *Board) Right() {
	if b.col < len(b.columns)-1 {
		b.col++
		b.clampRow()
	}
}

func (b *Board) Up() {
	if b.row > 0 {
		b.row--
	}
}

func (b *Board) Down() {
	if b.col < len(b.columns) && b.row < len(b.columns[b.col].Cards)-1 {
		b.row++
	}
}

func (b *Board) clampRow() {
	if b.col >= len(b.columns) {
		b.row = 0
		return
	}
	n := len(b.columns[b.col].Cards)
	if b.holding != nil {
		n++
	}
	if b.row >= n {
		b.row = n - 1
	}
	if b.row < 0 {
		b.row = 0
	}
}

// Pick lifts the card under the cursor.
func (b *Board) Pick() bool {
	if b.holding != nil {
		return false
	}
	card, ok := b.Selected()
	if !ok {
		return false
	}
	cards := b.columns[b.col].Cards
	b.columns[b.col].Cards = append(cards[:b.row:b.row], cards[b.row+1:]...)
	b.holding = &held{card: card, from: b.col, row: b.row}
	return true
}

// Drop lands the held card in the current column. A Move is reported only
// when the column changed.
func (b *Board) Drop() (Move, bool) {
	if b.holding == nil {
		return Move{}, false
	}
	h := b.holding
	b.holding = nil
	card := h.card
	target := b.col
	if target != h.from {
		card.Status = b.columns[target].Status
	}
	b.insert(target, b.row, card)
	if target == h.from {
		return Move{}, false
	}
	return Move{
		TaskID: card.ID,
		Title:  card.Title,
		From:   b.columns[h.from].Status,
		To:     b.columns[target].Status,
	}, true
}

// Cancel puts the held card back where it was picked.
func (b *Board) Cancel() {
	if b.holding == nil {
		return
	}
	h := b.holding
	b.holding = nil
	b.insert(h.from, h.row, h.card)
	b.col = h.from
	b.row = h.row
	b.clampRow()
}

func (b *Board) insert(col, row int, card model.Task) {
	cards := b.columns[col].Cards
	if row < 0 {
		row = 0
	}
	if row > len(cards) {
		row = len(cards)
	}
	cards = append(cards, model.Task{})
	copy(cards[row+1:], cards[row:])
	cards[row] = card
	b.columns[col].Cards = cards
	b.row = row
}

// MoveTask relocates a task by id without the cursor, as the palette does.
func (b *Board) MoveTask(id, status string) (Move, bool) {
	target := b.columnFor(status)
	if target < 0 {
		return Move{}, false
	}
	for ci, c := range b.columns {
		for ri, card := range c.Cards {
			if card.ID != id {
				continue
			}
			if ci == target {
				return Move{}, false
			}
			b.columns[ci].Cards = append(c.Cards[:ri:ri], c.Cards[ri+1:]...)
			card.Status = b.columns[target].Status
			b.columns[target].Cards = append(b.columns[target].Cards, card)
			b.clampRow()
			return Move{TaskID: id, Title: card.Title, From: c.Status, To: card.Status}, true
		}
	}
	return Move{}, false
}

// Sync issues exactly one status update for the move.
func Sync(ctx context.Context, patcher StatusPatcher, move Move) tea.Cmd {
	return func() tea.Msg {
		return SyncedMsg{Move: move, Err: patcher.UpdateStatus(ctx, move.TaskID, move.To)}
	}
}
