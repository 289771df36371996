// Package quiz keeps the summary quiz's hidden/shown answers.
package quiz

import (
	"errors"
	"fmt"
)

// ErrUnknownItem is returned for ids that are not on the board.
var ErrUnknownItem = errors.New("unknown quiz item")

// Item is one question with its answer.
type Item struct {
	ID       string
	Question string
	Answer   string
	Icon     string
}

// View is what a learner sees; Answer is empty until revealed.
type View struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Icon     string `json:"icon,omitempty"`
	Revealed bool   `json:"revealed"`
	Answer   string `json:"answer,omitempty"`
}

// Board holds items in display order. It is not safe for concurrent use;
// the owning session serialises access.
type Board struct {
	items    []Item
	revealed map[string]bool
}

// NewBoard returns a board with every answer hidden.
func NewBoard(items []Item) *Board {
	return &Board{
		items:    append([]Item(nil), items...),
		revealed: make(map[string]bool, len(items)),
	}
}

// Toggle flips one item and returns whether it is now shown.
func (b *Board) Toggle(id string) (bool, error) {
	if !b.has(id) {
		return false, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	b.revealed[id] = !b.revealed[id]
	return b.revealed[id], nil
}

// Revealed reports whether an item's answer is shown.
func (b *Board) Revealed(id string) bool {
	return b.revealed[id]
}

// Views lists items in order, hiding answers that are not revealed.
func (b *Board) Views() []View {
	out := make([]View, 0, len(b.items))
	for _, it := range b.items {
		v := View{ID: it.ID, Question: it.Question, Icon: it.Icon, Revealed: b.revealed[it.ID]}
		if v.Revealed {
			v.Answer = it.Answer
		}
		out = append(out, v)
	}
	return out
}

func (b *Board) has(id string) bool {
	for _, it := range b.items {
		if it.ID == id {
			return true
		}
	}
	return false
}
