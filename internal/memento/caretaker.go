// Package memento хранит снимки истории для отмены и повтора вычислений.
package memento

import (
	"fmt"
	"slices"

	"undoCalc/internal/domain"
)

// Common errors for undo/redo.
var (
	ErrNothingToUndo = fmt.Errorf("%w: nothing to undo", domain.ErrEmptyStack)
	ErrNothingToRedo = fmt.Errorf("%w: nothing to redo", domain.ErrEmptyStack)
)

// Memento — неизменяемый снимок всей истории. Никогда не разделяет память с живой историей.
type Memento struct {
	records []domain.Record
}

// NewMemento делает независимую копию records.
func NewMemento(records []domain.Record) Memento {
	return Memento{records: slices.Clone(records)}
}

// Records возвращает копию снимка.
func (m Memento) Records() []domain.Record {
	return slices.Clone(m.records)
}

// Len возвращает число записей в снимке.
func (m Memento) Len() int {
	return len(m.records)
}

// Caretaker владеет стеками undo и redo.
type Caretaker struct {
	undos []Memento
	redos []Memento

	// maxDepth ограничивает стек undo; 0 — без ограничения.
	maxDepth int
}

// NewCaretaker создаёт хранителя снимков. maxDepth <= 0 — без ограничения глубины.
func NewCaretaker(maxDepth int) *Caretaker {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Caretaker{maxDepth: maxDepth}
}

// Save кладёт снимок state в стек undo и очищает стек redo.
func (c *Caretaker) Save(state []domain.Record) {
	c.pushUndo(NewMemento(state))
	c.redos = nil
}

// CanUndo сообщает, есть ли что отменять.
func (c *Caretaker) CanUndo() bool {
	return len(c.undos) > 0
}

// CanRedo сообщает, есть ли что повторять.
func (c *Caretaker) CanRedo() bool {
	return len(c.redos) > 0
}

// UndoDepth возвращает размер стека undo.
func (c *Caretaker) UndoDepth() int {
	return len(c.undos)
}

// RedoDepth возвращает размер стека redo.
func (c *Caretaker) RedoDepth() int {
	return len(c.redos)
}

// Undo снимает верхний снимок со стека undo, кладёт копию current в стек redo
// и возвращает снятый снимок для установки в качестве текущего состояния.
func (c *Caretaker) Undo(current []domain.Record) ([]domain.Record, error) {
	if len(c.undos) == 0 {
		return nil, ErrNothingToUndo
	}
	m := c.undos[len(c.undos)-1]
	c.undos = c.undos[:len(c.undos)-1]
	c.redos = append(c.redos, NewMemento(current))
	return m.Records(), nil
}

// Redo — зеркальная к Undo операция над стеком redo.
func (c *Caretaker) Redo(current []domain.Record) ([]domain.Record, error) {
	if len(c.redos) == 0 {
		return nil, ErrNothingToRedo
	}
	m := c.redos[len(c.redos)-1]
	c.redos = c.redos[:len(c.redos)-1]
	c.pushUndo(NewMemento(current))
	return m.Records(), nil
}

func (c *Caretaker) pushUndo(m Memento) {
	c.undos = append(c.undos, m)
	if c.maxDepth > 0 && len(c.undos) > c.maxDepth {
		excess := len(c.undos) - c.maxDepth
		c.undos = slices.Clone(c.undos[excess:])
	}
}
