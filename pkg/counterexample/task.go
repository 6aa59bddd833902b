package counterexample

import "fmt"

// Task is an undoable mutation of the model.
type Task struct {
	Name string
	Do   func() error
	Undo func() error
}

// DefaultHistory is the number of tasks a TaskStack remembers.
const DefaultHistory = 100

// TaskStack runs tasks and keeps them for undo and redo.
type TaskStack struct {
	done   []Task
	undone []Task
	limit  int
}

// NewTaskStack returns a stack remembering up to limit tasks.
// A non-positive limit selects DefaultHistory.
func NewTaskStack(limit int) *TaskStack {
	if limit <= 0 {
		limit = DefaultHistory
	}
	return &TaskStack{limit: limit}
}

// Run executes t and records it. The redo history is cleared.
func (s *TaskStack) Run(t Task) error {
	if err := t.Do(); err != nil {
		return fmt.Errorf("%s: %w", t.Name, err)
	}
	s.done = append(s.done, t)
	if len(s.done) > s.limit {
		s.done = s.done[len(s.done)-s.limit:]
	}
	s.undone = nil
	return nil
}

// Undo reverts the last task. It reports false when there is nothing to undo.
func (s *TaskStack) Undo() (bool, error) {
	if len(s.done) == 0 {
		return false, nil
	}
	t := s.done[len(s.done)-1]
	if err := t.Undo(); err != nil {
		return false, fmt.Errorf("undo %s: %w", t.Name, err)
	}
	s.done = s.done[:len(s.done)-1]
	s.undone = append(s.undone, t)
	return true, nil
}

// Redo re-applies the last undone task. It reports false when there is
// nothing to redo.
func (s *TaskStack) Redo() (bool, error) {
	if len(s.undone) == 0 {
		return false, nil
	}
	t := s.undone[len(s.undone)-1]
	if err := t.Do(); err != nil {
		return false, fmt.Errorf("redo %s: %w", t.Name, err)
	}
	s.undone = s.undone[:len(s.undone)-1]
	s.done = append(s.done, t)
	return true, nil
}

// CanUndo reports whether Undo has work to do.
func (s *TaskStack) CanUndo() bool { return len(s.done) > 0 }

// CanRedo reports whether Redo has work to do.
func (s *TaskStack) CanRedo() bool { return len(s.undone) > 0 }
