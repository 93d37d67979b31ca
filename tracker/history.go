package tracker

import "github.com/vsariola/acidbox"

// maxUndo is the depth of the undo and redo stacks.
const maxUndo = 64

// history keeps the previous versions of the pattern. Consecutive edits of
// the same kind on the same step (e.g. transposing a note one semitone at a
// time) are merged into one undo step.
type history struct {
	undoStack []acidbox.Pattern
	redoStack []acidbox.Pattern
	prevKind  string
}

// save records the pattern as it was before a change of the given kind. An
// empty kind is never merged.
func (h *history) save(before acidbox.Pattern, kind string) {
	h.redoStack = h.redoStack[:0]
	if kind != "" && kind == h.prevKind {
		return
	}
	h.prevKind = kind
	h.undoStack = push(h.undoStack, before)
}

func (h *history) undo(current acidbox.Pattern) (acidbox.Pattern, bool) {
	if len(h.undoStack) == 0 {
		return current, false
	}
	h.redoStack = push(h.redoStack, current)
	p := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.prevKind = ""
	return p, true
}

func (h *history) redo(current acidbox.Pattern) (acidbox.Pattern, bool) {
	if len(h.redoStack) == 0 {
		return current, false
	}
	h.undoStack = push(h.undoStack, current)
	p := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.prevKind = ""
	return p, true
}

func push(stack []acidbox.Pattern, p acidbox.Pattern) []acidbox.Pattern {
	stack = append(stack, p)
	if len(stack) > maxUndo {
		copy(stack, stack[len(stack)-maxUndo:])
		stack = stack[:maxUndo]
	}
	return stack
}
