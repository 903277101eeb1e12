package history

import "errors"

// Boundary errors. These are not fatal: the stack is unchanged when they
// are returned.
var (
	// ErrNothingToUndo indicates that the cursor is already at the base record.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates that the cursor is already at the newest record.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrIndexOutOfRange indicates a JumpTo target outside the stack.
	ErrIndexOutOfRange = errors.New("history index out of range")
)
