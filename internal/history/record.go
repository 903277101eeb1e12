package history

import (
	"fmt"
	"image"
)

// State tells whether a record is currently applied.
type State int

const (
	// StateUndo marks an applied record, at or before the cursor.
	StateUndo State = iota
	// StateRedo marks an undone record, after the cursor.
	StateRedo
)

// String returns "undo" or "redo".
func (s State) String() string {
	switch s {
	case StateUndo:
		return "undo"
	case StateRedo:
		return "redo"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Payload reverses and reapplies one edit.
//
// Undo and Redo are called alternately, starting with Undo, and must restore
// exactly the pixels that were present before and after the edit.
type Payload interface {
	Undo()
	Redo()

	// Bounds is the canvas area touched by Undo and Redo.
	Bounds() image.Rectangle

	// Bytes is the memory held by the payload.
	Bytes() int
}

// Record is one entry of the edit log. Icon and Label are display metadata.
// The base record of a stack has no payload.
type Record struct {
	ID      uint64
	Icon    string
	Label   string
	State   State
	Payload Payload
}

// Bounds returns the payload bounds, or the empty rectangle.
func (r Record) Bounds() image.Rectangle {
	if r.Payload == nil {
		return image.Rectangle{}
	}
	return r.Payload.Bounds()
}

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind int

const (
	Pushed ChangeKind = iota
	Undone
	Redone
	Reset
)

// String returns the lower-case name of the kind.
func (k ChangeKind) String() string {
	switch k {
	case Pushed:
		return "pushed"
	case Undone:
		return "undone"
	case Redone:
		return "redone"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is emitted after every successful mutation. Record is the entry
// that was pushed, undone or redone, or the new base after a reset.
type Change struct {
	Kind    ChangeKind
	Pointer int
	Record  Record
}
