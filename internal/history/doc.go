// Package history implements the linear undo/redo log for canvas edits.
//
// A Stack starts with a base record that cannot be undone. Push appends
// after the cursor and discards any undone records, Undo and Redo move the
// cursor one step, and JumpTo walks it to an arbitrary index. Undo at the
// base returns ErrNothingToUndo and Redo at the newest record returns
// ErrNothingToRedo; neither changes the stack.
//
// Edits are reversed by snapshot, not by inverting the operation:
// RegionSnapshot stores the before and after pixels of the edited rectangle,
// so any sequence of Undo and Redo reproduces identical bytes.
//
// # Thread Safety
//
// Stack is safe for concurrent use. Mutators are serialized; readers such
// as Records and Pointer may run alongside each other. Payload Undo and
// Redo run under the stack lock.
package history
