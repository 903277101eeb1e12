package history

import "sync"

// Stack is a linear edit log with a cursor.
//
// Records at or before the cursor are applied; records after it have been
// undone and can be redone. Index 0 holds the base record (for example
// "Open Image"), which can never be undone.
type Stack struct {
	mu       sync.RWMutex
	records  []Record
	pointer  int
	nextID   uint64
	limit    int
	listener func(Change)
}

// Option configures a Stack.
type Option func(*Stack)

// WithListener registers fn to receive every Change. fn runs synchronously
// on the mutating goroutine after the stack lock is released, so it may
// read the stack.
func WithListener(fn func(Change)) Option {
	return func(s *Stack) {
		s.listener = fn
	}
}

// WithLimit caps the number of records kept. Once a push exceeds n the
// oldest records are dropped and the next one becomes the base. n <= 1 means
// no limit.
func WithLimit(n int) Option {
	return func(s *Stack) {
		if n > 1 {
			s.limit = n
		}
	}
}

// New creates a stack holding only base.
func New(base Record, opts ...Option) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	s.reset(base)
	return s
}

func (s *Stack) reset(base Record) Record {
	s.nextID++
	base.ID = s.nextID
	base.State = StateUndo
	base.Payload = nil
	s.records = []Record{base}
	s.pointer = 0
	return base
}

func (s *Stack) emit(changes ...Change) {
	if s.listener == nil {
		return
	}
	for _, c := range changes {
		s.listener(c)
	}
}

// Push appends r after the cursor and moves the cursor onto it. Any undone
// records are discarded first; there is no branching history.
//
// Returns the stored record, with its ID assigned.
func (s *Stack) Push(r Record) Record {
	s.mu.Lock()
	for i := s.pointer + 1; i < len(s.records); i++ {
		s.records[i] = Record{}
	}
	s.records = s.records[:s.pointer+1]

	s.nextID++
	r.ID = s.nextID
	r.State = StateUndo
	s.records = append(s.records, r)
	s.pointer++

	if s.limit > 0 && len(s.records) > s.limit {
		drop := len(s.records) - s.limit
		kept := make([]Record, s.limit)
		copy(kept, s.records[drop:])
		kept[0].Payload = nil
		s.records = kept
		s.pointer -= drop
	}

	change := Change{Kind: Pushed, Pointer: s.pointer, Record: r}
	s.mu.Unlock()

	s.emit(change)
	return r
}

// Undo reverses the record at the cursor and moves the cursor back.
//
// Returns the undone record, or ErrNothingToUndo at the base record.
func (s *Stack) Undo() (Record, error) {
	s.mu.Lock()
	r, err := s.undoLocked()
	if err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	change := Change{Kind: Undone, Pointer: s.pointer, Record: r}
	s.mu.Unlock()

	s.emit(change)
	return r, nil
}

func (s *Stack) undoLocked() (Record, error) {
	if s.pointer == 0 {
		return Record{}, ErrNothingToUndo
	}
	rec := &s.records[s.pointer]
	if rec.Payload != nil {
		rec.Payload.Undo()
	}
	rec.State = StateRedo
	s.pointer--
	return *rec, nil
}

// Redo reapplies the record after the cursor and moves the cursor onto it.
//
// Returns the redone record, or ErrNothingToRedo at the newest record.
func (s *Stack) Redo() (Record, error) {
	s.mu.Lock()
	r, err := s.redoLocked()
	if err != nil {
		s.mu.Unlock()
		return Record{}, err
	}
	change := Change{Kind: Redone, Pointer: s.pointer, Record: r}
	s.mu.Unlock()

	s.emit(change)
	return r, nil
}

func (s *Stack) redoLocked() (Record, error) {
	if s.pointer == len(s.records)-1 {
		return Record{}, ErrNothingToRedo
	}
	s.pointer++
	rec := &s.records[s.pointer]
	if rec.Payload != nil {
		rec.Payload.Redo()
	}
	rec.State = StateUndo
	return *rec, nil
}

// JumpTo undoes or redoes one record at a time until the cursor reaches
// index, as clicking an entry in a history list does.
//
// Returns the records that were undone or redone, in order.
func (s *Stack) JumpTo(index int) ([]Record, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return nil, ErrIndexOutOfRange
	}

	var moved []Record
	var changes []Change
	for s.pointer < index {
		r, _ := s.redoLocked()
		moved = append(moved, r)
		changes = append(changes, Change{Kind: Redone, Pointer: s.pointer, Record: r})
	}
	for s.pointer > index {
		r, _ := s.undoLocked()
		moved = append(moved, r)
		changes = append(changes, Change{Kind: Undone, Pointer: s.pointer, Record: r})
	}
	s.mu.Unlock()

	s.emit(changes...)
	return moved, nil
}

// Clear discards every record and starts over from base.
func (s *Stack) Clear(base Record) {
	s.mu.Lock()
	b := s.reset(base)
	change := Change{Kind: Reset, Pointer: 0, Record: b}
	s.mu.Unlock()

	s.emit(change)
}

// Pointer returns the cursor index.
func (s *Stack) Pointer() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointer
}

// Current returns the record at the cursor.
func (s *Stack) Current() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records[s.pointer]
}

// Len returns the number of records, including the base.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Records returns a copy of the log for display.
func (s *Stack) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// CanUndo reports whether Undo would succeed.
func (s *Stack) CanUndo() bool {
	return s.Pointer() > 0
}

// CanRedo reports whether Redo would succeed.
func (s *Stack) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointer < len(s.records)-1
}

// Bytes returns the memory held by all payloads.
func (s *Stack) Bytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, r := range s.records {
		if r.Payload != nil {
			n += r.Payload.Bytes()
		}
	}
	return n
}
