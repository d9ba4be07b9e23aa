package shader

// Slot holds the current State and owns the program inside it. Only the
// rendering goroutine touches a Slot.
type Slot struct {
	current State
}

func NewSlot() *Slot {
	return &Slot{current: NotProvided{}}
}

func (s *Slot) State() State {
	return s.current
}

func (s *Slot) Program() (*Program, bool) {
	return AsProgram(s.current)
}

// Replace installs next and releases the program of the state it replaces.
// A failed load therefore leaves no program behind: the previous one is not
// kept as a fallback.
func (s *Slot) Replace(next State) State {
	if next == nil {
		next = NotProvided{}
	}
	previous := s.current
	if old, ok := AsProgram(previous); ok {
		if fresh, _ := AsProgram(next); fresh != old {
			old.Release()
		}
	}
	s.current = next
	return previous
}

// Release frees the current program and resets to NotProvided.
func (s *Slot) Release() {
	s.Replace(NotProvided{})
}
