package capture

// sentinelFrame is the reserved bottom-of-stack label of an active session.
// It demarcates the session boundary: pushed when a trigger entry starts the
// capture, and the capture ends when a leave unwinds the stack back to it.
// It also appears in the emitted graph as the root node.
const sentinelFrame = "START"

// session is the per-thread capture state machine. The stack is sentinel
// bottomed while active and empty while idle; the writer is open if and only
// if the session is active. A session is confined to a single goroutine and
// mutated only through its owning Probe.
type session struct {
	stack  []string
	seq    int64
	writer *graphWriter
}

func (s *session) active() bool {
	return s.writer != nil
}

// begin transitions Idle -> Active: sentinel on the stack, sequence reset
// to 1, sink attached.
func (s *session) begin(w *graphWriter) {
	s.stack = append(s.stack[:0], sentinelFrame)
	s.seq = 1
	s.writer = w
}

// reset transitions back to Idle and detaches the sink. The caller is
// responsible for having closed or discarded the writer first.
func (s *session) reset() {
	s.stack = s.stack[:0]
	s.seq = 0
	s.writer = nil
}

func (s *session) push(frame string) {
	s.stack = append(s.stack, frame)
}

// pop removes and returns the top frame. ok is false when the stack is
// already empty, which on an active session means the enter/leave pairing
// was broken.
func (s *session) pop() (frame string, ok bool) {
	if len(s.stack) == 0 {
		return "", false
	}
	frame = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return frame, true
}

// top returns the current top of stack, or the empty string when idle.
func (s *session) top() string {
	if len(s.stack) == 0 {
		return ""
	}
	return s.stack[len(s.stack)-1]
}
