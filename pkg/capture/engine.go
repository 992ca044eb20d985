// Package capture records, per goroutine, the sequence of method entries and
// exits observed once a configured trigger class is first entered, and emits
// each capture as a Graphviz dot file. The instrumentation layer that decides
// what to instrument lives outside this package; it drives the engine through
// goroutine-confined Probe handles.
package capture

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/callshot/callshot/internal/metrics"
)

// Config holds the resolved capture settings. The engine treats it as
// immutable for the life of the process and never reloads it.
type Config struct {
	// Trigger is the class name whose entry starts a capture session.
	// Matched case-insensitively against names normalized per
	// FullClassNames.
	Trigger string

	// CaptureRoot is the directory under which day buckets and capture
	// files are created.
	CaptureRoot string

	// FullClassNames records fully-qualified class names verbatim instead
	// of short names.
	FullClassNames bool
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Trigger == "" {
		return ErrEmptyTrigger
	}
	if c.CaptureRoot == "" {
		return ErrEmptyCaptureRoot
	}
	return nil
}

// Engine routes enter/leave events from the instrumentation layer into
// per-goroutine capture sessions. The only state shared between goroutines
// is the thread-id counter and the day-bucket directory on disk; stacks,
// sequence counters and file handles are exclusively owned by one Probe.
type Engine struct {
	cfg     Config
	det     detector
	ids     allocator
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a diagnostics logger. Capture failures and protocol
// violations are reported here; the default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates a capture engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		det:    detector{trigger: cfg.Trigger, fullNames: cfg.FullClassNames},
		logger: zerolog.Nop(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Probe allocates a capture handle for the calling goroutine. The host
// attaches exactly one Probe per goroutine and calls Enter/Leave on it from
// that goroutine only; a Probe is not safe for concurrent use.
func (e *Engine) Probe() *Probe {
	return &Probe{
		engine: e,
		id:     e.ids.allocate(),
	}
}

// Probe is the per-goroutine entry point of the engine. It owns one capture
// session at a time and is confined to the goroutine it was handed to.
type Probe struct {
	engine *Engine
	id     int64
	sess   session
}

// ThreadID returns the identity assigned to this probe's goroutine. The
// value is stable for the life of the probe and never collides with another
// live probe's id.
func (p *Probe) ThreadID() int64 {
	return p.id
}

// Enter records a method entry. While idle it starts a new session only when
// className matches the trigger; otherwise it is a no-op. While active it
// emits a call edge and pushes the class as the new top of stack.
//
// The returned error is non-nil only when a session could not be initialized
// (a *SessionInitError); the session stays idle in that case. Mid-session
// write failures disable the session and are reported through the
// diagnostics logger instead of destabilizing the instrumented program.
func (p *Probe) Enter(className, methodName string) error {
	e := p.engine
	name := e.det.normalize(className)

	if !p.sess.active() {
		if !e.det.shouldStart(className) {
			return nil
		}

		w, err := newGraphWriter(e.cfg.CaptureRoot, e.cfg.Trigger, p.id, e.now())
		if err != nil {
			ierr := &SessionInitError{ThreadID: p.id, Err: err}
			e.logger.Error().Err(err).Int64("thread", p.id).Msg("Capture session init failed")
			if e.metrics != nil {
				e.metrics.SessionInitErrorsTotal.Inc()
			}
			return ierr
		}

		p.sess.begin(w)
		e.logger.Info().Int64("thread", p.id).Str("file", w.path).Msg("Capture session started")
		if e.metrics != nil {
			e.metrics.SessionsStartedTotal.Inc()
			e.metrics.SessionsActive.Inc()
		}
	}

	if err := p.sess.writer.callEdge(p.sess.top(), name, p.sess.seq, methodName); err != nil {
		p.disable(err)
		return nil
	}
	p.sess.seq++
	p.sess.push(name)
	if e.metrics != nil {
		e.metrics.EdgesTotal.WithLabelValues("call").Inc()
	}

	return nil
}

// Leave records a method exit. While idle it is a no-op. While active it
// pops the top frame and emits a return edge; when the stack unwinds back to
// the sentinel the session is finalized and its file closed. An exit without
// a matching entry is a protocol violation: the session is disabled, never
// the host.
func (p *Probe) Leave() {
	e := p.engine
	if !p.sess.active() {
		return
	}

	popped, ok := p.sess.pop()
	if !ok || popped == sentinelFrame {
		p.violation("leave without matching enter")
		return
	}

	if err := p.sess.writer.returnEdge(popped, p.sess.top(), p.sess.seq); err != nil {
		p.disable(err)
		return
	}
	p.sess.seq++
	if e.metrics != nil {
		e.metrics.EdgesTotal.WithLabelValues("return").Inc()
	}

	if p.sess.top() == sentinelFrame {
		p.finish()
	}
}

// Abort force-closes any active session, writing the closing marker so the
// file stays parseable. Hosts call this when a goroutine unwinds past its
// instrumented frames (for example after recovering a panic); there is no
// automatic hook on goroutine death.
func (p *Probe) Abort() {
	e := p.engine
	if !p.sess.active() {
		return
	}

	if err := p.sess.writer.closeGraph(); err != nil {
		e.logger.Error().Err(err).Int64("thread", p.id).Msg("Failed to finalize aborted capture")
		if e.metrics != nil {
			e.metrics.WriteErrorsTotal.Inc()
		}
	}
	p.sess.reset()

	e.logger.Warn().Int64("thread", p.id).Msg("Capture session aborted")
	if e.metrics != nil {
		e.metrics.SessionsAbortedTotal.Inc()
		e.metrics.SessionsActive.Dec()
	}
}

// finish closes out a completed session: footer, flush, close, back to idle.
func (p *Probe) finish() {
	e := p.engine
	path := p.sess.writer.path

	if err := p.sess.writer.closeGraph(); err != nil {
		e.logger.Error().Err(err).Int64("thread", p.id).Msg("Failed to finalize capture file")
		if e.metrics != nil {
			e.metrics.WriteErrorsTotal.Inc()
		}
	}
	p.sess.reset()

	e.logger.Info().Int64("thread", p.id).Str("file", path).Msg("Capture session completed")
	if e.metrics != nil {
		e.metrics.SessionsCompletedTotal.Inc()
		e.metrics.SessionsActive.Dec()
	}
}

// disable tears down the session after a mid-session write failure. The file
// is closed without a footer; the error is reported, not propagated.
func (p *Probe) disable(err error) {
	e := p.engine
	p.sess.writer.discard()
	p.sess.reset()

	e.logger.Error().Err(err).Int64("thread", p.id).Msg("Capture session disabled after write failure")
	if e.metrics != nil {
		e.metrics.WriteErrorsTotal.Inc()
		e.metrics.SessionsActive.Dec()
	}
}

// violation tears down the session after an enter/leave mismatch.
func (p *Probe) violation(reason string) {
	e := p.engine
	verr := &ProtocolViolationError{ThreadID: p.id, Reason: reason}

	p.sess.writer.discard()
	p.sess.reset()

	e.logger.Error().Err(verr).Int64("thread", p.id).Msg("Protocol violation, capture session disabled")
	if e.metrics != nil {
		e.metrics.ProtocolViolationsTotal.Inc()
		e.metrics.SessionsActive.Dec()
	}
}
