package chatflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/chatflow/chatflow/internal/adapters/repository/flowrepo"
	"github.com/chatflow/chatflow/internal/adapters/repository/sessionstore"
	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/app/services"
	"github.com/chatflow/chatflow/internal/app/usecases"
	coreflow "github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// Re-export core types for convenience.
type Flow = coreflow.Flow
type Node = coreflow.Node
type Edge = coreflow.Edge
type NodeType = coreflow.NodeType
type Vars = session.Vars

// Runtime is a facade to construct and run conversation flows without
// importing internal packages directly. The default runtime uses
// in-memory components and is suitable for local usage and tests.
type Runtime struct {
	engine       *usecases.Engine
	flows        usecases.FlowRepository
	sessions     usecases.SessionStore
	scheduler    *services.TimerScheduler
	log          *zap.Logger
	retryBackoff time.Duration
}

// Options configures a Runtime. Zero values select in-memory storage,
// a no-op logger and default engine tuning.
type Options struct {
	Flows         usecases.FlowRepository
	Sessions      usecases.SessionStore
	Collaborators usecases.Collaborators
	Logger        *zap.Logger
	MaxSteps      int
	EffectTimeout time.Duration
	Clock         func() time.Time
}

// NewRuntime constructs a default runtime with in-memory services.
func NewRuntime() *Runtime {
	return NewRuntimeWith(Options{})
}

// NewRuntimeWith constructs a runtime from the given options.
func NewRuntimeWith(opts Options) *Runtime {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Flows == nil {
		opts.Flows = flowrepo.NewInMemoryRepository()
	}
	if opts.Sessions == nil {
		opts.Sessions = sessionstore.NewMemoryStore()
	}
	if opts.EffectTimeout <= 0 {
		opts.EffectTimeout = usecases.DefaultEffectTimeout
	}

	dispatcher := usecases.NewCollabDispatcher(opts.Collaborators, opts.EffectTimeout, opts.Logger)

	rt := &Runtime{
		flows:        opts.Flows,
		sessions:     opts.Sessions,
		log:          opts.Logger,
		retryBackoff: timerRetryBackoff,
	}
	rt.scheduler = services.NewTimerScheduler(rt.fireTimer, opts.Logger)
	rt.engine = usecases.NewEngine(opts.Flows, opts.Sessions, usecases.NewRegistry(), dispatcher, rt.scheduler, usecases.EngineConfig{
		MaxSteps: opts.MaxSteps,
		Logger:   opts.Logger,
		Clock:    opts.Clock,
	})
	return rt
}

// SaveFlow validates and persists a flow document.
func (rt *Runtime) SaveFlow(ctx context.Context, f *coreflow.Flow) error {
	return rt.flows.Save(ctx, f)
}

// Start begins a new session for a contact on the given flow.
func (rt *Runtime) Start(ctx context.Context, flowID, contactID string, vars map[string]any) (*dto.RunResult, error) {
	return rt.engine.Start(ctx, &dto.StartRequest{FlowID: flowID, ContactID: contactID, Vars: vars})
}

// HandleMessage delivers an inbound contact message to a suspended session.
func (rt *Runtime) HandleMessage(ctx context.Context, sessionID, text string) (*dto.RunResult, error) {
	return rt.engine.HandleEvent(ctx, &dto.InboundEvent{
		SessionID: sessionID,
		Type:      dto.EventMessage,
		Text:      text,
	})
}

// Deactivate stops a flow: running sessions finish their current
// invocation, suspended ones never resume.
func (rt *Runtime) Deactivate(flowID string) {
	rt.engine.Deactivate(flowID)
}

// RecoverTimers re-arms the scheduler from persisted sessions, firing
// overdue timers immediately. Call once after constructing a runtime
// over a durable store.
func (rt *Runtime) RecoverTimers(ctx context.Context, horizon time.Duration) (int, error) {
	return rt.engine.RecoverTimers(ctx, horizon)
}

// Session returns the current state of a session.
func (rt *Runtime) Session(ctx context.Context, id string) (*session.Session, error) {
	return rt.sessions.Get(ctx, id)
}

// Close stops the timer scheduler.
func (rt *Runtime) Close() {
	rt.scheduler.Close()
}

// timerRetryBackoff spaces out re-arms after a fire fails for a
// transient reason.
const timerRetryBackoff = 5 * time.Second

func (rt *Runtime) fireTimer(sessionID, flowID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	_, err := rt.engine.HandleEvent(ctx, &dto.InboundEvent{
		SessionID: sessionID,
		Type:      dto.EventTimer,
	})
	if err == nil {
		return
	}
	if resumeUnrecoverable(err) {
		rt.log.Warn("timer resume dropped",
			zap.String("session_id", sessionID),
			zap.String("flow_id", flowID),
			zap.Error(err))
		return
	}
	// The queue entry is gone by the time the handler runs, and the
	// engine schedules a timer suspension only once. Re-arm so a busy
	// session or a transient store failure cannot strand it.
	rt.log.Warn("timer resume failed, re-arming",
		zap.String("session_id", sessionID),
		zap.String("flow_id", flowID),
		zap.Error(err))
	rt.scheduler.Schedule(sessionID, flowID, time.Now().Add(rt.retryBackoff))
}

// resumeUnrecoverable reports errors no retry can fix: the session
// moved on or was halted, a human holds it, or its flow or record is
// gone. Everything else gets the timer re-armed.
func resumeUnrecoverable(err error) bool {
	for _, sentinel := range []error{
		dto.ErrNotSuspended,
		dto.ErrHandoffActive,
		dto.ErrUnexpectedEvent,
		dto.ErrFlowDeactivated,
		dto.ErrMaxStepsExceeded,
		dto.ErrNoInterpreter,
		session.ErrSessionNotFound,
		coreflow.ErrFlowNotFound,
		coreflow.ErrNodeNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
