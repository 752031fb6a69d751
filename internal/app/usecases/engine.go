package usecases

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
	"github.com/chatflow/chatflow/internal/infrastructure/metrics"
	"github.com/chatflow/chatflow/pkg/validation"
)

// DefaultMaxSteps bounds synchronous continuations within one engine
// invocation. Cycles through a suspending node are a supported
// pattern; an all-continue cycle is not, and hits this cap.
const DefaultMaxSteps = 100

// EngineConfig holds optional engine settings.
type EngineConfig struct {
	MaxSteps int
	Logger   *zap.Logger
	// Clock is overridable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Engine drives flow execution: it evaluates the current node,
// dispatches its effects, follows continue outcomes synchronously
// and exits on suspend, completion or the step cap. It is re-entrant:
// each inbound event is a distinct invocation resuming exactly one
// suspended session.
type Engine struct {
	flows      FlowRepository
	sessions   SessionStore
	registry   *Registry
	dispatcher EffectDispatcher
	scheduler  Scheduler
	log        *zap.Logger
	now        func() time.Time
	maxSteps   int

	mu          sync.Mutex
	inflight    map[string]struct{}
	deactivated map[string]struct{}
}

// NewEngine creates an engine with the given dependencies.
func NewEngine(
	flows FlowRepository,
	sessions SessionStore,
	registry *Registry,
	dispatcher EffectDispatcher,
	scheduler Scheduler,
	cfg EngineConfig,
) *Engine {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	// One clock governs an invocation: the delay interpreter computes
	// resume times with the engine's clock unless the caller installed
	// its own.
	if interp, ok := registry.Get(flow.NodeDelay); ok {
		if d, ok := interp.(*DelayInterpreter); ok && d.Now == nil {
			d.Now = cfg.Clock
		}
	}
	return &Engine{
		flows:       flows,
		sessions:    sessions,
		registry:    registry,
		dispatcher:  dispatcher,
		scheduler:   scheduler,
		log:         cfg.Logger,
		now:         cfg.Clock,
		maxSteps:    cfg.MaxSteps,
		inflight:    make(map[string]struct{}),
		deactivated: make(map[string]struct{}),
	}
}

// Start begins a new flow run for a contact from the start node.
func (e *Engine) Start(ctx context.Context, req *dto.StartRequest) (*dto.RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start request: %w", err)
	}
	if e.isDeactivated(req.FlowID) {
		return nil, dto.ErrFlowDeactivated
	}

	f, err := e.flows.Get(ctx, req.FlowID)
	if err != nil {
		return nil, err
	}
	if res := validation.ValidateFlow(f); !res.Valid() {
		return nil, fmt.Errorf("%w: %v", dto.ErrFlowInvalid, res.Errors)
	}
	start, err := f.StartNode()
	if err != nil {
		return nil, err
	}

	vars := make(session.Vars, len(req.Vars))
	for k, v := range req.Vars {
		vars[k] = v
	}
	now := e.now()
	sess := &session.Session{
		ID:            uuid.New().String(),
		FlowID:        req.FlowID,
		ContactID:     req.ContactID,
		Status:        session.StatusRunning,
		CurrentNodeID: start.ID,
		Vars:          vars,
		StartedAt:     now,
		UpdatedAt:     now,
	}

	if !e.acquire(sess.ID) {
		return nil, dto.ErrSessionBusy
	}
	defer e.release(sess.ID)

	metrics.IncSessionsStarted()
	result := e.newResult(sess)
	err = e.run(ctx, f, sess, result)
	e.finish(result, sess)
	return result, err
}

// HandleEvent resumes one suspended session with an inbound event:
// the contact's next message or an elapsed delay timer. The engine
// never re-walks from the start node.
func (e *Engine) HandleEvent(ctx context.Context, ev *dto.InboundEvent) (*dto.RunResult, error) {
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	sess, err := e.sessions.Get(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	if e.isDeactivated(sess.FlowID) {
		return nil, dto.ErrFlowDeactivated
	}
	if !e.acquire(sess.ID) {
		return nil, dto.ErrSessionBusy
	}
	defer e.release(sess.ID)

	// Re-read under the session lock: a concurrent invocation may
	// have advanced the session between Get and acquire.
	sess, err = e.sessions.Get(ctx, ev.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != session.StatusSuspended {
		return nil, dto.ErrNotSuspended
	}
	if sess.Reason == session.ReasonHandoff {
		return nil, dto.ErrHandoffActive
	}
	if !eventMatches(ev.Type, sess.Reason) {
		return nil, dto.ErrUnexpectedEvent
	}

	f, err := e.flows.Get(ctx, sess.FlowID)
	if err != nil {
		return nil, err
	}

	if ev.Type == dto.EventMessage && sess.PendingVariable != "" {
		sess.Vars.Set(sess.PendingVariable, ev.Text)
	}
	sess.Status = session.StatusRunning
	sess.Reason = ""
	sess.PendingVariable = ""
	sess.ResumeAt = nil

	result := e.newResult(sess)

	// The resume point is the node that suspended; continue along its
	// single unlabeled output.
	edge := f.EdgeFrom(sess.CurrentNodeID, "")
	if edge == nil {
		e.complete(ctx, sess)
		e.finish(result, sess)
		return result, nil
	}
	sess.CurrentNodeID = edge.Target

	err = e.run(ctx, f, sess, result)
	e.finish(result, sess)
	return result, err
}

// Deactivate stops scheduling future resumes for a flow's sessions.
// Suspended sessions keep their state, but no further node
// evaluation occurs for them.
func (e *Engine) Deactivate(flowID string) {
	e.mu.Lock()
	e.deactivated[flowID] = struct{}{}
	e.mu.Unlock()
	if e.scheduler != nil {
		e.scheduler.CancelFlow(flowID)
	}
	e.log.Info("flow deactivated", zap.String("flow_id", flowID))
}

// RecoverTimers re-arms the scheduler for timer-suspended sessions
// found in the store, typically after a process restart. Sessions of
// deactivated flows are skipped. The horizon bounds how far ahead
// resumes are re-armed in one call.
func (e *Engine) RecoverTimers(ctx context.Context, horizon time.Duration) (int, error) {
	if e.scheduler == nil {
		return 0, nil
	}
	due, err := e.sessions.ListDue(ctx, e.now().Add(horizon))
	if err != nil {
		return 0, fmt.Errorf("list due sessions: %w", err)
	}
	recovered := 0
	for _, sess := range due {
		if e.isDeactivated(sess.FlowID) || sess.ResumeAt == nil {
			continue
		}
		e.scheduler.Schedule(sess.ID, sess.FlowID, *sess.ResumeAt)
		recovered++
	}
	return recovered, nil
}

// run is the synchronous continuation loop.
func (e *Engine) run(ctx context.Context, f *flow.Flow, sess *session.Session, result *dto.RunResult) error {
	idx := f.Index()
	for {
		if result.Steps >= e.maxSteps {
			return e.halt(ctx, sess, result, dto.ErrMaxStepsExceeded)
		}
		node, ok := idx[sess.CurrentNodeID]
		if !ok {
			return e.halt(ctx, sess, result, fmt.Errorf("%w: %s", flow.ErrNodeNotFound, sess.CurrentNodeID))
		}
		interp, ok := e.registry.Get(node.Type)
		if !ok {
			return e.halt(ctx, sess, result, fmt.Errorf("%w: %s", dto.ErrNoInterpreter, node.Type))
		}

		out, err := interp.Evaluate(ctx, node, sess)
		if err != nil {
			return e.halt(ctx, sess, result, fmt.Errorf("node %s: %w", node.ID, err))
		}
		result.Steps++
		metrics.IncNodesEvaluated()

		e.applyEffects(ctx, sess, out.Effects, result)

		if out.Suspend != nil {
			return e.suspend(ctx, sess, out.Suspend)
		}
		edge := f.EdgeFrom(node.ID, out.Handle)
		if edge == nil {
			// Dead end: no outgoing edge for the selected handle.
			// Not an error; the conversation is over.
			e.complete(ctx, sess)
			return nil
		}
		sess.CurrentNodeID = edge.Target
	}
}

// applyEffects dispatches each effect in order. A failed effect is
// logged and skipped; the flow continues as if the effect had no
// output. Successful AI and webhook effects feed their outputs back
// into the variable store.
func (e *Engine) applyEffects(ctx context.Context, sess *session.Session, effects []dto.Effect, result *dto.RunResult) {
	for i := range effects {
		effect := &effects[i]
		result.Effects = append(result.Effects, *effect)

		res, err := e.dispatcher.Dispatch(ctx, effect)
		metrics.IncEffectsDispatched()
		if err != nil {
			metrics.IncEffectFailures()
			e.log.Warn("effect failed",
				zap.String("session_id", sess.ID),
				zap.String("node_id", effect.NodeID),
				zap.String("kind", string(effect.Kind)),
				zap.Error(err))
			continue
		}
		if res == nil {
			continue
		}
		switch effect.Kind {
		case dto.EffectAIGenerate:
			if effect.SaveToVariable != "" {
				sess.Vars.Set(effect.SaveToVariable, res.Output)
			}
		case dto.EffectWebhook:
			// Response fields merge into the store; keys the flow
			// already bound win over the webhook's.
			if len(res.Vars) > 0 {
				sess.Vars.Merge(res.Vars)
			}
		}
	}
}

func (e *Engine) suspend(ctx context.Context, sess *session.Session, s *Suspension) error {
	sess.Status = session.StatusSuspended
	sess.Reason = s.Reason
	sess.PendingVariable = s.Variable
	sess.ResumeAt = s.ResumeAt
	sess.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("persist suspended session: %w", err)
	}
	if s.Reason == session.ReasonTimer && s.ResumeAt != nil && e.scheduler != nil {
		e.scheduler.Schedule(sess.ID, sess.FlowID, *s.ResumeAt)
	}
	metrics.IncSuspensions(string(s.Reason))
	return nil
}

func (e *Engine) complete(ctx context.Context, sess *session.Session) {
	sess.Status = session.StatusCompleted
	sess.PendingVariable = ""
	sess.ResumeAt = nil
	sess.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, sess); err != nil {
		e.log.Error("persist completed session", zap.String("session_id", sess.ID), zap.Error(err))
	}
	metrics.IncSessionsCompleted()
}

// halt records a stuck flow. It is surfaced to operators, never
// silently retried.
func (e *Engine) halt(ctx context.Context, sess *session.Session, result *dto.RunResult, cause error) error {
	sess.Status = session.StatusHalted
	sess.Error = cause.Error()
	sess.UpdatedAt = e.now()
	if err := e.sessions.Save(ctx, sess); err != nil {
		e.log.Error("persist halted session", zap.String("session_id", sess.ID), zap.Error(err))
	}
	metrics.IncSessionsHalted()
	e.log.Error("session halted",
		zap.String("session_id", sess.ID),
		zap.String("flow_id", sess.FlowID),
		zap.String("node_id", sess.CurrentNodeID),
		zap.Error(cause))
	result.Error = cause.Error()
	return cause
}

func (e *Engine) newResult(sess *session.Session) *dto.RunResult {
	return &dto.RunResult{
		SessionID: sess.ID,
		FlowID:    sess.FlowID,
		ContactID: sess.ContactID,
		Effects:   make([]dto.Effect, 0),
		StartTime: e.now(),
	}
}

func (e *Engine) finish(result *dto.RunResult, sess *session.Session) {
	result.Status = sess.Status
	result.Reason = sess.Reason
	result.ResumeAt = sess.ResumeAt
	result.Vars = map[string]any(sess.Vars)
	result.EndTime = e.now()
}

// acquire takes the session's mutual-exclusion token. A session must
// never be resumed twice concurrently.
func (e *Engine) acquire(sessionID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[sessionID]; busy {
		return false
	}
	e.inflight[sessionID] = struct{}{}
	return true
}

func (e *Engine) release(sessionID string) {
	e.mu.Lock()
	delete(e.inflight, sessionID)
	e.mu.Unlock()
}

func (e *Engine) isDeactivated(flowID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.deactivated[flowID]
	return ok
}

func eventMatches(t dto.EventType, reason session.SuspendReason) bool {
	switch t {
	case dto.EventMessage:
		return reason == session.ReasonReply
	case dto.EventTimer:
		return reason == session.ReasonTimer
	default:
		return false
	}
}
