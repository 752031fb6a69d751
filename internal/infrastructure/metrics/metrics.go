// Package metrics exposes engine counters through expvar, so any
// process embedding the engine can publish them on its debug
// endpoint without pulling in a metrics framework.
package metrics

import "expvar"

var (
	sessionsStarted   = new(expvar.Int)
	sessionsCompleted = new(expvar.Int)
	sessionsHalted    = new(expvar.Int)
	nodesEvaluated    = new(expvar.Int)
	effectsDispatched = new(expvar.Int)
	effectFailures    = new(expvar.Int)
	suspensions       = expvar.NewMap("chatflow_suspensions_total")
)

func init() {
	expvar.Publish("chatflow_sessions_started_total", sessionsStarted)
	expvar.Publish("chatflow_sessions_completed_total", sessionsCompleted)
	expvar.Publish("chatflow_sessions_halted_total", sessionsHalted)
	expvar.Publish("chatflow_nodes_evaluated_total", nodesEvaluated)
	expvar.Publish("chatflow_effects_dispatched_total", effectsDispatched)
	expvar.Publish("chatflow_effect_failures_total", effectFailures)
}

func IncSessionsStarted()   { sessionsStarted.Add(1) }
func IncSessionsCompleted() { sessionsCompleted.Add(1) }
func IncSessionsHalted()    { sessionsHalted.Add(1) }
func IncNodesEvaluated()    { nodesEvaluated.Add(1) }
func IncEffectsDispatched() { effectsDispatched.Add(1) }
func IncEffectFailures()    { effectFailures.Add(1) }

// IncSuspensions counts suspensions by reason (reply, timer, handoff).
func IncSuspensions(reason string) { suspensions.Add(reason, 1) }
