package usecases

import (
	"context"
	"strconv"
	"strings"

	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// ConditionInterpreter compares a session variable against the
// node's literal value and routes to the "true" or "false" handle.
// A malformed comparison never fails the session: it evaluates to
// false.
type ConditionInterpreter struct{}

func (*ConditionInterpreter) Evaluate(_ context.Context, node *flow.Node, sess *session.Session) (*Outcome, error) {
	data, ok := node.Data.(*flow.ConditionData)
	if !ok {
		return nil, flow.ErrNodeDataMismatch
	}
	if Compare(sess.Vars.String(data.Variable), data.Operator, data.Value) {
		return continueOn(flow.HandleTrue)
	}
	return continueOn(flow.HandleFalse)
}

// Compare applies a condition operator to the stringified variable
// value and the literal. Numeric operators coerce both sides to
// float64; when either side fails to parse the comparison is false.
// An unknown operator is also false, never an error.
func Compare(left string, op flow.ConditionOperator, right string) bool {
	switch op {
	case flow.OpEquals:
		return left == right
	case flow.OpNotEquals:
		return left != right
	case flow.OpContains:
		return strings.Contains(left, right)
	case flow.OpStartsWith:
		return strings.HasPrefix(left, right)
	case flow.OpEndsWith:
		return strings.HasSuffix(left, right)
	case flow.OpGreaterThan:
		l, r, ok := parseBoth(left, right)
		return ok && l > r
	case flow.OpLessThan:
		l, r, ok := parseBoth(left, right)
		return ok && l < r
	default:
		return false
	}
}

func parseBoth(left, right string) (float64, float64, bool) {
	l, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return 0, 0, false
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil {
		return 0, 0, false
	}
	return l, r, true
}
