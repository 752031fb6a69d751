package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

func actionNode(data *flow.ActionData) *flow.Node {
	return &flow.Node{ID: "act", Type: flow.NodeAction, Data: data}
}

func actionSession() *session.Session {
	return &session.Session{ID: "s1", ContactID: "c1", Vars: session.Vars{"name": "Ana"}}
}

func TestActionInterpreter_SetVariable(t *testing.T) {
	interp := &ActionInterpreter{}
	sess := actionSession()

	out, err := interp.Evaluate(context.Background(), actionNode(&flow.ActionData{
		Action:   flow.ActionSetVariable,
		Variable: "greeting",
		Value:    "Hello {{name}}",
	}), sess)
	require.NoError(t, err)

	assert.Empty(t, out.Effects, "variable mutation needs no collaborator")
	assert.Nil(t, out.Suspend)
	assert.Equal(t, "Hello Ana", sess.Vars.String("greeting"))
}

func TestActionInterpreter_EffectKinds(t *testing.T) {
	tests := []struct {
		name string
		data *flow.ActionData
		want dto.EffectKind
	}{
		{"add tag", &flow.ActionData{Action: flow.ActionAddTag, Tag: "vip"}, dto.EffectAddTag},
		{"remove tag", &flow.ActionData{Action: flow.ActionRemoveTag, Tag: "vip"}, dto.EffectRemoveTag},
		{"set stage", &flow.ActionData{Action: flow.ActionSetStage, Stage: "won"}, dto.EffectSetStage},
		{"create deal", &flow.ActionData{Action: flow.ActionCreateDeal, DealName: "Deal for {{name}}", DealValue: 10}, dto.EffectCreateDeal},
		{"assign agent", &flow.ActionData{Action: flow.ActionAssignAgent, AgentID: "a1"}, dto.EffectAssignAgent},
	}

	interp := &ActionInterpreter{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := interp.Evaluate(context.Background(), actionNode(tt.data), actionSession())
			require.NoError(t, err)
			require.Len(t, out.Effects, 1)
			assert.Equal(t, tt.want, out.Effects[0].Kind)
			assert.Nil(t, out.Suspend)
		})
	}
}

func TestActionInterpreter_DealNameInterpolated(t *testing.T) {
	interp := &ActionInterpreter{}
	out, err := interp.Evaluate(context.Background(), actionNode(&flow.ActionData{
		Action:   flow.ActionCreateDeal,
		DealName: "Deal for {{name}}",
	}), actionSession())
	require.NoError(t, err)
	assert.Equal(t, "Deal for Ana", out.Effects[0].DealName)
}

func TestActionInterpreter_WebhookCarriesVars(t *testing.T) {
	interp := &ActionInterpreter{}
	sess := actionSession()

	out, err := interp.Evaluate(context.Background(), actionNode(&flow.ActionData{
		Action: flow.ActionWebhook,
		URL:    "https://example.test/hook",
	}), sess)
	require.NoError(t, err)

	require.Len(t, out.Effects, 1)
	assert.Equal(t, "https://example.test/hook", out.Effects[0].URL)
	assert.Equal(t, "Ana", out.Effects[0].Payload["name"])

	// The payload is a copy, not the live store.
	sess.Vars.Set("name", "Bea")
	assert.Equal(t, "Ana", out.Effects[0].Payload["name"])
}

func TestActionInterpreter_HandoffSuspends(t *testing.T) {
	interp := &ActionInterpreter{}
	out, err := interp.Evaluate(context.Background(), actionNode(&flow.ActionData{
		Action: flow.ActionHandoff,
	}), actionSession())
	require.NoError(t, err)

	require.NotNil(t, out.Suspend)
	assert.Equal(t, session.ReasonHandoff, out.Suspend.Reason)
	require.Len(t, out.Effects, 1)
	assert.Equal(t, dto.EffectHandoff, out.Effects[0].Kind)
}

func TestActionInterpreter_UnknownAction(t *testing.T) {
	interp := &ActionInterpreter{}
	_, err := interp.Evaluate(context.Background(), actionNode(&flow.ActionData{
		Action: "launch_rocket",
	}), actionSession())
	assert.Error(t, err)
}

func TestQuestionInterpreter_Suspends(t *testing.T) {
	interp := &QuestionInterpreter{}
	node := &flow.Node{ID: "ask", Type: flow.NodeQuestion, Data: &flow.QuestionData{
		Question: "How are you, {{name}}?",
		Variable: "mood",
	}}

	out, err := interp.Evaluate(context.Background(), node, actionSession())
	require.NoError(t, err)

	require.NotNil(t, out.Suspend)
	assert.Equal(t, session.ReasonReply, out.Suspend.Reason)
	assert.Equal(t, "mood", out.Suspend.Variable)
	require.Len(t, out.Effects, 1)
	assert.Equal(t, "How are you, Ana?", out.Effects[0].Content)
}

func TestTemplateInterpreter_InterpolatesParams(t *testing.T) {
	interp := &TemplateInterpreter{}
	node := &flow.Node{ID: "tpl", Type: flow.NodeTemplate, Data: &flow.TemplateData{
		TemplateName: "welcome",
		Params:       map[string]string{"1": "{{name}}", "2": "today"},
	}}

	out, err := interp.Evaluate(context.Background(), node, actionSession())
	require.NoError(t, err)

	require.Len(t, out.Effects, 1)
	assert.Equal(t, "welcome", out.Effects[0].TemplateName)
	assert.Equal(t, map[string]string{"1": "Ana", "2": "today"}, out.Effects[0].Params)
}
