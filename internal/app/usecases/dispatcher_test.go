package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatflow/chatflow/internal/app/dto"
)

type recordingCRM struct {
	tags   []string
	stages []string
	agents []string
	deals  []string
}

func (c *recordingCRM) AddTag(_ context.Context, _, tag string) error {
	c.tags = append(c.tags, tag)
	return nil
}

func (c *recordingCRM) RemoveTag(_ context.Context, _, tag string) error {
	c.tags = append(c.tags, "-"+tag)
	return nil
}

func (c *recordingCRM) SetStage(_ context.Context, _, stage string) error {
	c.stages = append(c.stages, stage)
	return nil
}

func (c *recordingCRM) CreateDeal(_ context.Context, _, name string, _ float64) error {
	c.deals = append(c.deals, name)
	return nil
}

func (c *recordingCRM) AssignAgent(_ context.Context, _, agentID string) error {
	c.agents = append(c.agents, agentID)
	return nil
}

type cannedAI struct{ output string }

func (a *cannedAI) Generate(context.Context, string, string, string) (string, error) {
	return a.output, nil
}

func TestCollabDispatcher_RoutesToCRM(t *testing.T) {
	crm := &recordingCRM{}
	d := NewCollabDispatcher(Collaborators{CRM: crm}, 0, nil)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, &dto.Effect{Kind: dto.EffectAddTag, ContactID: "c1", Tag: "vip"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, &dto.Effect{Kind: dto.EffectSetStage, ContactID: "c1", Stage: "qualified"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, &dto.Effect{Kind: dto.EffectAssignAgent, ContactID: "c1", AgentID: "agent-7"})
	require.NoError(t, err)
	_, err = d.Dispatch(ctx, &dto.Effect{Kind: dto.EffectCreateDeal, ContactID: "c1", DealName: "Upgrade", DealValue: 99})
	require.NoError(t, err)

	assert.Equal(t, []string{"vip"}, crm.tags)
	assert.Equal(t, []string{"qualified"}, crm.stages)
	assert.Equal(t, []string{"agent-7"}, crm.agents)
	assert.Equal(t, []string{"Upgrade"}, crm.deals)
}

func TestCollabDispatcher_AIResult(t *testing.T) {
	d := NewCollabDispatcher(Collaborators{AI: &cannedAI{output: "generated"}}, 0, nil)

	res, err := d.Dispatch(context.Background(), &dto.Effect{Kind: dto.EffectAIGenerate, Prompt: "p"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "generated", res.Output)
}

func TestCollabDispatcher_NilCollaboratorSkips(t *testing.T) {
	d := NewCollabDispatcher(Collaborators{}, 0, nil)
	ctx := context.Background()

	for _, kind := range []dto.EffectKind{
		dto.EffectSendText, dto.EffectSendMedia, dto.EffectSendTemplate,
		dto.EffectAddTag, dto.EffectRemoveTag, dto.EffectSetStage,
		dto.EffectCreateDeal, dto.EffectAssignAgent,
		dto.EffectWebhook, dto.EffectAIGenerate, dto.EffectHandoff,
	} {
		res, err := d.Dispatch(ctx, &dto.Effect{Kind: kind})
		assert.NoError(t, err, "kind %s", kind)
		assert.Nil(t, res, "kind %s", kind)
	}
}

func TestCollabDispatcher_UnknownKind(t *testing.T) {
	d := NewCollabDispatcher(Collaborators{}, 0, nil)
	_, err := d.Dispatch(context.Background(), &dto.Effect{Kind: "teleport"})
	assert.Error(t, err)
}
