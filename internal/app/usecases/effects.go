package usecases

import (
	"github.com/google/uuid"

	"github.com/chatflow/chatflow/internal/app/dto"
	"github.com/chatflow/chatflow/internal/core/flow"
	"github.com/chatflow/chatflow/internal/core/session"
)

// newEffect builds an effect descriptor stamped with its origin.
func newEffect(kind dto.EffectKind, node *flow.Node, sess *session.Session) dto.Effect {
	return dto.Effect{
		ID:        uuid.New().String(),
		Kind:      kind,
		SessionID: sess.ID,
		ContactID: sess.ContactID,
		NodeID:    node.ID,
	}
}
