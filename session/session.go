package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tryfix/traceable-context"
)

var sessionMeta = `rs_meta`

// Meta describes one reading session: one open reader plus its look-ahead state.
type Meta struct {
	ID       uuid.UUID
	StepName string
	Source   string
}

func (m *Meta) String() string {
	return fmt.Sprintf(`%s[%s]`, m.StepName, m.ID)
}

// FromSession attaches a fresh session to parent. A nil parent starts a new traceable context
// keyed by the session id.
func FromSession(parent context.Context, stepName, source string) context.Context {
	meta := &Meta{
		ID:       uuid.New(),
		StepName: stepName,
		Source:   source,
	}

	if parent == nil {
		parent = traceable_context.WithUUID(meta.ID)
	}

	return traceable_context.WithValue(parent, &sessionMeta, meta)
}

// MetaFromContext returns nil when ctx does not belong to a reading session.
func MetaFromContext(ctx context.Context) *Meta {
	if ctx == nil {
		return nil
	}

	if meta, ok := ctx.Value(&sessionMeta).(*Meta); ok {
		return meta
	}

	return nil
}
