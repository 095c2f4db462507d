package session

import (
	"context"
	"testing"
)

func TestFromSession(t *testing.T) {
	ctx := FromSession(context.Background(), `read_step`, `MockSource{}`)

	meta := MetaFromContext(ctx)
	if meta == nil {
		t.Fatal(`session meta not available`)
	}

	if meta.StepName != `read_step` || meta.Source != `MockSource{}` {
		t.Errorf("meta = %+v", meta)
	}

	other := MetaFromContext(FromSession(context.Background(), `read_step`, `MockSource{}`))
	if other.ID == meta.ID {
		t.Error(`sessions must not share ids`)
	}
}

func TestFromSession_NilParent(t *testing.T) {
	ctx := FromSession(nil, `step`, `src`)
	if MetaFromContext(ctx) == nil {
		t.Fail()
	}
}

func TestMetaFromContext_Missing(t *testing.T) {
	if MetaFromContext(context.Background()) != nil {
		t.Fail()
	}
}
