package observability

import (
	"context"
	"testing"
	"time"
)

type recordingLayoutHooks struct {
	NoopLayoutHooks
	starts    int
	completes int
	collided  bool
}

func (h *recordingLayoutHooks) OnLayoutStart(context.Context, string, int) {
	h.starts++
}

func (h *recordingLayoutHooks) OnLayoutComplete(_ context.Context, _ string, _ int, collided bool, _ time.Duration) {
	h.completes++
	h.collided = collided
}

func TestHookRegistration(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)

	ctx := context.Background()
	Layout().OnLayoutStart(ctx, "b1", 1)
	Layout().OnLayoutComplete(ctx, "b1", 1, true, time.Millisecond)

	if rec.starts != 1 || rec.completes != 1 {
		t.Errorf("hooks not invoked: starts=%d completes=%d", rec.starts, rec.completes)
	}
	if !rec.collided {
		t.Error("collision flag not forwarded")
	}
}

func TestSetNilHooksKeepsCurrent(t *testing.T) {
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	SetLayoutHooks(nil)

	Layout().OnLayoutStart(context.Background(), "b1", 1)
	if rec.starts != 1 {
		t.Error("nil registration should not replace the active hooks")
	}
}

func TestReset(t *testing.T) {
	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)
	Reset()

	Layout().OnLayoutStart(context.Background(), "b1", 1)
	if rec.starts != 0 {
		t.Error("Reset should restore the no-op hooks")
	}
}

func TestNoopHooksAreSafe(t *testing.T) {
	Reset()
	ctx := context.Background()

	// None of these may panic.
	Layout().OnLayoutStart(ctx, "b1", 1)
	Layout().OnSpreadsBuilt(ctx, "b1", 3, time.Second)
	Mask().OnMaskGenerated(ctx, "scene", 1536, 1024, time.Millisecond)
	Cache().OnCacheHit(ctx, "layout")
	Cache().OnCacheMiss(ctx, "layout")
	Cache().OnCacheSet(ctx, "layout", 128)
}
