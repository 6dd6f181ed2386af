package guide

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repair-guide-api/internal/domain/entity"
	apperrors "repair-guide-api/pkg/errors"
)

// blockingGenerator 在 release 关闭前阻塞
type blockingGenerator struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingGenerator() *blockingGenerator {
	return &blockingGenerator{
		started: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
}

func (g *blockingGenerator) Generate(ctx context.Context, _ *entity.DamageReport, observer ProgressObserver) (*entity.RepairGuide, error) {
	g.calls.Add(1)
	observer.OnProgress(Progress{State: entity.StateAwaitingPlan, Message: "Planning repair strategy"})
	g.started <- struct{}{}
	<-g.release
	if g.err != nil {
		return nil, g.err
	}
	observer.OnProgress(Progress{State: entity.StateComplete, Message: "Guide ready"})
	return entity.NewRepairGuide("guide-1", FallbackPlan(), nil, entity.GuideSourceFallback), nil
}

type submitResult struct {
	guide *entity.RepairGuide
	err   error
}

func submitAsync(s *Session, report *entity.DamageReport) <-chan submitResult {
	ch := make(chan submitResult, 1)
	go func() {
		g, err := s.Submit(context.Background(), report, nil)
		ch <- submitResult{guide: g, err: err}
	}()
	return ch
}

func waitResult(t *testing.T, ch <-chan submitResult) submitResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return")
		return submitResult{}
	}
}

func TestSessionRejectsSecondSubmitWhileInFlight(t *testing.T) {
	gen := newBlockingGenerator()
	session := NewSession("user-1", gen, nil)

	first := submitAsync(session, testReport(0))
	<-gen.started
	assert.Equal(t, entity.StateAwaitingPlan, session.Snapshot().State)

	_, err := session.Submit(context.Background(), testReport(0), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationInFlight))
	assert.Equal(t, int32(1), gen.calls.Load())

	close(gen.release)
	res := waitResult(t, first)
	require.NoError(t, res.err)
	assert.Equal(t, "guide-1", res.guide.ID)

	snap := session.Snapshot()
	assert.Equal(t, entity.StateComplete, snap.State)
	assert.Equal(t, "Guide ready", snap.Status)
	assert.Same(t, res.guide, snap.Guide)
}

func TestSessionInvalidReportDoesNotStart(t *testing.T) {
	gen := newBlockingGenerator()
	session := NewSession("user-1", gen, nil)

	_, err := session.Submit(context.Background(), &entity.DamageReport{Description: "short"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrValidationFailed))
	assert.Equal(t, int32(0), gen.calls.Load())
	assert.Equal(t, entity.StateIdle, session.Snapshot().State)
}

func TestSessionResetDiscardsInFlightResult(t *testing.T) {
	gen := newBlockingGenerator()
	session := NewSession("user-1", gen, nil)

	first := submitAsync(session, testReport(0))
	<-gen.started

	session.Reset(context.Background())
	snap := session.Snapshot()
	assert.Equal(t, entity.StateIdle, snap.State)
	assert.Equal(t, "Idle", snap.Status)

	// 重置后可立即重新提交
	second := submitAsync(session, testReport(0))
	<-gen.started

	close(gen.release)
	res := waitResult(t, first)
	assert.True(t, errors.Is(res.err, apperrors.ErrGenerationReset))
	assert.Nil(t, res.guide)

	res = waitResult(t, second)
	require.NoError(t, res.err)
	assert.Equal(t, entity.StateComplete, session.Snapshot().State)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestSessionRecordsErrorAndAllowsRetry(t *testing.T) {
	gen := newBlockingGenerator()
	gen.err = apperrors.ErrLLMCallFailed.WithDetail("upstream 500")
	close(gen.release)
	session := NewSession("user-1", gen, nil)

	_, err := session.Submit(context.Background(), testReport(0), nil)
	require.Error(t, err)

	snap := session.Snapshot()
	assert.Equal(t, entity.StateErrored, snap.State)
	require.NotNil(t, snap.Error)
	assert.Equal(t, apperrors.CodeLLMCallFailed, snap.Error.Code)

	gen.err = nil
	g, err := session.Submit(context.Background(), testReport(0), nil)
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Nil(t, session.Snapshot().Error)
}

func TestSessionSharedGuardBlocksAcrossSessions(t *testing.T) {
	guard := NewMemoryGuard()
	gen := newBlockingGenerator()
	a := NewSession("user-1", gen, guard)
	b := NewSession("user-1", gen, guard)

	first := submitAsync(a, testReport(0))
	<-gen.started

	_, err := b.Submit(context.Background(), testReport(0), nil)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationInFlight))
	assert.Equal(t, entity.StateIdle, b.Snapshot().State)

	close(gen.release)
	require.NoError(t, waitResult(t, first).err)

	_, err = b.Submit(context.Background(), testReport(0), nil)
	assert.NoError(t, err)
}

func TestMemoryGuardReleaseRequiresToken(t *testing.T) {
	ctx := context.Background()
	guard := NewMemoryGuard()

	ok, err := guard.Acquire(ctx, "k", "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = guard.Acquire(ctx, "k", "t2")
	assert.False(t, ok)

	require.NoError(t, guard.Release(ctx, "k", "t2"))
	ok, _ = guard.Acquire(ctx, "k", "t3")
	assert.False(t, ok)

	require.NoError(t, guard.Release(ctx, "k", "t1"))
	ok, _ = guard.Acquire(ctx, "k", "t3")
	assert.True(t, ok)
}

func TestSessionRegistryReturnsSameSession(t *testing.T) {
	reg := NewSessionRegistry(newBlockingGenerator(), nil)
	assert.Same(t, reg.Get("a"), reg.Get("a"))
	assert.NotSame(t, reg.Get("a"), reg.Get("b"))
}
