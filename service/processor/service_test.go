package processor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/reframe/model"
	"github.com/viant/reframe/model/types"
	"github.com/viant/reframe/runtime/orchestrator"
)

type fakeRunner struct {
	calls    sync.Map
	inflight int32
	peak     int32
}

func (f *fakeRunner) Run(ctx context.Context, request *orchestrator.Request) (*orchestrator.Result, error) {
	current := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		peak := atomic.LoadInt32(&f.peak)
		if current <= peak || atomic.CompareAndSwapInt32(&f.peak, peak, current) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	name := string(request.Input)
	counter, _ := f.calls.LoadOrStore(name, new(int32))
	call := atomic.AddInt32(counter.(*int32), 1)
	result := &orchestrator.Result{Kind: request.Kind, Family: name}
	switch name {
	case "invalid":
		return result, types.NewError(types.KindValidation, "precondition failed: reference")
	case "slow-once":
		if call == 1 {
			return result, types.NewError(types.KindTimeout, "deadline exceeded")
		}
	case "slow":
		return result, types.NewError(types.KindTimeout, "deadline exceeded")
	}
	return result, nil
}

func TestService_Process(t *testing.T) {
	inputs := []string{"a", "invalid", "slow-once", "b", "slow", "c"}
	runner := &fakeRunner{}
	outcomes := make([]*Outcome, len(inputs))
	srv, err := New(runner,
		WithConfig(Config{WorkerCount: 3, MaxRetries: 1, RetryDelay: time.Millisecond}),
		WithHandler(func(outcome *Outcome) { outcomes[outcome.Index] = outcome }))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	assert.Error(t, srv.Start(ctx))
	for i, input := range inputs {
		require.NoError(t, srv.Submit(ctx, i, &orchestrator.Request{Kind: model.KindTransform, Input: []byte(input)}))
	}
	require.NoError(t, srv.Wait(ctx))
	srv.Shutdown()

	var testCases = []struct {
		description    string
		index          int
		expectKind     types.Kind
		expectAttempts int
	}{
		{description: "success", index: 0, expectAttempts: 1},
		{description: "validation failure is final", index: 1, expectKind: types.KindValidation, expectAttempts: 1},
		{description: "timeout retried once", index: 2, expectAttempts: 2},
		{description: "persistent timeout", index: 4, expectKind: types.KindTimeout, expectAttempts: 2},
	}
	for _, testCase := range testCases {
		outcome := outcomes[testCase.index]
		require.NotNil(t, outcome, testCase.description)
		assert.Equal(t, inputs[testCase.index], outcome.Result.Family, testCase.description)
		assert.Equal(t, testCase.expectKind, types.KindOf(outcome.Err), testCase.description)
		assert.Equal(t, testCase.expectAttempts, outcome.Attempts, testCase.description)
	}
	for i := range inputs {
		assert.NotNil(t, outcomes[i], inputs[i])
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&runner.peak), int32(3))
}

func TestService_WaitCancelled(t *testing.T) {
	srv, err := New(&fakeRunner{}, WithWorkers(1))
	require.NoError(t, err)
	require.NoError(t, srv.Submit(context.Background(), 0, &orchestrator.Request{Input: []byte("a")}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, srv.Wait(ctx), context.Canceled)
	srv.Shutdown()
	assert.Error(t, srv.Submit(context.Background(), 1, &orchestrator.Request{}))

	_, err = New(nil)
	assert.Error(t, err)
}
