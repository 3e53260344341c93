package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/reframe/service/messaging"
)

type job struct {
	Name     string
	Attempts int
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[job](DefaultConfig())
	ctx := context.Background()
	payload := &job{Name: "mt103"}
	require.NoError(t, queue.Publish(ctx, payload))
	payload.Name = "changed"
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "mt103", message.T().Name)
	assert.NotEmpty(t, message.ID())
	assert.Equal(t, 0, queue.Size())
	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack())
	assert.Error(t, message.Nack(nil))
}

func TestQueue_Nack(t *testing.T) {
	var testCases = []struct {
		description string
		maxRetries  int
		deadLetter  bool
		expectRuns  int
		expectDLQ   int
	}{
		{description: "redelivered until retries exhausted", maxRetries: 2, deadLetter: true, expectRuns: 3, expectDLQ: 1},
		{description: "no retries", maxRetries: 0, deadLetter: true, expectRuns: 1, expectDLQ: 1},
		{description: "dropped without dead letter", maxRetries: 1, expectRuns: 2},
	}
	for _, testCase := range testCases {
		queue := NewQueue[job](Config{MaxRetries: testCase.maxRetries, RetryDelay: time.Millisecond, DeadLetter: testCase.deadLetter})
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		require.NoError(t, queue.Publish(ctx, &job{Name: testCase.description}), testCase.description)
		runs := 0
		var id string
		for {
			message, err := queue.Consume(ctx)
			if err != nil {
				break
			}
			if id == "" {
				id = message.ID()
			}
			assert.Equal(t, id, message.ID(), testCase.description)
			assert.Equal(t, runs, message.T().Attempts, testCase.description)
			runs++
			message.T().Attempts++
			require.NoError(t, message.Nack(errors.New("timeout")), testCase.description)
		}
		cancel()
		assert.Equal(t, testCase.expectRuns, runs, testCase.description)
		assert.Equal(t, testCase.expectDLQ, queue.DLQSize(), testCase.description)
		payloads, errs := queue.DeadLetters()
		assert.Len(t, payloads, testCase.expectDLQ, testCase.description)
		for _, err := range errs {
			assert.EqualError(t, err, "timeout", testCase.description)
		}
	}
}

func TestQueue_Close(t *testing.T) {
	queue := NewQueue[job](DefaultConfig())
	done := make(chan error, 1)
	go func() {
		_, err := queue.Consume(context.Background())
		done <- err
	}()
	require.NoError(t, queue.Close())
	require.NoError(t, queue.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, messaging.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("consumer was not released")
	}
	assert.ErrorIs(t, queue.Publish(context.Background(), &job{}), messaging.ErrClosed)
}

func TestQueue_PublishCancelled(t *testing.T) {
	queue := NewQueue[job](Config{QueueBuffer: 1})
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, queue.Publish(ctx, &job{Name: "a"}))
	cancel()
	assert.ErrorIs(t, queue.Publish(ctx, &job{Name: "b"}), context.Canceled)
}
