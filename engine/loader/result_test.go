package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/stretchr/testify/assert"
)

func TestResultCompletesOnce(t *testing.T) {
	r := newResult("id", "url")
	assert.Equal(t, StatePending, r.State())

	n := scene.NewNode()
	assert.True(t, r.complete(n, nil))
	assert.False(t, r.complete(nil, errors.New("late")))

	assert.Equal(t, StateSucceeded, r.State())
	assert.Equal(t, n, r.Node())
	assert.NoError(t, r.Err())

	select {
	case <-r.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestResultWaitHonorsContext(t *testing.T) {
	r := newResult("id", "url")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StatePending, r.State())
}

func TestResultCallbacksRunOnCompletion(t *testing.T) {
	r := newResult("id", "url")
	var got []error
	r.OnComplete(func(_ scene.Node, err error) { got = append(got, err) })
	r.OnComplete(nil)

	boom := errors.New("boom")
	r.complete(nil, boom)
	r.complete(nil, errors.New("ignored"))

	assert.Equal(t, []error{boom}, got)
	assert.Equal(t, "failed", r.State().String())
}
