package intervention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannel_TakeConsumesOnce(t *testing.T) {
	ch := NewChannel()

	_, ok := ch.Take()
	assert.False(t, ok)

	ch.Post("stop and summarize")
	assert.True(t, ch.Pending())

	msg, ok := ch.Take()
	assert.True(t, ok)
	assert.Equal(t, "stop and summarize", msg)

	_, ok = ch.Take()
	assert.False(t, ok)
	assert.False(t, ch.Pending())
}

func TestChannel_PostReplacesUnconsumed(t *testing.T) {
	ch := NewChannel()
	ch.Post("first")
	ch.Post("second")

	msg, ok := ch.Take()
	require.True(t, ok)
	assert.Equal(t, "second", msg)
}

func TestChannel_NotifyCoalesces(t *testing.T) {
	ch := NewChannel()
	ch.Post("a")
	ch.Post("b")

	select {
	case <-ch.Notify():
	default:
		t.Fatal("expected a notification")
	}

	select {
	case <-ch.Notify():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestBoard_PauseRequiresActiveStreamer(t *testing.T) {
	b := NewBoard()
	assert.False(t, b.Streaming())
	assert.False(t, b.Pause())

	restore := b.Activate(NewChannel())
	assert.True(t, b.Streaming())
	assert.True(t, b.Pause())
	assert.False(t, b.Pause(), "already paused")

	b.Resume("")
	restore()
	assert.False(t, b.Streaming())
}

func TestBoard_ActivateRestoresPrevious(t *testing.T) {
	b := NewBoard()
	superior := NewChannel()
	subordinate := NewChannel()

	restoreSuperior := b.Activate(superior)
	restoreSubordinate := b.Activate(subordinate)
	assert.Same(t, subordinate, b.Active())

	restoreSubordinate()
	assert.Same(t, superior, b.Active())

	restoreSuperior()
	assert.Nil(t, b.Active())
}

func TestBoard_WaitBlocksUntilResume(t *testing.T) {
	b := NewBoard()
	ch := NewChannel()
	defer b.Activate(ch)()

	require.NoError(t, b.Wait(context.Background()))
	require.True(t, b.Pause())

	select {
	case <-ch.Notify():
	default:
		t.Fatal("pause should wake the active streamer")
	}

	done := make(chan error, 1)
	go func() { done <- b.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	b.Resume("use the other file")

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Resume")
	}

	msg, ok := ch.Take()
	assert.True(t, ok)
	assert.Equal(t, "use the other file", msg)
	assert.False(t, b.Paused())
}

func TestBoard_WaitHonorsContext(t *testing.T) {
	b := NewBoard()
	defer b.Activate(NewChannel())()
	require.True(t, b.Pause())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}

func TestBoard_NilWaitNeverBlocks(t *testing.T) {
	var b *Board
	assert.NoError(t, b.Wait(context.Background()))
}

func TestBoard_ExitReleasesWaiters(t *testing.T) {
	b := NewBoard()
	ch := NewChannel()
	defer b.Activate(ch)()
	require.True(t, b.Pause())
	<-ch.Notify()

	done := make(chan error, 1)
	go func() { done <- b.Wait(context.Background()) }()

	b.Exit()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrExit)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Exit")
	}

	assert.True(t, b.Exited())
	assert.False(t, b.Pause(), "no pause after exit")
	assert.ErrorIs(t, b.Wait(context.Background()), ErrExit)
}
