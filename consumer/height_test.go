package consumer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWatchDefaultsToNoConsumers(t *testing.T) {
	w := NewWatch()
	assert.True(t, w.Get().IsNoConsumers())
}

func TestWatchSetAndGet(t *testing.T) {
	w := NewWatch()
	w.Set(Height(42))

	got := w.Get()
	assert.False(t, got.IsNoConsumers())
	assert.False(t, got.IsNotReady())
	h, ok := got.BlockNumber()
	assert.True(t, ok)
	assert.Equal(t, uint64(42), h)
}

func TestWatchIsLastWriteWins(t *testing.T) {
	w := NewWatch()
	w.Set(Height(1))
	w.Set(Height(2))
	w.Set(Height(3))

	h, ok := w.Get().BlockNumber()
	assert.True(t, ok)
	assert.Equal(t, uint64(3), h)
}

func TestWatchSubscribeReceivesUpdate(t *testing.T) {
	w := NewWatch()
	sub := w.Subscribe()

	w.Set(Height(7))

	select {
	case status := <-sub:
		h, ok := status.BlockNumber()
		assert.True(t, ok)
		assert.Equal(t, uint64(7), h)
	default:
		t.Fatal("expected a status on the subscription channel")
	}
}

func TestWatchSetNeverBlocksOnSlowSubscriber(t *testing.T) {
	w := NewWatch()
	_ = w.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := uint64(0); i < 10; i++ {
			w.Set(Height(i))
		}
		close(done)
	}()

	select {
	case <-done:
	default:
	}
	<-done // Set must return even with a full, undrained subscriber channel
}

func TestBlockNumberFalseForNonHeightVariants(t *testing.T) {
	_, ok := NoConsumers().BlockNumber()
	assert.False(t, ok)
	_, ok = NotReady().BlockNumber()
	assert.False(t, ok)
}
