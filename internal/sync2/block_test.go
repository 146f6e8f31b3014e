package sync2

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBlockSuspendsUntilReleased(t *testing.T) {
	b := NewBlock(false)
	started := make(chan struct{})
	done := make(chan struct{})

	go func() {
		close(started)
		b.Block()
		close(done)
	}()

	<-started
	select {
	case <-done:
		t.Fatal("Block returned before Release")
	case <-time.After(50 * time.Millisecond):
	}

	b.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Block did not return after Release")
	}
}

func TestBlockAlreadyReleasedNeverWaits(t *testing.T) {
	b := NewBlock(true)
	done := make(chan struct{})
	go func() {
		b.Block()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("an already-released Block must not suspend")
	}
}

func TestBlockTimeoutReturnsOnTimeout(t *testing.T) {
	b := NewBlock(false)
	begin := time.Now()
	b.BlockTimeout(50 * time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(begin), 50*time.Millisecond)
	assert.False(t, b.IsReleased())
}

func TestBlockTimeoutReturnsEarlyOnRelease(t *testing.T) {
	b := NewBlock(false)
	go func() {
		time.Sleep(20 * time.Millisecond)
		b.Release()
	}()

	begin := time.Now()
	b.BlockTimeout(time.Second)
	assert.Less(t, time.Since(begin), 500*time.Millisecond)
}

func TestBlockResetUnreleases(t *testing.T) {
	b := NewBlock(true)
	b.Reset()
	assert.False(t, b.IsReleased())
}
