package future

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteThenWait(t *testing.T) {
	f, p := New[int]()
	p.Complete(42)
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFailThenWait(t *testing.T) {
	f, p := New[int]()
	want := errors.New("boom")
	p.Fail(want)
	_, err := f.Wait()
	assert.Equal(t, want, err)
}

func TestCompletionIsIdempotent(t *testing.T) {
	f, p := New[int]()
	p.Complete(1)
	p.Complete(2)
	p.Fail(errors.New("ignored"))
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestUnitIsAlreadyComplete(t *testing.T) {
	f := Unit("ready")
	v, err := f.Wait()
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
}

func TestChannelSignalsCompletion(t *testing.T) {
	f, p := New[int]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		p.Complete(7)
	}()

	select {
	case <-f.Channel():
		v, err := f.Wait()
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	case <-time.After(2 * time.Second):
		t.Fatal("future did not complete")
	}
}

func TestMap(t *testing.T) {
	f, p := New[int]()
	mapped := Map(f, func(v int) string { return "value" })
	p.Complete(5)
	v, err := mapped.Wait()
	require.NoError(t, err)
	assert.Equal(t, "value", v)
}

func TestMapPropagatesFailure(t *testing.T) {
	f, p := New[int]()
	mapped := Map(f, func(v int) int { return v * 2 })
	want := errors.New("upstream failed")
	p.Fail(want)
	_, err := mapped.Wait()
	assert.Equal(t, want, err)
}

func TestAndThen(t *testing.T) {
	f, p := New[int]()
	chained := AndThen(f, func(v int) *Future[int] {
		return Unit(v + 1)
	})
	p.Complete(10)
	v, err := chained.Wait()
	require.NoError(t, err)
	assert.Equal(t, 11, v)
}
