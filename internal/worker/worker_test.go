package worker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool(t *testing.T) {
	p := NewPool(3)
	var mu sync.Mutex
	count := 0
	for i := 0; i < 5; i++ {
		p.Submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	p.Stop()
	require.Equal(t, 5, count)
}

func TestPoolRecoversPanic(t *testing.T) {
	var mu sync.Mutex
	var recovered []any
	p := NewPool(1, WithPanicHandler(func(v any) {
		mu.Lock()
		recovered = append(recovered, v)
		mu.Unlock()
	}))

	done := false
	p.Submit(func() { panic("boom") })
	p.Submit(nil)
	p.Submit(func() { done = true })
	p.Stop()

	require.Equal(t, []any{"boom"}, recovered)
	require.True(t, done)
}

func TestPoolSubmitAfterStop(t *testing.T) {
	p := NewPool(0)
	p.Stop()
	p.Stop()

	ran := false
	p.Submit(func() { ran = true })
	require.False(t, ran)
}
