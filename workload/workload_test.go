package workload

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpIsHarmless(t *testing.T) {
	w := NewNoOp()
	assert.Equal(t, "noop", w.Name())
	assert.NotPanics(t, func() {
		w.Reset()
		w.RunParallel()
		w.RunLocked()
	})
}

func TestCPUBurnDefaults(t *testing.T) {
	w := NewDefaultCPUBurn()
	assert.Equal(t, DefaultParallelIters, w.P)
	assert.Equal(t, DefaultLockedIters, w.L)
	assert.Equal(t, "cpu_burn", w.Name())
}

func TestCPUBurnConcurrentUseDoesNotRace(t *testing.T) {
	w := NewCPUBurn(64, 8)
	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				w.RunParallel()
				w.RunLocked()
			}
		}()
	}
	wg.Wait()
}

func TestScrambleDependsOnIterationCount(t *testing.T) {
	assert.NotEqual(t, scramble(1), scramble(2))
	assert.Equal(t, uint64(0x9e3779b97f4a7c15), scramble(0))
}
