package supervisor

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryTakeEmptiesSlot(t *testing.T) {
	var r Registry
	assert.Nil(t, r.Take())

	h := &WorkerHandle{}
	r.Put(h)

	assert.Same(t, h, r.Take())
	assert.Nil(t, r.Take())
}

func TestRegistryPutReplaces(t *testing.T) {
	var r Registry
	first := &WorkerHandle{}
	second := &WorkerHandle{}

	r.Put(first)
	r.Put(second)

	assert.Same(t, second, r.Take())
	assert.Nil(t, r.Take())
}

func TestRegistryConcurrentTakeGrantsSingleOwnership(t *testing.T) {
	var r Registry
	r.Put(&WorkerHandle{})

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Take() != nil {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load(), "only one caller may own the handle")
}

func TestHandleTerminateOnEmptyHandle(t *testing.T) {
	// A handle without a process is a no-op, as is a nil handle.
	var h *WorkerHandle
	h.Terminate()

	(&WorkerHandle{}).Terminate()
	assert.Equal(t, 0, (&WorkerHandle{}).Pid())
}
