package pool

import (
	"io"
	"runtime"
	"sync"
)

// Pool is a fixed set of worker goroutines used to parallelize
// CPU-bound work such as modular exponentiation and prime searching.
//
// A nil *Pool is valid and runs everything serially, so functions can take
// an optional pool without branching at every call site.
type Pool struct {
	size int
	work chan func()
	done sync.WaitGroup
}

// NewPool creates a Pool with a certain number of workers.
//
// If count is 0, this defaults to the number of available CPUs.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.GOMAXPROCS(0)
	}
	p := &Pool{size: count, work: make(chan func())}
	p.done.Add(count)
	for i := 0; i < count; i++ {
		go func() {
			defer p.done.Done()
			for task := range p.work {
				task()
			}
		}()
	}
	return p
}

// TearDown stops the workers. The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	close(p.work)
	p.done.Wait()
}

// Parallelize calls f for each index in [0, count) and returns the results
// in order. Calls are distributed over the pool's workers.
func (p *Pool) Parallelize(count int, f func(i int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := 0; i < count; i++ {
			results[i] = f(i)
		}
		return results
	}
	var pending sync.WaitGroup
	pending.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.work <- func() {
			defer pending.Done()
			results[i] = f(i)
		}
	}
	pending.Wait()
	return results
}

// Search calls f repeatedly from all workers until count non-nil results
// have been produced, and returns those results.
//
// f is expected to fail most of the time, returning nil; the workers keep
// drawing fresh attempts until enough succeed.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	if p == nil {
		results := make([]interface{}, 0, count)
		for len(results) < count {
			if r := f(); r != nil {
				results = append(results, r)
			}
		}
		return results
	}

	found := make(chan interface{})
	quit := make(chan struct{})
	for i := 0; i < p.size; i++ {
		p.work <- func() {
			for {
				select {
				case <-quit:
					return
				default:
				}
				r := f()
				if r == nil {
					continue
				}
				select {
				case found <- r:
				case <-quit:
					return
				}
			}
		}
	}

	results := make([]interface{}, 0, count)
	for len(results) < count {
		results = append(results, <-found)
	}
	close(quit)
	return results
}

// LockedReader wraps a reader so that it can be shared between the pool's
// workers without interleaved reads.
type LockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

// NewLockedReader wraps a reader for concurrent use.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{r: r}
}

func (r *LockedReader) Read(out []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Read(out)
}
