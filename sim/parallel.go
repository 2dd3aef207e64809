package sim

import (
	"runtime"
	"sync"
)

// defaultParallelThreshold is the minimum item count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const defaultParallelThreshold = 64

// workChunk represents a range of particles for a worker to process.
type workChunk struct {
	start, end int
	fn         func(start, end int)
}

// WorkerPool is a persistent set of goroutines that run Dispatch chunks.
// Dispatch blocks until every chunk has finished, so each call is a barrier.
// A WorkerPool serves one dispatching goroutine at a time.
type WorkerPool struct {
	numWorkers int
	threshold  int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewWorkerPool creates a pool. workers <= 0 uses GOMAXPROCS; threshold <= 0
// uses the default of 64 items. Workers start lazily on the first parallel dispatch.
func NewWorkerPool(workers, threshold int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if threshold <= 0 {
		threshold = defaultParallelThreshold
	}
	return &WorkerPool{numWorkers: workers, threshold: threshold}
}

// Workers returns the number of worker goroutines.
func (p *WorkerPool) Workers() int {
	return p.numWorkers
}

// startWorkers launches persistent worker goroutines.
func (p *WorkerPool) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop signals all workers to exit and waits for them. The pool restarts on
// the next parallel dispatch.
func (p *WorkerPool) Stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.fn(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Dispatch splits [0, n) into contiguous chunks, one per worker, and waits
// for all of them. Small n runs inline on the caller.
func (p *WorkerPool) Dispatch(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < p.threshold || p.numWorkers == 1 {
		fn(0, n)
		return
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end, fn: fn}
		chunksDispatched++
	}

	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}
