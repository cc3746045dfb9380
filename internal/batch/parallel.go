package batch

import (
	"runtime"
	"sync"
)

// task holds one genome queued for processing.
type task struct {
	Seq    int
	Genome Genome
}

// taskResult holds the processed result for one genome.
type taskResult struct {
	Seq    int
	Result *GenomeResult
}

// fanOut processes tasks on a bounded pool of workers. Results arrive
// on the returned channel in completion order; use collectOrdered to
// consume them in sequence order. A worker count of 0 means
// runtime.NumCPU(). Workers share no mutable state: each produces an
// immutable GenomeResult merged by the single collecting goroutine.
func fanOut(tasks <-chan task, workers int, process func(task) *GenomeResult) <-chan taskResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan taskResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for t := range tasks {
				results <- taskResult{Seq: t.Seq, Result: process(t)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// collectOrdered calls fn for each result in sequence-number order,
// buffering out-of-order arrivals until the next expected sequence
// number is available. Blocks until the results channel is closed.
func collectOrdered(results <-chan taskResult, fn func(*GenomeResult)) {
	pending := make(map[int]taskResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			fn(rr.Result)
		}
	}
}
