package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTasks(n int) <-chan task {
	ch := make(chan task, n)
	for i := range n {
		ch <- task{Seq: i, Genome: Genome{ID: "g" + string(rune('0'+i%10))}}
	}
	close(ch)
	return ch
}

func TestFanOut_OrderPreservation(t *testing.T) {
	results := fanOut(makeTasks(200), 8, func(tk task) *GenomeResult {
		return &GenomeResult{GenomeID: tk.Genome.ID}
	})

	var collected []int
	seq := 0
	collectOrdered(results, func(gr *GenomeResult) {
		collected = append(collected, seq)
		seq++
	})

	require.Len(t, collected, 200)
	for i, s := range collected {
		assert.Equal(t, i, s)
	}
}

func TestFanOut_SingleWorker(t *testing.T) {
	count := 0
	results := fanOut(makeTasks(50), 1, func(tk task) *GenomeResult {
		return &GenomeResult{GenomeID: tk.Genome.ID}
	})
	collectOrdered(results, func(*GenomeResult) { count++ })
	assert.Equal(t, 50, count)
}

func TestFanOut_ZeroWorkersDefaults(t *testing.T) {
	count := 0
	results := fanOut(makeTasks(10), 0, func(tk task) *GenomeResult {
		return &GenomeResult{GenomeID: tk.Genome.ID}
	})
	collectOrdered(results, func(*GenomeResult) { count++ })
	assert.Equal(t, 10, count)
}

func TestFanOut_EmptyInput(t *testing.T) {
	ch := make(chan task)
	close(ch)

	count := 0
	results := fanOut(ch, 4, func(tk task) *GenomeResult {
		return &GenomeResult{}
	})
	collectOrdered(results, func(*GenomeResult) { count++ })
	assert.Equal(t, 0, count)
}
