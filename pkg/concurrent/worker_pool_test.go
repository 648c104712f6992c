package concurrent_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lintang-b-s/bk-mincut-partitioner/pkg/concurrent"
)

type squareResult struct {
	jobId  int
	square int
}

func TestWorkerPoolCollectsEveryJob(t *testing.T) {
	const numJobs = 100

	wp := concurrent.NewWorkerPool[int, squareResult](4, numJobs)
	for i := 0; i < numJobs; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Start(func(job int) squareResult {
		return squareResult{jobId: job, square: job * job}
	})
	wp.Wait()

	got := make([]squareResult, 0, numJobs)
	for res := range wp.CollectResults() {
		got = append(got, res)
	}
	require.Len(t, got, numJobs)

	sort.Slice(got, func(i, j int) bool { return got[i].jobId < got[j].jobId })
	for i, res := range got {
		require.Equal(t, i, res.jobId)
		require.Equal(t, i*i, res.square)
	}
}

func TestWorkerPoolSingleWorker(t *testing.T) {
	wp := concurrent.NewWorkerPool[int, int](1, 10)
	for i := 0; i < 10; i++ {
		wp.AddJob(i)
	}
	wp.Close()
	wp.Start(func(job int) int { return job + 1 })
	wp.Wait()

	sum := 0
	for res := range wp.CollectResults() {
		sum += res
	}
	require.Equal(t, 55, sum)
}
