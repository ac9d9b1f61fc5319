// Package scheduler implements the job queue, HotLot priority handling,
// vehicle assignment pass, and pairwise collision avoidance. Grounded on
// OHT2/simulator/core/scheduler.py, restructured to use a
// container/heap-backed priority queue instead of a full-slice re-sort on
// every AddJob.
package scheduler

import (
	"github.com/junryge/ASAS/internal/simcore"
)

// jobQueue is a min-heap ordered by (-priority, created_at) so higher
// priority and, among ties, older jobs are extracted first.
type jobQueue []*simcore.TransportJob

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	if q[i].Priority != q[j].Priority {
		return q[i].Priority > q[j].Priority // higher priority first
	}
	return q[i].CreatedAt < q[j].CreatedAt // older first
}

func (q jobQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *jobQueue) Push(x any) {
	*q = append(*q, x.(*simcore.TransportJob))
}

func (q *jobQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// PendingJobs returns a snapshot of the pending queue in priority order
// without mutating it.
func (q jobQueue) PendingJobs() []*simcore.TransportJob {
	out := make([]*simcore.TransportJob, len(q))
	copy(out, q)
	// heap order is not fully sorted; sort a copy for callers that need
	// priority order (e.g. the assignment pass, HotLot supervision).
	heapSortCopy(out)
	return out
}

func heapSortCopy(jobs []*simcore.TransportJob) {
	less := func(i, j int) bool {
		if jobs[i].Priority != jobs[j].Priority {
			return jobs[i].Priority > jobs[j].Priority
		}
		return jobs[i].CreatedAt < jobs[j].CreatedAt
	}
	// Simple insertion sort: queues are small (bounded by MaxJobs) and this
	// keeps the dependency surface to container/heap only.
	for i := 1; i < len(jobs); i++ {
		for j := i; j > 0 && less(jobs[j], jobs[j-1]); j-- {
			jobs[j], jobs[j-1] = jobs[j-1], jobs[j]
		}
	}
}
