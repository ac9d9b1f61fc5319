package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/junryge/ASAS/internal/simcore"
)

func job(id int, priority simcore.JobPriority, createdAt int64) *simcore.TransportJob {
	return &simcore.TransportJob{ID: id, Priority: priority, CreatedAt: createdAt}
}

func TestJobQueue_PriorityOrder(t *testing.T) {
	q := jobQueue{
		job(1, simcore.PriorityNormal, 100),
		job(2, simcore.PriorityHotLot, 200),
		job(3, simcore.PriorityHigh, 50),
	}
	out := q.PendingJobs()
	assert.Equal(t, []int{2, 3, 1}, []int{out[0].ID, out[1].ID, out[2].ID})
}

func TestJobQueue_TieBrokenByAge(t *testing.T) {
	q := jobQueue{
		job(1, simcore.PriorityNormal, 200),
		job(2, simcore.PriorityNormal, 100),
	}
	out := q.PendingJobs()
	assert.Equal(t, 2, out[0].ID) // older first
	assert.Equal(t, 1, out[1].ID)
}

func TestJobQueue_PendingJobsDoesNotMutate(t *testing.T) {
	q := jobQueue{job(1, simcore.PriorityNormal, 1), job(2, simcore.PriorityHotLot, 2)}
	_ = q.PendingJobs()
	assert.Equal(t, 1, q[0].ID) // underlying slice order untouched
}
