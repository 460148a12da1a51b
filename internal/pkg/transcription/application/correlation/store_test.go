package correlation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConsumesExactlyOnce(t *testing.T) {
	s := NewStore()
	job := s.Issue(2, "alice", 7)
	require.NotEmpty(t, job.JobKey)

	got, ok := s.Resolve(job.JobKey)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, int64(7), got.ConversationID)

	_, ok = s.Resolve(job.JobKey)
	assert.False(t, ok, "a replayed callback must be rejected")
}

func TestConcurrentResolveHasOneWinner(t *testing.T) {
	s := NewStore()
	job := s.Issue(2, "alice", 7)

	const callers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := s.Resolve(job.JobKey); ok {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestUnknownKeyResolvesToNothing(t *testing.T) {
	s := NewStore()
	_, ok := s.Resolve("never-issued")
	assert.False(t, ok)
}

func TestExpiredJobIsUnreachable(t *testing.T) {
	s := NewStore()
	old := s.Issue(2, "alice", 7)
	fresh := s.Issue(3, "bob", 9)

	// Backdate the first job past the sweep cutoff.
	s.mu.Lock()
	j := s.jobs[old.JobKey]
	j.IssuedAt = time.Now().Add(-time.Hour)
	s.jobs[old.JobKey] = j
	s.mu.Unlock()

	dropped := s.ExpireOlderThan(time.Now().Add(-10 * time.Minute))
	assert.Equal(t, 1, dropped)

	_, ok := s.Resolve(old.JobKey)
	assert.False(t, ok, "a late callback for an expired job must be rejected")

	_, ok = s.Resolve(fresh.JobKey)
	assert.True(t, ok, "the sweep must not touch fresh jobs")
	assert.Equal(t, 0, s.Pending())
}

func TestExpireIsIdempotent(t *testing.T) {
	s := NewStore()
	job := s.Issue(2, "alice", 7)

	assert.True(t, s.Expire(job.JobKey))
	assert.False(t, s.Expire(job.JobKey))
}
