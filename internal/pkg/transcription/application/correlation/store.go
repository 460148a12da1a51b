package correlation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingJob correlates an issued upload handle with the user and
// conversation the eventual transcription belongs to. Jobs are ephemeral:
// they live only in memory and only until fulfilled or expired.
type PendingJob struct {
	JobKey         string
	UserID         int64
	Username       string
	ConversationID int64
	IssuedAt       time.Time
}

// Store is the upload correlation table. A job moves Issued -> Fulfilled
// (consumed by exactly one callback) or Issued -> Expired (swept after its
// TTL); there are no other transitions. A single coarse lock serializes all
// mutations, which is plenty at this scale.
type Store struct {
	mu   sync.Mutex
	jobs map[string]PendingJob
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]PendingJob)}
}

// Issue mints a job with a fresh unguessable key and records it as pending.
func (s *Store) Issue(userID int64, username string, conversationID int64) PendingJob {
	job := PendingJob{
		JobKey:         uuid.NewString(),
		UserID:         userID,
		Username:       username,
		ConversationID: conversationID,
		IssuedAt:       time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.JobKey] = job
	s.mu.Unlock()
	return job
}

// Resolve consumes the job for jobKey. The entry is removed under the lock
// as part of the lookup, so of two concurrent callbacks for the same key
// exactly one wins; replays and expired keys report false.
func (s *Store) Resolve(jobKey string) (PendingJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobKey]
	if !ok {
		return PendingJob{}, false
	}
	delete(s.jobs, jobKey)
	return job, true
}

// Expire drops a still-pending job. Reports whether anything was dropped.
func (s *Store) Expire(jobKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobKey]; !ok {
		return false
	}
	delete(s.jobs, jobKey)
	return true
}

// ExpireOlderThan sweeps every job issued before cutoff and returns how many
// were dropped.
func (s *Store) ExpireOlderThan(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, job := range s.jobs {
		if job.IssuedAt.Before(cutoff) {
			delete(s.jobs, key)
			dropped++
		}
	}
	return dropped
}

// Pending reports the number of unconsumed jobs.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
