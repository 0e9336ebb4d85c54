package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mhalver/gatefold/pkg/errors"
)

// jobTimeout bounds how long a queued optimization may run.
const jobTimeout = 5 * time.Minute

type jobStatus string

const (
	jobStatusPending jobStatus = "pending"
	jobStatusRunning jobStatus = "running"
	jobStatusDone    jobStatus = "done"
	jobStatusFailed  jobStatus = "failed"
)

// job tracks one asynchronous optimization from submission to completion.
type job struct {
	ID      uuid.UUID
	Created time.Time

	mu     sync.Mutex
	status jobStatus
	res    *optimizeResponse
	err    error
}

func (j *job) Status() jobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

func (j *job) setRunning() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = jobStatusRunning
}

func (j *job) finish(res *optimizeResponse) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = jobStatusDone
	j.res = res
}

func (j *job) fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = jobStatusFailed
	j.err = err
}

func (j *job) result() *optimizeResponse {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.res
}

func (j *job) errMessage() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err == nil {
		return ""
	}
	return errors.UserMessage(j.err)
}

// jobStore holds jobs in memory, keyed by UUID.
type jobStore struct {
	jobs sync.Map // uuid.UUID -> *job
}

func newJobStore() *jobStore {
	return &jobStore{}
}

func (s *jobStore) create() *job {
	j := &job{
		ID:      uuid.New(),
		Created: time.Now(),
		status:  jobStatusPending,
	}
	s.jobs.Store(j.ID, j)
	return j
}

func (s *jobStore) get(id string) (*job, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeJobNotFound, err, "invalid job id %q", id)
	}
	v, ok := s.jobs.Load(parsed)
	if !ok {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	return v.(*job), nil
}
