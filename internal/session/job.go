package session

import (
	"sync"

	"github.com/google/uuid"
)

// JobKind identifies what a background job does.
type JobKind string

const (
	JobAnalyze JobKind = "analyze"
	JobCompile JobKind = "compile"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is a handle to asynchronous pipeline work. Callers poll Status or
// block on Wait.
type Job struct {
	ID     string
	Kind   JobKind
	Source string

	mu     sync.Mutex
	status JobStatus
	err    error
	output string
	done   chan struct{}
}

func newJob(kind JobKind, source string) *Job {
	return &Job{
		ID:     uuid.NewString(),
		Kind:   kind,
		Source: source,
		status: JobPending,
		done:   make(chan struct{}),
	}
}

// Status returns the current job state.
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the job failure, nil while running or on success.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Output returns the produced file path for compile jobs once done.
func (j *Job) Output() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output
}

// Wait blocks until the job finishes and returns its error.
func (j *Job) Wait() error {
	<-j.done
	return j.Err()
}

func (j *Job) start() {
	j.mu.Lock()
	j.status = JobRunning
	j.mu.Unlock()
}

func (j *Job) finish(output string, err error) {
	j.mu.Lock()
	if err != nil {
		j.status = JobFailed
		j.err = err
	} else {
		j.status = JobDone
		j.output = output
	}
	j.mu.Unlock()
	close(j.done)
}
