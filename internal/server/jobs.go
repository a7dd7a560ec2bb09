package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"voicedecoder/internal/logging"
	"voicedecoder/internal/runexec"
	"voicedecoder/internal/transcription"
)

// JobStatus is the lifecycle state of a queued submission.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// ErrQueueFull is returned when the submission backlog is at capacity.
var ErrQueueFull = errors.New("transcription queue is full")

// DefaultQueueSize bounds the number of waiting submissions.
const DefaultQueueSize = 32

// DefaultRetainedJobs bounds how many finished jobs stay in memory. Older
// ones are still served from history.
const DefaultRetainedJobs = 100

// Job is the service's view of one submission.
type Job struct {
	ID          string     `json:"id"`
	Input       string     `json:"input"`
	Model       string     `json:"model"`
	Language    string     `json:"language,omitempty"`
	Keep        bool       `json:"keep_converted"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	Device      string     `json:"device,omitempty"`
	Text        string     `json:"text,omitempty"`
	FailureKind string     `json:"failure_kind,omitempty"`
	Error       string     `json:"error,omitempty"`
	WorkingPath string     `json:"working_path,omitempty"`
	Reused      bool       `json:"reused,omitempty"`
	PreviousRun string     `json:"previous_run,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

type queuedJob struct {
	id    string
	req   transcription.Request
	reuse bool
}

// jobQueue holds submissions and runs them one at a time.
type jobQueue struct {
	mu      sync.Mutex
	jobs    map[string]*Job
	pending chan queuedJob
	retain  int
	wg      sync.WaitGroup
}

func newJobQueue(size int) *jobQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &jobQueue{
		jobs:    make(map[string]*Job),
		pending: make(chan queuedJob, size),
		retain:  DefaultRetainedJobs,
	}
}

// enqueue registers job and hands it to the worker. onQueued runs under the
// queue lock, so it happens before the worker can report the job as started.
func (q *jobQueue) enqueue(job *Job, req transcription.Request, reuse bool, onQueued func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case q.pending <- queuedJob{id: job.ID, req: req, reuse: reuse}:
		q.jobs[job.ID] = job
		if onQueued != nil {
			onQueued()
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// get returns a copy of the job.
func (q *jobQueue) get(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// list returns copies of all jobs, newest first.
func (q *jobQueue) list() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (q *jobQueue) update(id string, fn func(*Job)) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	fn(job)
	return *job, true
}

// finish applies fn to a job and then evicts the oldest finished jobs beyond
// the retention limit, in one critical section.
func (q *jobQueue) finish(id string, fn func(*Job)) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return Job{}, false
	}
	fn(job)
	snapshot := *job
	q.pruneLocked()
	return snapshot, true
}

func (q *jobQueue) pruneLocked() {
	var finished []*Job
	for _, job := range q.jobs {
		if job.FinishedAt != nil {
			finished = append(finished, job)
		}
	}
	excess := len(finished) - q.retain
	if excess <= 0 {
		return
	}
	sort.Slice(finished, func(i, j int) bool {
		return finished[i].FinishedAt.Before(*finished[j].FinishedAt)
	})
	for _, job := range finished[:excess] {
		delete(q.jobs, job.ID)
	}
}

// startWorker drains the queue on a single goroutine until ctx is cancelled.
func (s *Server) startWorker(ctx context.Context) {
	s.queue.wg.Add(1)
	go func() {
		defer s.queue.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-s.queue.pending:
				s.process(ctx, next)
			}
		}
	}()
}

func (s *Server) process(ctx context.Context, next queuedJob) {
	now := time.Now().UTC()
	job, ok := s.queue.update(next.id, func(j *Job) {
		j.Status = JobRunning
		j.StartedAt = &now
	})
	if !ok {
		return
	}
	s.hub.Broadcast(Event{Type: EventStarted, RunID: job.ID, Data: map[string]any{"input": job.Input, "model": job.Model}})

	req := next.req
	req.Progress = func(percent int) {
		s.queue.update(next.id, func(j *Job) { j.Progress = percent })
		s.hub.Broadcast(Event{Type: EventProgress, RunID: next.id, Data: map[string]any{"percent": percent}})
	}

	record, err := runexec.Run(ctx, runexec.Options{
		Logger:      s.logger,
		Transcriber: s.deps.Transcriber,
		Store:       s.recorder(),
		RunID:       next.id,
		Reuse:       next.reuse,
	}, req)
	if err != nil {
		record.Result.Err = err
	}

	finished := time.Now().UTC()
	job, _ = s.queue.finish(next.id, func(j *Job) {
		j.FinishedAt = &finished
		j.Text = record.Result.Text()
		j.WorkingPath = record.Result.WorkingPath
		j.Device = record.Result.Device.Label()
		j.Reused = record.Reused
		if record.Previous != nil {
			j.PreviousRun = record.Previous.ID
		}
		if record.Result.OK() {
			j.Status = JobCompleted
			j.Progress = 100
			if record.Reused {
				j.Device = ""
			}
			return
		}
		j.Status = JobFailed
		j.Progress = 0
		j.FailureKind = record.Result.Kind().String()
		j.Error = record.Result.Err.Error()
	})

	s.hub.Broadcast(Event{Type: EventResult, RunID: job.ID, Data: map[string]any{
		"status":       job.Status,
		"text":         job.Text,
		"failure_kind": job.FailureKind,
		"device":       job.Device,
	}})
	s.logger.Debug("job finished",
		logging.String("run_id", job.ID),
		logging.String("status", string(job.Status)),
	)
}
