package app

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/raysh454/phishguard/internal/classifier"
	"github.com/raysh454/phishguard/internal/engine"
	"github.com/raysh454/phishguard/internal/logging"
	"github.com/raysh454/phishguard/internal/model"
)

type JobEventType string

const (
	JobEventStatus   JobEventType = "status"
	JobEventProgress JobEventType = "progress"
	JobEventResult   JobEventType = "result"
)

type JobEvent struct {
	JobID string       `json:"job_id"`
	Type  JobEventType `json:"type"`

	// For status changes
	Status JobStatus `json:"status,omitempty"`
	Error  string    `json:"error,omitempty"`

	// For progress
	Processed int        `json:"processed,omitempty"`
	Total     int        `json:"total,omitempty"`
	Item      *JobResult `json:"item,omitempty"`
}

type JobStatus string

const (
	JobPending  JobStatus = "pending"
	JobRunning  JobStatus = "running"
	JobDone     JobStatus = "done"
	JobFailed   JobStatus = "failed"
	JobCanceled JobStatus = "canceled"
)

// JobResult is the outcome for one URL of a batch job.
type JobResult struct {
	Index  int           `json:"index"`
	URL    string        `json:"url"`
	Result *model.Result `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

type Job struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	URLs      []string      `json:"urls"`
	Status    JobStatus     `json:"status"`
	Error     string        `json:"error,omitempty"`
	Processed int           `json:"processed"`
	Total     int           `json:"total"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Results   []JobResult   `json:"results,omitempty"`
	Events    chan JobEvent `json:"-"`
}

func (j *Job) snapshot() *Job {
	cp := *j
	cp.URLs = slices.Clone(j.URLs)
	cp.Results = slices.Clone(j.Results)
	return &cp
}

// BatchClassifier is the part of the engine batch jobs need.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, urls []string, onDone func(engine.BatchItem)) []engine.BatchItem
}

// Orchestrator runs batch classification jobs in the background and tracks
// their progress. Each job has a single event stream; it is closed when the
// job ends.
type Orchestrator struct {
	classifier BatchClassifier
	logger     logging.Logger

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	closed     bool
}

// ErrOrchestratorClosed is returned when a job is started after Close.
var ErrOrchestratorClosed = errors.New("orchestrator is closed")

func NewOrchestrator(c BatchClassifier, logger logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Orchestrator{
		classifier: c,
		logger:     logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

func (o *Orchestrator) emitJobEvent(jobID string, ev JobEvent) {
	o.jobsMu.Lock()
	job, ok := o.jobs[jobID]
	o.jobsMu.Unlock()
	if !ok || job == nil || job.Events == nil {
		return
	}

	// Non-blocking send; drop if buffer is full.
	select {
	case job.Events <- ev:
	default:
	}
}

func (o *Orchestrator) deleteCancel(jobID string) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	delete(o.jobCancels, jobID)
}

func (o *Orchestrator) getCancel(jobID string) context.CancelFunc {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	return o.jobCancels[jobID]
}

func (o *Orchestrator) updateJob(jobID string, fn func(j *Job)) {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	if j, ok := o.jobs[jobID]; ok {
		fn(j)
	}
}

// StartBatchJob classifies urls in the background. The job stops early when
// ctx ends or CancelJob is called. The returned snapshot carries the job's
// event stream.
func (o *Orchestrator) StartBatchJob(ctx context.Context, urls []string) (*Job, error) {
	if len(urls) == 0 {
		return nil, errors.New("batch job needs at least one url")
	}
	if o.classifier == nil {
		return nil, errors.New("orchestrator has no classifier")
	}

	jobID := uuid.New().String()
	job := &Job{
		ID:        jobID,
		Type:      "batch",
		URLs:      slices.Clone(urls),
		Status:    JobPending,
		Total:     len(urls),
		StartedAt: time.Now().UTC(),
		Results:   make([]JobResult, 0, len(urls)),
		// Room for every progress event plus the status changes.
		Events: make(chan JobEvent, len(urls)+4),
	}

	jobCtx, cancel := context.WithCancel(ctx)

	o.jobsMu.Lock()
	if o.closed {
		o.jobsMu.Unlock()
		cancel()
		return nil, ErrOrchestratorClosed
	}
	o.jobs[jobID] = job
	o.jobCancels[jobID] = cancel
	o.jobsMu.Unlock()

	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobPending})
	snap := o.GetJob(jobID)

	go o.runBatch(jobCtx, jobID, job.URLs)

	o.logger.Info("started batch job",
		logging.Field{Key: "job_id", Value: jobID},
		logging.Field{Key: "urls", Value: len(urls)})
	return snap, nil
}

func (o *Orchestrator) runBatch(ctx context.Context, jobID string, urls []string) {
	defer func() {
		var events chan JobEvent
		o.updateJob(jobID, func(j *Job) {
			j.EndedAt = time.Now().UTC()
			events = j.Events
		})
		if cancel := o.getCancel(jobID); cancel != nil {
			cancel()
		}
		o.deleteCancel(jobID)

		// Close events channel so websocket loop can terminate cleanly
		if events != nil {
			close(events)
		}
	}()

	o.updateJob(jobID, func(j *Job) { j.Status = JobRunning })
	o.emitJobEvent(jobID, JobEvent{JobID: jobID, Type: JobEventStatus, Status: JobRunning})

	total := len(urls)
	var fatal error
	var fatalOnce sync.Once

	items := o.classifier.ClassifyBatch(ctx, urls, func(it engine.BatchItem) {
		res := toJobResult(it)
		if it.Err != nil && errors.Is(it.Err, classifier.ErrArtifactsUnavailable) {
			fatalOnce.Do(func() { fatal = it.Err })
		}

		var processed int
		o.updateJob(jobID, func(j *Job) {
			j.Processed++
			processed = j.Processed
		})
		o.emitJobEvent(jobID, JobEvent{
			JobID:     jobID,
			Type:      JobEventProgress,
			Processed: processed,
			Total:     total,
			Item:      &res,
		})
	})

	results := make([]JobResult, len(items))
	for i, it := range items {
		results[i] = toJobResult(it)
	}

	status, errMsg := JobDone, ""
	switch {
	case ctx.Err() != nil:
		status, errMsg = JobCanceled, ctx.Err().Error()
	case fatal != nil:
		status, errMsg = JobFailed, fatal.Error()
	}

	o.updateJob(jobID, func(j *Job) {
		j.Status = status
		j.Error = errMsg
		j.Results = results
	})

	evType := JobEventStatus
	if status == JobDone {
		evType = JobEventResult
	}
	o.emitJobEvent(jobID, JobEvent{
		JobID:     jobID,
		Type:      evType,
		Status:    status,
		Error:     errMsg,
		Processed: total,
		Total:     total,
	})

	o.logger.Info("batch job finished",
		logging.Field{Key: "job_id", Value: jobID},
		logging.Field{Key: "status", Value: string(status)})
}

func toJobResult(it engine.BatchItem) JobResult {
	res := JobResult{Index: it.Index, URL: it.URL}
	if it.Err != nil {
		res.Error = it.Err.Error()
		return res
	}
	if it.Verdict != nil {
		r := it.Verdict.Result()
		res.Result = &r
	}
	return res
}

func (o *Orchestrator) CancelJob(jobID string) {
	cancel := o.getCancel(jobID)
	if cancel != nil {
		cancel()
	}
}

// GetJob returns a snapshot of the job, or nil when the id is unknown.
func (o *Orchestrator) GetJob(jobID string) *Job {
	o.jobsMu.Lock()
	defer o.jobsMu.Unlock()
	j, ok := o.jobs[jobID]
	if !ok {
		return nil
	}
	return j.snapshot()
}

// ListJobs returns snapshots of every job, oldest first.
func (o *Orchestrator) ListJobs() []*Job {
	o.jobsMu.Lock()
	out := make([]*Job, 0, len(o.jobs))
	for _, j := range o.jobs {
		out = append(out, j.snapshot())
	}
	o.jobsMu.Unlock()

	slices.SortFunc(out, func(a, b *Job) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Close cancels every running job and refuses new ones. It is safe to call
// more than once.
func (o *Orchestrator) Close() {
	o.jobsMu.Lock()
	o.closed = true
	cancels := make([]context.CancelFunc, 0, len(o.jobCancels))
	for _, c := range o.jobCancels {
		cancels = append(cancels, c)
	}
	o.jobsMu.Unlock()

	for _, c := range cancels {
		c()
	}
}
