// Package uploads tracks concurrent file transfers through a small per-task
// state machine: uploading -> {completed, error, cancelled}. Terminal states
// are absorbing. The queue itself never decides whether an upload is allowed;
// callers gate enqueueing on the access package's checks.
package uploads

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/omnisent/omnisent/internal/client/models"
	"github.com/omnisent/omnisent/internal/logging"
)

// Status is the lifecycle state of one upload task.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// terminal reports whether no further transitions are allowed from s.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusError || s == StatusCancelled
}

// Task is a read-only snapshot of one transfer.
type Task struct {
	ID       string
	Name     string
	Path     string
	FolderID string
	Progress int
	Status   Status
	Err      string
}

// Uploader is the slice of the API client the queue needs.
type Uploader interface {
	Upload(ctx context.Context, folderID, name string, src io.Reader, size int64, progress func(int)) (*models.Resource, error)
}

// openFile is a test seam for reading upload sources from disk.
var openFile = func(path string) (io.ReadCloser, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

const (
	defaultConcurrency = 4
	defaultGracePeriod = 3 * time.Second
)

// Option configures a Queue.
type Option func(*Queue)

// WithConcurrency bounds how many transfers run at once.
func WithConcurrency(n int64) Option {
	return func(q *Queue) { q.sem = semaphore.NewWeighted(n) }
}

// WithGracePeriod sets how long completed tasks linger before removal.
func WithGracePeriod(d time.Duration) Option {
	return func(q *Queue) { q.grace = d }
}

// Queue owns every upload task. Each task's state is only ever written by
// the goroutine driving that transfer (or by Cancel), always under the queue
// mutex, so concurrently resolving tasks never lose updates.
type Queue struct {
	uploader Uploader
	logger   logging.Logger
	sem      *semaphore.Weighted
	grace    time.Duration

	mu      sync.Mutex
	tasks   map[string]Task
	order   []string
	cancels map[string]context.CancelFunc

	wg sync.WaitGroup
}

func NewQueue(uploader Uploader, logger logging.Logger, opts ...Option) *Queue {
	q := &Queue{
		uploader: uploader,
		logger:   logger,
		sem:      semaphore.NewWeighted(defaultConcurrency),
		grace:    defaultGracePeriod,
		tasks:    make(map[string]Task),
		cancels:  make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue creates one uploading task per path and starts every transfer
// concurrently through the bounded pool. It returns immediately with the new
// task IDs; one failing file never aborts its siblings.
func (q *Queue) Enqueue(ctx context.Context, folderID string, paths []string) []string {
	ids := make([]string, 0, len(paths))
	for _, path := range paths {
		ids = append(ids, q.start(ctx, folderID, path))
	}
	return ids
}

// start registers a fresh uploading task and launches its transfer goroutine.
func (q *Queue) start(ctx context.Context, folderID, path string) string {
	id := uuid.NewString()
	taskCtx, cancel := context.WithCancel(ctx)

	q.mu.Lock()
	q.tasks[id] = Task{
		ID:       id,
		Name:     baseName(path),
		Path:     path,
		FolderID: folderID,
		Status:   StatusUploading,
	}
	q.order = append(q.order, id)
	q.cancels[id] = cancel
	q.mu.Unlock()

	q.wg.Add(1)
	go q.run(taskCtx, id, folderID, path)
	return id
}

func (q *Queue) run(ctx context.Context, id, folderID, path string) {
	defer q.wg.Done()

	if err := q.sem.Acquire(ctx, 1); err != nil {
		// Cancelled while waiting for a pool slot.
		q.markCancelled(id)
		return
	}
	defer q.sem.Release(1)

	src, size, err := openFile(path)
	if err != nil {
		q.markError(id, err)
		return
	}
	defer src.Close()

	name := baseName(path)
	_, err = q.uploader.Upload(ctx, folderID, name, src, size, func(pct int) {
		q.setProgress(id, pct)
	})

	switch {
	case err == nil:
		q.markCompleted(id)
	case errors.Is(err, context.Canceled):
		q.markCancelled(id)
	default:
		q.markError(id, err)
	}
}

// Cancel marks a still-uploading task cancelled and cancels its context, so
// the transport aborts the in-flight request. No-op on terminal tasks.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok || task.Status.terminal() {
		q.mu.Unlock()
		return false
	}
	task.Status = StatusCancelled
	q.tasks[id] = task
	cancel := q.cancels[id]
	delete(q.cancels, id)
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return true
}

// Retry re-enqueues the source file of a failed or cancelled task as a brand
// new uploading task and drops the old record. Returns the new task ID, or
// "" when the task is unknown or still uploading.
func (q *Queue) Retry(ctx context.Context, id string) string {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok || (task.Status != StatusError && task.Status != StatusCancelled) {
		q.mu.Unlock()
		return ""
	}
	q.removeLocked(id)
	q.mu.Unlock()

	return q.start(ctx, task.FolderID, task.Path)
}

// Tasks returns a snapshot of the queue in enqueue order.
func (q *Queue) Tasks() []Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Task, 0, len(q.order))
	for _, id := range q.order {
		if task, ok := q.tasks[id]; ok {
			out = append(out, task)
		}
	}
	return out
}

// Get returns one task's snapshot.
func (q *Queue) Get(id string) (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[id]
	return task, ok
}

// Clear drops every terminal task. Uploading tasks are untouched.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, task := range q.tasks {
		if task.Status.terminal() {
			q.removeLocked(id)
		}
	}
}

// Wait blocks until every started transfer goroutine has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// setProgress records transfer progress while the task is still uploading.
// Progress on a terminal task is discarded.
func (q *Queue) setProgress(id string, pct int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[id]
	if !ok || task.Status != StatusUploading {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	task.Progress = pct
	q.tasks[id] = task
}

func (q *Queue) markCompleted(id string) {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok || task.Status != StatusUploading {
		q.mu.Unlock()
		return
	}
	task.Status = StatusCompleted
	task.Progress = 100
	q.tasks[id] = task
	delete(q.cancels, id)
	q.mu.Unlock()

	if q.logger != nil {
		q.logger.Info(context.Background(), "upload completed", "task", id, "file", task.Name)
	}

	// Completed tasks linger briefly for the UI, then disappear. Error and
	// cancelled tasks persist until retried or cleared.
	time.AfterFunc(q.grace, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if t, ok := q.tasks[id]; ok && t.Status == StatusCompleted {
			q.removeLocked(id)
		}
	})
}

func (q *Queue) markError(id string, err error) {
	q.mu.Lock()
	task, ok := q.tasks[id]
	if !ok || task.Status != StatusUploading {
		q.mu.Unlock()
		return
	}
	task.Status = StatusError
	task.Err = err.Error()
	q.tasks[id] = task
	delete(q.cancels, id)
	q.mu.Unlock()

	if q.logger != nil {
		q.logger.Error(context.Background(), "upload failed", "task", id, "file", task.Name, "error", err)
	}
}

func (q *Queue) markCancelled(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	task, ok := q.tasks[id]
	if !ok || task.Status.terminal() {
		return
	}
	task.Status = StatusCancelled
	q.tasks[id] = task
	delete(q.cancels, id)
}

// removeLocked deletes a task record. Caller holds q.mu.
func (q *Queue) removeLocked(id string) {
	delete(q.tasks, id)
	delete(q.cancels, id)
	for i, other := range q.order {
		if other == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func baseName(path string) string {
	return filepath.Base(path)
}
