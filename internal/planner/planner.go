// Package planner holds today's task list and keeps it in step with the
// backend and, through it, with Redmine.
package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"redmine-planner.com/redmine-planner/internal/cache"
	apperrors "redmine-planner.com/redmine-planner/internal/errors"
	"redmine-planner.com/redmine-planner/pkg/constants"
	model "redmine-planner.com/redmine-planner/pkg/models"
)

// Backend is the REST surface of the planner backend.
type Backend interface {
	ListTasks(ctx context.Context, date string, noAutoCopy bool) ([]model.Task, error)
	CreateTask(ctx context.Context, task model.Task) error
	UpdateTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string, deleteFromRedmine bool) error
	LogBatch(ctx context.Context, tasks []model.Task) (model.BatchResult, error)
	UpdateTimeEntry(ctx context.Context, id int, entry model.TimeEntryRequest) error
	ListProfiles(ctx context.Context) ([]model.Profile, error)
	ListHistory(ctx context.Context) ([]model.HistoryEntry, error)
	ListIssues(ctx context.Context, projectID int) ([]model.Issue, error)
}

// SyncPolicy decides what happens to a local edit of a logged task when the
// matching Redmine time entry cannot be updated.
type SyncPolicy string

const (
	// LocalWins keeps the local edit and reports the failure.
	LocalWins SyncPolicy = "local-wins"
	// RevertOnFailure puts the previous task back.
	RevertOnFailure SyncPolicy = "revert-on-failure"
)

type Planner struct {
	backend Backend
	policy  SyncPolicy
	now     func() time.Time
	issues  cache.Cache

	mu    sync.RWMutex
	tasks []model.Task
	// loadedFor is the day of the last successful refresh.
	loadedFor string

	lookups sync.WaitGroup
}

type Option func(*Planner)

func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

func WithSyncPolicy(policy SyncPolicy) Option {
	return func(p *Planner) { p.policy = policy }
}

// WithIssueCache sets where per-project issue lists are kept.
func WithIssueCache(c cache.Cache) Option {
	return func(p *Planner) { p.issues = c }
}

func New(backend Backend, opts ...Option) *Planner {
	p := &Planner{
		backend: backend,
		policy:  LocalWins,
		now:     time.Now,
		issues:  cache.NewMemoryCache(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Planner) today() string {
	return p.now().Format(constants.DateLayout)
}

// Refresh replaces the task list with the backend's view of today. On error
// the current list is kept. The first refresh after the day changed never
// suppresses auto-copy, so a long running planner still gets the carry-over.
func (p *Planner) Refresh(ctx context.Context, suppressAutoCopy bool) error {
	today := p.today()

	p.mu.RLock()
	rolledOver := p.loadedFor != "" && p.loadedFor != today
	p.mu.RUnlock()

	tasks, err := p.backend.ListTasks(ctx, today, suppressAutoCopy && !rolledOver)
	if err != nil {
		return err
	}

	for i := range tasks {
		if err := tasks[i].CheckInvariants(); err != nil {
			log.WithField("task_id", tasks[i].ID).Warn("logged task has no time entry, treating it as pending")
			tasks[i].IsLogged = false
		}
	}

	p.mu.Lock()
	p.tasks = tasks
	p.loadedFor = today
	p.mu.Unlock()
	return nil
}

// Tasks returns a deep copy of the current list.
func (p *Planner) Tasks() []model.Task {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.Task, len(p.tasks))
	for i, t := range p.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (p *Planner) Task(id string) (model.Task, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, t := range p.tasks {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return model.Task{}, false
}

// Pending returns the tasks the next auto-log would pick up.
func (p *Planner) Pending() []model.Task {
	var pending []model.Task
	for _, t := range p.Tasks() {
		if t.Eligible() {
			pending = append(pending, t)
		}
	}
	return pending
}

func (p *Planner) TotalPlanned() float64 {
	total := 0.0
	for _, t := range p.Tasks() {
		total += t.PlannedHours
	}
	return total
}

// State reports where a task is in its lifecycle.
func State(t model.Task) constants.TaskState {
	return t.State()
}

// Draft is the input of AddTask. Zero ids mean unset.
type Draft struct {
	ProfileName    string
	ProjectID      int
	IssueID        int
	IssueSubject   string
	ActivityID     int
	RDFunctionTeam string
	Comments       string
	PlannedHours   float64
	ProjectName    string
	IssueName      string
}

// AddTask persists a new task for today and refreshes the list.
func (p *Planner) AddTask(ctx context.Context, d Draft) (model.Task, error) {
	if d.PlannedHours < 0 {
		return model.Task{}, apperrors.Validation("planned hours must not be negative")
	}

	subject := d.IssueSubject
	if subject == "" {
		subject = d.IssueName
	}
	if subject == "" && d.IssueID > 0 {
		subject = p.IssueSubject(d.ProjectID, d.IssueID)
	}

	name := ResolveName(d.Comments, d.ProfileName, subject)
	if d.IssueID <= 0 && name == constants.FallbackTaskName {
		return model.Task{}, apperrors.Validation("select an issue or enter a name")
	}

	task := model.Task{
		ID:             uuid.NewString(),
		Name:           name,
		RedmineIssueID: model.IntPtr(d.IssueID),
		ProjectID:      model.IntPtr(d.ProjectID),
		PlannedHours:   d.PlannedHours,
		ActivityID:     model.IntPtr(d.ActivityID),
		RDFunctionTeam: d.RDFunctionTeam,
		Comments:       strings.TrimSpace(d.Comments),
		Date:           p.today(),
	}
	if task.RDFunctionTeam == "" {
		task.RDFunctionTeam = constants.DefaultRDFunctionTeam
	}

	if err := p.backend.CreateTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	return task, p.Refresh(ctx, true)
}

// RemoteSyncError reports that a local edit of a logged task did not reach
// its Redmine time entry.
type RemoteSyncError struct {
	TaskID   string
	Err      error
	Reverted bool
}

func (e *RemoteSyncError) Error() string {
	if e.Reverted {
		return fmt.Sprintf("task %s: redmine update failed, local edit reverted: %v", e.TaskID, e.Err)
	}
	return fmt.Sprintf("task %s: redmine update failed, local edit kept: %v", e.TaskID, e.Err)
}

func (e *RemoteSyncError) Unwrap() error {
	return e.Err
}

type UpdateResult struct {
	Task model.Task
	// RemoteErr is set when the edit was kept locally but Redmine was not updated.
	RemoteErr *RemoteSyncError
}

// UpdateTask persists the task and, when it is logged, mirrors the edit to its
// Redmine time entry. What a failed mirror does depends on the sync policy.
func (p *Planner) UpdateTask(ctx context.Context, task model.Task) (UpdateResult, error) {
	previous, known := p.Task(task.ID)

	if err := p.backend.UpdateTask(ctx, task); err != nil {
		return UpdateResult{}, err
	}
	p.replace(task)

	result := UpdateResult{Task: task}
	if !task.IsLogged || !model.Present(task.TimeEntryID) {
		return result, nil
	}

	err := p.backend.UpdateTimeEntry(ctx, *task.TimeEntryID, task.TimeEntryRequest(p.today()))
	if err == nil {
		return result, nil
	}

	fields := log.Fields{"task_id": task.ID, "time_entry_id": *task.TimeEntryID}
	log.WithFields(fields).WithError(err).Warn("failed to update redmine time entry")

	syncErr := &RemoteSyncError{TaskID: task.ID, Err: err}
	if p.policy != RevertOnFailure || !known {
		result.RemoteErr = syncErr
		return result, nil
	}

	if rerr := p.backend.UpdateTask(ctx, previous); rerr != nil {
		log.WithFields(fields).WithError(rerr).Error("failed to revert local edit")
		return result, syncErr
	}
	p.replace(previous)
	syncErr.Reverted = true
	return UpdateResult{Task: previous}, syncErr
}

// DeleteTask removes the task. The Redmine entry goes too only when the task
// is logged and deleteFromRemote is set. The list is refreshed either way.
func (p *Planner) DeleteTask(ctx context.Context, id string, deleteFromRemote bool) error {
	task, ok := p.Task(id)
	if !ok {
		return apperrors.Validation(fmt.Sprintf("unknown task %q", id))
	}

	err := p.backend.DeleteTask(ctx, id, deleteFromRemote && task.IsLogged)
	if rerr := p.Refresh(ctx, true); rerr != nil && err == nil {
		return rerr
	}
	return err
}

// TogglePause flips is_paused. It never talks to Redmine.
func (p *Planner) TogglePause(ctx context.Context, id string) (model.Task, error) {
	task, ok := p.Task(id)
	if !ok {
		return model.Task{}, apperrors.Validation(fmt.Sprintf("unknown task %q", id))
	}

	task.IsPaused = !task.IsPaused
	if err := p.backend.UpdateTask(ctx, task); err != nil {
		return model.Task{}, err
	}
	p.replace(task)
	return task, nil
}

func (p *Planner) RenameTask(ctx context.Context, id, name string) (UpdateResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return UpdateResult{}, apperrors.Validation("name must not be empty")
	}
	return p.edit(ctx, id, func(t *model.Task) { t.Name = name })
}

func (p *Planner) SetComments(ctx context.Context, id, comments string) (UpdateResult, error) {
	return p.edit(ctx, id, func(t *model.Task) { t.Comments = strings.TrimSpace(comments) })
}

func (p *Planner) SetPlannedHours(ctx context.Context, id string, hours float64) (UpdateResult, error) {
	if hours < 0 {
		return UpdateResult{}, apperrors.Validation("planned hours must not be negative")
	}
	return p.edit(ctx, id, func(t *model.Task) { t.PlannedHours = hours })
}

func (p *Planner) edit(ctx context.Context, id string, change func(*model.Task)) (UpdateResult, error) {
	task, ok := p.Task(id)
	if !ok {
		return UpdateResult{}, apperrors.Validation(fmt.Sprintf("unknown task %q", id))
	}
	change(&task)
	return p.UpdateTask(ctx, task)
}

func (p *Planner) replace(task model.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.tasks {
		if p.tasks[i].ID == task.ID {
			p.tasks[i] = task.Clone()
			return
		}
	}
}
