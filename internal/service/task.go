package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/notify"
	"github.com/bandstand-io/bandstand/internal/store"
)

// TaskInput carries the caller-editable task fields.
type TaskInput struct {
	Title       string
	Notes       string
	DueDate     *time.Time
	AssigneeIDs []string
}

// TaskService manages a group's tasks. Mutations notify the affected
// members through the task notifier; a failed notification is logged
// but never rolls back the task itself.
type TaskService struct {
	store    *store.Store
	hub      *Hub
	notifier *notify.TaskNotifier
}

func NewTaskService(s *store.Store, hub *Hub, notifier *notify.TaskNotifier) *TaskService {
	return &TaskService{store: s, hub: hub, notifier: notifier}
}

// Create stores a new task and notifies its audience.
func (s *TaskService) Create(ctx context.Context, groupID string, in TaskInput) (*domain.Task, error) {
	group, err := s.validateInput(ctx, groupID, in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		Title:       in.Title,
		Notes:       in.Notes,
		DueDate:     in.DueDate,
		AssigneeIDs: in.AssigneeIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.save(ctx, task, ActionCreated); err != nil {
		return nil, err
	}

	written, err := s.notifier.TaskCreated(ctx, task, group)
	s.publishNotifications(task.GroupID, written, err)
	slog.Info("Created task", "taskID", task.ID, "groupID", groupID, "assignees", len(task.AssigneeIDs))
	return task, nil
}

// Update replaces a task's editable fields. Members that appear in the
// assignee list for the first time get an assignment notice.
func (s *TaskService) Update(ctx context.Context, groupID, id string, in TaskInput) (*domain.Task, error) {
	if _, err := s.validateInput(ctx, groupID, in); err != nil {
		return nil, err
	}
	task, err := s.get(ctx, groupID, id)
	if err != nil {
		return nil, err
	}

	previous := make(map[string]bool, len(task.AssigneeIDs))
	for _, memberID := range task.AssigneeIDs {
		previous[memberID] = true
	}
	var added []string
	for _, memberID := range in.AssigneeIDs {
		if !previous[memberID] {
			added = append(added, memberID)
		}
	}

	task.Title = in.Title
	task.Notes = in.Notes
	task.DueDate = in.DueDate
	task.AssigneeIDs = in.AssigneeIDs
	if err := s.save(ctx, task, ActionUpdated); err != nil {
		return nil, err
	}

	if len(added) > 0 {
		written, err := s.notifier.TaskAssigned(ctx, task, added)
		s.publishNotifications(task.GroupID, written, err)
	}
	return task, nil
}

// Complete marks a task done. Completing an already-done task is a
// no-op and does not notify again.
func (s *TaskService) Complete(ctx context.Context, groupID, id string) (*domain.Task, error) {
	task, err := s.get(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	if task.Done {
		return task, nil
	}

	now := time.Now().UTC()
	task.Done = true
	task.CompletedAt = &now
	if err := s.save(ctx, task, ActionCompleted); err != nil {
		return nil, err
	}

	group, err := s.store.Groups.Get(ctx, groupID)
	if err != nil {
		slog.Error("Failed to load group for completion notice", "groupID", groupID, "error", err)
		return task, nil
	}
	written, err := s.notifier.TaskCompleted(ctx, task, group)
	s.publishNotifications(task.GroupID, written, err)
	return task, nil
}

// List returns the group's tasks: open before done, earlier due dates
// first, undated tasks after dated ones.
func (s *TaskService) List(ctx context.Context, groupID string) ([]domain.Task, error) {
	tasks, err := s.store.Tasks.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Done != tasks[j].Done {
			return !tasks[i].Done
		}
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case di != nil && dj != nil:
			return di.Before(*dj)
		case di != nil:
			return true
		case dj != nil:
			return false
		default:
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
	})
	return tasks, nil
}

// Get returns one task of the group.
func (s *TaskService) Get(ctx context.Context, groupID, id string) (*domain.Task, error) {
	return s.get(ctx, groupID, id)
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, groupID, id string) error {
	task, err := s.get(ctx, groupID, id)
	if err != nil {
		return err
	}
	if err := s.store.Tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	s.hub.Publish(Event{GroupID: task.GroupID, Kind: KindTask, Action: ActionDeleted, EntityID: id})
	return nil
}

// NotifyDueSoon sends due-date reminders for open tasks across all
// groups whose due date falls within the given window (overdue tasks
// included). The notifier keeps repeat sweeps quiet. Returns the number
// of notifications written.
func (s *TaskService) NotifyDueSoon(ctx context.Context, within time.Duration) (int, error) {
	groups, err := s.store.Groups.List(ctx, "")
	if err != nil {
		return 0, fmt.Errorf("list groups: %w", err)
	}

	deadline := time.Now().UTC().Add(within)
	total := 0
	for i := range groups {
		group := &groups[i]
		tasks, err := s.store.Tasks.List(ctx, group.ID)
		if err != nil {
			return total, fmt.Errorf("list tasks for group %s: %w", group.ID, err)
		}
		for j := range tasks {
			task := &tasks[j]
			if task.Done || task.DueDate == nil || task.DueDate.After(deadline) {
				continue
			}
			written, err := s.notifier.TaskDue(ctx, task, group)
			if err != nil {
				return total, fmt.Errorf("notify due task %s: %w", task.ID, err)
			}
			s.publishNotifications(group.ID, written, nil)
			total += len(written)
		}
	}
	return total, nil
}

func (s *TaskService) validateInput(ctx context.Context, groupID string, in TaskInput) (*domain.Group, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalidInput)
	}
	group, err := s.store.Groups.Get(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	for _, memberID := range in.AssigneeIDs {
		if !group.HasMember(memberID) {
			return nil, fmt.Errorf("%w: assignee %s is not a group member", ErrInvalidInput, memberID)
		}
	}
	return group, nil
}

func (s *TaskService) get(ctx context.Context, groupID, id string) (*domain.Task, error) {
	task, err := s.store.Tasks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.GroupID != groupID {
		return nil, fmt.Errorf("task %s: %w", id, store.ErrNotFound)
	}
	return task, nil
}

func (s *TaskService) save(ctx context.Context, task *domain.Task, action string) error {
	task.UpdatedAt = time.Now().UTC()
	if err := s.store.Tasks.Save(ctx, task.ID, task); err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	s.hub.Publish(Event{GroupID: task.GroupID, Kind: KindTask, Action: action, EntityID: task.ID})
	return nil
}

// publishNotifications announces freshly written notifications on the
// hub so inbox views refresh; notifier errors are logged, not returned.
func (s *TaskService) publishNotifications(groupID string, written []domain.Notification, err error) {
	if err != nil {
		slog.Error("Failed to write task notifications", "groupID", groupID, "error", err)
	}
	for i := range written {
		s.hub.Publish(Event{GroupID: groupID, Kind: KindNotification, Action: ActionCreated, EntityID: written[i].ID})
	}
}
