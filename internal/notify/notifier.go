package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

// Scope selects who receives task notifications.
const (
	// ScopeAssignees notifies only the members assigned to the task.
	ScopeAssignees = "assignees"
	// ScopeGroup notifies every member of the group.
	ScopeGroup = "group"
)

// TaskNotifier writes in-app notifications for task activity. One
// notifier serves the whole application; the scope flag decides the
// audience for created/completed/due notices. Assignment notices always
// go to the members that were just assigned.
type TaskNotifier struct {
	notifications store.Collection[domain.Notification]
	scope         string
}

func New(notifications store.Collection[domain.Notification], scope string) *TaskNotifier {
	if scope != ScopeGroup {
		scope = ScopeAssignees
	}
	return &TaskNotifier{notifications: notifications, scope: scope}
}

// Scope returns the configured audience mode.
func (n *TaskNotifier) Scope() string {
	return n.scope
}

// TaskCreated notifies the task's audience about a new task.
func (n *TaskNotifier) TaskCreated(ctx context.Context, task *domain.Task, group *domain.Group) ([]domain.Notification, error) {
	return n.write(ctx, task, domain.NotificationTaskCreated,
		fmt.Sprintf("New task: %s", task.Title), task.Notes, n.recipients(task, group))
}

// TaskAssigned notifies members that were just put on the task.
func (n *TaskNotifier) TaskAssigned(ctx context.Context, task *domain.Task, assigned []string) ([]domain.Notification, error) {
	return n.write(ctx, task, domain.NotificationTaskAssigned,
		fmt.Sprintf("You were assigned: %s", task.Title), task.Notes, assigned)
}

// TaskCompleted notifies the task's audience that the task is done.
func (n *TaskNotifier) TaskCompleted(ctx context.Context, task *domain.Task, group *domain.Group) ([]domain.Notification, error) {
	return n.write(ctx, task, domain.NotificationTaskCompleted,
		fmt.Sprintf("Completed: %s", task.Title), "", n.recipients(task, group))
}

// TaskDue notifies the task's audience about an upcoming due date. A
// member is reminded at most once per task: recipients that already
// have a due notice for it are skipped, so periodic sweeps stay quiet
// after the first pass.
func (n *TaskNotifier) TaskDue(ctx context.Context, task *domain.Task, group *domain.Group) ([]domain.Notification, error) {
	existing, err := n.notifications.List(ctx, task.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for i := range existing {
		if existing[i].Kind == domain.NotificationTaskDue && existing[i].TaskID == task.ID {
			seen[existing[i].MemberID] = true
		}
	}

	var pending []string
	for _, memberID := range n.recipients(task, group) {
		if !seen[memberID] {
			pending = append(pending, memberID)
		}
	}

	body := ""
	if task.DueDate != nil {
		body = fmt.Sprintf("Due %s", task.DueDate.Format("Mon, 2 Jan 2006 15:04"))
	}
	return n.write(ctx, task, domain.NotificationTaskDue,
		fmt.Sprintf("Due soon: %s", task.Title), body, pending)
}

func (n *TaskNotifier) recipients(task *domain.Task, group *domain.Group) []string {
	if n.scope == ScopeGroup && group != nil {
		return group.MemberIDs
	}
	return task.AssigneeIDs
}

func (n *TaskNotifier) write(ctx context.Context, task *domain.Task, kind, title, body string, recipients []string) ([]domain.Notification, error) {
	written := make([]domain.Notification, 0, len(recipients))
	for _, memberID := range recipients {
		notification := domain.Notification{
			ID:        uuid.New().String(),
			GroupID:   task.GroupID,
			MemberID:  memberID,
			Kind:      kind,
			Title:     title,
			Body:      body,
			TaskID:    task.ID,
			CreatedAt: time.Now().UTC(),
		}
		if err := n.notifications.Save(ctx, notification.ID, &notification); err != nil {
			return written, fmt.Errorf("save notification for %s: %w", memberID, err)
		}
		written = append(written, notification)
	}
	return written, nil
}
