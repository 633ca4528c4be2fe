package domain

import "time"

// Notification kinds.
const (
	NotificationTaskCreated   = "task_created"
	NotificationTaskAssigned  = "task_assigned"
	NotificationTaskCompleted = "task_completed"
	NotificationTaskDue       = "task_due"
)

// Notification represents an entry in a member's in-app feed.
type Notification struct {
	ID        string     `json:"id" bson:"_id"`
	GroupID   string     `json:"group_id" bson:"group_id"`
	MemberID  string     `json:"member_id" bson:"member_id"`
	Kind      string     `json:"kind" bson:"kind"`
	Title     string     `json:"title" bson:"title"`
	Body      string     `json:"body,omitempty" bson:"body,omitempty"`
	TaskID    string     `json:"task_id,omitempty" bson:"task_id,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`
}

// Read reports whether the notification has been marked read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
