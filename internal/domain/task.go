package domain

import "time"

// Task represents a to-do item for a group, optionally assigned to one
// or more members.
type Task struct {
	ID          string     `json:"id" bson:"_id"`
	GroupID     string     `json:"group_id" bson:"group_id"`
	Title       string     `json:"title" bson:"title"`
	Notes       string     `json:"notes,omitempty" bson:"notes,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" bson:"due_date,omitempty"`
	AssigneeIDs []string   `json:"assignee_ids" bson:"assignee_ids"`
	Done        bool       `json:"done" bson:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsAssignee reports whether the given member id is assigned to the task.
func (t *Task) IsAssignee(memberID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == memberID {
			return true
		}
	}
	return false
}
