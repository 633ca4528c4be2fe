package domain

import "time"

// Member roles within a group.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Group represents a band or ensemble. Members are stored as separate
// documents; the group keeps the id lists for fast membership checks.
type Group struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	MemberIDs []string  `json:"member_ids" bson:"member_ids"`
	AdminIDs  []string  `json:"admin_ids" bson:"admin_ids"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// HasMember reports whether the given member id belongs to the group.
func (g *Group) HasMember(memberID string) bool {
	for _, id := range g.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the given member id is a group admin.
func (g *Group) IsAdmin(memberID string) bool {
	for _, id := range g.AdminIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// Member represents a person in a group.
type Member struct {
	ID         string    `json:"id" bson:"_id"`
	GroupID    string    `json:"group_id" bson:"group_id"`
	Name       string    `json:"name" bson:"name"`
	Email      string    `json:"email,omitempty" bson:"email,omitempty"`
	Role       string    `json:"role" bson:"role"`
	Instrument string    `json:"instrument,omitempty" bson:"instrument,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
