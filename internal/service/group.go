package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

// MemberInput carries the caller-editable member fields. An empty role
// defaults to the regular member role.
type MemberInput struct {
	Name       string
	Email      string
	Role       string
	Instrument string
}

// GroupService manages groups and their members, keeping the group's
// member and admin id lists in step with the member documents.
type GroupService struct {
	store *store.Store
	hub   *Hub
}

func NewGroupService(s *store.Store, hub *Hub) *GroupService {
	return &GroupService{store: s, hub: hub}
}

// CreateGroup stores a new, empty group.
func (s *GroupService) CreateGroup(ctx context.Context, name string) (*domain.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	now := time.Now().UTC()
	group := &domain.Group{
		ID:        uuid.New().String(),
		Name:      name,
		MemberIDs: []string{},
		AdminIDs:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveGroup(ctx, group, ActionCreated); err != nil {
		return nil, err
	}
	slog.Info("Created group", "groupID", group.ID, "name", name)
	return group, nil
}

// GetGroup returns one group.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.store.Groups.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// ListGroups returns all groups in name order.
func (s *GroupService) ListGroups(ctx context.Context) ([]domain.Group, error) {
	groups, err := s.store.Groups.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

// RenameGroup changes a group's name.
func (s *GroupService) RenameGroup(ctx context.Context, id, name string) (*domain.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	if err := s.saveGroup(ctx, group, ActionUpdated); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember creates a member document and registers it with the group.
// The first member of a group always becomes an admin so the group is
// never left without one.
func (s *GroupService) AddMember(ctx context.Context, groupID string, in MemberInput) (*domain.Member, error) {
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrInvalidInput)
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if len(group.MemberIDs) == 0 {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	member := &domain.Member{
		ID:         uuid.New().String(),
		GroupID:    groupID,
		Name:       in.Name,
		Email:      in.Email,
		Role:       role,
		Instrument: in.Instrument,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Members.Save(ctx, member.ID, member); err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}

	group.MemberIDs = append(group.MemberIDs, member.ID)
	if role == domain.RoleAdmin {
		group.AdminIDs = append(group.AdminIDs, member.ID)
	}
	if err := s.saveGroup(ctx, group, ActionUpdated); err != nil {
		return nil, err
	}

	s.hub.Publish(Event{GroupID: groupID, Kind: KindMember, Action: ActionCreated, EntityID: member.ID})
	slog.Info("Added member", "memberID", member.ID, "groupID", groupID, "role", role)
	return member, nil
}

// ListMembers returns the group's members in name order.
func (s *GroupService) ListMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	members, err := s.store.Members.List(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})
	return members, nil
}

// GetMember returns one member of the group.
func (s *GroupService) GetMember(ctx context.Context, groupID, id string) (*domain.Member, error) {
	return s.getMember(ctx, groupID, id)
}

// UpdateMember replaces a member's editable fields and keeps the
// group's admin list in sync with the role. Demoting the only admin is
// rejected.
func (s *GroupService) UpdateMember(ctx context.Context, groupID, id string, in MemberInput) (*domain.Member, error) {
	role, err := normalizeRole(in.Role)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrInvalidInput)
	}
	member, err := s.getMember(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if member.Role == domain.RoleAdmin && role != domain.RoleAdmin && len(group.AdminIDs) == 1 && group.IsAdmin(id) {
		return nil, fmt.Errorf("%w: cannot demote the only admin", ErrInvalidInput)
	}

	member.Name = in.Name
	member.Email = in.Email
	member.Role = role
	member.Instrument = in.Instrument
	member.UpdatedAt = time.Now().UTC()
	if err := s.store.Members.Save(ctx, member.ID, member); err != nil {
		return nil, fmt.Errorf("save member: %w", err)
	}

	group.AdminIDs = removeID(group.AdminIDs, id)
	if role == domain.RoleAdmin {
		group.AdminIDs = append(group.AdminIDs, id)
	}
	if err := s.saveGroup(ctx, group, ActionUpdated); err != nil {
		return nil, err
	}

	s.hub.Publish(Event{GroupID: groupID, Kind: KindMember, Action: ActionUpdated, EntityID: id})
	return member, nil
}

// RemoveMember deletes a member and unregisters it everywhere: the
// group's id lists and any task assignments. Removing the only admin
// is rejected.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, id string) error {
	member, err := s.getMember(ctx, groupID, id)
	if err != nil {
		return err
	}
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsAdmin(id) && len(group.AdminIDs) == 1 && len(group.MemberIDs) > 1 {
		return fmt.Errorf("%w: cannot remove the only admin", ErrInvalidInput)
	}

	if err := s.store.Members.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	group.MemberIDs = removeID(group.MemberIDs, id)
	group.AdminIDs = removeID(group.AdminIDs, id)
	if err := s.saveGroup(ctx, group, ActionUpdated); err != nil {
		return err
	}
	if err := s.unassignTasks(ctx, groupID, id); err != nil {
		slog.Error("Failed to unassign tasks of removed member", "memberID", id, "groupID", groupID, "error", err)
	}

	s.hub.Publish(Event{GroupID: groupID, Kind: KindMember, Action: ActionDeleted, EntityID: id})
	slog.Info("Removed member", "memberID", member.ID, "groupID", groupID)
	return nil
}

func (s *GroupService) unassignTasks(ctx context.Context, groupID, memberID string) error {
	tasks, err := s.store.Tasks.List(ctx, groupID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	for i := range tasks {
		task := &tasks[i]
		if !task.IsAssignee(memberID) {
			continue
		}
		task.AssigneeIDs = removeID(task.AssigneeIDs, memberID)
		task.UpdatedAt = time.Now().UTC()
		if err := s.store.Tasks.Save(ctx, task.ID, task); err != nil {
			return fmt.Errorf("save task %s: %w", task.ID, err)
		}
		s.hub.Publish(Event{GroupID: groupID, Kind: KindTask, Action: ActionUpdated, EntityID: task.ID})
	}
	return nil
}

func (s *GroupService) getMember(ctx context.Context, groupID, id string) (*domain.Member, error) {
	member, err := s.store.Members.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if member.GroupID != groupID {
		return nil, fmt.Errorf("member %s: %w", id, store.ErrNotFound)
	}
	return member, nil
}

func (s *GroupService) saveGroup(ctx context.Context, group *domain.Group, action string) error {
	group.UpdatedAt = time.Now().UTC()
	if err := s.store.Groups.Save(ctx, group.ID, group); err != nil {
		return fmt.Errorf("save group: %w", err)
	}
	s.hub.Publish(Event{GroupID: group.ID, Kind: KindGroup, Action: action, EntityID: group.ID})
	return nil
}

func normalizeRole(role string) (string, error) {
	switch role {
	case "":
		return domain.RoleMember, nil
	case domain.RoleAdmin, domain.RoleMember:
		return role, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
