package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bandstand-io/bandstand/internal/domain"
	"github.com/bandstand-io/bandstand/internal/store"
)

func newGroupService() (*GroupService, *store.Store, *Hub) {
	s := store.NewMemory()
	hub := NewHub()
	return NewGroupService(s, hub), s, hub
}

func TestCreateGroup(t *testing.T) {
	svc, _, _ := newGroupService()

	group, err := svc.CreateGroup(context.Background(), "The Midnight Ramblers")
	require.NoError(t, err)

	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "The Midnight Ramblers", group.Name)
	assert.Empty(t, group.MemberIDs)
	assert.Empty(t, group.AdminIDs)

	_, err = svc.CreateGroup(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListGroupsSortedByName(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	for _, name := range []string{"Zebra Quartet", "Amber Trio"} {
		_, err := svc.CreateGroup(ctx, name)
		require.NoError(t, err)
	}

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Amber Trio", groups[0].Name)
	assert.Equal(t, "Zebra Quartet", groups[1].Name)
}

func TestFirstMemberBecomesAdmin(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)

	// Explicitly asking for the regular role does not matter for the
	// first member.
	first, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada", Role: domain.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ben", Instrument: "Bass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, second.Role)

	group, err = svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, group.MemberIDs)
	assert.Equal(t, []string{first.ID}, group.AdminIDs)
}

func TestAddMemberValidation(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)

	_, err = svc.AddMember(ctx, group.ID, MemberInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada", Role: "owner"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddMember(ctx, "missing", MemberInput{Name: "Ada"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateMemberRoleSyncsAdminList(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada"})
	require.NoError(t, err)
	ben, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ben"})
	require.NoError(t, err)

	// Promote Ben.
	updated, err := svc.UpdateMember(ctx, group.ID, ben.ID, MemberInput{Name: "Ben", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	group, err = svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ada.ID, ben.ID}, group.AdminIDs)

	// Now Ada can step down.
	_, err = svc.UpdateMember(ctx, group.ID, ada.ID, MemberInput{Name: "Ada", Role: domain.RoleMember})
	require.NoError(t, err)

	group, err = svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ben.ID}, group.AdminIDs)
}

func TestDemoteOnlyAdminRejected(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, group.ID, MemberInput{Name: "Ben"})
	require.NoError(t, err)

	_, err = svc.UpdateMember(ctx, group.ID, ada.ID, MemberInput{Name: "Ada", Role: domain.RoleMember})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveMember(t *testing.T) {
	svc, s, hub := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada"})
	require.NoError(t, err)
	ben, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ben"})
	require.NoError(t, err)

	// Ben is assigned to an open task; removing him clears that too.
	task := &domain.Task{ID: "task-1", GroupID: group.ID, Title: "Book room", AssigneeIDs: []string{ada.ID, ben.ID}}
	require.NoError(t, s.Tasks.Save(ctx, task.ID, task))

	events, cancel := hub.Subscribe(group.ID)
	defer cancel()

	require.NoError(t, svc.RemoveMember(ctx, group.ID, ben.ID))

	_, err = svc.GetMember(ctx, group.ID, ben.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	group, err = svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ada.ID}, group.MemberIDs)

	stored, err := s.Tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ada.ID}, stored.AssigneeIDs)

	var sawMemberDelete bool
	for len(events) > 0 {
		event := <-events
		if event.Kind == KindMember && event.Action == ActionDeleted {
			sawMemberDelete = true
		}
	}
	assert.True(t, sawMemberDelete)
}

func TestRemoveOnlyAdminRejected(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada"})
	require.NoError(t, err)
	_, err = svc.AddMember(ctx, group.ID, MemberInput{Name: "Ben"})
	require.NoError(t, err)

	err = svc.RemoveMember(ctx, group.ID, ada.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveLastMemberAllowed(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)
	ada, err := svc.AddMember(ctx, group.ID, MemberInput{Name: "Ada"})
	require.NoError(t, err)

	// The sole member may leave even though they are the only admin.
	require.NoError(t, svc.RemoveMember(ctx, group.ID, ada.ID))

	group, err = svc.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, group.MemberIDs)
	assert.Empty(t, group.AdminIDs)
}

func TestRenameGroup(t *testing.T) {
	svc, _, _ := newGroupService()
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "The Midnight Ramblers")
	require.NoError(t, err)

	renamed, err := svc.RenameGroup(ctx, group.ID, "The Daylight Ramblers")
	require.NoError(t, err)
	assert.Equal(t, "The Daylight Ramblers", renamed.Name)

	_, err = svc.RenameGroup(ctx, group.ID, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
