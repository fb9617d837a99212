package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupFixture(t *testing.T) (GroupService, *fakeUserRepo, *fakeGroupRepo) {
	t.Helper()
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	return NewGroupService(groups, users), users, groups
}

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func boolPtr(v bool) *bool       { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCreateGroupEnrollsCreator(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{
		Name:     "Hiking Crew",
		Icon:     "mountain",
		Color:    "#2e7d32",
		Category: "hiking",
	})
	require.NoError(t, err)
	assert.Equal(t, creator.ID, group.CreatorID)
	assert.True(t, group.IsMember)
	assert.Equal(t, int64(1), group.MemberCount)
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")

	_, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestJoinGroupEnforcesCapacity(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	second := mustCreateUser(users, "Second", "second@example.com")
	third := mustCreateUser(users, "Third", "third@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{
		Name:       "Small Crew",
		Icon:       "tent",
		Color:      "#1565c0",
		MaxMembers: intPtr(2),
	})
	require.NoError(t, err)

	require.NoError(t, svc.JoinGroup(group.ID, second.ID))
	assert.ErrorIs(t, svc.JoinGroup(group.ID, third.ID), ErrConflict)
}

func TestJoinGroupTwice(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)

	require.NoError(t, svc.JoinGroup(group.ID, member.ID))
	assert.ErrorIs(t, svc.JoinGroup(group.ID, member.ID), ErrConflict)
}

func TestLeaveGroupCreatorBlocked(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(group.ID, member.ID))

	assert.ErrorIs(t, svc.LeaveGroup(group.ID, creator.ID), ErrConflict)
	assert.NoError(t, svc.LeaveGroup(group.ID, member.ID))
}

func TestLeaveGroupNotMember(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	outsider := mustCreateUser(users, "Outsider", "outsider@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.LeaveGroup(group.ID, outsider.ID), ErrConflict)
}

func TestUpdateGroupOnlyCreator(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(group.ID, member.ID))

	_, err = svc.UpdateGroup(group.ID, member.ID, UpdateGroupInput{Name: strPtr("Renamed")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateGroup(group.ID, creator.ID, UpdateGroupInput{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
}

func TestUpdateGroupMaxMembersBelowCurrentCount(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(group.ID, member.ID))

	_, err = svc.UpdateGroup(group.ID, creator.ID, UpdateGroupInput{MaxMembers: intPtr(1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteGroupCreatorOrAdmin(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	other := mustCreateUser(users, "Other", "other@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteGroup(group.ID, other.ID, false), ErrForbidden)
	assert.NoError(t, svc.DeleteGroup(group.ID, other.ID, true))

	group, err = svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew 2", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	assert.NoError(t, svc.DeleteGroup(group.ID, creator.ID, false))
}

func TestRemoveMemberOnlyCreator(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(group.ID, member.ID))

	assert.ErrorIs(t, svc.RemoveMember(group.ID, member.ID, creator.ID), ErrForbidden)
	assert.ErrorIs(t, svc.RemoveMember(group.ID, creator.ID, creator.ID), ErrValidation)
	require.NoError(t, svc.RemoveMember(group.ID, creator.ID, member.ID))

	_, err = svc.RequireMember(group.ID, member.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestGetMembersPrivateGroup(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	outsider := mustCreateUser(users, "Outsider", "outsider@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{
		Name:      "Secret Crew",
		Icon:      "lock",
		Color:     "#000",
		IsPrivate: true,
	})
	require.NoError(t, err)

	_, err = svc.GetMembers(group.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	members, err := svc.GetMembers(group.ID, creator.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestRequireMemberChecksEveryCall(t *testing.T) {
	svc, users, groups := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")
	member := mustCreateUser(users, "Member", "member@example.com")

	group, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Crew", Icon: "x", Color: "#000"})
	require.NoError(t, err)
	require.NoError(t, svc.JoinGroup(group.ID, member.ID))

	_, err = svc.RequireMember(group.ID, member.ID)
	require.NoError(t, err)

	// Membership revoked out of band must be seen on the next call
	require.NoError(t, groups.RemoveMember(group.ID, member.ID))
	_, err = svc.RequireMember(group.ID, member.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListGroupsFilters(t *testing.T) {
	svc, users, _ := newGroupFixture(t)
	creator := mustCreateUser(users, "Creator", "creator@example.com")

	_, err := svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Alpine Hikes", Icon: "x", Color: "#000", Category: "hiking"})
	require.NoError(t, err)
	_, err = svc.CreateGroup(creator.ID, CreateGroupInput{Name: "Coast Drives", Icon: "x", Color: "#000", Category: "roadtrip"})
	require.NoError(t, err)

	hiking, err := svc.ListGroups(creator.ID, "hiking", "")
	require.NoError(t, err)
	assert.Len(t, hiking, 1)

	all, err := svc.ListGroups(creator.ID, "ALL", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := svc.ListGroups(creator.ID, "", "coast")
	require.NoError(t, err)
	assert.Len(t, byName, 1)
}
