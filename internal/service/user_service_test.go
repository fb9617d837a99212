package service

import (
	"testing"
	"time"

	"travelshare/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userFixture struct {
	svc           UserService
	users         *fakeUserRepo
	friendships   *fakeFriendshipRepo
	messages      *fakeMessageRepo
	notifications *fakeNotificationRepo
	groups        *fakeGroupRepo
	resets        *fakeResetTokenRepo
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	users := newFakeUserRepo()
	friendships := newFakeFriendshipRepo(users)
	messages := newFakeMessageRepo()
	notifications := newFakeNotificationRepo()
	groups := newFakeGroupRepo()
	resets := newFakeResetTokenRepo()
	return &userFixture{
		svc:           NewUserService(users, friendships, messages, notifications, groups, resets),
		users:         users,
		friendships:   friendships,
		messages:      messages,
		notifications: notifications,
		groups:        groups,
		resets:        resets,
	}
}

func TestSetRole(t *testing.T) {
	f := newUserFixture(t)
	alice := mustCreateUser(f.users, "Alice", "alice@example.com")

	_, err := f.svc.SetRole(alice.ID, "superuser")
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := f.svc.SetRole(alice.ID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)
}

func TestSetActive(t *testing.T) {
	f := newUserFixture(t)
	alice := mustCreateUser(f.users, "Alice", "alice@example.com")

	updated, err := f.svc.SetActive(alice.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestDeleteUserCascades(t *testing.T) {
	f := newUserFixture(t)
	alice := mustCreateUser(f.users, "Alice", "alice@example.com")
	bob := mustCreateUser(f.users, "Bob", "bob@example.com")

	require.NoError(t, f.friendships.Create(&model.Friendship{
		SenderID:   alice.ID,
		ReceiverID: bob.ID,
		Status:     model.FriendshipStatusAccepted,
	}))
	require.NoError(t, f.messages.Create(&model.DirectMessage{
		SenderID: alice.ID, ReceiverID: bob.ID, Content: "hi",
	}))
	require.NoError(t, f.notifications.Create(&model.Notification{
		UserID: alice.ID, Type: model.NotificationTypeMessage, Title: "t", Message: "m",
	}))
	require.NoError(t, f.notifications.Create(&model.Notification{
		UserID: bob.ID, Type: model.NotificationTypeMessage, Title: "t", Message: "m",
	}))

	group := &model.ActivityGroup{Name: "Hikers", Icon: "mountain", Color: "#00ff00", CreatorID: bob.ID}
	require.NoError(t, f.groups.Create(group))
	require.NoError(t, f.groups.AddMember(&model.GroupMember{GroupID: group.ID, UserID: alice.ID}))

	require.NoError(t, f.resets.Create(&model.PasswordResetToken{
		UserID: alice.ID, Code: "123456", ExpiresAt: time.Now().Add(time.Minute),
	}))

	require.NoError(t, f.svc.DeleteUser(alice.ID))

	_, err := f.users.FindByID(alice.ID)
	assert.Error(t, err)
	_, err = f.friendships.FindByPair(alice.ID, bob.ID)
	assert.Error(t, err)

	messages, err := f.messages.FindConversation(alice.ID, bob.ID, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, messages)

	notifications, err := f.notifications.FindByUserID(alice.ID, false, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, notifications)

	// Bob's notification is untouched
	notifications, err = f.notifications.FindByUserID(bob.ID, false, 0, 50)
	require.NoError(t, err)
	assert.Len(t, notifications, 1)

	member, err := f.groups.IsMember(group.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, member)

	_, err = f.resets.FindByUserAndCode(alice.ID, "123456")
	assert.Error(t, err)
}

func TestDeleteUserUnknown(t *testing.T) {
	f := newUserFixture(t)
	assert.ErrorIs(t, f.svc.DeleteUser("missing"), ErrNotFound)
}
