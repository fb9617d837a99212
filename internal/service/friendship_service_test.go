package service

import (
	"testing"

	"travelshare/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendshipFixture(t *testing.T) (FriendshipService, *fakeUserRepo, *fakeFriendshipRepo) {
	t.Helper()
	users := newFakeUserRepo()
	friendships := newFakeFriendshipRepo(users)
	svc := NewFriendshipService(friendships, users, newTestNotificationService())
	return svc, users, friendships
}

func TestSendFriendRequest(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusPending, friendship.Status)
	assert.Equal(t, alice.ID, friendship.SenderID)
	assert.Equal(t, bob.ID, friendship.ReceiverID)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")

	_, err := svc.SendFriendRequest(alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendFriendRequestUnknownReceiver(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")

	_, err := svc.SendFriendRequest(alice.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendFriendRequestBlockedByReverseDirection(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	_, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	// The pair already has a row, regardless of direction
	_, err = svc.SendFriendRequest(bob.ID, alice.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRejectedRequestBlocksResendUntilRemoved(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.RejectFriendRequest(friendship.ID, bob.ID))

	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Removing the rejected row clears the way for a fresh request
	require.NoError(t, svc.RemoveFriend(friendship.ID, alice.ID))
	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.NoError(t, err)
}

func TestAcceptFriendRequestOnlyReceiver(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(friendship.ID, alice.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.AcceptedAt)
}

func TestAcceptFriendRequestTwiceConflicts(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)

	// The second accept is a state conflict, and the row stays accepted
	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	assert.ErrorIs(t, err, ErrConflict)

	kept, err := svc.GetFriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusAccepted, kept)
}

func TestRejectFriendRequestOnlyReceiver(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RejectFriendRequest(friendship.ID, alice.ID), ErrForbidden)
	assert.NoError(t, svc.RejectFriendRequest(friendship.ID, bob.ID))
}

func TestRemoveFriendRequiresParticipant(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")
	carol := mustCreateUser(users, "Carol", "carol@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveFriend(friendship.ID, carol.ID), ErrForbidden)
	assert.NoError(t, svc.RemoveFriend(friendship.ID, bob.ID))
}

func TestBlockUserRewritesExistingRow(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)

	// Bob blocks Alice: the existing row is rewritten with Bob as sender
	blocked, err := svc.BlockUser(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusBlocked, blocked.Status)
	assert.Equal(t, bob.ID, blocked.SenderID)
	assert.Equal(t, alice.ID, blocked.ReceiverID)
	assert.Nil(t, blocked.AcceptedAt)

	// Alice can no longer send a request
	_, err = svc.SendFriendRequest(alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUnblockOnlyByBlocker(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	_, err := svc.BlockUser(bob.ID, alice.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UnblockUser(alice.ID, bob.ID), ErrForbidden)
	require.NoError(t, svc.UnblockUser(bob.ID, alice.ID))

	// After unblocking the pair is clear again
	status, err := svc.GetFriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusNone, status)
}

func TestRemoveFriendRefusesBlockedRow(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	blocked, err := svc.BlockUser(bob.ID, alice.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RemoveFriend(blocked.ID, bob.ID), ErrConflict)
}

func TestGetFriendsReturnsOtherParty(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)

	friends, err := svc.GetFriends(alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].ID)

	friends, err = svc.GetFriends(bob.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, alice.ID, friends[0].ID)
}

func TestGetFriendshipStatusNone(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	status, err := svc.GetFriendshipStatus(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.FriendshipStatusNone, status)
}

func TestSearchUsersExcludesSelfAndFriends(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice Example", "alice@example.com")
	bob := mustCreateUser(users, "Bob Example", "bob@example.com")
	carol := mustCreateUser(users, "Carol Example", "carol@example.com")

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)

	results, err := svc.SearchUsers(alice.ID, "example")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, carol.ID, results[0].ID)
}

func TestSearchUsersEmptyQuery(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")

	results, err := svc.SearchUsers(alice.ID, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAreFriends(t *testing.T) {
	svc, users, _ := newFriendshipFixture(t)
	alice := mustCreateUser(users, "Alice", "alice@example.com")
	bob := mustCreateUser(users, "Bob", "bob@example.com")

	friends, err := svc.AreFriends(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	friendship, err := svc.SendFriendRequest(alice.ID, bob.ID)
	require.NoError(t, err)

	friends, err = svc.AreFriends(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)

	_, err = svc.AcceptFriendRequest(friendship.ID, bob.ID)
	require.NoError(t, err)

	friends, err = svc.AreFriends(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, friends)
}
