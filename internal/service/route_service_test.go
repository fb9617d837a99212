package service

import (
	"testing"

	"travelshare/backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeFixture struct {
	svc        RouteService
	friendship FriendshipService
	users      *fakeUserRepo
	routes     *fakeRouteRepo
}

func newRouteFixture(t *testing.T) *routeFixture {
	t.Helper()
	users := newFakeUserRepo()
	friendships := newFakeFriendshipRepo(users)
	notif := newTestNotificationService()
	friendship := NewFriendshipService(friendships, users, notif)
	routes := newFakeRouteRepo()
	return &routeFixture{
		svc:        NewRouteService(routes, users, friendship, notif),
		friendship: friendship,
		users:      users,
		routes:     routes,
	}
}

func (f *routeFixture) makeFriends(t *testing.T, a, b *model.User) {
	t.Helper()
	friendship, err := f.friendship.SendFriendRequest(a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.friendship.AcceptFriendRequest(friendship.ID, b.ID)
	require.NoError(t, err)
}

func twoWaypoints() []Waypoint {
	return []Waypoint{
		{Lat: 52.5200, Lng: 13.4050, Label: "Start"},
		{Lat: 48.1351, Lng: 11.5820, Label: "End"},
	}
}

func TestCreateRouteRequiresTwoWaypoints(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")

	_, err := f.svc.CreateRoute(owner.ID, RouteInput{
		Name:      "Short",
		Waypoints: []Waypoint{{Lat: 1, Lng: 2}},
	})
	assert.ErrorIs(t, err, ErrValidation)

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{
		Name:      "Berlin to Munich",
		Waypoints: twoWaypoints(),
		DistanceM: floatPtr(584000),
	})
	require.NoError(t, err)
	assert.Equal(t, owner.ID, route.OwnerID)
	assert.Contains(t, route.Waypoints, "52.52")
}

func TestGetStatsSumsOwnRoutes(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	other := mustCreateUser(f.users, "Other", "other@example.com")

	stats, err := f.svc.GetStats(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RouteCount)

	_, err = f.svc.CreateRoute(owner.ID, RouteInput{
		Name:      "Berlin to Munich",
		Waypoints: twoWaypoints(),
		DistanceM: floatPtr(584000),
		DurationS: floatPtr(21600),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateRoute(owner.ID, RouteInput{
		Name:      "No distance yet",
		Waypoints: twoWaypoints(),
	})
	require.NoError(t, err)
	_, err = f.svc.CreateRoute(other.ID, RouteInput{
		Name:      "Someone else's trip",
		Waypoints: twoWaypoints(),
		DistanceM: floatPtr(1000),
	})
	require.NoError(t, err)

	stats, err = f.svc.GetStats(owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RouteCount)
	assert.Equal(t, float64(584000), stats.TotalDistance)
	assert.Equal(t, float64(21600), stats.TotalDuration)
}

func TestGetRouteVisibility(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	friend := mustCreateUser(f.users, "Friend", "friend@example.com")
	stranger := mustCreateUser(f.users, "Stranger", "stranger@example.com")
	f.makeFriends(t, owner, friend)

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	// Owner always sees it
	_, err = f.svc.GetRoute(route.ID, owner.ID)
	assert.NoError(t, err)

	// Private route is hidden from everyone else
	_, err = f.svc.GetRoute(route.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// Sharing grants access to the target only
	require.NoError(t, f.svc.ShareWithUser(route.ID, owner.ID, friend.ID))
	_, err = f.svc.GetRoute(route.ID, friend.ID)
	assert.NoError(t, err)
	_, err = f.svc.GetRoute(route.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// A public route is visible to anyone
	_, err = f.svc.UpdateRoute(route.ID, owner.ID, RouteInput{IsPublic: boolPtr(true)})
	require.NoError(t, err)
	_, err = f.svc.GetRoute(route.ID, stranger.ID)
	assert.NoError(t, err)
}

func TestShareRouteFriendsOnly(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	stranger := mustCreateUser(f.users, "Stranger", "stranger@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ShareWithUser(route.ID, owner.ID, stranger.ID), ErrForbidden)
	assert.ErrorIs(t, f.svc.ShareWithUser(route.ID, owner.ID, owner.ID), ErrValidation)
}

func TestShareRouteOnlyOwner(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	friend := mustCreateUser(f.users, "Friend", "friend@example.com")
	f.makeFriends(t, owner, friend)

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.ShareWithUser(route.ID, friend.ID, owner.ID), ErrForbidden)
}

func TestUnshareAbsentGrantIsSilent(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	friend := mustCreateUser(f.users, "Friend", "friend@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	assert.NoError(t, f.svc.UnshareWithUser(route.ID, owner.ID, friend.ID))
}

func TestGenerateShareLinkIdempotent(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	token, err := f.svc.GenerateShareLink(route.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, token, 48)

	again, err := f.svc.GenerateShareLink(route.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, token, again)
}

func TestRevokedShareLinkStaysDead(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	token, err := f.svc.GenerateShareLink(route.ID, owner.ID)
	require.NoError(t, err)

	// The link resolves without authentication
	resolved, err := f.svc.GetRouteByShareToken(token)
	require.NoError(t, err)
	assert.Equal(t, route.ID, resolved.ID)

	require.NoError(t, f.svc.RevokeShareLink(route.ID, owner.ID))
	_, err = f.svc.GetRouteByShareToken(token)
	assert.ErrorIs(t, err, ErrNotFound)

	// A new link gets a fresh token, never the revoked one
	fresh, err := f.svc.GenerateShareLink(route.ID, owner.ID)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)
}

func TestRevokeShareLinkWithoutToken(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	assert.NoError(t, f.svc.RevokeShareLink(route.ID, owner.ID))
}

func TestDeleteRouteOnlyOwner(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	other := mustCreateUser(f.users, "Other", "other@example.com")

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteRoute(route.ID, other.ID), ErrForbidden)
	assert.NoError(t, f.svc.DeleteRoute(route.ID, owner.ID))
	_, err = f.svc.GetRoute(route.ID, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSharedWithMe(t *testing.T) {
	f := newRouteFixture(t)
	owner := mustCreateUser(f.users, "Owner", "owner@example.com")
	friend := mustCreateUser(f.users, "Friend", "friend@example.com")
	f.makeFriends(t, owner, friend)

	route, err := f.svc.CreateRoute(owner.ID, RouteInput{Name: "Trip", Waypoints: twoWaypoints()})
	require.NoError(t, err)
	require.NoError(t, f.svc.ShareWithUser(route.ID, owner.ID, friend.ID))

	shared, err := f.svc.GetSharedWithMe(friend.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, route.ID, shared[0].ID)

	require.NoError(t, f.svc.UnshareWithUser(route.ID, owner.ID, friend.ID))
	shared, err = f.svc.GetSharedWithMe(friend.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)
}
