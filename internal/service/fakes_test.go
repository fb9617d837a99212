package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"travelshare/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. Side-effecting notifications run in
// goroutines, so every fake guards its state with a mutex.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.PublicID == "" {
		user.PublicID = "usr_" + uuid.New().String()[:8]
	}
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByPublicID(publicID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.PublicID == publicID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByIDs(ids []string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Search(query string, excludeIDs []string, limit int) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	q := strings.ToLower(query)
	var out []*model.User
	for _, u := range r.users {
		if excluded[u.ID] {
			continue
		}
		if strings.Contains(strings.ToLower(u.FullName), q) || strings.Contains(strings.ToLower(u.Email), q) {
			cp := *u
			out = append(out, &cp)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(offset, limit int) ([]*model.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.User
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	total := int64(len(out))
	if offset >= len(out) {
		return []*model.User{}, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

type fakeFriendshipRepo struct {
	mu          sync.Mutex
	friendships map[string]*model.Friendship
	users       *fakeUserRepo
}

func newFakeFriendshipRepo(users *fakeUserRepo) *fakeFriendshipRepo {
	return &fakeFriendshipRepo{
		friendships: make(map[string]*model.Friendship),
		users:       users,
	}
}

func (r *fakeFriendshipRepo) hydrate(f *model.Friendship) *model.Friendship {
	cp := *f
	if r.users != nil {
		if u, err := r.users.FindByID(cp.SenderID); err == nil {
			cp.Sender = *u
		}
		if u, err := r.users.FindByID(cp.ReceiverID); err == nil {
			cp.Receiver = *u
		}
	}
	return &cp
}

func (r *fakeFriendshipRepo) Create(friendship *model.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if friendship.ID == "" {
		friendship.ID = uuid.New().String()
	}
	friendship.CreatedAt = time.Now()
	cp := *friendship
	r.friendships[friendship.ID] = &cp
	return nil
}

func (r *fakeFriendshipRepo) FindByID(id string) (*model.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.friendships[id]; ok {
		return r.hydrate(f), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendshipRepo) FindByPair(userA, userB string) (*model.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.friendships {
		if (f.SenderID == userA && f.ReceiverID == userB) || (f.SenderID == userB && f.ReceiverID == userA) {
			return r.hydrate(f), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendshipRepo) FindPendingByReceiverID(receiverID string) ([]*model.Friendship, error) {
	return r.filter(func(f *model.Friendship) bool {
		return f.ReceiverID == receiverID && f.Status == model.FriendshipStatusPending
	})
}

func (r *fakeFriendshipRepo) FindPendingBySenderID(senderID string) ([]*model.Friendship, error) {
	return r.filter(func(f *model.Friendship) bool {
		return f.SenderID == senderID && f.Status == model.FriendshipStatusPending
	})
}

func (r *fakeFriendshipRepo) FindAcceptedByUserID(userID string) ([]*model.Friendship, error) {
	return r.filter(func(f *model.Friendship) bool {
		return f.Status == model.FriendshipStatusAccepted && (f.SenderID == userID || f.ReceiverID == userID)
	})
}

func (r *fakeFriendshipRepo) FindBlockedBySenderID(senderID string) ([]*model.Friendship, error) {
	return r.filter(func(f *model.Friendship) bool {
		return f.SenderID == senderID && f.Status == model.FriendshipStatusBlocked
	})
}

func (r *fakeFriendshipRepo) FindAcceptedFriendIDs(userID string) ([]string, error) {
	accepted, _ := r.FindAcceptedByUserID(userID)
	ids := make([]string, 0, len(accepted))
	for _, f := range accepted {
		if f.SenderID == userID {
			ids = append(ids, f.ReceiverID)
		} else {
			ids = append(ids, f.SenderID)
		}
	}
	return ids, nil
}

func (r *fakeFriendshipRepo) Update(friendship *model.Friendship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.friendships[friendship.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *friendship
	r.friendships[friendship.ID] = &cp
	return nil
}

func (r *fakeFriendshipRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.friendships, id)
	return nil
}

func (r *fakeFriendshipRepo) DeleteAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, f := range r.friendships {
		if f.SenderID == userID || f.ReceiverID == userID {
			delete(r.friendships, id)
		}
	}
	return nil
}

func (r *fakeFriendshipRepo) CountPendingByReceiverID(receiverID string) (int64, error) {
	pending, _ := r.FindPendingByReceiverID(receiverID)
	return int64(len(pending)), nil
}

func (r *fakeFriendshipRepo) filter(keep func(*model.Friendship) bool) ([]*model.Friendship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Friendship
	for _, f := range r.friendships {
		if keep(f) {
			out = append(out, r.hydrate(f))
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*model.DirectMessage
	clock    time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{clock: time.Now()}
}

func (r *fakeMessageRepo) Create(message *model.DirectMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	// Monotonic timestamps so ordering assertions are deterministic
	r.clock = r.clock.Add(time.Second)
	message.CreatedAt = r.clock
	cp := *message
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) FindByID(id string) (*model.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) FindConversation(userA, userB string, offset, limit int) ([]*model.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.DirectMessage
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*model.DirectMessage{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeMessageRepo) FindConversationPartnerIDs(userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, m := range r.messages {
		var other string
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) FindLastMessageBetween(userA, userB string) (*model.DirectMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *model.DirectMessage
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			if last == nil || m.CreatedAt.After(last.CreatedAt) {
				last = m
			}
		}
	}
	if last == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *last
	return &cp, nil
}

func (r *fakeMessageRepo) MarkConversationRead(receiverID, senderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			m.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeMessageRepo) CountUnread(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) CountUnreadFrom(receiverID, senderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) DeleteConversation(userA, userB string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		between := (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA)
		if !between {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

func (r *fakeMessageRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.messages {
		if m.ID == id {
			r.messages = append(r.messages[:i], r.messages[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) DeleteAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.messages[:0]
	for _, m := range r.messages {
		if m.SenderID != userID && m.ReceiverID != userID {
			kept = append(kept, m)
		}
	}
	r.messages = kept
	return nil
}

type fakeGroupRepo struct {
	mu      sync.Mutex
	groups  map[string]*model.ActivityGroup
	members []*model.GroupMember
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]*model.ActivityGroup)}
}

func (r *fakeGroupRepo) Create(group *model.ActivityGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) FindByID(id string) (*model.ActivityGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) FindAll(category, search string) ([]*model.ActivityGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ActivityGroup
	for _, g := range r.groups {
		if category != "" && category != model.GroupCategoryAll && g.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeGroupRepo) FindByUserID(userID string) ([]*model.ActivityGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ActivityGroup
	for _, m := range r.members {
		if m.UserID == userID {
			if g, ok := r.groups[m.GroupID]; ok {
				cp := *g
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) Update(group *model.ActivityGroup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[group.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *group
	r.groups[group.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, id)
	kept := r.members[:0]
	for _, m := range r.members {
		if m.GroupID != id {
			kept = append(kept, m)
		}
	}
	r.members = kept
	return nil
}

func (r *fakeGroupRepo) AddMember(member *model.GroupMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	member.JoinedAt = time.Now()
	cp := *member
	r.members = append(r.members, &cp)
	return nil
}

func (r *fakeGroupRepo) RemoveMember(groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.GroupID == groupID && m.UserID == userID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeGroupRepo) RemoveAllMemberships(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.members[:0]
	for _, m := range r.members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	r.members = kept
	return nil
}

func (r *fakeGroupRepo) IsMember(groupID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.GroupID == groupID && m.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeGroupRepo) CountMembers(groupID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.members {
		if m.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (r *fakeGroupRepo) FindMembers(groupID string) ([]*model.GroupMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GroupMember
	for _, m := range r.members {
		if m.GroupID == groupID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeRouteRepo struct {
	mu     sync.Mutex
	routes map[string]*model.Route
	shares map[string]map[string]bool
}

func newFakeRouteRepo() *fakeRouteRepo {
	return &fakeRouteRepo{
		routes: make(map[string]*model.Route),
		shares: make(map[string]map[string]bool),
	}
}

func (r *fakeRouteRepo) Create(route *model.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route.ID == "" {
		route.ID = uuid.New().String()
	}
	cp := *route
	r.routes[route.ID] = &cp
	return nil
}

func (r *fakeRouteRepo) FindByID(id string) (*model.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt, ok := r.routes[id]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRouteRepo) FindByShareToken(token string) (*model.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.routes {
		if rt.ShareToken != nil && *rt.ShareToken == token {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRouteRepo) FindByOwnerID(ownerID string) ([]*model.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Route
	for _, rt := range r.routes {
		if rt.OwnerID == ownerID {
			cp := *rt
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRouteRepo) FindSharedWithUser(userID string) ([]*model.Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Route
	for routeID, users := range r.shares {
		if users[userID] {
			if rt, ok := r.routes[routeID]; ok {
				cp := *rt
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (r *fakeRouteRepo) Update(route *model.Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routes[route.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *route
	r.routes[route.ID] = &cp
	return nil
}

func (r *fakeRouteRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.routes, id)
	delete(r.shares, id)
	return nil
}

func (r *fakeRouteRepo) AddShare(routeID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shares[routeID] == nil {
		r.shares[routeID] = make(map[string]bool)
	}
	r.shares[routeID][userID] = true
	return nil
}

func (r *fakeRouteRepo) RemoveShare(routeID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if users, ok := r.shares[routeID]; ok {
		delete(users, userID)
	}
	return nil
}

func (r *fakeRouteRepo) IsSharedWith(routeID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shares[routeID][userID], nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(notification *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()
	cp := *notification
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) FindByID(id string) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			cp := *n
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) FindByUserID(userID string, unreadOnly bool, offset, limit int) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return []*model.Notification{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeNotificationRepo) MarkRead(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) DeleteAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifications[:0]
	for _, n := range r.notifications {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.notifications = kept
	return nil
}

type fakeResetTokenRepo struct {
	mu     sync.Mutex
	tokens []*model.PasswordResetToken
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{}
}

func (r *fakeResetTokenRepo) Create(token *model.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	token.CreatedAt = time.Now()
	cp := *token
	r.tokens = append(r.tokens, &cp)
	return nil
}

func (r *fakeResetTokenRepo) FindByUserAndCode(userID, code string) (*model.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var newest *model.PasswordResetToken
	for _, t := range r.tokens {
		if t.UserID == userID && t.Code == code && !t.Used {
			if newest == nil || t.CreatedAt.After(newest.CreatedAt) {
				newest = t
			}
		}
	}
	if newest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *newest
	return &cp, nil
}

func (r *fakeResetTokenRepo) InvalidateAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			t.Used = true
		}
	}
	return nil
}

func (r *fakeResetTokenRepo) MarkUsed(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.ID == id {
			t.Used = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeResetTokenRepo) DeleteAllForUser(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.tokens[:0]
	for _, t := range r.tokens {
		if t.UserID != userID {
			kept = append(kept, t)
		}
	}
	r.tokens = kept
	return nil
}

type fakeEmailService struct {
	mu     sync.Mutex
	sent   []string
	codes  []string
	emails []string
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{}
}

func (s *fakeEmailService) QueueWelcomeEmail(to, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, "welcome")
	s.emails = append(s.emails, to)
	return nil
}

func (s *fakeEmailService) QueuePasswordResetEmail(to, name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, "reset")
	s.emails = append(s.emails, to)
	s.codes = append(s.codes, code)
	return nil
}

func (s *fakeEmailService) Send(to, subject, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, subject)
	s.emails = append(s.emails, to)
	return nil
}

func (s *fakeEmailService) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

// newTestNotificationService builds a real notification service over the
// in-memory repo with RabbitMQ and the hub absent.
func newTestNotificationService() NotificationService {
	return NewNotificationService(newFakeNotificationRepo(), nil)
}

func mustCreateUser(repo *fakeUserRepo, name, email string) *model.User {
	user := &model.User{
		FullName:     name,
		Email:        email,
		PasswordHash: "x",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := repo.Create(user); err != nil {
		panic(err)
	}
	return user
}
