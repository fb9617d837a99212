package service

import (
	"sync"
	"testing"

	"travelshare/backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeGroupBlogRepo struct {
	mu    sync.Mutex
	blogs map[string]*model.GroupBlog
}

func newFakeGroupBlogRepo() *fakeGroupBlogRepo {
	return &fakeGroupBlogRepo{blogs: make(map[string]*model.GroupBlog)}
}

func (r *fakeGroupBlogRepo) Create(blog *model.GroupBlog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if blog.ID == "" {
		blog.ID = uuid.New().String()
	}
	cp := *blog
	r.blogs[blog.ID] = &cp
	return nil
}

func (r *fakeGroupBlogRepo) FindByID(id string) (*model.GroupBlog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.blogs[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeGroupBlogRepo) FindByGroupID(groupID string, offset, limit int) ([]*model.GroupBlog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.GroupBlog
	for _, b := range r.blogs {
		if b.GroupID == groupID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeGroupBlogRepo) Update(blog *model.GroupBlog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blogs[blog.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *blog
	r.blogs[blog.ID] = &cp
	return nil
}

func (r *fakeGroupBlogRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.blogs, id)
	return nil
}

type groupBlogFixture struct {
	svc    GroupBlogService
	groups GroupService
	users  *fakeUserRepo
}

func newGroupBlogFixture(t *testing.T) *groupBlogFixture {
	t.Helper()
	users := newFakeUserRepo()
	groupRepo := newFakeGroupRepo()
	groupService := NewGroupService(groupRepo, users)
	return &groupBlogFixture{
		svc:    NewGroupBlogService(newFakeGroupBlogRepo(), groupRepo, users, groupService, newTestNotificationService(), nil),
		groups: groupService,
		users:  users,
	}
}

func TestGroupBlogCreateMembersOnly(t *testing.T) {
	f := newGroupBlogFixture(t)
	creator := mustCreateUser(f.users, "Creator", "creator@example.com")
	outsider := mustCreateUser(f.users, "Outsider", "outsider@example.com")

	group, err := f.groups.CreateGroup(creator.ID, CreateGroupInput{
		Name: "Trail Writers", Icon: "pen", Color: "#6a1b9a",
	})
	require.NoError(t, err)

	_, err = f.svc.CreatePost(group.ID, outsider.ID, "Sneaky", "not a member", nil, "")
	assert.ErrorIs(t, err, ErrForbidden)

	post, err := f.svc.CreatePost(group.ID, creator.ID, "Day One", "We set off at dawn.", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "Day One", post.Title)
	assert.Equal(t, creator.ID, post.AuthorID)
}

func TestGroupBlogUpdateAuthorOnly(t *testing.T) {
	f := newGroupBlogFixture(t)
	creator := mustCreateUser(f.users, "Creator", "creator@example.com")
	member := mustCreateUser(f.users, "Member", "member@example.com")

	group, err := f.groups.CreateGroup(creator.ID, CreateGroupInput{
		Name: "Trail Writers", Icon: "pen", Color: "#6a1b9a",
	})
	require.NoError(t, err)
	require.NoError(t, f.groups.JoinGroup(group.ID, member.ID))

	post, err := f.svc.CreatePost(group.ID, member.ID, "Day One", "We set off at dawn.", nil, "")
	require.NoError(t, err)

	_, err = f.svc.UpdatePost(post.ID, creator.ID, strPtr("Edited"), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.UpdatePost(post.ID, member.ID, strPtr("Edited"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
}
