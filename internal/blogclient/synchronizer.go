package blogclient

import (
	"context"
	"fmt"
	"sync"

	"github.com/changyic/bloglist/internal/blogservice"
)

// Synchronizer keeps a local copy of the blog collection in step with the
// server without refetching after mutations. Every successful mutation
// transforms the cached snapshot purely from (previous snapshot, server
// response); the new snapshot is swapped in atomically under the lock, so
// concurrent readers either see the full previous state or the full next
// state, never a partial write. Failed mutations leave the snapshot alone and
// surface through the notifier.
type Synchronizer struct {
	client   *Client
	notifier *Notifier

	mu       sync.RWMutex
	blogs    []blogservice.Blog
	username string
	name     string
}

func NewSynchronizer(client *Client, notifier *Notifier) *Synchronizer {
	return &Synchronizer{
		client:   client,
		notifier: notifier,
		blogs:    []blogservice.Blog{},
	}
}

// SetUser records the logged-in identity. Create responses reference the
// creator by bare id only, so the synchronizer splices this identity into new
// cache entries instead of making a second round trip.
func (s *Synchronizer) SetUser(username, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.username = username
	s.name = name
}

// Refresh replaces the snapshot with the server's current collection. This is
// the only full fetch; mutations never trigger one.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	blogs, err := s.client.GetAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blogs = blogs
	return nil
}

// Blogs returns the current snapshot. The slice is never mutated after
// publication; callers may iterate it freely.
func (s *Synchronizer) Blogs() []blogservice.Blog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.blogs
}

// CreateBlog posts a new blog and appends the response to the snapshot with
// the known identity merged into the creator reference.
func (s *Synchronizer) CreateBlog(ctx context.Context, blog NewBlog) (*blogservice.Blog, error) {
	created, err := s.client.Create(ctx, blog)
	if err != nil {
		s.notifier.Notify(NotificationError, err.Error(), DefaultNotificationTimeout)
		return nil, err
	}

	s.mu.Lock()
	merged := *created
	merged.User = blogservice.UserRef{ID: created.User.ID, Username: s.username, Name: s.name}

	next := make([]blogservice.Blog, len(s.blogs), len(s.blogs)+1)
	copy(next, s.blogs)
	s.blogs = append(next, merged)
	s.mu.Unlock()

	s.notifier.Notify(NotificationCommon, fmt.Sprintf("a new blog %s by %s added", created.Title, created.Author), DefaultNotificationTimeout)

	return &merged, nil
}

// DeleteBlog removes a blog and filters it out of the snapshot by id.
func (s *Synchronizer) DeleteBlog(ctx context.Context, id int) error {
	err := s.client.Remove(ctx, id)
	if err != nil {
		s.notifier.Notify(NotificationError, err.Error(), DefaultNotificationTimeout)
		return err
	}

	var deleted *blogservice.Blog

	s.mu.Lock()
	next := make([]blogservice.Blog, 0, len(s.blogs))
	for _, b := range s.blogs {
		if b.ID == id {
			removed := b
			deleted = &removed
			continue
		}
		next = append(next, b)
	}
	s.blogs = next
	s.mu.Unlock()

	// a delete the server accepted is announced even when the id was not in
	// the local snapshot
	if deleted != nil {
		s.notifier.Notify(NotificationCommon, fmt.Sprintf("%s by %s deleted", deleted.Title, deleted.Author), DefaultNotificationTimeout)
	} else {
		s.notifier.Notify(NotificationCommon, "blog deleted", DefaultNotificationTimeout)
	}

	return nil
}

// LikeBlog writes a new like count and merges only the likes field of the
// matching entry. The like-update response does not carry comments; the
// locally held sequence is preserved untouched.
func (s *Synchronizer) LikeBlog(ctx context.Context, id, likes int) error {
	updated, err := s.client.UpdateLikes(ctx, id, likes)
	if err != nil {
		s.notifier.Notify(NotificationError, err.Error(), DefaultNotificationTimeout)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]blogservice.Blog, len(s.blogs))
	copy(next, s.blogs)
	for i := range next {
		if next[i].ID == updated.ID {
			next[i].Likes = updated.Likes
		}
	}
	s.blogs = next

	return nil
}

// CommentBlog appends a comment and merges only the comments field of the
// matching entry.
func (s *Synchronizer) CommentBlog(ctx context.Context, id int, comment string) error {
	updated, err := s.client.AddComment(ctx, id, comment)
	if err != nil {
		s.notifier.Notify(NotificationError, err.Error(), DefaultNotificationTimeout)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]blogservice.Blog, len(s.blogs))
	copy(next, s.blogs)
	for i := range next {
		if next[i].ID == updated.ID {
			next[i].Comments = updated.Comments
		}
	}
	s.blogs = next

	return nil
}
