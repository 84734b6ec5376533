package blogservice

import (
	"context"
	"database/sql"

	"github.com/changyic/bloglist/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache) *BlogService {
	return &BlogService{m: newBlogModel(db), c: c}
}

type CreateBlogRequest struct {
	Title  string
	Author string
	URL    string
	// Likes is nil when the field was omitted; a supplied zero is preserved.
	Likes  *int
	UserID int
}

// Create persists a new blog owned by the given user and appends it to that
// user's back-reference set. Returns the created blog with an unpopulated
// creator reference and an empty comment sequence.
func (s *BlogService) Create(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateBlog(v, req.Title, req.Author, req.URL)
	validateInt(v, req.UserID, "user_id")
	if req.Likes != nil {
		v.Check(*req.Likes >= 0, "likes", "must not be negative")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	likes := 0
	if req.Likes != nil {
		likes = *req.Likes
	}

	blog := &Blog{
		Title:    req.Title,
		Author:   req.Author,
		URL:      req.URL,
		Likes:    likes,
		User:     UserRef{ID: req.UserID},
		Comments: []string{},
	}

	err := s.m.insert(ctx, blog)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlogs())

	return blog, nil
}

// GetAll returns every blog with the creator populated.
func (s *BlogService) GetAll(ctx context.Context) ([]Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyBlogs()); ok {
		return cached.([]Blog), nil
	}

	blogs, err := s.m.getBlogs(ctx)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlogs(), blogs)

	return blogs, nil
}

// GetByID returns a single populated blog.
func (s *BlogService) GetByID(ctx context.Context, id int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		return cached.(*Blog), nil
	}

	blog, err := s.m.getBlogByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), blog)

	return blog, nil
}

// Delete removes the blog and the owning user's back-reference to it as one
// logical unit. Ownership is the caller's responsibility: the HTTP layer
// rejects non-creators before this point.
func (s *BlogService) Delete(ctx context.Context, blogID int) error {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	err := s.m.deleteBlog(ctx, blogID)
	if err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlogs())
	s.c.Delete(common.CacheKeyBlog(blogID))

	return nil
}

// UpdateLikes writes the provided like count. Any caller may set any blog's
// count; the operation is not identity-gated.
func (s *BlogService) UpdateLikes(ctx context.Context, blogID, likes int) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	v.Check(likes >= 0, "likes", "must not be negative")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.m.updateLikes(ctx, blogID, likes)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlogs())
	s.c.Delete(common.CacheKeyBlog(blogID))

	return blog, nil
}

// AddComment appends the raw comment string to the blog's comment sequence
// and returns the blog fully populated. Comments carry no author attribution.
func (s *BlogService) AddComment(ctx context.Context, blogID int, comment string) (*Blog, error) {
	v := common.NewValidator()
	validateInt(v, blogID, "id")
	validateComment(v, comment)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	err := s.m.insertComment(ctx, blogID, comment)
	if err != nil {
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlogs())
	s.c.Delete(common.CacheKeyBlog(blogID))

	return s.m.getBlogByID(ctx, blogID)
}
