package blogservice

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/changyic/bloglist/internal/common"
)

func intptr(i int) *int {
	return &i
}

// setupTestUser inserts a user directly; the hash content is irrelevant here.
func setupTestUser(t *testing.T, db *sql.DB, username string) int {
	randomHash := make([]byte, 16)
	_, err := rand.Read(randomHash)
	assert.NoError(t, err)

	var id int
	err = db.QueryRow("INSERT INTO users (username, name, password_hash) VALUES ($1, $2, $3) RETURNING id", username, "test user", randomHash).Scan(&id)
	assert.NoError(t, err)

	return id
}

func setupTestEnvironment(t *testing.T) (*BlogService, *sql.DB, int) {
	db := common.TestDB("file://../../migrations", t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)
	userID := setupTestUser(t, db, "testuser")

	return NewBlogService(db, cache), db, userID
}

func countBackRefs(t *testing.T, db *sql.DB, userID, blogID int) int {
	var count int
	err := db.QueryRow("SELECT count(*) FROM user_blogs WHERE user_id = $1 AND blog_id = $2", userID, blogID).Scan(&count)
	assert.NoError(t, err)
	return count
}

func TestCreate(t *testing.T) {
	s, db, userID := setupTestEnvironment(t)

	ctx := context.Background()

	testCases := []struct {
		name      string
		req       *CreateBlogRequest
		wantLikes int
		wantErr   bool
	}{
		{
			name:      "likes omitted defaults to zero",
			req:       &CreateBlogRequest{Title: "Go Proverbs", Author: "Rob Pike", URL: "http://example.com/proverbs", UserID: userID},
			wantLikes: 0,
		},
		{
			name:      "supplied likes preserved",
			req:       &CreateBlogRequest{Title: "Errors are values", Author: "Rob Pike", URL: "http://example.com/errors", Likes: intptr(5), UserID: userID},
			wantLikes: 5,
		},
		{
			name:      "supplied zero preserved",
			req:       &CreateBlogRequest{Title: "Share memory by communicating", Author: "Andrew Gerrand", URL: "http://example.com/share", Likes: intptr(0), UserID: userID},
			wantLikes: 0,
		},
		{
			name:    "missing title",
			req:     &CreateBlogRequest{Author: "a", URL: "http://example.com", UserID: userID},
			wantErr: true,
		},
		{
			name:    "missing url",
			req:     &CreateBlogRequest{Title: "t", Author: "a", UserID: userID},
			wantErr: true,
		},
		{
			name:    "missing author",
			req:     &CreateBlogRequest{Title: "t", URL: "http://example.com", UserID: userID},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			blog, err := s.Create(ctx, tc.req)
			if tc.wantErr {
				var validationErr common.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				return
			}

			assert.NoError(t, err)
			assert.NotZero(t, blog.ID)
			assert.Equal(t, tc.wantLikes, blog.Likes)
			assert.Equal(t, []string{}, blog.Comments)
			assert.Equal(t, userID, blog.User.ID)

			// the creator's back-reference set gained the new id
			assert.Equal(t, 1, countBackRefs(t, db, userID, blog.ID))
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		_, err := s.Create(ctx, &CreateBlogRequest{Title: "t", Author: "a", URL: "http://example.com", UserID: 99999})
		assert.ErrorIs(t, err, ErrUserForeignKey)
	})
}

func TestGetAll(t *testing.T) {
	s, _, userID := setupTestEnvironment(t)

	ctx := context.Background()

	_, err := s.Create(ctx, &CreateBlogRequest{Title: "First", Author: "a", URL: "http://a", UserID: userID})
	assert.NoError(t, err)
	created, err := s.Create(ctx, &CreateBlogRequest{Title: "Second", Author: "b", URL: "http://b", Likes: intptr(3), UserID: userID})
	assert.NoError(t, err)

	_, err = s.AddComment(ctx, created.ID, "nice post")
	assert.NoError(t, err)

	blogs, err := s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, blogs, 2)

	for _, blog := range blogs {
		assert.Equal(t, "testuser", blog.User.Username)
		assert.Equal(t, "test user", blog.User.Name)
		if blog.ID == created.ID {
			assert.Equal(t, []string{"nice post"}, blog.Comments)
		} else {
			assert.Equal(t, []string{}, blog.Comments)
		}
	}

	// second read is served from cache and identical
	cached, err := s.GetAll(ctx)
	assert.NoError(t, err)
	assert.Equal(t, blogs, cached)
}

func TestGetByID(t *testing.T) {
	s, _, userID := setupTestEnvironment(t)

	ctx := context.Background()

	created, err := s.Create(ctx, &CreateBlogRequest{Title: "Lookup", Author: "a", URL: "http://a", UserID: userID})
	assert.NoError(t, err)

	blog, err := s.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Lookup", blog.Title)
	assert.Equal(t, "testuser", blog.User.Username)

	_, err = s.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDelete(t *testing.T) {
	s, db, userID := setupTestEnvironment(t)

	ctx := context.Background()

	created, err := s.Create(ctx, &CreateBlogRequest{Title: "Doomed", Author: "a", URL: "http://a", UserID: userID})
	assert.NoError(t, err)
	_, err = s.AddComment(ctx, created.ID, "soon gone")
	assert.NoError(t, err)

	err = s.Delete(ctx, created.ID)
	assert.NoError(t, err)

	// blog row, back-reference and comments are all gone
	_, err = s.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, 0, countBackRefs(t, db, userID, created.ID))

	var comments int
	err = db.QueryRow("SELECT count(*) FROM blog_comments WHERE blog_id = $1", created.ID).Scan(&comments)
	assert.NoError(t, err)
	assert.Equal(t, 0, comments)

	t.Run("absent blog", func(t *testing.T) {
		err := s.Delete(ctx, 99999)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestUpdateLikes(t *testing.T) {
	s, _, userID := setupTestEnvironment(t)

	ctx := context.Background()

	created, err := s.Create(ctx, &CreateBlogRequest{Title: "Popular", Author: "a", URL: "http://a", UserID: userID})
	assert.NoError(t, err)
	_, err = s.AddComment(ctx, created.ID, "kept")
	assert.NoError(t, err)

	blog, err := s.UpdateLikes(ctx, created.ID, 520)
	assert.NoError(t, err)
	assert.Equal(t, 520, blog.Likes)
	assert.Equal(t, "Popular", blog.Title)
	// the like-update result does not carry the comment sequence
	assert.Nil(t, blog.Comments)

	// stored comments are untouched
	stored, err := s.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"kept"}, stored.Comments)

	t.Run("absent blog", func(t *testing.T) {
		_, err := s.UpdateLikes(ctx, 99999, 1)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}

func TestAddComment(t *testing.T) {
	s, db, userID := setupTestEnvironment(t)

	ctx := context.Background()

	created, err := s.Create(ctx, &CreateBlogRequest{Title: "Discussed", Author: "a", URL: "http://a", UserID: userID})
	assert.NoError(t, err)

	countComments := func() int {
		var count int
		err := db.QueryRow("SELECT count(*) FROM blog_comments WHERE blog_id = $1", created.ID).Scan(&count)
		assert.NoError(t, err)
		return count
	}

	testCases := []struct {
		name    string
		comment string
		wantErr bool
	}{
		{name: "empty comment", comment: "", wantErr: true},
		{name: "whitespace only", comment: "   \t\n", wantErr: true},
		{name: "first comment", comment: "great read"},
		{name: "second comment", comment: "agreed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			before := countComments()

			blog, err := s.AddComment(ctx, created.ID, tc.comment)
			if tc.wantErr {
				var validationErr common.ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Equal(t, before, countComments())
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, before+1, countComments())
			assert.Equal(t, tc.comment, blog.Comments[len(blog.Comments)-1])
		})
	}

	// append order is preserved
	blog, err := s.GetByID(ctx, created.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{"great read", "agreed"}, blog.Comments)

	t.Run("absent blog", func(t *testing.T) {
		_, err := s.AddComment(ctx, 99999, "into the void")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})
}
