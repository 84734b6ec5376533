package userservice

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changyic/bloglist/internal/common"
)

func countUsers(t *testing.T, db *sql.DB) int {
	var count int
	err := db.QueryRow("SELECT count(*) FROM users").Scan(&count)
	assert.NoError(t, err)
	return count
}

func TestRegister(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewUserService(db)

	ctx := context.Background()

	t.Run("valid registration", func(t *testing.T) {
		user, err := s.Register(ctx, "changyi", "ycy", strptr("123456"))
		assert.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "changyi", user.Username)
		assert.Equal(t, "ycy", user.Name)
		assert.Equal(t, []BlogRef{}, user.Blogs)
	})

	t.Run("missing password", func(t *testing.T) {
		before := countUsers(t, db)

		_, err := s.Register(ctx, "nopassword", "n", nil)

		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "password must be given", validationErr.Message())
		assert.Equal(t, before, countUsers(t, db))
	})

	t.Run("short password", func(t *testing.T) {
		before := countUsers(t, db)

		_, err := s.Register(ctx, "shortpw", "s", strptr("12"))

		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "password must be at least 3 characters long", validationErr.Message())
		assert.Equal(t, before, countUsers(t, db))
	})

	t.Run("short username rejected by schema", func(t *testing.T) {
		before := countUsers(t, db)

		_, err := s.Register(ctx, "ab", "too short", strptr("123456"))

		var validationErr common.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, before, countUsers(t, db))
	})

	t.Run("duplicate username", func(t *testing.T) {
		before := countUsers(t, db)

		_, err := s.Register(ctx, "changyi", "someone else", strptr("123456"))

		assert.ErrorIs(t, err, ErrDuplicateUsername)
		assert.Equal(t, before, countUsers(t, db))
	})
}

func TestAuthenticate(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewUserService(db)

	ctx := context.Background()

	registered, err := s.Register(ctx, "root", "superuser", strptr("sekret"))
	assert.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		user, err := s.Authenticate(ctx, "root", "sekret")
		assert.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Equal(t, "root", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Authenticate(ctx, "root", "wrong")
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := s.Authenticate(ctx, "nobody", "sekret")
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	})
}

func TestList(t *testing.T) {
	db := common.TestDB("file://../../migrations", t)
	s := NewUserService(db)

	ctx := context.Background()

	// an empty store lists as an empty slice, not nil
	users, err := s.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []User{}, users)

	user, err := s.Register(ctx, "writer", "w", strptr("123456"))
	assert.NoError(t, err)
	_, err = s.Register(ctx, "reader", "r", strptr("123456"))
	assert.NoError(t, err)

	// two blogs with back-references, inserted in order
	var firstID, secondID int
	err = db.QueryRow("INSERT INTO blogs (title, author, url, user_id) VALUES ('First', 'w', 'http://a', $1) RETURNING id", user.ID).Scan(&firstID)
	assert.NoError(t, err)
	err = db.QueryRow("INSERT INTO blogs (title, author, url, user_id) VALUES ('Second', 'w', 'http://b', $1) RETURNING id", user.ID).Scan(&secondID)
	assert.NoError(t, err)
	_, err = db.Exec("INSERT INTO user_blogs (user_id, blog_id) VALUES ($1, $2), ($1, $3)", user.ID, firstID, secondID)
	assert.NoError(t, err)

	users, err = s.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	byName := make(map[string]User)
	for _, u := range users {
		byName[u.Username] = u
	}

	writer := byName["writer"]
	assert.Equal(t, []BlogRef{
		{ID: firstID, Title: "First", Author: "w", URL: "http://a"},
		{ID: secondID, Title: "Second", Author: "w", URL: "http://b"},
	}, writer.Blogs)

	reader := byName["reader"]
	assert.Equal(t, []BlogRef{}, reader.Blogs)
}
