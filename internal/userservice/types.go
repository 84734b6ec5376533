package userservice

import (
	"database/sql"
	"time"
)

const (
	AccessTokenTime time.Duration = 7 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m *DBModel
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Password Password `json:"-"`
	// Blogs is the stored back-reference set to the blogs this user created.
	// It is maintained by the blog service only; registration initializes it
	// empty and users never write to it directly.
	Blogs     []BlogRef `json:"blogs"`
	CreatedAt time.Time `json:"-"`
}

// BlogRef is the populated form of a single back-reference entry.
type BlogRef struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte
}

// Identity is the subject a verified access token resolves to.
type Identity struct {
	ID       int
	Username string
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}
