package userservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/changyic/bloglist/internal/common"
)

var (
	ErrAuthenticationFailure = fmt.Errorf("invalid username or password")
)

func NewUserService(db *sql.DB) *UserService {
	return &UserService{
		m: newUserModel(db),
	}
}

// Register creates a new user account. The password hash is computed once
// here and never recomputed; the blog back-reference set starts empty.
// password is a pointer so an omitted field is distinguishable from an empty
// string.
func (s *UserService) Register(ctx context.Context, username, name string, password *string) (*User, error) {
	v := common.NewValidator()
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Username: username,
		Name:     name,
		Blogs:    []BlogRef{},
	}

	err := u.Password.set(*password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Authenticate checks a username/password pair and returns the matching user.
// An unknown username and a wrong password are indistinguishable to the
// caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.m.getUserByUsername(ctx, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return nil, ErrAuthenticationFailure
		default:
			return nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	return user, nil
}

// GetByID resolves a token subject to the stored user.
func (s *UserService) GetByID(ctx context.Context, id int) (*User, error) {
	return s.m.getUserByID(ctx, id)
}

// List returns all users with their blog back-references populated.
func (s *UserService) List(ctx context.Context) ([]User, error) {
	return s.m.getUsers(ctx)
}
