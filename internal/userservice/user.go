package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/changyic/bloglist/internal/common"
)

var (
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrNotFound          = errors.New("user not found")
)

func newUserModel(db *sql.DB) *DBModel {
	return &DBModel{db: db}
}

func (m *DBModel) insertUser(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (username, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	args := []any{
		u.Username,
		u.Name,
		u.Password.hash,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Code == "23505" && pqErr.Constraint == "users_username_key":
				return ErrDuplicateUsername
			case pqErr.Code == "23514" && pqErr.Constraint == "users_username_length_check":
				return common.ValidationError{Errors: map[string]string{"username": "must be at least 3 characters long"}}
			}
		}
		return err
	}

	return nil
}

func (m *DBModel) getUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, name, password_hash
		FROM users
		WHERE username = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, username).Scan(&u.ID, &u.Username, &u.Name, &u.Password.hash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

func (m *DBModel) getUserByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT id, username, name
		FROM users
		WHERE id = $1`

	var u User

	err := m.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrNotFound
		default:
			return nil, err
		}
	}

	return &u, nil
}

// getUsers returns every user with its blog back-references populated to
// {id, title, author, url}, ordered by back-reference insertion.
func (m *DBModel) getUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, name
		FROM users
		ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	index := make(map[int]int)
	for rows.Next() {
		var u User
		err := rows.Scan(&u.ID, &u.Username, &u.Name)
		if err != nil {
			return nil, err
		}
		u.Blogs = []BlogRef{}
		index[u.ID] = len(users)
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	refQuery := `
		SELECT ub.user_id, b.id, b.title, b.author, b.url
		FROM user_blogs ub
		JOIN blogs b ON ub.blog_id = b.id
		ORDER BY ub.id`

	refRows, err := m.db.QueryContext(ctx, refQuery)
	if err != nil {
		return nil, err
	}
	defer refRows.Close()

	for refRows.Next() {
		var userID int
		var ref BlogRef
		err := refRows.Scan(&userID, &ref.ID, &ref.Title, &ref.Author, &ref.URL)
		if err != nil {
			return nil, err
		}
		if i, ok := index[userID]; ok {
			users[i].Blogs = append(users[i].Blogs, ref)
		}
	}

	if err := refRows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
