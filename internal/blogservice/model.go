package blogservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserForeignKey = errors.New("user_id does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// insert persists the blog and appends its id to the creator's back-reference
// set. Both writes commit in one transaction so the user<->blog invariant
// cannot be observed half-applied.
func (m *BlogModel) insert(ctx context.Context, blog *Blog) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO blogs (title, author, url, likes, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	args := []any{blog.Title, blog.Author, blog.URL, blog.Likes, blog.User.ID}

	err = tx.QueryRowContext(ctx, query, args...).Scan(&blog.ID, &blog.CreatedAt)
	if err != nil {
		_ = tx.Rollback()
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO user_blogs (user_id, blog_id) VALUES ($1, $2)", blog.User.ID, blog.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// getBlogByID returns a blog with the creator populated to {username, name}
// and the full comment sequence.
func (m *BlogModel) getBlogByID(ctx context.Context, id int) (*Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	row := m.db.QueryRowContext(ctx, query, id)

	var blog Blog
	err := row.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.User.ID, &blog.CreatedAt, &blog.User.Username, &blog.User.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	comments, err := m.getComments(ctx, []int{blog.ID})
	if err != nil {
		return nil, err
	}
	blog.Comments = comments[blog.ID]

	return &blog, nil
}

// getBlogs returns all blogs with creators and comments populated, ordered by
// creation time descending.
func (m *BlogModel) getBlogs(ctx context.Context) ([]Blog, error) {
	query := `
		SELECT b.id, b.title, b.author, b.url, b.likes, b.user_id, b.created_at, u.username, u.name
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		ORDER BY b.created_at DESC, b.id DESC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	ids := []int{}
	for rows.Next() {
		var blog Blog
		err := rows.Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.User.ID, &blog.CreatedAt, &blog.User.Username, &blog.User.Name)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, blog)
		ids = append(ids, blog.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	comments, err := m.getComments(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range blogs {
		blogs[i].Comments = comments[blogs[i].ID]
	}

	return blogs, nil
}

// getComments loads the ordered comment sequences for the given blog ids. An
// id with no comments maps to an empty, non-nil slice.
func (m *BlogModel) getComments(ctx context.Context, ids []int) (map[int][]string, error) {
	comments := make(map[int][]string, len(ids))
	for _, id := range ids {
		comments[id] = []string{}
	}

	if len(ids) == 0 {
		return comments, nil
	}

	query := `
		SELECT blog_id, comment
		FROM blog_comments
		WHERE blog_id = ANY($1)
		ORDER BY id`

	rows, err := m.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var blogID int
		var comment string
		if err := rows.Scan(&blogID, &comment); err != nil {
			return nil, err
		}
		comments[blogID] = append(comments[blogID], comment)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

// deleteBlog removes the blog row and the creator's back-reference to it as
// one transaction. The back-reference must go first: user_blogs carries a
// foreign key to blogs.
func (m *BlogModel) deleteBlog(ctx context.Context, blogID int) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "DELETE FROM user_blogs WHERE blog_id = $1", blogID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM blogs WHERE id = $1", blogID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	if rows == 0 {
		_ = tx.Rollback()
		return ErrRecordNotFound
	}

	return tx.Commit()
}

// updateLikes writes the provided like count and returns the updated row. The
// comment sequence is deliberately not loaded; callers that hold one keep it.
func (m *BlogModel) updateLikes(ctx context.Context, blogID, likes int) (*Blog, error) {
	query := `
		UPDATE blogs
		SET likes = $1
		WHERE id = $2
		RETURNING id, title, author, url, likes, user_id, created_at`

	var blog Blog
	err := m.db.QueryRowContext(ctx, query, likes, blogID).Scan(&blog.ID, &blog.Title, &blog.Author, &blog.URL, &blog.Likes, &blog.User.ID, &blog.CreatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &blog, nil
}

func (m *BlogModel) insertComment(ctx context.Context, blogID int, comment string) error {
	_, err := m.db.ExecContext(ctx, "INSERT INTO blog_comments (blog_id, comment) VALUES ($1, $2)", blogID, comment)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blog_comments_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}
