package blogservice

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/changyic/bloglist/internal/common"
)

type Blog struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  int    `json:"likes"`
	// User is the immutable creator reference. It serializes as a bare id
	// until populated with the creator's username and name.
	User UserRef `json:"user"`
	// Comments is nil on responses that do not carry the comment sequence
	// (like updates) and an ordered string slice everywhere else.
	Comments  []string  `json:"comments"`
	CreatedAt time.Time `json:"-"`
}

// UserRef is a reference to the creating user. Reads that join the users
// table populate Username and Name; mutation responses leave them empty and
// the reference marshals as the plain id.
type UserRef struct {
	ID       int
	Username string
	Name     string
}

type userRefJSON struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (u UserRef) MarshalJSON() ([]byte, error) {
	if u.Username == "" && u.Name == "" {
		return json.Marshal(u.ID)
	}
	return json.Marshal(userRefJSON{ID: u.ID, Username: u.Username, Name: u.Name})
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '{' {
		return json.Unmarshal(data, &u.ID)
	}

	var ref userRefJSON
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}

	u.ID = ref.ID
	u.Username = ref.Username
	u.Name = ref.Name
	return nil
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m *BlogModel
	c *common.Cache
}
