package blogclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/changyic/bloglist/internal/blogservice"
)

// Client is a thin REST client for the blog API. It carries the bearer token
// set after login; all mutation methods return the server's decoded entity.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response decoded from the {error} body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/login", creds, &session)
	if err != nil {
		return nil, err
	}

	c.token = session.Token

	return &session, nil
}

type NewBlog struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	Likes  *int   `json:"likes,omitempty"`
}

func (c *Client) GetAll(ctx context.Context) ([]blogservice.Blog, error) {
	var blogs []blogservice.Blog
	err := c.do(ctx, http.MethodGet, "/api/blogs", nil, &blogs)
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

func (c *Client) Create(ctx context.Context, blog NewBlog) (*blogservice.Blog, error) {
	var created blogservice.Blog
	err := c.do(ctx, http.MethodPost, "/api/blogs", blog, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Remove(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/api/blogs/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) UpdateLikes(ctx context.Context, id, likes int) (*blogservice.Blog, error) {
	var updated blogservice.Blog
	err := c.do(ctx, http.MethodPut, "/api/blogs/"+strconv.Itoa(id), map[string]int{"likes": likes}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) AddComment(ctx context.Context, id int, comment string) (*blogservice.Blog, error) {
	var updated blogservice.Blog
	err := c.do(ctx, http.MethodPost, "/api/blogs/"+strconv.Itoa(id)+"/comments", map[string]string{"comment": comment}, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&failure); err != nil || failure.Error == "" {
			failure.Error = fmt.Sprintf("request failed with status %d", res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: failure.Error}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(res.Body).Decode(out)
}
