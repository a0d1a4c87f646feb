package sharegate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseBody = 4 << 20 // 4MB cap on backend responses

// Client talks to the external posts REST API. All methods return plain
// errors; callers on the crawler path recover by substituting defaults, so a
// failed fetch never becomes an error page for a bot.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	cache   *APICache
}

// NewClient creates a backend client. cache may be nil to disable caching.
func NewClient(baseURL, token string, hc *http.Client, cache *APICache) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		http:    hc,
		cache:   cache,
	}
}

// GetPost fetches a single post. A 24-hex-char slug is treated as a document
// id and routed to the id endpoint; anything else goes to the slug endpoint.
func (c *Client) GetPost(ctx context.Context, slug string) (Post, error) {
	endpoint := c.baseURL + "/posts/" + url.PathEscape(slug)
	if IsObjectID(slug) {
		endpoint = c.baseURL + "/posts/details/" + slug
	}

	if c.cache != nil {
		key := c.cache.Key("post", slug)
		if v := c.cache.Get(key); v != nil {
			return v.(Post), nil
		}
	}

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return Post{}, err
	}
	if status == http.StatusNotFound {
		return Post{}, ErrNotFound
	}
	if status < 200 || status > 299 {
		return Post{}, fmt.Errorf("backend status %d for %s", status, endpoint)
	}

	var post Post
	if err := decodeEnvelope(body, &post); err != nil {
		return Post{}, fmt.Errorf("decode post: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(c.cache.Key("post", slug), post)
	}
	return post, nil
}

// ListPosts fetches one page of posts. HasMore comes from the response's
// explicit flag when present, otherwise from page*limit < total.
func (c *Client) ListPosts(ctx context.Context, p ListParams) (PostPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}

	if c.cache != nil {
		key := c.cache.Key("posts", p)
		if v := c.cache.Get(key); v != nil {
			return v.(PostPage), nil
		}
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	endpoint := c.baseURL + "/posts?" + q.Encode()

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return PostPage{}, err
	}
	if status < 200 || status > 299 {
		return PostPage{}, fmt.Errorf("backend status %d for %s", status, endpoint)
	}

	page, explicit, err := decodeListEnvelope(body)
	if err != nil {
		return PostPage{}, fmt.Errorf("decode post list: %w", err)
	}
	// The explicit hasMore flag wins; otherwise derive it from the total.
	if !explicit {
		page.HasMore = p.Page*p.Limit < page.Total
	}
	if c.cache != nil {
		c.cache.Set(c.cache.Key("posts", p), page)
	}
	return page, nil
}

// SavePost creates or updates a post through the backend admin API.
func (c *Client) SavePost(ctx context.Context, post Post) error {
	method, endpoint := http.MethodPost, c.baseURL+"/posts"
	if post.ID != "" {
		method, endpoint = http.MethodPut, c.baseURL+"/posts/"+post.ID
	}
	payload, err := json.Marshal(post)
	if err != nil {
		return err
	}
	status, err := c.send(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("backend status %d saving post", status)
	}
	if c.cache != nil {
		c.cache.Invalidate()
	}
	return nil
}

// SetPublished toggles a post's published flag.
func (c *Client) SetPublished(ctx context.Context, id string, published bool) error {
	payload, _ := json.Marshal(map[string]bool{"published": published})
	status, err := c.send(ctx, http.MethodPut, c.baseURL+"/posts/"+id, payload)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("backend status %d updating post %s", status, id)
	}
	if c.cache != nil {
		c.cache.Invalidate()
	}
	return nil
}

// DeletePost removes a post by id.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	status, err := c.send(ctx, http.MethodDelete, c.baseURL+"/posts/"+id, nil)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("backend status %d deleting post %s", status, id)
	}
	if c.cache != nil {
		c.cache.Invalidate()
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("backend fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, 0, fmt.Errorf("read backend response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte) (int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
	return resp.StatusCode, nil
}

// envelope is the backend's loosely-specified response wrapper. Responses
// arrive as {success,data,message}, as {data}, or as the bare object; this is
// the single place that shape is decided.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int             `json:"total"`
	Count   int             `json:"count"`
	HasMore *bool           `json:"hasMore"`
}

// decodeEnvelope unwraps a single-object response into dst.
func decodeEnvelope(body []byte, dst any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		if env.Success != nil && !*env.Success {
			return fmt.Errorf("backend error: %s", env.Message)
		}
		// data may be nested one more level: {data: {data: {...}}}
		var inner envelope
		if err := json.Unmarshal(env.Data, &inner); err == nil && len(inner.Data) > 0 {
			return json.Unmarshal(inner.Data, dst)
		}
		return json.Unmarshal(env.Data, dst)
	}
	return json.Unmarshal(body, dst)
}

// decodeListEnvelope unwraps a list response, tolerating a bare array, a
// {data:[...]} wrapper, or a full {success,data,total,hasMore} envelope.
// The second return reports whether the response carried an explicit hasMore.
func decodeListEnvelope(body []byte) (PostPage, bool, error) {
	var page PostPage

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &page.Posts); err != nil {
			return PostPage{}, false, err
		}
		page.Total = len(page.Posts)
		return page, false, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return PostPage{}, false, err
	}
	if env.Success != nil && !*env.Success {
		return PostPage{}, false, fmt.Errorf("backend error: %s", env.Message)
	}
	explicit := false
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 {
		if data[0] == '[' {
			if err := json.Unmarshal(data, &page.Posts); err != nil {
				return PostPage{}, false, err
			}
		} else {
			// {data: {posts: [...], total: N}} variant
			var nested struct {
				Posts   []Post `json:"posts"`
				Items   []Post `json:"items"`
				Total   int    `json:"total"`
				HasMore *bool  `json:"hasMore"`
			}
			if err := json.Unmarshal(data, &nested); err != nil {
				return PostPage{}, false, err
			}
			page.Posts = nested.Posts
			if page.Posts == nil {
				page.Posts = nested.Items
			}
			if nested.Total > 0 {
				page.Total = nested.Total
			}
			if nested.HasMore != nil {
				page.HasMore = *nested.HasMore
				explicit = true
			}
		}
	}
	if env.Total > 0 {
		page.Total = env.Total
	} else if env.Count > 0 && page.Total == 0 {
		page.Total = env.Count
	}
	if page.Total == 0 {
		page.Total = len(page.Posts)
	}
	if env.HasMore != nil {
		page.HasMore = *env.HasMore
		explicit = true
	}
	return page, explicit, nil
}
