package sharegate

import (
	"context"
	"sync"
)

// Paginator accumulates pages of posts from the backend list API. LoadMore
// is guarded by an in-flight flag: a call that overlaps a running load is a
// no-op rather than a queued request. Sitemap and feed generation use it to
// walk the full corpus; the admin dashboard uses it for incremental listing.
type Paginator struct {
	client *Client
	params ListParams

	mu      sync.Mutex
	posts   []Post
	page    int
	total   int
	hasMore bool
	loading bool
}

// NewPaginator creates a paginator for the given filter parameters.
// params.Page is ignored; paging always starts at 1.
func NewPaginator(client *Client, params ListParams) *Paginator {
	p := &Paginator{client: client, params: params}
	p.resetLocked()
	return p
}

func (p *Paginator) resetLocked() {
	p.posts = nil
	p.page = 0
	p.total = 0
	p.hasMore = true
	p.loading = false
}

// Reset clears accumulated posts so the next LoadMore starts from page 1.
// Call it when the filter parameters change.
func (p *Paginator) Reset(params ListParams) {
	p.mu.Lock()
	p.params = params
	p.resetLocked()
	p.mu.Unlock()
}

// LoadMore fetches the next page and appends it. It returns false without
// fetching when there is nothing more to load or a load is already running.
// A failed initial load clears the accumulated posts; a failed load-more
// keeps what was already loaded.
func (p *Paginator) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if !p.hasMore || p.loading {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	params := p.params
	params.Page = p.page + 1
	if params.Limit < 1 {
		params.Limit = 20
	}
	p.mu.Unlock()

	page, err := p.client.ListPosts(ctx, params)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		if params.Page == 1 {
			p.posts = nil
		}
		return false, err
	}
	if params.Page == 1 {
		p.posts = page.Posts
	} else {
		p.posts = append(p.posts, page.Posts...)
	}
	p.page = params.Page
	p.total = page.Total
	p.hasMore = page.HasMore && len(page.Posts) > 0
	return true, nil
}

// LoadAll pages through the corpus until exhausted. maxPages bounds the walk
// so a backend that always reports more cannot loop forever.
func (p *Paginator) LoadAll(ctx context.Context, maxPages int) ([]Post, error) {
	for i := 0; i < maxPages; i++ {
		ok, err := p.LoadMore(ctx)
		if err != nil {
			return p.Posts(), err
		}
		if !ok {
			break
		}
		if !p.HasMore() {
			break
		}
	}
	return p.Posts(), nil
}

// Posts returns a copy of the accumulated posts.
func (p *Paginator) Posts() []Post {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Post, len(p.posts))
	copy(out, p.posts)
	return out
}

// HasMore reports whether another page is expected.
func (p *Paginator) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Total returns the backend-reported total count, 0 until the first load.
func (p *Paginator) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Loaded returns how many posts have been accumulated so far.
func (p *Paginator) Loaded() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posts)
}
