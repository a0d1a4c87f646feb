package sharegate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// pagedBackend serves `total` posts in pages of `limit`, counting requests.
func pagedBackend(t *testing.T, total int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := (page - 1) * limit
		var items string
		for i := start; i < start+limit && i < total; i++ {
			if items != "" {
				items += ","
			}
			items += fmt.Sprintf(`{"title":"Post %d","slug":"post-%d"}`, i, i)
		}
		fmt.Fprintf(w, `{"data":[%s],"total":%d}`, items, total)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPaginatorAccumulates(t *testing.T) {
	srv, _ := pagedBackend(t, 5)
	client := NewClient(srv.URL, "", srv.Client(), nil)
	pager := NewPaginator(client, ListParams{Limit: 2})

	ok, err := pager.LoadMore(context.Background())
	if err != nil || !ok {
		t.Fatalf("LoadMore = %v, %v", ok, err)
	}
	if pager.Loaded() != 2 || !pager.HasMore() {
		t.Fatalf("after page 1: loaded=%d hasMore=%v", pager.Loaded(), pager.HasMore())
	}

	pager.LoadMore(context.Background())
	pager.LoadMore(context.Background())
	if pager.Loaded() != 5 {
		t.Errorf("loaded = %d, want 5", pager.Loaded())
	}
	if pager.HasMore() {
		t.Error("hasMore should be false after the last page")
	}
	if pager.Total() != 5 {
		t.Errorf("total = %d, want 5", pager.Total())
	}

	// Exhausted: further calls are no-ops.
	ok, err = pager.LoadMore(context.Background())
	if ok || err != nil {
		t.Errorf("LoadMore after exhaustion = %v, %v, want false, nil", ok, err)
	}
}

func TestPaginatorLoadAll(t *testing.T) {
	srv, calls := pagedBackend(t, 7)
	client := NewClient(srv.URL, "", srv.Client(), nil)
	pager := NewPaginator(client, ListParams{Limit: 3})

	posts, err := pager.LoadAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(posts) != 7 {
		t.Errorf("len = %d, want 7", len(posts))
	}
	if *calls != 3 {
		t.Errorf("backend calls = %d, want 3", *calls)
	}
}

func TestPaginatorInFlightGuard(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.Write([]byte(`{"data":[{"title":"A"}],"total":2}`))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, "", srv.Client(), nil)
	pager := NewPaginator(client, ListParams{Limit: 1})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pager.LoadMore(context.Background())
	}()

	// Wait until the first load is blocked inside the backend call.
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	ok, err := pager.LoadMore(context.Background())
	if ok || err != nil {
		t.Errorf("overlapping LoadMore = %v, %v, want false, nil", ok, err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("backend calls = %d, want 1 (second call must not fetch)", n)
	}

	release <- struct{}{}
	wg.Wait()
	if pager.Loaded() != 1 {
		t.Errorf("loaded = %d, want 1", pager.Loaded())
	}
}

func TestPaginatorInitialFailureClears(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":[{"title":"A"}],"total":1}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "", srv.Client(), nil)
	pager := NewPaginator(client, ListParams{Limit: 1})

	if _, err := pager.LoadMore(context.Background()); err == nil {
		t.Fatal("expected error from failing backend")
	}
	if pager.Loaded() != 0 {
		t.Errorf("loaded = %d, want 0 after initial failure", pager.Loaded())
	}

	fail = false
	if _, err := pager.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore after recovery: %v", err)
	}
	if pager.Loaded() != 1 {
		t.Errorf("loaded = %d, want 1", pager.Loaded())
	}
}

func TestPaginatorResetRestarts(t *testing.T) {
	srv, _ := pagedBackend(t, 4)
	client := NewClient(srv.URL, "", srv.Client(), nil)
	pager := NewPaginator(client, ListParams{Limit: 2})

	pager.LoadMore(context.Background())
	pager.LoadMore(context.Background())
	if pager.Loaded() != 4 {
		t.Fatalf("loaded = %d, want 4", pager.Loaded())
	}

	pager.Reset(ListParams{Limit: 2, Category: "world"})
	if pager.Loaded() != 0 || !pager.HasMore() {
		t.Error("reset should clear accumulated posts and re-arm hasMore")
	}
}
