package sharegate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetPostSelectsEndpointByIDShape(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q, want application/json", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"title":"A"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client(), nil)

	if _, err := client.GetPost(context.Background(), "507f1f77bcf86cd799439011"); err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if gotPath != "/posts/details/507f1f77bcf86cd799439011" {
		t.Errorf("path = %q, want /posts/details/<id>", gotPath)
	}

	if _, err := client.GetPost(context.Background(), "my-article-title"); err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if gotPath != "/posts/my-article-title" {
		t.Errorf("path = %q, want /posts/my-article-title", gotPath)
	}
}

func TestGetPostEnvelopeShapes(t *testing.T) {
	bodies := []string{
		`{"title":"A","slug":"a"}`,
		`{"data":{"title":"A","slug":"a"}}`,
		`{"success":true,"data":{"title":"A","slug":"a"}}`,
		`{"data":{"data":{"title":"A","slug":"a"}}}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		client := NewClient(srv.URL, "", srv.Client(), nil)
		post, err := client.GetPost(context.Background(), "a")
		srv.Close()
		if err != nil {
			t.Errorf("body %s: %v", body, err)
			continue
		}
		if post.Title != "A" {
			t.Errorf("body %s: Title = %q, want A", body, post.Title)
		}
	}
}

func TestGetPostErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/posts/missing":
			http.Error(w, "nope", http.StatusNotFound)
		case "/posts/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.Write([]byte(`not json`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client(), nil)

	if _, err := client.GetPost(context.Background(), "missing"); err != ErrNotFound {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
	if _, err := client.GetPost(context.Background(), "broken"); err == nil {
		t.Error("broken: expected error for 500")
	}
	if _, err := client.GetPost(context.Background(), "garbled"); err == nil {
		t.Error("garbled: expected error for malformed JSON")
	}
}

func TestListPostsDerivesHasMore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"A"},{"title":"B"}],"total":5}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client(), nil)
	page, err := client.ListPosts(context.Background(), ListParams{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if !page.HasMore {
		t.Error("HasMore should derive true from 1*2 < 5")
	}

	page, err = client.ListPosts(context.Background(), ListParams{Page: 3, Limit: 2})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if page.HasMore {
		t.Error("HasMore should derive false from 3*2 >= 5")
	}
}

func TestListPostsExplicitHasMoreWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"A"}],"total":100,"hasMore":false}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client(), nil)
	page, err := client.ListPosts(context.Background(), ListParams{Page: 1, Limit: 1})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if page.HasMore {
		t.Error("explicit hasMore=false must not be overridden by the total")
	}
}

func TestListPostsBareArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"A"},{"title":"B"}]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client(), nil)
	page, err := client.ListPosts(context.Background(), ListParams{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(page.Posts) != 2 || page.Total != 2 {
		t.Errorf("got %d posts total %d, want 2/2", len(page.Posts), page.Total)
	}
	if page.HasMore {
		t.Error("bare array of 2 with limit 10 should not report more")
	}
}

func TestClientUsesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"title":"A","slug":"a"}`))
	}))
	defer srv.Close()

	cache := NewAPICache(10, time.Minute, nil)
	client := NewClient(srv.URL, "", srv.Client(), cache)

	for i := 0; i < 3; i++ {
		if _, err := client.GetPost(context.Background(), "a"); err != nil {
			t.Fatalf("GetPost: %v", err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("backend calls = %d, want 1 (cache hit)", n)
	}
}

func TestSavePostInvalidatesCache(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"title":"A","slug":"a","_id":"507f1f77bcf86cd799439011"}`))
	}))
	defer srv.Close()

	cache := NewAPICache(10, time.Minute, nil)
	client := NewClient(srv.URL, "tok", srv.Client(), cache)

	post, err := client.GetPost(context.Background(), "a")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if err := client.SavePost(context.Background(), post); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if _, err := client.GetPost(context.Background(), "a"); err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("backend GETs = %d, want 2 (cache invalidated by save)", n)
	}
}
