package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/maheshrc27/postbridge/internal/models"
)

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		name string
		link string
		want models.MediaType
	}{
		{"clip.mov", "https://x/1", models.MediaTypeVideo},
		{"clip.MP4", "https://x/2", models.MediaTypeVideo},
		{"shot.jpg", "https://x/3", models.MediaTypeImage},
		{"shot.jpeg", "https://x/4", models.MediaTypeImage},
		{"shot.png", "https://x/5", models.MediaTypeImage},
		{"clip.mp4", "", models.MediaTypeTextPost},
		{"shot.png", "", models.MediaTypeTextPost},
	}

	for _, tt := range tests {
		f, ok := NewMediaFile(tt.name, "/"+tt.name)
		if !ok {
			t.Fatalf("%s: expected eligible", tt.name)
		}
		if got := MediaTypeFor(f, tt.link); got != tt.want {
			t.Fatalf("MediaTypeFor(%s, %q) = %s, want %s", tt.name, tt.link, got, tt.want)
		}
	}
}

func newThreadsServer(t *testing.T, status int, body string) (*httptest.Server, *url.Values, *string) {
	t.Helper()
	var form url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = r.PostForm
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &form, &path
}

func TestPublish_VideoSuccess(t *testing.T) {
	srv, form, path := newThreadsServer(t, http.StatusOK, `{"id":"1789"}`)
	s := NewThreadsService(srv.URL+"/v1.0", srv.Client())
	file, _ := NewMediaFile("clip.mp4", "/t/clip.mp4")

	res := s.Publish(context.Background(), "12345", "tok", "hello", file, "https://dl/clip.mp4")

	if !res.Succeeded || res.StatusCode != http.StatusOK || res.Err != nil {
		t.Fatalf("expected success, got %+v", res)
	}
	if *path != "/v1.0/12345/threads" {
		t.Fatalf("unexpected path: %q", *path)
	}
	f := *form
	if f.Get("media_type") != "VIDEO" || f.Get("video_url") != "https://dl/clip.mp4" {
		t.Fatalf("unexpected form: %v", f)
	}
	if f.Get("image_url") != "" || f.Get("text") != "hello" || f.Get("access_token") != "tok" {
		t.Fatalf("unexpected form: %v", f)
	}
}

func TestPublish_TextPostWithoutLink(t *testing.T) {
	srv, form, _ := newThreadsServer(t, http.StatusOK, `{"id":"1"}`)
	s := NewThreadsService(srv.URL, srv.Client())
	file, _ := NewMediaFile("shot.png", "/t/shot.png")

	res := s.Publish(context.Background(), "1", "tok", "caption", file, "")

	if !res.Succeeded || res.MediaType != models.MediaTypeTextPost {
		t.Fatalf("unexpected result: %+v", res)
	}
	f := *form
	if f.Get("media_type") != "TEXT_POST" || f.Has("image_url") || f.Has("video_url") {
		t.Fatalf("unexpected form: %v", f)
	}
}

func TestPublish_NonOKCapturesBody(t *testing.T) {
	body := `{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`
	srv, _, _ := newThreadsServer(t, http.StatusBadRequest, body)
	s := NewThreadsService(srv.URL, srv.Client())
	file, _ := NewMediaFile("shot.png", "/t/shot.png")

	res := s.Publish(context.Background(), "1", "bad", "caption", file, "https://dl/shot.png")

	if res.Succeeded {
		t.Fatalf("expected failure")
	}
	if res.StatusCode != http.StatusBadRequest || res.Body != body {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !errors.Is(res.Err, ErrPublish) {
		t.Fatalf("expected ErrPublish, got %v", res.Err)
	}
}

func TestPublish_CreatedIsNotSuccess(t *testing.T) {
	srv, _, _ := newThreadsServer(t, http.StatusCreated, `{"id":"1"}`)
	s := NewThreadsService(srv.URL, srv.Client())
	file, _ := NewMediaFile("shot.png", "/t/shot.png")

	if res := s.Publish(context.Background(), "1", "tok", "c", file, "https://dl"); res.Succeeded {
		t.Fatalf("only 200 counts as success, got %+v", res)
	}
}

func TestPublish_NetworkErrorIsFailedResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	s := NewThreadsService(base, http.DefaultClient)
	file, _ := NewMediaFile("clip.mp4", "/clip.mp4")
	res := s.Publish(context.Background(), "1", "tok", "c", file, "https://dl")

	if res.Succeeded || res.StatusCode != 0 || res.Err == nil || res.Body == "" {
		t.Fatalf("expected failed result with error text, got %+v", res)
	}
}
