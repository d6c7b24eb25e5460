package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"github.com/maheshrc27/postbridge/internal/models"
)

func TestRefreshAccessToken_SendsRefreshGrant(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = map[string]string{
			"grant_type":    r.PostForm.Get("grant_type"),
			"refresh_token": r.PostForm.Get("refresh_token"),
			"client_id":     r.PostForm.Get("client_id"),
			"client_secret": r.PostForm.Get("client_secret"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"sl.short","token_type":"bearer","expires_in":14400}`))
	}))
	t.Cleanup(srv.Close)

	s := NewDropboxService(srv.URL, srv.Client())
	token, err := s.RefreshAccessToken(context.Background(), "refresh-1", "key-1", "secret-1")
	if err != nil {
		t.Fatalf("RefreshAccessToken error: %v", err)
	}
	if token != "sl.short" {
		t.Fatalf("unexpected token: %q", token)
	}

	want := map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": "refresh-1",
		"client_id":     "key-1",
		"client_secret": "secret-1",
	}
	for k, v := range want {
		if form[k] != v {
			t.Fatalf("form[%s] = %q, want %q", k, form[k], v)
		}
	}
}

func TestRefreshAccessToken_NonSuccessIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	t.Cleanup(srv.Close)

	s := NewDropboxService(srv.URL, srv.Client())
	_, err := s.RefreshAccessToken(context.Background(), "bad", "k", "s")
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
}

type fakeDropboxFiles struct {
	pages   []*files.ListFolderResult
	link    string
	linkErr error
	deleted []string
	delErr  error
	cursors []string
}

func (f *fakeDropboxFiles) ListFolder(arg *files.ListFolderArg) (*files.ListFolderResult, error) {
	return f.pages[0], nil
}

func (f *fakeDropboxFiles) ListFolderContinue(arg *files.ListFolderContinueArg) (*files.ListFolderResult, error) {
	f.cursors = append(f.cursors, arg.Cursor)
	return f.pages[len(f.cursors)], nil
}

func (f *fakeDropboxFiles) GetTemporaryLink(arg *files.GetTemporaryLinkArg) (*files.GetTemporaryLinkResult, error) {
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	return &files.GetTemporaryLinkResult{Link: f.link}, nil
}

func (f *fakeDropboxFiles) DeleteV2(arg *files.DeleteArg) (*files.DeleteResult, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deleted = append(f.deleted, arg.Path)
	return &files.DeleteResult{}, nil
}

func fileEntry(name, path string) files.IsMetadata {
	return &files.FileMetadata{Metadata: files.Metadata{Name: name, PathLower: path}}
}

func TestDropboxSession_ListFollowsCursorAndFilters(t *testing.T) {
	api := &fakeDropboxFiles{pages: []*files.ListFolderResult{
		{
			Entries: []files.IsMetadata{
				fileEntry("a.MP4", "/threads_1/a.mp4"),
				&files.FolderMetadata{Metadata: files.Metadata{Name: "nested.mp4", PathLower: "/threads_1/nested.mp4"}},
				fileEntry("c.txt", "/threads_1/c.txt"),
			},
			Cursor:  "page-2",
			HasMore: true,
		},
		{
			Entries: []files.IsMetadata{fileEntry("b.PNG", "/threads_1/b.png")},
		},
	}}

	s := newDropboxSession("/Threads_1", api)
	got, err := s.ListEligibleFiles(context.Background())
	if err != nil {
		t.Fatalf("ListEligibleFiles error: %v", err)
	}
	if len(api.cursors) != 1 || api.cursors[0] != "page-2" {
		t.Fatalf("expected one continue call with cursor page-2, got %v", api.cursors)
	}
	if len(got) != 2 || got[0].Name != "a.MP4" || got[1].Name != "b.PNG" {
		t.Fatalf("unexpected files: %+v", got)
	}
	if got[0].Path != "/threads_1/a.mp4" {
		t.Fatalf("expected lower-case path, got %q", got[0].Path)
	}
}

func TestDropboxSession_DeleteErrorWrapsErrDelete(t *testing.T) {
	api := &fakeDropboxFiles{delErr: errors.New("path_lookup/not_found")}
	s := newDropboxSession("/", api)
	if s.folder != "" {
		t.Fatalf("expected root folder to be addressed as empty path, got %q", s.folder)
	}

	err := s.Delete(context.Background(), models.MediaFile{Name: "a.mp4", Path: "/a.mp4"})
	if !errors.Is(err, ErrDelete) {
		t.Fatalf("expected ErrDelete, got %v", err)
	}
}

func TestDropboxSession_TemporaryLink(t *testing.T) {
	api := &fakeDropboxFiles{link: "https://dl.dropboxusercontent.com/tmp/a.mp4"}
	s := newDropboxSession("/t", api)

	link, err := s.TemporaryLink(context.Background(), models.MediaFile{Name: "a.mp4", Path: "/t/a.mp4"})
	if err != nil {
		t.Fatalf("TemporaryLink error: %v", err)
	}
	if link != api.link {
		t.Fatalf("unexpected link: %q", link)
	}
}

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    r,
	}
}

func TestDropboxOpen_ListSendsRefreshedToken(t *testing.T) {
	var mu sync.Mutex
	var listAuth []string

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		switch {
		case r.URL.Host == "api.dropbox.com" && r.URL.Path == "/oauth2/token":
			return jsonResponse(r, http.StatusOK, `{"access_token":"sl.short","token_type":"bearer","expires_in":14400}`), nil
		case r.URL.Host == "api.dropboxapi.com" && r.URL.Path == "/2/files/list_folder":
			mu.Lock()
			listAuth = append(listAuth, r.Header.Get("Authorization"))
			mu.Unlock()
			return jsonResponse(r, http.StatusOK, `{"entries":[{".tag":"file","name":"clip.mp4","id":"id:1","path_lower":"/threads/clip.mp4","path_display":"/Threads/clip.mp4","client_modified":"2024-06-01T10:00:00Z","server_modified":"2024-06-01T10:00:00Z","rev":"0123456789abc","size":42},{".tag":"folder","name":"old","id":"id:2","path_lower":"/threads/old"}],"cursor":"c1","has_more":false}`), nil
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL)
			return jsonResponse(r, http.StatusNotFound, `{}`), nil
		}
	})}

	s := NewDropboxService("https://api.dropbox.com/oauth2/token", client)
	session, err := s.Open(context.Background(), models.Account{
		Name:                "inkwisp",
		Folder:              "/Threads",
		DropboxRefreshToken: "refresh-1",
		DropboxAppKey:       "key-1",
		DropboxAppSecret:    "secret-1",
	})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	got, err := session.ListEligibleFiles(context.Background())
	if err != nil {
		t.Fatalf("ListEligibleFiles error: %v", err)
	}
	if len(got) != 1 || got[0].Path != "/threads/clip.mp4" {
		t.Fatalf("unexpected files: %+v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(listAuth) != 1 || listAuth[0] != "Bearer sl.short" {
		t.Fatalf("list_folder Authorization = %q, want %q", listAuth, "Bearer sl.short")
	}
}
