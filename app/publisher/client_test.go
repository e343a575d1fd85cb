package publisher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
)

var testDest = destinations.Destination{
	ID:          "111",
	AccessToken: "token-1",
	Name:        "Page One",
}

func writeVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(server.Client(), "test-agent")
	c.GraphURL = server.URL
	c.GraphVideoURL = server.URL
	c.UploadURL = server.URL
	return c
}

func TestValidateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_token") == "token-1" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(server)

	if !client.ValidateToken(context.Background(), testDest) {
		t.Error("Expected valid token to pass preflight")
	}

	badDest := testDest
	badDest.AccessToken = "wrong"
	if client.ValidateToken(context.Background(), badDest) {
		t.Error("Expected invalid token to fail preflight")
	}
}

func TestUploadVideo(t *testing.T) {
	var gotDescription string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart body: %v", err)
		}
		if _, _, err := r.FormFile("source"); err != nil {
			t.Errorf("Expected 'source' file field: %v", err)
		}
		gotDescription = r.URL.Query().Get("description")
		w.Write([]byte(`{"id":"post-123"}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	postID, err := client.UploadVideo(context.Background(), testDest, writeVideoFile(t), "caption text")
	if err != nil {
		t.Fatalf("UploadVideo failed: %v", err)
	}
	if postID != "post-123" {
		t.Errorf("Expected post ID 'post-123', got %q", postID)
	}
	if gotDescription != "caption text" {
		t.Errorf("Caption not sent, got %q", gotDescription)
	}
}

func TestUploadVideo_NoPostID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.UploadVideo(context.Background(), testDest, writeVideoFile(t), "caption")
	var publishErr *PublishError
	if !errors.As(err, &publishErr) {
		t.Fatalf("Expected PublishError for missing post ID, got %v", err)
	}
}

func TestUploadReel_AllPhases(t *testing.T) {
	var phases []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v20.0/111/video_reels":
			r.ParseForm()
			phase := r.PostFormValue("upload_phase")
			phases = append(phases, phase)
			if phase == "start" {
				w.Write([]byte(`{"video_id":"vid-9"}`))
				return
			}
			if r.PostFormValue("video_state") != "PUBLISHED" || r.PostFormValue("container_type") != "REELS" {
				t.Errorf("Finish phase missing reel flags: %v", r.PostForm)
			}
			w.Write([]byte(`{"success":true}`))
		case r.URL.Path == "/video-upload/v20.0/vid-9":
			phases = append(phases, "transfer")
			if r.Header.Get("Authorization") != "OAuth token-1" {
				t.Errorf("Wrong Authorization header: %q", r.Header.Get("Authorization"))
			}
			if r.Header.Get("offset") != "0" || r.Header.Get("file_size") == "" {
				t.Errorf("Missing transfer headers")
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("Unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server)

	videoID, err := client.UploadReel(context.Background(), testDest, writeVideoFile(t), "reel caption")
	if err != nil {
		t.Fatalf("UploadReel failed: %v", err)
	}
	if videoID != "vid-9" {
		t.Errorf("Expected video ID 'vid-9', got %q", videoID)
	}

	want := []string{"start", "transfer", "finish"}
	if len(phases) != 3 || phases[0] != want[0] || phases[1] != want[1] || phases[2] != want[2] {
		t.Errorf("Expected phases %v, got %v", want, phases)
	}
}

func TestUploadReel_SessionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`)) // no video_id
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.UploadReel(context.Background(), testDest, writeVideoFile(t), "caption")
	var sessionErr *SessionError
	if !errors.As(err, &sessionErr) {
		t.Fatalf("Expected SessionError, got %v", err)
	}
}

func TestUploadReel_UploadErrorAbortsPublish(t *testing.T) {
	var finishCalled bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v20.0/111/video_reels":
			r.ParseForm()
			if r.PostFormValue("upload_phase") == "finish" {
				finishCalled = true
			}
			w.Write([]byte(`{"video_id":"vid-9"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("bytes rejected"))
		}
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.UploadReel(context.Background(), testDest, writeVideoFile(t), "caption")
	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) {
		t.Fatalf("Expected UploadError, got %v", err)
	}
	if uploadErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", uploadErr.StatusCode)
	}
	if finishCalled {
		t.Error("Finish phase must not run after a failed transfer")
	}
}

func TestUploadReel_PublishError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v20.0/111/video_reels":
			r.ParseForm()
			if r.PostFormValue("upload_phase") == "start" {
				w.Write([]byte(`{"video_id":"vid-9"}`))
				return
			}
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	client := newTestClient(server)

	_, err := client.UploadReel(context.Background(), testDest, writeVideoFile(t), "caption")
	var publishErr *PublishError
	if !errors.As(err, &publishErr) {
		t.Fatalf("Expected PublishError, got %v", err)
	}
}
