// internal/upload/supabase_test.go
package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/evostudios/StableScraper/internal/utils"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func TestUploadVideo(t *testing.T) {
	var gotPath, gotAuth, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(SupabaseConfig{
		URL:            server.URL,
		ServiceRoleKey: "service-key",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	local := writeTempFile(t, "job-video-1.mp4", "video bytes")
	publicURL, err := store.UploadVideo(context.Background(), local, "user-1", "job-1", 1)
	if err != nil {
		t.Fatalf("Failed to upload: %v", err)
	}

	if gotPath != "/storage/v1/object/videos/user-1/job-1/video-1.mp4" {
		t.Fatalf("Unexpected upload path: %q", gotPath)
	}
	if gotAuth != "Bearer service-key" {
		t.Fatalf("Unexpected authorization header: %q", gotAuth)
	}
	if gotContentType != "video/mp4" {
		t.Fatalf("Unexpected content type: %q", gotContentType)
	}
	if gotBody != "video bytes" {
		t.Fatalf("Unexpected upload body: %q", gotBody)
	}
	want := server.URL + "/storage/v1/object/public/videos/user-1/job-1/video-1.mp4"
	if publicURL != want {
		t.Fatalf("Expected public URL %q, got %q", want, publicURL)
	}
}

func TestUploadAudio(t *testing.T) {
	var gotPath, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(SupabaseConfig{
		URL:            server.URL + "/",
		ServiceRoleKey: "service-key",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	local := writeTempFile(t, "job-video-2.mp3", "audio bytes")
	if _, err := store.UploadAudio(context.Background(), local, "user-1", "job-1", 2); err != nil {
		t.Fatalf("Failed to upload: %v", err)
	}

	if gotPath != "/storage/v1/object/audio/user-1/job-1/audio-2.mp3" {
		t.Fatalf("Unexpected upload path: %q", gotPath)
	}
	if gotContentType != "audio/mpeg" {
		t.Fatalf("Unexpected content type: %q", gotContentType)
	}
}

func TestUpload_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bucket not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	store, err := NewSupabaseStore(SupabaseConfig{
		URL:            server.URL,
		ServiceRoleKey: "service-key",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	local := writeTempFile(t, "clip.mp4", "video bytes")
	_, err = store.UploadVideo(context.Background(), local, "user-1", "job-1", 1)
	if err == nil {
		t.Fatal("Expected error for rejected upload")
	}
	if !utils.IsCode(err, utils.ErrCodeUploadFailed) {
		t.Fatalf("Expected UPLOAD_FAILED, got %v", err)
	}
}

func TestUpload_MissingLocalFile(t *testing.T) {
	store, err := NewSupabaseStore(SupabaseConfig{
		URL:            "https://project.supabase.co",
		ServiceRoleKey: "service-key",
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if _, err := store.UploadVideo(context.Background(), "/no/such/file.mp4", "user-1", "job-1", 1); err == nil {
		t.Fatal("Expected error for missing local file")
	}
}

func TestNewSupabaseStore_RequiresCredentials(t *testing.T) {
	if _, err := NewSupabaseStore(SupabaseConfig{URL: "https://project.supabase.co"}, nil); err == nil {
		t.Fatal("Expected error without a service role key")
	}
	if _, err := NewSupabaseStore(SupabaseConfig{ServiceRoleKey: "key"}, nil); err == nil {
		t.Fatal("Expected error without a project URL")
	}
}
