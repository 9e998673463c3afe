package assets

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAvatarClient_CreateAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create_avatar" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req map[string]string
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req["team1_id"] != "11" || req["team2_id"] != "22" {
			t.Errorf("unexpected club IDs: %#v", req)
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	got, err := NewAvatarClient(srv.URL).CreateAvatar(testMatch())
	if err != nil {
		t.Fatalf("avatar creation failed: %v", err)
	}
	if string(got) != "png-bytes" {
		t.Fatalf("unexpected avatar payload: %q", got)
	}
}

func TestAvatarClient_MissingClubIDs(t *testing.T) {
	m := testMatch()
	m.HomeClubID = ""
	if _, err := NewAvatarClient("http://unused.invalid").CreateAvatar(m); err == nil {
		t.Fatal("expected error when a club ID is missing")
	}
}

func TestAvatarClient_WrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": "renderer offline"}`))
	}))
	defer srv.Close()

	if _, err := NewAvatarClient(srv.URL).CreateAvatar(testMatch()); err == nil {
		t.Fatal("expected error for non-PNG response")
	}
}

func TestDriveClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload_file" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("folder_path"); got != "Assets/2026-06-15" {
			t.Errorf("unexpected folder_path: %s", got)
		}
		if got := r.FormValue("mime_type"); got != "text/plain" {
			t.Errorf("unexpected mime_type: %s", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
		} else {
			defer file.Close()
			if header.Filename != "description.txt" {
				t.Errorf("unexpected file name: %s", header.Filename)
			}
		}
		w.Write([]byte(`{"status": "success", "file_url": "https://drive.example.com/abc"}`))
	}))
	defer srv.Close()

	url, err := NewDriveClient(srv.URL).Upload("description.txt", []byte("hello"), "Assets/2026-06-15", "text/plain")
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://drive.example.com/abc" {
		t.Fatalf("unexpected file URL: %s", url)
	}
}

func TestDriveClient_UploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "quota exceeded"}`))
	}))
	defer srv.Close()

	_, err := NewDriveClient(srv.URL).Upload("x.txt", []byte("x"), "Assets", "text/plain")
	if err == nil {
		t.Fatal("expected error for rejected upload")
	}
}
