package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusMethodNotAllowed, "method not allowed")

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := resp.Body.String(); got != "{\"error\":\"method not allowed\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestRespondPNG(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondPNG(resp, []byte{0x89, 'P', 'N', 'G'})

	if got := resp.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("unexpected content type %q", got)
	}
	if resp.Body.Len() != 4 {
		t.Fatalf("expected 4 bytes, got %d", resp.Body.Len())
	}
}

func TestSendSSEEvent(t *testing.T) {
	resp := httptest.NewRecorder()
	SetupSSEHeaders(resp)
	if err := SendSSEEvent(resp, resp, "update", map[string]int{"count": 1}); err != nil {
		t.Fatalf("send event: %v", err)
	}
	if err := SendSSEComment(resp, resp, "ping"); err != nil {
		t.Fatalf("send comment: %v", err)
	}

	want := "event: update\ndata: {\"count\":1}\n\n: ping\n\n"
	if got := resp.Body.String(); got != want {
		t.Fatalf("unexpected stream %q", got)
	}
	if !resp.Flushed {
		t.Fatal("expected stream to be flushed")
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := WriteFileAtomic(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected replaced content, got %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left, got %d entries", len(entries))
	}
}
