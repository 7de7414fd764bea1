package preview

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/internal/render"
	chatservice "github.com/zhouzirui/bot-duet/internal/service/chat"
)

type failingRenderer struct{}

func (failingRenderer) Preview(string, string) ([]byte, error) {
	return nil, render.ErrRenderFailure
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, bot.ID) (chatservice.LoadResult, error) {
	return chatservice.LoadResult{}, chatservice.ErrReadFailure
}

func (brokenStore) Save(context.Context, bot.ID, []string) error {
	return errors.New("read only")
}

func setupRouter(store chatservice.Store, renderer Renderer) *chi.Mux {
	r := chi.NewRouter()
	New(store, renderer, zerolog.Nop()).RegisterRoutes(r)
	return r
}

func TestConversationImage(t *testing.T) {
	store := chatservice.NewMemoryStore()
	if err := store.Save(context.Background(), bot.A, []string{"hello there"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	renderer := render.NewRenderer(render.FallbackFace(), render.DefaultLayout())
	r := setupRouter(store, renderer)

	req := httptest.NewRequest(http.MethodGet, "/conversation-image", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("unexpected content type %q", got)
	}

	img, err := png.Decode(bytes.NewReader(resp.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 400 {
		t.Fatalf("unexpected size %v", b)
	}

	want, err := renderer.Preview("hello there", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(want, resp.Body.Bytes()) {
		t.Fatal("endpoint image differs from direct render")
	}
}

func TestConversationImageRenderFailure(t *testing.T) {
	r := setupRouter(chatservice.NewMemoryStore(), failingRenderer{})

	req := httptest.NewRequest(http.MethodGet, "/conversation-image", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if got := resp.Body.String(); got != "{\"error\":\"Failed to generate image\"}\n" {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestConversationImageReadFailure(t *testing.T) {
	renderer := render.NewRenderer(render.FallbackFace(), render.DefaultLayout())
	r := setupRouter(brokenStore{}, renderer)

	req := httptest.NewRequest(http.MethodGet, "/conversation-image", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
