package persona

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
)

func TestMemoryStoreSeed(t *testing.T) {
	store := NewMemoryStore(Seed())

	prompt, err := store.Prompt(context.Background(), bot.B)
	if err != nil {
		t.Fatalf("Prompt err: %v", err)
	}
	if prompt == "" {
		t.Fatal("expected non-empty seed prompt")
	}

	empty := NewMemoryStore(nil)
	if _, err := empty.Prompt(context.Background(), bot.A); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestFileStoreReadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, bot.A.PromptFile())
	if err := os.WriteFile(path, []byte("be cheerful"), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	store := NewFileStore(dir)
	got, err := store.Prompt(context.Background(), bot.A)
	if err != nil {
		t.Fatalf("Prompt err: %v", err)
	}
	if got != "be cheerful" {
		t.Fatalf("unexpected prompt %q", got)
	}

	if err := os.WriteFile(path, []byte("changed"), 0o644); err != nil {
		t.Fatalf("rewrite prompt: %v", err)
	}
	got, _ = store.Prompt(context.Background(), bot.A)
	if got != "be cheerful" {
		t.Fatalf("expected cached prompt, got %q", got)
	}

	if _, err := store.Prompt(context.Background(), bot.B); !errors.Is(err, ErrPromptNotFound) {
		t.Fatalf("expected ErrPromptNotFound for missing file, got %v", err)
	}
}
