package render

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/zhouzirui/bot-duet/internal/model/bot"
	"github.com/zhouzirui/bot-duet/pkg/utils"
)

// PortraitWriter saves bot_<x>_latestmessage.png files into a directory.
type PortraitWriter struct {
	renderer *Renderer
	dir      string
}

// NewPortraitWriter returns a writer targeting dir.
func NewPortraitWriter(renderer *Renderer, dir string) *PortraitWriter {
	return &PortraitWriter{renderer: renderer, dir: dir}
}

// Path is where the portrait for id is written.
func (w *PortraitWriter) Path(id bot.ID) string {
	return filepath.Join(w.dir, id.PortraitFile())
}

// WritePortrait renders text for id and replaces the previous file.
func (w *PortraitWriter) WritePortrait(ctx context.Context, id bot.ID, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}

	data, err := w.renderer.Portrait(id, text)
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(w.Path(id), data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrRenderFailure, id.PortraitFile(), err)
	}
	return nil
}
