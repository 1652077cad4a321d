package clipboard

import (
	"context"
	"log/slog"

	"github.com/rbright/linevox/internal/locate"
)

// Buffer holds the single clipboard snapshot taken before the clipboard is
// used as scratch space. Save/Restore calls nest: only the outermost Save
// reads the clipboard, so the snapshot is always the user's own content.
type Buffer struct {
	clip   Clipboard
	logger *slog.Logger

	saved string
	valid bool
	depth int
}

// NewBuffer wraps a clipboard backend with snapshot bookkeeping.
func NewBuffer(clip Clipboard, logger *slog.Logger) *Buffer {
	return &Buffer{clip: clip, logger: logger}
}

// Save snapshots the clipboard unless a snapshot is already held.
func (b *Buffer) Save(ctx context.Context) {
	b.depth++
	if b.depth > 1 {
		return
	}

	text, err := b.clip.ReadText(ctx)
	if err != nil {
		// An empty clipboard reads as an error for wl-paste; restore becomes a no-op.
		b.saved, b.valid = "", false
		b.warn("clipboard snapshot unavailable", err)
		return
	}
	b.saved, b.valid = text, true
}

// Restore writes the snapshot back. The snapshot is released once the
// outermost Save is balanced. Restore without a held snapshot does nothing.
func (b *Buffer) Restore(ctx context.Context) error {
	if b.depth == 0 {
		return nil
	}
	b.depth--

	var err error
	if b.valid {
		err = b.clip.WriteText(ctx, b.saved)
		if err != nil {
			b.warn("clipboard restore failed", err)
		}
	}

	if b.depth == 0 {
		b.saved, b.valid = "", false
	}
	return err
}

// Read returns the current clipboard text.
func (b *Buffer) Read(ctx context.Context) (string, error) {
	return b.clip.ReadText(ctx)
}

// Write replaces the clipboard text.
func (b *Buffer) Write(ctx context.Context, text string) error {
	return b.clip.WriteText(ctx, text)
}

// Reverse replaces the clipboard text with its runes in reverse order.
func (b *Buffer) Reverse(ctx context.Context) error {
	text, err := b.clip.ReadText(ctx)
	if err != nil {
		return err
	}
	return b.clip.WriteText(ctx, locate.Reverse(text))
}

func (b *Buffer) warn(msg string, err error) {
	if b.logger == nil || err == nil {
		return
	}
	b.logger.Warn(msg, "error", err.Error())
}
