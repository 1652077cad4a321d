// Package edit performs line-editing actions in the focused application by
// reading the current line through the clipboard and injecting keystrokes.
package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/rbright/linevox/internal/clipboard"
	"github.com/rbright/linevox/internal/keys"
	"github.com/rbright/linevox/internal/locate"
)

var (
	// ErrNotFound reports that the line holds fewer matches than requested.
	ErrNotFound = errors.New("no match")
	// ErrNoPattern reports a locate with no text, no token, and nothing remembered.
	ErrNoPattern = errors.New("no pattern to search for")
)

var nonWord = regexp.MustCompile(`\W`)

// Session holds the state shared by consecutive actions: the remembered
// search pattern and the clipboard snapshot. A Session is not safe for
// concurrent use.
type Session struct {
	buffer   *clipboard.Buffer
	injector keys.Injector
	typist   keys.Typist
	settle   time.Duration
	logger   *slog.Logger

	previous locate.Pattern
}

// NewSession wires a session to its clipboard and keystroke backends.
// settle is how long to wait after a copy before reading the clipboard.
func NewSession(
	clip clipboard.Clipboard,
	injector keys.Injector,
	typist keys.Typist,
	settle time.Duration,
	logger *slog.Logger,
) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		buffer:   clipboard.NewBuffer(clip, logger),
		injector: injector,
		typist:   typist,
		settle:   settle,
		logger:   logger,
	}
}

// Previous returns the remembered search pattern.
func (s *Session) Previous() locate.Pattern {
	return s.previous
}

// JumpForward moves the cursor just past the start of the nth match after it.
func (s *Session) JumpForward(ctx context.Context, text, token string, n int) error {
	return s.moveBy(ctx, locate.Forward, text, token, n, 0, "right")
}

// JumpBackward moves the cursor to the start of the nth match before it.
func (s *Session) JumpBackward(ctx context.Context, text, token string, n int) error {
	return s.moveBy(ctx, locate.Backward, text, token, n, 0, "left")
}

// SelectForward extends the selection to the nth match after the cursor.
func (s *Session) SelectForward(ctx context.Context, text, token string, n int) error {
	return s.moveBy(ctx, locate.Forward, text, token, n, keys.ModShift, "right")
}

// SelectBackward extends the selection to the nth match before the cursor.
func (s *Session) SelectBackward(ctx context.Context, text, token string, n int) error {
	return s.moveBy(ctx, locate.Backward, text, token, n, keys.ModShift, "left")
}

// DeleteForward deletes from the cursor through the nth following space.
func (s *Session) DeleteForward(ctx context.Context, n int) error {
	if err := s.SelectForward(ctx, " ", "", n); err != nil {
		return err
	}
	return s.injector.Press(ctx, keys.Press(0, "delete", 1))
}

// DeleteBackward deletes from the cursor back to the nth preceding space.
func (s *Session) DeleteBackward(ctx context.Context, n int) error {
	if err := s.SelectBackward(ctx, " ", "", n); err != nil {
		return err
	}
	return s.injector.Press(ctx, keys.Press(0, "delete", 1))
}

// SelectNext copies the current selection, counts the remembered pattern in
// it, and selects forward to the following occurrence. Calling it again
// advances one occurrence further.
func (s *Session) SelectNext(ctx context.Context) error {
	if s.previous.IsZero() {
		return ErrNoPattern
	}

	s.buffer.Save(ctx)
	defer s.restore(ctx)

	selection, err := s.copy(ctx, keys.Press(keys.ModCtrl, "c", 1))
	if err != nil {
		return err
	}
	seen, err := locate.Count(selection, s.previous)
	if err != nil {
		return err
	}
	s.logger.Debug("select next", "pattern", s.previous.String(), "seen", seen)

	return s.SelectForward(ctx, "", "", seen+1)
}

// Just types text with every non-word character removed.
func (s *Session) Just(ctx context.Context, text string) error {
	cleaned := nonWord.ReplaceAllString(text, "")
	if cleaned == "" {
		return nil
	}
	return s.typist.Type(ctx, cleaned)
}

// Keys presses a fixed keystroke sequence.
func (s *Session) Keys(ctx context.Context, strokes []keys.Keystroke) error {
	return s.injector.Press(ctx, strokes...)
}

func (s *Session) moveBy(
	ctx context.Context,
	dir locate.Direction,
	text, token string,
	n int,
	mods keys.Modifier,
	key string,
) error {
	distance, err := s.locate(ctx, dir, text, token, n)
	if err != nil {
		return err
	}
	return s.injector.Press(ctx, keys.Press(mods, key, distance))
}

// locate resolves the search pattern (text, then token, then the remembered
// pattern), captures the line on the dir side of the cursor, and returns the
// distance to the nth match.
func (s *Session) locate(ctx context.Context, dir locate.Direction, text, token string, n int) (int, error) {
	pattern := s.previous
	switch {
	case text != "":
		pattern = locate.Literal(text)
	case token != "":
		pattern = locate.Regex(token)
	}
	if pattern.IsZero() {
		return 0, ErrNoPattern
	}
	if _, err := pattern.Compile(dir); err != nil {
		return 0, err
	}
	s.previous = pattern

	captured, err := s.capture(ctx, dir)
	if err != nil {
		return 0, err
	}

	distance, ok, err := locate.Find(captured, pattern, dir, n)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w for %s %s", ErrNotFound, dir, pattern)
	}
	return distance, nil
}

// capture copies the line from the cursor to its end (forward) or start
// (backward, returned reversed) and collapses the selection again. At a line
// boundary nothing is selected, so nothing is collapsed and the cursor stays
// put. The user's clipboard is restored before returning.
func (s *Session) capture(ctx context.Context, dir locate.Direction) (string, error) {
	extend, collapse := keys.Press(keys.ModShift, "end", 1), keys.Press(0, "left", 1)
	if dir == locate.Backward {
		extend, collapse = keys.Press(keys.ModShift, "home", 1), keys.Press(0, "right", 1)
	}

	s.buffer.Save(ctx)
	defer s.restore(ctx)

	captured, err := s.copy(ctx, extend, keys.Press(keys.ModCtrl, "c", 1))
	if err != nil {
		return "", err
	}
	if captured == "" {
		return "", nil
	}
	if err := s.injector.Press(ctx, collapse); err != nil {
		return "", fmt.Errorf("collapse selection: %w", err)
	}
	if dir == locate.Backward {
		if err := s.buffer.Reverse(ctx); err != nil {
			return "", fmt.Errorf("reverse captured line: %w", err)
		}
		if captured, err = s.buffer.Read(ctx); err != nil {
			return "", fmt.Errorf("read captured line: %w", err)
		}
	}
	return captured, nil
}

// copy clears the clipboard, presses strokes, and reads what they copied.
// ctrl+c carries the settle pause so the clipboard owner can publish. An
// unreadable clipboard reads as an empty capture.
func (s *Session) copy(ctx context.Context, strokes ...keys.Keystroke) (string, error) {
	if err := s.buffer.Write(ctx, ""); err != nil {
		s.logger.Debug("clear clipboard before copy failed", "error", err.Error())
	}

	for i := range strokes {
		if strokes[i].Key == "c" && strokes[i].Has(keys.ModCtrl) {
			strokes[i].Pause = s.settle
		}
	}
	if err := s.injector.Press(ctx, strokes...); err != nil {
		return "", fmt.Errorf("copy line: %w", err)
	}

	text, err := s.buffer.Read(ctx)
	if err != nil {
		s.logger.Debug("clipboard empty after copy", "error", err.Error())
		return "", nil
	}
	return text, nil
}

func (s *Session) restore(ctx context.Context) {
	// Restore failures are logged by the buffer; the action itself succeeded.
	_ = s.buffer.Restore(ctx)
}
