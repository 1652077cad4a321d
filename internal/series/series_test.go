package series

import (
	"context"
	"errors"
	"testing"

	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/grammar"
	"github.com/rbright/linevox/internal/keys"
	"github.com/stretchr/testify/require"
)

func TestRunContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	ed := &recordingEditor{fail: map[string]error{"select_next": errors.New("no pattern")}}
	notes := &recordingNotifier{}
	runner := NewRunner(ed, notes, nil)

	result := runner.Run(context.Background(), []grammar.Action{
		{Kind: grammar.KindJumpForward, Phrase: "skip comma", Token: ",", Count: 1},
		{Kind: grammar.KindSelectNext, Phrase: "select next", Count: 1},
		{Kind: grammar.KindKeys, Phrase: "trunk", Count: 1, Strokes: keys.MustParse("s-end, delete")},
	})

	require.Equal(t, []string{"jump_forward", "select_next", "keys"}, ed.calls)
	require.Equal(t, 3, result.Executed)
	require.Equal(t, 1, result.Failed)
	require.Len(t, result.Outcomes, 3)
	require.NoError(t, result.Outcomes[0].Err)
	require.EqualError(t, result.Outcomes[1].Err, "no pattern")
	require.NoError(t, result.Outcomes[2].Err)
	require.EqualError(t, result.Err(), "no pattern")
	require.Equal(t, []string{"select next: no pattern"}, notes.messages)
}

func TestRunRecoversPanics(t *testing.T) {
	t.Parallel()

	ed := &recordingEditor{panicOn: "delete_backward"}
	runner := NewRunner(ed, nil, nil)

	result := runner.Run(context.Background(), []grammar.Action{
		{Kind: grammar.KindDeleteBackward, Phrase: "drop", Count: 1},
		{Kind: grammar.KindJust, Phrase: "word hi", Text: "hi", Count: 1},
	})

	require.Equal(t, 2, result.Executed)
	require.Equal(t, 1, result.Failed)
	require.ErrorContains(t, result.Outcomes[0].Err, "panicked")
	require.Equal(t, []string{"delete_backward", "just"}, ed.calls)
}

func TestRunPassesBoundValues(t *testing.T) {
	t.Parallel()

	ed := &recordingEditor{}
	runner := NewRunner(ed, nil, nil)

	result := runner.Run(context.Background(), []grammar.Action{
		{Kind: grammar.KindSelectBackward, Text: "foo", Count: 2},
		{Kind: grammar.KindDeleteForward, Count: 3},
	})

	require.NoError(t, result.Err())
	require.Equal(t, []recordedArgs{
		{text: "foo", n: 2},
		{n: 3},
	}, ed.args)
}

func TestRunRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	result := NewRunner(&recordingEditor{}, nil, nil).Run(context.Background(), []grammar.Action{{Kind: grammar.Kind(42)}})
	require.Equal(t, 1, result.Failed)
	require.ErrorContains(t, result.Err(), "no handler")
}

func TestEveryGrammarKindHasHandler(t *testing.T) {
	t.Parallel()

	g, err := grammar.Default(config.Default().Grammar)
	require.NoError(t, err)

	for _, rule := range grammar.DefaultRules {
		_, ok := handlers[rule.Kind]
		require.True(t, ok, rule.Spec)
	}
	require.NotEmpty(t, g.Phrases())
}

func TestRunParsedUtteranceInOrder(t *testing.T) {
	t.Parallel()

	g, err := grammar.Default(config.Default().Grammar)
	require.NoError(t, err)
	actions, err := g.Parse("step dot select two drop word prog 3")
	require.NoError(t, err)

	ed := &recordingEditor{}
	result := NewRunner(ed, nil, nil).Run(context.Background(), actions)
	require.NoError(t, result.Err())
	require.Equal(t, []string{"jump_backward", "select_forward", "keys", "keys"}, ed.calls)
	require.Equal(t, []string{"c-backspace", "w-3"}, ed.strokes)
}

type recordedArgs struct {
	text  string
	token string
	n     int
}

type recordingEditor struct {
	calls   []string
	args    []recordedArgs
	strokes []string
	fail    map[string]error
	panicOn string
}

func (r *recordingEditor) record(name string, args recordedArgs) error {
	r.calls = append(r.calls, name)
	r.args = append(r.args, args)
	if name == r.panicOn {
		panic("boom")
	}
	return r.fail[name]
}

func (r *recordingEditor) Just(_ context.Context, text string) error {
	return r.record("just", recordedArgs{text: text})
}

func (r *recordingEditor) Keys(_ context.Context, strokes []keys.Keystroke) error {
	for _, s := range strokes {
		r.strokes = append(r.strokes, s.String())
	}
	return r.record("keys", recordedArgs{})
}

func (r *recordingEditor) JumpForward(_ context.Context, text, token string, n int) error {
	return r.record("jump_forward", recordedArgs{text, token, n})
}

func (r *recordingEditor) JumpBackward(_ context.Context, text, token string, n int) error {
	return r.record("jump_backward", recordedArgs{text, token, n})
}

func (r *recordingEditor) SelectForward(_ context.Context, text, token string, n int) error {
	return r.record("select_forward", recordedArgs{text, token, n})
}

func (r *recordingEditor) SelectBackward(_ context.Context, text, token string, n int) error {
	return r.record("select_backward", recordedArgs{text, token, n})
}

func (r *recordingEditor) SelectNext(context.Context) error {
	return r.record("select_next", recordedArgs{})
}

func (r *recordingEditor) DeleteForward(_ context.Context, n int) error {
	return r.record("delete_forward", recordedArgs{n: n})
}

func (r *recordingEditor) DeleteBackward(_ context.Context, n int) error {
	return r.record("delete_backward", recordedArgs{n: n})
}

type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Failed(_ context.Context, text string) {
	r.messages = append(r.messages, text)
}
