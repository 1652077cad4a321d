package grammar

// Kind names the editing operation an action performs.
type Kind int

const (
	KindJust Kind = iota
	KindKeys
	KindJumpForward
	KindJumpBackward
	KindSelectForward
	KindSelectBackward
	KindSelectNext
	KindDeleteForward
	KindDeleteBackward
)

var kindNames = map[Kind]string{
	KindJust:           "just",
	KindKeys:           "keys",
	KindJumpForward:    "jump_forward",
	KindJumpBackward:   "jump_backward",
	KindSelectForward:  "select_forward",
	KindSelectBackward: "select_backward",
	KindSelectNext:     "select_next",
	KindDeleteForward:  "delete_forward",
	KindDeleteBackward: "delete_backward",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Rule maps one phrase spec to an action kind. Keys is the keystroke spec
// for KindKeys rules; "{n}" in it is replaced with the bound count.
type Rule struct {
	Spec string
	Kind Kind
	Keys string
}

// DefaultRules is the line-editing phrase table. Order matters: the first
// rule that leads to a full parse of the utterance wins.
var DefaultRules = []Rule{
	{Spec: "word <text>", Kind: KindJust},

	{Spec: "drop word", Kind: KindKeys, Keys: "c-backspace"},
	{Spec: "kill word", Kind: KindKeys, Keys: "c-delete"},

	{Spec: "skip [<n>]", Kind: KindJumpForward},
	{Spec: "skip <token>", Kind: KindJumpForward},
	{Spec: "skip to <text>", Kind: KindJumpForward},
	{Spec: "step [<n>]", Kind: KindJumpBackward},
	{Spec: "step <token>", Kind: KindJumpBackward},
	{Spec: "step to <text>", Kind: KindJumpBackward},

	{Spec: "drop [<n>]", Kind: KindDeleteBackward},
	{Spec: "ditch [<n>]", Kind: KindDeleteForward},
	{Spec: "select [<n>]", Kind: KindSelectForward},
	{Spec: "select next", Kind: KindSelectNext},
	{Spec: "select back [<n>]", Kind: KindSelectBackward},
	{Spec: "select back <token>", Kind: KindSelectBackward},
	{Spec: "select <token>", Kind: KindSelectForward},
	{Spec: "select to <text>", Kind: KindSelectForward},

	{Spec: "trunk", Kind: KindKeys, Keys: "s-end, delete"},
	{Spec: "chop", Kind: KindKeys, Keys: "s-home, delete"},

	{Spec: "prog [<n>]", Kind: KindKeys, Keys: "w-{n}"},
}
