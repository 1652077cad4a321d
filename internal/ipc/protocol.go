// Package ipc carries linevox commands over a unix socket, one JSON line each way.
package ipc

// Commands understood by the daemon.
const (
	CommandStatus = "status"
	CommandSay    = "say"
	CommandStop   = "stop"
)

// Request is one client command. Utterance and ID are set for say.
type Request struct {
	Command   string `json:"command"`
	Utterance string `json:"utterance,omitempty"`
	ID        string `json:"id,omitempty"`
}

// Response reports the outcome of a request. Executed and Failed count the
// actions a say ran.
type Response struct {
	OK       bool     `json:"ok"`
	State    string   `json:"state,omitempty"`
	Message  string   `json:"message,omitempty"`
	Error    string   `json:"error,omitempty"`
	Executed int      `json:"executed,omitempty"`
	Failed   int      `json:"failed,omitempty"`
	Actions  []string `json:"actions,omitempty"`
}
